package uri

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/xerrors"
)

func init() {
	register(shadowsocksrCodec{})
}

type shadowsocksrCodec struct{}

func (shadowsocksrCodec) Scheme() string { return "ssr" }

// Decode parses ssr://base64url(host:port:protocol:method:obfs:base64url(password)/?params).
// params are base64url key/value pairs; the keys obfsparam, protoparam,
// remarks and group are read, and any other key is dropped.
func (shadowsocksrCodec) Decode(raw string) (*node.Node, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "ssr://") {
		return nil, &xerrors.ParseError{Format: "ssr", Position: 0, Reason: "missing ssr:// prefix"}
	}
	decoded, err := Base64Decode(raw[len("ssr://"):])
	if err != nil {
		return nil, &xerrors.ParseError{Format: "ssr", Position: -1, Reason: "invalid base64 body: " + err.Error()}
	}
	body := string(decoded)

	main, params, _ := strings.Cut(body, "/?")
	fields := strings.SplitN(main, ":", 6)
	if len(fields) != 6 {
		return nil, &xerrors.ParseError{Format: "ssr", Position: -1, Reason: "expected 6 colon-separated fields"}
	}
	host, portStr, protocol, method, obfs, passwordB64 := fields[0], fields[1], fields[2], fields[3], fields[4], fields[5]

	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return nil, &xerrors.ParseError{Format: "ssr", Position: -1, Reason: "invalid port"}
	}
	passwordBytes, err := Base64Decode(passwordB64)
	if err != nil {
		return nil, &xerrors.ParseError{Format: "ssr", Position: -1, Reason: "invalid password encoding: " + err.Error()}
	}

	n := &node.Node{
		Kind: node.ShadowsocksR,
		Host: host,
		Port: port,
		ShadowsocksR: &node.ShadowsocksRCreds{
			Method:   method,
			Password: string(passwordBytes),
			Protocol: protocol,
			Obfs:     obfs,
		},
	}

	if params != "" {
		values, err := url.ParseQuery(params)
		if err == nil {
			if v := values.Get("obfsparam"); v != "" {
				n.ShadowsocksR.ObfsParam = base64QueryDecode(v)
			}
			if v := values.Get("protoparam"); v != "" {
				n.ShadowsocksR.ProtocolParm = base64QueryDecode(v)
			}
			if v := values.Get("remarks"); v != "" {
				n.Remark = base64QueryDecode(v)
			}
			if v := values.Get("group"); v != "" {
				n.Group = base64QueryDecode(v)
			}
		}
	}

	if err := n.Validate(); err != nil {
		return nil, &xerrors.ParseError{Format: "ssr", Position: -1, Reason: err.Error()}
	}
	return n, nil
}

func base64QueryDecode(v string) string {
	if b, err := Base64Decode(v); err == nil {
		return string(b)
	}
	return v
}

func (shadowsocksrCodec) Encode(n *node.Node) (string, error) {
	if n.Kind != node.ShadowsocksR || n.ShadowsocksR == nil {
		return "", &xerrors.ParseError{Format: "ssr", Position: -1, Reason: "not a shadowsocksr node"}
	}
	c := n.ShadowsocksR
	passwordB64 := Base64EncodeURL([]byte(c.Password))
	main := fmt.Sprintf("%s:%d:%s:%s:%s:%s", n.Host, n.Port, c.Protocol, c.Method, c.Obfs, passwordB64)

	params := url.Values{}
	if c.ObfsParam != "" {
		params.Set("obfsparam", Base64EncodeURL([]byte(c.ObfsParam)))
	}
	if c.ProtocolParm != "" {
		params.Set("protoparam", Base64EncodeURL([]byte(c.ProtocolParm)))
	}
	if n.Remark != "" {
		params.Set("remarks", Base64EncodeURL([]byte(n.Remark)))
	}
	if n.Group != "" {
		params.Set("group", Base64EncodeURL([]byte(n.Group)))
	}

	body := main
	if len(params) > 0 {
		body += "/?" + params.Encode()
	}
	return "ssr://" + Base64EncodeURL([]byte(body)), nil
}
