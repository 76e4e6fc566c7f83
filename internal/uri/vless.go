package uri

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/xerrors"
)

func init() {
	register(vlessCodec{})
}

type vlessCodec struct{}

func (vlessCodec) Scheme() string { return "vless" }

// Decode parses vless://uuid@host:port?type=&security=&...#remark, with
// Reality parameters when security=reality.
func (vlessCodec) Decode(raw string) (*node.Node, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme != "vless" {
		return nil, &xerrors.ParseError{Format: "vless", Position: -1, Reason: "malformed vless uri"}
	}
	uuid := u.User.Username()
	if uuid == "" {
		return nil, &xerrors.ParseError{Format: "vless", Position: -1, Reason: "missing uuid"}
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		return nil, &xerrors.ParseError{Format: "vless", Position: -1, Reason: "invalid host:port: " + err.Error()}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return nil, &xerrors.ParseError{Format: "vless", Position: -1, Reason: "invalid port"}
	}

	q := u.Query()
	n := &node.Node{
		Kind: node.VLESS,
		Host: host,
		Port: port,
		VLESS: &node.VLESSCreds{
			UUID: uuid,
			Flow: q.Get("flow"),
		},
		Remark: unescapeFragment(u.Fragment),
	}

	netType := q.Get("type")
	if netType == "" {
		netType = "tcp"
	}
	n.Transport = node.Transport{
		Type:        node.TransportType(netType),
		Path:        q.Get("path"),
		Host:        q.Get("host"),
		ServiceName: q.Get("serviceName"),
		HeaderType:  q.Get("headerType"),
	}
	if n.Transport.Path == "" && (netType == "http" || netType == "ws" || netType == "h2") {
		n.Transport.Path = "/"
	}

	switch q.Get("security") {
	case "tls":
		n.TLS.Enabled = true
		sni := q.Get("sni")
		if sni == "" {
			sni = n.Transport.Host
		}
		n.TLS.SNI = sni
		if alpn := q.Get("alpn"); alpn != "" {
			n.TLS.ALPN = strings.Split(alpn, ",")
		}
		n.TLS.Fingerprint = q.Get("fp")
	case "reality":
		n.TLS.Enabled = true
		n.TLS.SNI = q.Get("sni")
		n.TLS.Fingerprint = q.Get("fp")
		n.TLS.Reality = &node.Reality{
			PublicKey: q.Get("pbk"),
			ShortID:   q.Get("sid"),
			SpiderX:   q.Get("spx"),
		}
	}

	if err := n.Validate(); err != nil {
		return nil, &xerrors.ParseError{Format: "vless", Position: -1, Reason: err.Error()}
	}
	return n, nil
}

func (vlessCodec) Encode(n *node.Node) (string, error) {
	if n.Kind != node.VLESS || n.VLESS == nil {
		return "", &xerrors.ParseError{Format: "vless", Position: -1, Reason: "not a vless node"}
	}
	q := url.Values{}
	if n.VLESS.Flow != "" {
		q.Set("flow", n.VLESS.Flow)
	}
	if n.Transport.Type != "" {
		q.Set("type", string(n.Transport.Type))
	}
	if n.Transport.Path != "" {
		q.Set("path", n.Transport.Path)
	}
	if n.Transport.Host != "" {
		q.Set("host", n.Transport.Host)
	}
	if n.Transport.ServiceName != "" {
		q.Set("serviceName", n.Transport.ServiceName)
	}
	if n.TLS.Enabled {
		if n.TLS.Reality != nil {
			q.Set("security", "reality")
			q.Set("pbk", n.TLS.Reality.PublicKey)
			q.Set("sid", n.TLS.Reality.ShortID)
			if n.TLS.Reality.SpiderX != "" {
				q.Set("spx", n.TLS.Reality.SpiderX)
			}
		} else {
			q.Set("security", "tls")
			if len(n.TLS.ALPN) > 0 {
				q.Set("alpn", strings.Join(n.TLS.ALPN, ","))
			}
		}
		if n.TLS.SNI != "" {
			q.Set("sni", n.TLS.SNI)
		}
		if n.TLS.Fingerprint != "" {
			q.Set("fp", n.TLS.Fingerprint)
		}
	}

	u := fmt.Sprintf("vless://%s@%s:%d?%s", n.VLESS.UUID, n.Host, n.Port, q.Encode())
	if n.Remark != "" {
		u += "#" + url.PathEscape(n.Remark)
	}
	return u, nil
}
