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
	register(hysteriaCodec{})
	register(hysteria2Codec{})
}

type hysteriaCodec struct{}

func (hysteriaCodec) Scheme() string { return "hysteria" }

// Decode parses hysteria://host:port?auth=&obfs=&upmbps=&downmbps=&peer=...
// Hysteria v1 distinguishes `auth` from the v2 `password`.
func (hysteriaCodec) Decode(raw string) (*node.Node, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme != "hysteria" {
		return nil, &xerrors.ParseError{Format: "hysteria", Position: -1, Reason: "malformed hysteria uri"}
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		return nil, &xerrors.ParseError{Format: "hysteria", Position: -1, Reason: "invalid host:port: " + err.Error()}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return nil, &xerrors.ParseError{Format: "hysteria", Position: -1, Reason: "invalid port"}
	}
	q := u.Query()
	n := &node.Node{
		Kind: node.Hysteria,
		Host: host,
		Port: port,
		Hysteria: &node.HysteriaCreds{
			Auth:     q.Get("auth"),
			Obfs:     q.Get("obfs"),
			UpMbps:   atoiOr0(q.Get("upmbps")),
			DownMbps: atoiOr0(q.Get("downmbps")),
		},
		Remark: unescapeFragment(u.Fragment),
		TLS:    node.TLS{Enabled: true},
	}
	sni := q.Get("peer")
	if sni == "" {
		sni = q.Get("sni")
	}
	if sni == "" {
		sni = host
	}
	n.TLS.SNI = sni
	if alpn := q.Get("alpn"); alpn != "" {
		n.TLS.ALPN = strings.Split(alpn, ",")
	}

	if err := n.Validate(); err != nil {
		return nil, &xerrors.ParseError{Format: "hysteria", Position: -1, Reason: err.Error()}
	}
	return n, nil
}

func (hysteriaCodec) Encode(n *node.Node) (string, error) {
	if n.Kind != node.Hysteria || n.Hysteria == nil {
		return "", &xerrors.ParseError{Format: "hysteria", Position: -1, Reason: "not a hysteria node"}
	}
	q := url.Values{}
	q.Set("auth", n.Hysteria.Auth)
	if n.Hysteria.Obfs != "" {
		q.Set("obfs", n.Hysteria.Obfs)
	}
	if n.Hysteria.UpMbps > 0 {
		q.Set("upmbps", strconv.Itoa(n.Hysteria.UpMbps))
	}
	if n.Hysteria.DownMbps > 0 {
		q.Set("downmbps", strconv.Itoa(n.Hysteria.DownMbps))
	}
	if n.TLS.SNI != "" {
		q.Set("peer", n.TLS.SNI)
	}
	u := fmt.Sprintf("hysteria://%s:%d?%s", n.Host, n.Port, q.Encode())
	if n.Remark != "" {
		u += "#" + url.PathEscape(n.Remark)
	}
	return u, nil
}

type hysteria2Codec struct{}

func (hysteria2Codec) Scheme() string { return "hysteria2" }

// Decode parses hysteria2://password@host:port?obfs=&obfs-password=&sni=...
func (hysteria2Codec) Decode(raw string) (*node.Node, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme != "hysteria2" {
		return nil, &xerrors.ParseError{Format: "hysteria2", Position: -1, Reason: "malformed hysteria2 uri"}
	}
	password := u.User.Username()
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		return nil, &xerrors.ParseError{Format: "hysteria2", Position: -1, Reason: "invalid host:port: " + err.Error()}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return nil, &xerrors.ParseError{Format: "hysteria2", Position: -1, Reason: "invalid port"}
	}
	q := u.Query()
	n := &node.Node{
		Kind: node.Hysteria2,
		Host: host,
		Port: port,
		Hysteria2: &node.Hysteria2Creds{
			Password:     password,
			Obfs:         q.Get("obfs"),
			ObfsPassword: q.Get("obfs-password"),
			UpMbps:       atoiOr0(q.Get("up")),
			DownMbps:     atoiOr0(q.Get("down")),
		},
		Remark: unescapeFragment(u.Fragment),
		TLS:    node.TLS{Enabled: true},
	}
	sni := q.Get("sni")
	if sni == "" {
		sni = host
	}
	n.TLS.SNI = sni
	n.TLS.SkipCertVerify = node.FromBoolPtr(boolPtr(q.Get("insecure")))

	if err := n.Validate(); err != nil {
		return nil, &xerrors.ParseError{Format: "hysteria2", Position: -1, Reason: err.Error()}
	}
	return n, nil
}

func (hysteria2Codec) Encode(n *node.Node) (string, error) {
	if n.Kind != node.Hysteria2 || n.Hysteria2 == nil {
		return "", &xerrors.ParseError{Format: "hysteria2", Position: -1, Reason: "not a hysteria2 node"}
	}
	q := url.Values{}
	if n.Hysteria2.Obfs != "" {
		q.Set("obfs", n.Hysteria2.Obfs)
		q.Set("obfs-password", n.Hysteria2.ObfsPassword)
	}
	if n.TLS.SNI != "" {
		q.Set("sni", n.TLS.SNI)
	}
	if n.TLS.SkipCertVerify == node.True {
		q.Set("insecure", "1")
	}
	u := fmt.Sprintf("hysteria2://%s@%s:%d?%s", n.Hysteria2.Password, n.Host, n.Port, q.Encode())
	if n.Remark != "" {
		u += "#" + url.PathEscape(n.Remark)
	}
	return u, nil
}

func atoiOr0(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func boolPtr(s string) *bool {
	if s == "" {
		return nil
	}
	v := s == "1" || s == "true"
	return &v
}
