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
	register(trojanCodec{})
}

type trojanCodec struct{}

func (trojanCodec) Scheme() string { return "trojan" }

// Decode parses trojan://password@host:port?sni=&alpn=&type=...#remark.
func (trojanCodec) Decode(raw string) (*node.Node, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme != "trojan" {
		return nil, &xerrors.ParseError{Format: "trojan", Position: -1, Reason: "malformed trojan uri"}
	}
	password := u.User.Username()
	if password == "" {
		return nil, &xerrors.ParseError{Format: "trojan", Position: -1, Reason: "missing password"}
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		return nil, &xerrors.ParseError{Format: "trojan", Position: -1, Reason: "invalid host:port: " + err.Error()}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return nil, &xerrors.ParseError{Format: "trojan", Position: -1, Reason: "invalid port"}
	}

	q := u.Query()
	n := &node.Node{
		Kind:   node.Trojan,
		Host:   host,
		Port:   port,
		Trojan: &node.TrojanCreds{Password: password},
		Remark: unescapeFragment(u.Fragment),
		TLS:    node.TLS{Enabled: true}, // Trojan always rides TLS
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
	}

	sni := q.Get("sni")
	if sni == "" {
		sni = host
	}
	n.TLS.SNI = sni
	if alpn := q.Get("alpn"); alpn != "" {
		n.TLS.ALPN = strings.Split(alpn, ",")
	}
	n.TLS.Fingerprint = q.Get("fp")

	if err := n.Validate(); err != nil {
		return nil, &xerrors.ParseError{Format: "trojan", Position: -1, Reason: err.Error()}
	}
	return n, nil
}

func (trojanCodec) Encode(n *node.Node) (string, error) {
	if n.Kind != node.Trojan || n.Trojan == nil {
		return "", &xerrors.ParseError{Format: "trojan", Position: -1, Reason: "not a trojan node"}
	}
	q := url.Values{}
	if n.TLS.SNI != "" {
		q.Set("sni", n.TLS.SNI)
	}
	if len(n.TLS.ALPN) > 0 {
		q.Set("alpn", strings.Join(n.TLS.ALPN, ","))
	}
	if n.Transport.Type != "" && n.Transport.Type != node.TCP {
		q.Set("type", string(n.Transport.Type))
	}
	if n.Transport.Path != "" {
		q.Set("path", n.Transport.Path)
	}
	u := fmt.Sprintf("trojan://%s@%s:%d?%s", n.Trojan.Password, n.Host, n.Port, q.Encode())
	if n.Remark != "" {
		u += "#" + url.PathEscape(n.Remark)
	}
	return u, nil
}
