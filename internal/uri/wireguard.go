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
	register(wireguardCodec{})
}

type wireguardCodec struct{}

func (wireguardCodec) Scheme() string { return "wg" }

// Decode parses wg://privatekey@host:port?publickey=&address=&dns=&mtu=&presharedkey=,
// a custom encoding for a single peer; address and dns are
// comma-separated. Other query keys (such as reserved) are ignored.
func (wireguardCodec) Decode(raw string) (*node.Node, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme != "wg" {
		return nil, &xerrors.ParseError{Format: "wg", Position: -1, Reason: "malformed wg uri"}
	}
	privateKey := u.User.Username()
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		return nil, &xerrors.ParseError{Format: "wg", Position: -1, Reason: "invalid host:port: " + err.Error()}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return nil, &xerrors.ParseError{Format: "wg", Position: -1, Reason: "invalid port"}
	}
	q := u.Query()
	addresses := splitNonEmpty(q.Get("address"), ",")

	n := &node.Node{
		Kind:   node.WireGuard,
		Host:   host,
		Port:   port,
		Remark: unescapeFragment(u.Fragment),
		WireGuard: &node.WireGuardCreds{
			PrivateKey:    privateKey,
			PeerPublicKey: q.Get("publickey"),
			PreSharedKey:  q.Get("presharedkey"),
			Addresses:     addresses,
			DNS:           splitNonEmpty(q.Get("dns"), ","),
			MTU:           atoiOr0(q.Get("mtu")),
		},
	}
	if err := n.Validate(); err != nil {
		return nil, &xerrors.ParseError{Format: "wg", Position: -1, Reason: err.Error()}
	}
	return n, nil
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (wireguardCodec) Encode(n *node.Node) (string, error) {
	if n.Kind != node.WireGuard || n.WireGuard == nil {
		return "", &xerrors.ParseError{Format: "wg", Position: -1, Reason: "not a wireguard node"}
	}
	q := url.Values{}
	q.Set("publickey", n.WireGuard.PeerPublicKey)
	if n.WireGuard.PreSharedKey != "" {
		q.Set("presharedkey", n.WireGuard.PreSharedKey)
	}
	q.Set("address", strings.Join(n.WireGuard.Addresses, ","))
	if len(n.WireGuard.DNS) > 0 {
		q.Set("dns", strings.Join(n.WireGuard.DNS, ","))
	}
	if n.WireGuard.MTU > 0 {
		q.Set("mtu", strconv.Itoa(n.WireGuard.MTU))
	}
	u := fmt.Sprintf("wg://%s@%s:%d?%s", n.WireGuard.PrivateKey, n.Host, n.Port, q.Encode())
	if n.Remark != "" {
		u += "#" + url.PathEscape(n.Remark)
	}
	return u, nil
}
