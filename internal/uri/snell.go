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
	register(snellCodec{})
}

type snellCodec struct{}

func (snellCodec) Scheme() string { return "snell" }

// Decode parses snell://psk@host:port?version=&obfs=&obfs-host=#remark.
func (snellCodec) Decode(raw string) (*node.Node, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme != "snell" {
		return nil, &xerrors.ParseError{Format: "snell", Position: -1, Reason: "malformed snell uri"}
	}
	psk := u.User.Username()
	if psk == "" {
		return nil, &xerrors.ParseError{Format: "snell", Position: -1, Reason: "missing psk"}
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		return nil, &xerrors.ParseError{Format: "snell", Position: -1, Reason: "invalid host:port: " + err.Error()}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return nil, &xerrors.ParseError{Format: "snell", Position: -1, Reason: "invalid port"}
	}
	q := u.Query()
	version := atoiOr0(q.Get("version"))
	if version == 0 {
		version = 3
	}
	n := &node.Node{
		Kind:   node.Snell,
		Host:   host,
		Port:   port,
		Remark: unescapeFragment(u.Fragment),
		Snell: &node.SnellCreds{
			PSK:     psk,
			Version: version,
		},
	}
	if obfs := q.Get("obfs"); obfs != "" {
		n.Transport = node.Transport{
			Type: node.TCP,
			Host: q.Get("obfs-host"),
		}
		n.Transport.HeaderType = obfs
	}
	if err := n.Validate(); err != nil {
		return nil, &xerrors.ParseError{Format: "snell", Position: -1, Reason: err.Error()}
	}
	return n, nil
}

func (snellCodec) Encode(n *node.Node) (string, error) {
	if n.Kind != node.Snell || n.Snell == nil {
		return "", &xerrors.ParseError{Format: "snell", Position: -1, Reason: "not a snell node"}
	}
	q := url.Values{}
	q.Set("version", strconv.Itoa(n.Snell.Version))
	if n.Transport.HeaderType != "" {
		q.Set("obfs", n.Transport.HeaderType)
		if n.Transport.Host != "" {
			q.Set("obfs-host", n.Transport.Host)
		}
	}
	u := fmt.Sprintf("snell://%s@%s:%d?%s", n.Snell.PSK, n.Host, n.Port, q.Encode())
	if n.Remark != "" {
		u += "#" + url.PathEscape(n.Remark)
	}
	return u, nil
}
