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
	register(socksCodec{})
	register(httpCodec{kind: node.HTTP, scheme: "http"})
	register(httpCodec{kind: node.HTTPS, scheme: "https"})
}

func decodeUserPass(scheme, raw string, kind node.Kind, tlsFlag bool) (*node.Node, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme != scheme {
		return nil, &xerrors.ParseError{Format: scheme, Position: -1, Reason: "malformed " + scheme + " uri"}
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		return nil, &xerrors.ParseError{Format: scheme, Position: -1, Reason: "invalid host:port: " + err.Error()}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return nil, &xerrors.ParseError{Format: scheme, Position: -1, Reason: "invalid port"}
	}
	n := &node.Node{
		Kind:   kind,
		Host:   host,
		Port:   port,
		Remark: unescapeFragment(u.Fragment),
	}
	username := u.User.Username()
	password, _ := u.User.Password()
	if username != "" || password != "" {
		n.UserPass = &node.UserPassCreds{Username: username, Password: password}
	}
	if q := u.Query().Get("tls"); tlsFlag && (q == "1" || q == "true" || scheme == "https") {
		n.TLS.Enabled = true
		n.TLS.SNI = host
	}
	if err := n.Validate(); err != nil {
		return nil, &xerrors.ParseError{Format: scheme, Position: -1, Reason: err.Error()}
	}
	return n, nil
}

type socksCodec struct{}

func (socksCodec) Scheme() string { return "socks" }

// Decode parses socks://[user:pass@]host:port#remark.
func (socksCodec) Decode(raw string) (*node.Node, error) {
	return decodeUserPass("socks", raw, node.Socks5, false)
}

func (socksCodec) Encode(n *node.Node) (string, error) {
	return encodeUserPass("socks", n, node.Socks5, false)
}

type httpCodec struct {
	kind   node.Kind
	scheme string
}

func (c httpCodec) Scheme() string { return c.scheme }

// Decode parses http(s)://[user:pass@]host:port?tls=1#remark; HTTPS
// always implies TLS, HTTP honors an optional tls query flag.
func (c httpCodec) Decode(raw string) (*node.Node, error) {
	return decodeUserPass(c.scheme, raw, c.kind, true)
}

func (c httpCodec) Encode(n *node.Node) (string, error) {
	return encodeUserPass(c.scheme, n, c.kind, n.TLS.Enabled)
}

func encodeUserPass(scheme string, n *node.Node, kind node.Kind, tls bool) (string, error) {
	if n.Kind != kind {
		return "", &xerrors.ParseError{Format: scheme, Position: -1, Reason: "kind mismatch"}
	}
	userInfo := ""
	if n.UserPass != nil && (n.UserPass.Username != "" || n.UserPass.Password != "") {
		userInfo = url.UserPassword(n.UserPass.Username, n.UserPass.Password).String() + "@"
	}
	u := fmt.Sprintf("%s://%s%s:%d", scheme, userInfo, n.Host, n.Port)
	if scheme == "http" && tls {
		u += "?tls=1"
	}
	if n.Remark != "" {
		u += "#" + url.PathEscape(n.Remark)
	}
	return u, nil
}
