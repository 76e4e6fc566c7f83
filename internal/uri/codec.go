// Package uri implements the single-URI codecs: one (Decode, Encode)
// pair per scheme, tolerant of benign whitespace, reporting malformed
// input via xerrors.ParseError, never panicking.
package uri

import (
	"strings"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/xerrors"
)

// Codec decodes and re-encodes the single-URI form of one scheme.
type Codec interface {
	Scheme() string
	Decode(raw string) (*node.Node, error)
	Encode(n *node.Node) (string, error)
}

var registry = map[string]Codec{}

func register(c Codec) {
	registry[c.Scheme()] = c
}

// Registry exposes the scheme -> codec map that Decode, Encode and
// Lookup dispatch through.
func Registry() map[string]Codec {
	return registry
}

// Lookup returns the codec for a scheme prefix, if any.
func Lookup(scheme string) (Codec, bool) {
	c, ok := registry[scheme]
	return c, ok
}

// DetectScheme returns the scheme prefix of a URI-shaped string, or ""
// if none of the registered schemes match.
func DetectScheme(raw string) string {
	raw = strings.TrimSpace(raw)
	for scheme := range registry {
		if strings.HasPrefix(raw, scheme+"://") {
			return scheme
		}
	}
	return ""
}

// Decode dispatches to the codec matching raw's scheme.
func Decode(raw string) (*node.Node, error) {
	raw = strings.TrimSpace(raw)
	scheme := DetectScheme(raw)
	if scheme == "" {
		return nil, &xerrors.ParseError{Format: "uri", Position: -1, Reason: "unrecognized scheme"}
	}
	c := registry[scheme]
	return c.Decode(raw)
}

// Encode dispatches to the codec matching n.Kind, returning an error if
// the kind has no canonical single-URI form.
func Encode(n *node.Node) (string, error) {
	scheme, ok := schemeForKind(n.Kind)
	if !ok {
		return "", &xerrors.ParseError{Format: "uri", Position: -1, Reason: "kind has no URI scheme: " + string(n.Kind)}
	}
	c, ok := registry[scheme]
	if !ok {
		return "", &xerrors.ParseError{Format: "uri", Position: -1, Reason: "no codec registered for scheme: " + scheme}
	}
	return c.Encode(n)
}

func schemeForKind(k node.Kind) (string, bool) {
	switch k {
	case node.Shadowsocks:
		return "ss", true
	case node.ShadowsocksR:
		return "ssr", true
	case node.VMess:
		return "vmess", true
	case node.VLESS:
		return "vless", true
	case node.Trojan:
		return "trojan", true
	case node.Hysteria:
		return "hysteria", true
	case node.Hysteria2:
		return "hysteria2", true
	case node.WireGuard:
		return "wg", true
	case node.Snell:
		return "snell", true
	case node.HTTP:
		return "http", true
	case node.HTTPS:
		return "https", true
	case node.Socks5:
		return "socks", true
	default:
		return "", false
	}
}
