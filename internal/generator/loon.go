package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/relayforge/subconverter/internal/node"
)

// GenerateLoon renders a Loon [Proxy] INI-like document: shadowsocks,
// vmess, trojan, http(s), socks5, wireguard.
func GenerateLoon(in Input) (Result, error) {
	var b strings.Builder
	b.WriteString("[Proxy]\n")
	skipped := 0
	for _, n := range in.Nodes {
		line, ok := loonLine(n)
		if !ok {
			skipped++
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n[Proxy Group]\n")
	for _, g := range in.Groups {
		fmt.Fprintf(&b, "%s = %s, %s\n", g.Name, surgeGroupType(g.Type), strings.Join(g.Members, ", "))
	}
	return Result{Document: b.String(), Skipped: skipped}, nil
}

func loonLine(n *node.Node) (string, bool) {
	var parts []string
	switch n.Kind {
	case node.Shadowsocks:
		if n.Shadowsocks == nil {
			return "", false
		}
		parts = []string{"shadowsocks", n.Host, strconv.Itoa(n.Port), n.Shadowsocks.Method, n.Shadowsocks.Password}
	case node.VMess:
		if n.VMess == nil {
			return "", false
		}
		parts = []string{"vmess", n.Host, strconv.Itoa(n.Port), "\"" + n.VMess.UUID + "\""}
		if n.TLS.Enabled {
			parts = append(parts, "over-tls=true", "tls-name="+n.TLS.SNI)
		}
		if n.Transport.Type == node.WS {
			parts = append(parts, "transport=ws", "path="+n.Transport.Path)
		}
	case node.Trojan:
		if n.Trojan == nil {
			return "", false
		}
		parts = []string{"trojan", n.Host, strconv.Itoa(n.Port), "\"" + n.Trojan.Password + "\""}
	case node.HTTP, node.HTTPS:
		parts = []string{"http", n.Host, strconv.Itoa(n.Port)}
		if n.Kind == node.HTTPS {
			parts = append(parts, "over-tls=true")
		}
	case node.Socks5:
		parts = []string{"socks5", n.Host, strconv.Itoa(n.Port)}
	case node.WireGuard:
		if n.WireGuard == nil {
			return "", false
		}
		parts = []string{"wireguard", "interface-ip=" + firstOr(n.WireGuard.Addresses, ""),
			"private-key=\"" + n.WireGuard.PrivateKey + "\"",
			fmt.Sprintf("peers=[{public-key=\"%s\",endpoint=%s:%d}]", n.WireGuard.PeerPublicKey, n.Host, n.Port)}
	default:
		return "", false
	}
	return n.Remark + " = " + strings.Join(parts, ","), true
}
