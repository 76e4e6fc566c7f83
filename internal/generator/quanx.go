package generator

import (
	"fmt"
	"strings"

	"github.com/relayforge/subconverter/internal/node"
)

// GenerateQuantumultX renders a QuantumultX server-list plus
// policy/filter sections.
func GenerateQuantumultX(in Input) (Result, error) {
	var b strings.Builder
	skipped := 0
	for _, n := range in.Nodes {
		line, ok := quanxLine(n)
		if !ok {
			skipped++
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n[policy]\n")
	for _, g := range in.Groups {
		fmt.Fprintf(&b, "static=%s, %s\n", g.Name, strings.Join(g.Members, ", "))
	}

	b.WriteString("\n[filter_remote]\n")
	for _, rs := range in.Rulesets {
		if rs.IsScript {
			continue
		}
		for _, line := range rs.Lines {
			fmt.Fprintf(&b, "%s,%s\n", line, rs.TargetGroup)
		}
	}

	return Result{Document: b.String(), Skipped: skipped}, nil
}

func quanxLine(n *node.Node) (string, bool) {
	var parts []string
	switch n.Kind {
	case node.Shadowsocks:
		if n.Shadowsocks == nil {
			return "", false
		}
		parts = []string{fmt.Sprintf("shadowsocks=%s:%d", n.Host, n.Port),
			"method=" + n.Shadowsocks.Method, "password=" + n.Shadowsocks.Password}
	case node.VMess:
		if n.VMess == nil {
			return "", false
		}
		parts = []string{fmt.Sprintf("vmess=%s:%d", n.Host, n.Port), "method=aes-128-gcm",
			"password=" + n.VMess.UUID}
		if n.Transport.Type == node.WS {
			parts = append(parts, "obfs=ws", "obfs-path="+n.Transport.Path)
		}
		if n.TLS.Enabled {
			parts = append(parts, "obfs-header=Host: "+n.TLS.SNI, "tls13="+boolStr(n.TLS13.Resolve(false)))
		}
	case node.Trojan:
		if n.Trojan == nil {
			return "", false
		}
		parts = []string{fmt.Sprintf("trojan=%s:%d", n.Host, n.Port), "password=" + n.Trojan.Password}
	case node.HTTP, node.HTTPS:
		parts = []string{fmt.Sprintf("http=%s:%d", n.Host, n.Port)}
		if n.UserPass != nil && n.UserPass.Username != "" {
			parts = append(parts, "username="+n.UserPass.Username, "password="+n.UserPass.Password)
		}
	case node.Socks5:
		parts = []string{fmt.Sprintf("socks5=%s:%d", n.Host, n.Port)}
		if n.UserPass != nil && n.UserPass.Username != "" {
			parts = append(parts, "username="+n.UserPass.Username, "password="+n.UserPass.Password)
		}
	default:
		return "", false
	}
	parts = append(parts, "fast-open="+boolStr(n.TFO.Resolve(false)), "tag="+n.Remark)
	return strings.Join(parts, ", "), true
}
