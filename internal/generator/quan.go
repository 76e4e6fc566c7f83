package generator

import (
	"fmt"
	"strings"

	"github.com/relayforge/subconverter/internal/node"
)

// GenerateQuantumult renders the classic Quantumult `scheme=host:port,
// k=v` server-list grammar, a narrower subset than QuantumultX:
// shadowsocks and vmess only.
func GenerateQuantumult(in Input) (Result, error) {
	var b strings.Builder
	skipped := 0
	for _, n := range in.Nodes {
		line, ok := quanClassicLine(n)
		if !ok {
			skipped++
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return Result{Document: b.String(), Skipped: skipped}, nil
}

func quanClassicLine(n *node.Node) (string, bool) {
	switch n.Kind {
	case node.Shadowsocks:
		if n.Shadowsocks == nil {
			return "", false
		}
		line := fmt.Sprintf("shadowsocks=%s:%d, method=%s, password=%s, tag=%s",
			n.Host, n.Port, n.Shadowsocks.Method, n.Shadowsocks.Password, n.Remark)
		if p := n.Shadowsocks.Plugin; p != nil && p.Name == "obfs-local" {
			line += fmt.Sprintf(", obfs=%s", p.Options["obfs"])
		}
		return line, true
	case node.VMess:
		if n.VMess == nil {
			return "", false
		}
		line := fmt.Sprintf("vmess=%s:%d, method=aes-128-gcm, password=%s, tag=%s",
			n.Host, n.Port, n.VMess.UUID, n.Remark)
		if n.Transport.Type == node.WS {
			line += fmt.Sprintf(", obfs=ws, obfs-path=%s", n.Transport.Path)
			if n.TLS.Enabled {
				line += ", obfs=wss"
			}
		}
		return line, true
	default:
		return "", false
	}
}
