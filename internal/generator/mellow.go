package generator

import (
	"fmt"
	"strings"

	"github.com/relayforge/subconverter/internal/node"
)

// GenerateMellow renders Mellow's `[[Endpoints]]` TOML-like block list,
// its narrowest supported subset: shadowsocks, http(s), socks5.
func GenerateMellow(in Input) (Result, error) {
	var b strings.Builder
	skipped := 0
	for _, n := range in.Nodes {
		block, ok := mellowBlock(n)
		if !ok {
			skipped++
			continue
		}
		b.WriteString(block)
		b.WriteString("\n")
	}
	return Result{Document: b.String(), Skipped: skipped}, nil
}

func mellowBlock(n *node.Node) (string, bool) {
	switch n.Kind {
	case node.Shadowsocks:
		if n.Shadowsocks == nil {
			return "", false
		}
		return fmt.Sprintf("[[Endpoints]]\nTag = %q\nProtocol = \"ss\"\nAddress = %q\nMethod = %q\nPassword = %q\n",
			n.Remark, fmt.Sprintf("%s:%d", n.Host, n.Port), n.Shadowsocks.Method, n.Shadowsocks.Password), true
	case node.HTTP, node.HTTPS:
		return fmt.Sprintf("[[Endpoints]]\nTag = %q\nProtocol = \"http\"\nAddress = %q\n",
			n.Remark, fmt.Sprintf("%s:%d", n.Host, n.Port)), true
	case node.Socks5:
		return fmt.Sprintf("[[Endpoints]]\nTag = %q\nProtocol = \"socks5\"\nAddress = %q\n",
			n.Remark, fmt.Sprintf("%s:%d", n.Host, n.Port)), true
	default:
		return "", false
	}
}
