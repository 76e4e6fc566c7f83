package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/relayforge/subconverter/internal/node"
)

// GenerateSurge renders a Surge INI-like document: [Proxy], [Proxy
// Group], [Rule] sections. Version 2/3/4 gate which kinds and
// parameters are available; SSR degrades to an
// ssr-local external-proxy line since Surge has no native SSR client.
func GenerateSurge(in Input) (Result, error) {
	version := in.Eff.Render.SurgeVersion
	if version == 0 {
		version = 4
	}

	var proxies, groups, rules strings.Builder
	skipped := 0
	for _, n := range in.Nodes {
		line, ok := surgeProxyLine(n, version)
		if !ok {
			skipped++
			continue
		}
		proxies.WriteString(line)
		proxies.WriteString("\n")
	}

	for _, g := range in.Groups {
		gt := surgeGroupType(g.Type)
		fmt.Fprintf(&groups, "%s = %s, %s\n", g.Name, gt, strings.Join(g.Members, ", "))
	}

	for _, rs := range in.Rulesets {
		if rs.IsScript {
			continue // Surge rule section has no opaque-script form
		}
		for _, line := range rs.Lines {
			fmt.Fprintf(&rules, "%s,%s\n", line, rs.TargetGroup)
		}
	}
	rules.WriteString("FINAL,DIRECT\n")

	if in.BaseTemplate != "" {
		expanded, err := expandTemplate(in, map[string]string{
			"proxies": proxies.String(),
			"groups":  groups.String(),
			"rules":   rules.String(),
		})
		if err != nil {
			return Result{}, err
		}
		return Result{Document: expanded, Skipped: skipped}, nil
	}

	var b strings.Builder
	b.WriteString("[Proxy]\n")
	b.WriteString(proxies.String())
	b.WriteString("\n[Proxy Group]\n")
	b.WriteString(groups.String())
	b.WriteString("\n[Rule]\n")
	b.WriteString(rules.String())

	return Result{Document: b.String(), Skipped: skipped}, nil
}

func surgeGroupType(t string) string {
	switch t {
	case "url-test":
		return "url-test"
	case "fallback":
		return "fallback"
	case "load-balance":
		return "load-balance"
	default:
		return "select"
	}
}

func surgeProxyLine(n *node.Node, version int) (string, bool) {
	var parts []string
	switch n.Kind {
	case node.Shadowsocks:
		if n.Shadowsocks == nil {
			return "", false
		}
		parts = []string{"ss", n.Host, strconv.Itoa(n.Port),
			"encrypt-method=" + n.Shadowsocks.Method, "password=" + n.Shadowsocks.Password}
	case node.ShadowsocksR:
		// Surge has no native SSR; degrade to an external ssr-local binary
		// line, leaving the binary path for the operator
		// to fill in.
		if n.ShadowsocksR == nil {
			return "", false
		}
		parts = []string{"external", n.Host, strconv.Itoa(n.Port),
			"exec = \"/usr/local/bin/ssr-local\"",
			fmt.Sprintf("args = -s %s -p %d -m %s -k %s -O %s -o %s",
				n.Host, n.Port, n.ShadowsocksR.Method, n.ShadowsocksR.Password, n.ShadowsocksR.Protocol, n.ShadowsocksR.Obfs)}
	case node.VMess:
		if n.VMess == nil {
			return "", false
		}
		parts = []string{"vmess", n.Host, strconv.Itoa(n.Port), "username=" + n.VMess.UUID}
		if n.TLS.Enabled {
			parts = append(parts, "tls=true")
		}
		if n.Transport.Type == node.WS {
			parts = append(parts, "ws=true", "ws-path="+n.Transport.Path)
		}
	case node.Trojan:
		if n.Trojan == nil {
			return "", false
		}
		parts = []string{"trojan", n.Host, strconv.Itoa(n.Port), "password=" + n.Trojan.Password}
	case node.HTTP, node.HTTPS:
		parts = []string{"http", n.Host, strconv.Itoa(n.Port)}
		if n.UserPass != nil && n.UserPass.Username != "" {
			parts = append(parts, "username="+n.UserPass.Username, "password="+n.UserPass.Password)
		}
		if n.Kind == node.HTTPS {
			parts = append(parts, "tls=true")
		}
	case node.Socks5:
		if version < 4 {
			return "", false
		}
		parts = []string{"socks5", n.Host, strconv.Itoa(n.Port)}
		if n.UserPass != nil && n.UserPass.Username != "" {
			parts = append(parts, "username="+n.UserPass.Username, "password="+n.UserPass.Password)
		}
	case node.Snell:
		if version < 3 || n.Snell == nil {
			return "", false
		}
		parts = []string{"snell", n.Host, strconv.Itoa(n.Port), "psk=" + n.Snell.PSK,
			"version=" + strconv.Itoa(n.Snell.Version)}
	case node.Hysteria2:
		if version < 4 || n.Hysteria2 == nil {
			return "", false
		}
		parts = []string{"hysteria2", n.Host, strconv.Itoa(n.Port), "password=" + n.Hysteria2.Password}
	default:
		return "", false
	}

	if n.Kind.SupportsUDP() {
		parts = append(parts, "udp-relay="+boolStr(n.UDP.Resolve(false)))
	}
	if n.TFO != node.Unset {
		parts = append(parts, "tfo="+boolStr(n.TFO.Resolve(false)))
	}
	return n.Remark + " = " + strings.Join(parts, ", "), true
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
