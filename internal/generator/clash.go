package generator

import (
	"gopkg.in/yaml.v3"

	"github.com/relayforge/subconverter/internal/node"
)

// GenerateClash renders a Clash YAML document: proxies, proxy-groups,
// and rules, honoring clash_use_new_field_name's Proxy/proxies switch.
func GenerateClash(in Input) (Result, error) {
	proxiesKey := "proxies"
	if !in.Eff.Render.ClashUseNewFieldName {
		proxiesKey = "Proxy"
	}

	var proxies []map[string]interface{}
	var names []string
	skipped := 0
	for _, n := range in.Nodes {
		p, ok := clashProxy(n)
		if !ok {
			skipped++
			continue
		}
		proxies = append(proxies, p)
		names = append(names, n.Remark)
	}

	var groups []map[string]interface{}
	for _, g := range in.Groups {
		gt := g.Type
		if gt == "" {
			gt = "select"
		}
		groups = append(groups, map[string]interface{}{
			"name":    g.Name,
			"type":    gt,
			"proxies": g.Members,
		})
	}

	var rules []string
	for _, rs := range in.Rulesets {
		if rs.IsScript {
			rules = append(rules, "SCRIPT-RULE,"+rs.Script)
			continue
		}
		for _, line := range rs.Lines {
			rules = append(rules, line+","+rs.TargetGroup)
		}
	}
	rules = append(rules, "MATCH,DIRECT")

	if in.BaseTemplate != "" {
		proxiesYAML, err := yaml.Marshal(proxies)
		if err != nil {
			return Result{}, err
		}
		groupsYAML, err := yaml.Marshal(groups)
		if err != nil {
			return Result{}, err
		}
		rulesYAML, err := yaml.Marshal(rules)
		if err != nil {
			return Result{}, err
		}
		expanded, err := expandTemplate(in, map[string]string{
			"proxies":      string(proxiesYAML),
			"proxy-groups": string(groupsYAML),
			"rules":        string(rulesYAML),
		})
		if err != nil {
			return Result{}, err
		}
		return Result{Document: expanded, Skipped: skipped}, nil
	}

	doc := map[string]interface{}{
		proxiesKey:     proxies,
		"proxy-groups": groups,
		"rules":        rules,
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return Result{}, err
	}
	return Result{Document: string(out), Skipped: skipped}, nil
}

func clashProxy(n *node.Node) (map[string]interface{}, bool) {
	base := map[string]interface{}{
		"name":   n.Remark,
		"server": n.Host,
		"port":   n.Port,
	}
	if n.Kind.SupportsUDP() {
		base["udp"] = n.UDP.Resolve(true)
	}

	switch n.Kind {
	case node.Shadowsocks:
		if n.Shadowsocks == nil {
			return nil, false
		}
		base["type"] = "ss"
		base["cipher"] = n.Shadowsocks.Method
		base["password"] = n.Shadowsocks.Password
		if p := n.Shadowsocks.Plugin; p != nil {
			base["plugin"] = p.Name
			base["plugin-opts"] = p.Options
		}
	case node.VMess:
		if n.VMess == nil {
			return nil, false
		}
		base["type"] = "vmess"
		base["uuid"] = n.VMess.UUID
		if n.VMess.AlterID != 0 {
			base["alterId"] = n.VMess.AlterID
		}
		base["cipher"] = n.VMess.Security
		applyClashTransport(base, n)
	case node.VLESS:
		if n.VLESS == nil {
			return nil, false
		}
		base["type"] = "vless"
		base["uuid"] = n.VLESS.UUID
		if n.VLESS.Flow != "" {
			base["flow"] = n.VLESS.Flow
		}
		applyClashTransport(base, n)
	case node.Trojan:
		if n.Trojan == nil {
			return nil, false
		}
		base["type"] = "trojan"
		base["password"] = n.Trojan.Password
		applyClashTransport(base, n)
	case node.HTTP, node.HTTPS:
		base["type"] = "http"
		if n.UserPass != nil {
			base["username"] = n.UserPass.Username
			base["password"] = n.UserPass.Password
		}
		base["tls"] = n.Kind == node.HTTPS
	case node.Socks5:
		base["type"] = "socks5"
		if n.UserPass != nil {
			base["username"] = n.UserPass.Username
			base["password"] = n.UserPass.Password
		}
	case node.Snell:
		if n.Snell == nil {
			return nil, false
		}
		base["type"] = "snell"
		base["psk"] = n.Snell.PSK
		base["version"] = n.Snell.Version
	case node.WireGuard:
		if n.WireGuard == nil {
			return nil, false
		}
		base["type"] = "wireguard"
		base["private-key"] = n.WireGuard.PrivateKey
		base["public-key"] = n.WireGuard.PeerPublicKey
		base["ip"] = firstOr(n.WireGuard.Addresses, "")
	case node.Hysteria2:
		if n.Hysteria2 == nil {
			return nil, false
		}
		base["type"] = "hysteria2"
		base["password"] = n.Hysteria2.Password
		if n.Hysteria2.Obfs != "" {
			base["obfs"] = n.Hysteria2.Obfs
		}
	default:
		return nil, false
	}

	if n.Kind.SupportsTLS() && n.TLS.Enabled {
		base["tls"] = true
		if n.TLS.SNI != "" {
			base["servername"] = n.TLS.SNI
		}
		if len(n.TLS.ALPN) > 0 {
			base["alpn"] = n.TLS.ALPN
		}
		base["skip-cert-verify"] = n.TLS.SkipCertVerify.Resolve(false)
	}
	return base, true
}

func applyClashTransport(base map[string]interface{}, n *node.Node) {
	switch n.Transport.Type {
	case node.WS:
		base["network"] = "ws"
		opts := map[string]interface{}{"path": n.Transport.Path}
		if n.Transport.Host != "" {
			opts["headers"] = map[string]string{"Host": n.Transport.Host}
		}
		base["ws-opts"] = opts
	case node.GRPC:
		base["network"] = "grpc"
		base["grpc-opts"] = map[string]interface{}{"grpc-service-name": n.Transport.ServiceName}
	case node.H2:
		base["network"] = "h2"
		base["h2-opts"] = map[string]interface{}{"path": n.Transport.Path, "host": []string{n.Transport.Host}}
	}
}

func firstOr(list []string, def string) string {
	if len(list) == 0 {
		return def
	}
	return list[0]
}
