package document

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/xerrors"
)

func init() {
	register(clashParser{})
}

type clashParser struct{}

func (clashParser) Name() string { return "clash" }

// Sniff matches the Clash auto-detect rule: begins with "proxies:" or
// is a YAML mapping containing a "proxies" key.
func (clashParser) Sniff(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if bytes.HasPrefix(trimmed, []byte("proxies:")) {
		return true
	}
	var probe map[string]interface{}
	if err := yaml.Unmarshal(raw, &probe); err != nil {
		return false
	}
	_, hasNew := probe["proxies"]
	_, hasOld := probe["Proxy"]
	return hasNew || hasOld
}

func (clashParser) Parse(raw []byte, group string) (Result, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Result{}, &xerrors.ParseError{Format: "clash", Position: -1, Reason: "invalid yaml: " + err.Error()}
	}

	rawProxies, ok := doc["proxies"]
	if !ok {
		rawProxies, ok = doc["Proxy"]
	}
	if !ok {
		return Result{}, &xerrors.ParseError{Format: "clash", Position: -1, Reason: "missing proxies/Proxy key"}
	}
	list, ok := rawProxies.([]interface{})
	if !ok {
		return Result{}, &xerrors.ParseError{Format: "clash", Position: -1, Reason: "proxies is not a list"}
	}

	var res Result
	for i, item := range list {
		m, ok := toStringMap(item)
		if !ok {
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("proxies[%d] is not a mapping", i)))
			continue
		}
		n, warn, err := clashProxyToNode(m, group)
		if err != nil {
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("proxies[%d]: %v", i, err)))
			continue
		}
		if warn != "" {
			res.Warnings = append(res.Warnings, partial(group, warn))
		}
		res.Nodes = append(res.Nodes, n)
	}
	return res, nil
}

// toStringMap normalizes a yaml-decoded map[interface{}]interface{} or
// map[string]interface{} to map[string]interface{}.
func toStringMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[fmt.Sprintf("%v", k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

func str(m map[string]interface{}, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func boolOf(m map[string]interface{}, key string) bool {
	v, ok := m[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

func triOf(m map[string]interface{}, key string) node.TriState {
	v, ok := m[key]
	if !ok || v == nil {
		return node.Unset
	}
	b, ok := v.(bool)
	if !ok {
		return node.Unset
	}
	if b {
		return node.True
	}
	return node.False
}

func intOf(m map[string]interface{}, key string) int {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		n, _ := strconv.Atoi(t)
		return n
	default:
		return 0
	}
}

func clashProxyToNode(m map[string]interface{}, group string) (*node.Node, string, error) {
	typ := strings.ToLower(str(m, "type"))
	n := &node.Node{
		Remark: str(m, "name"),
		Group:  group,
		Host:   str(m, "server"),
		Port:   intOf(m, "port"),
		UDP:    triOf(m, "udp"),
	}

	switch typ {
	case "ss":
		n.Kind = node.Shadowsocks
		n.Shadowsocks = &node.ShadowsocksCreds{
			Method:   str(m, "cipher"),
			Password: str(m, "password"),
		}
		if pluginName := str(m, "plugin"); pluginName != "" {
			opts := map[string]string{}
			if po, ok := toStringMap(m["plugin-opts"]); ok {
				for k, v := range po {
					opts[k] = fmt.Sprintf("%v", v)
				}
			}
			n.Shadowsocks.Plugin = &node.Plugin{Name: pluginName, Options: opts}
		}
	case "ssr":
		n.Kind = node.ShadowsocksR
		n.ShadowsocksR = &node.ShadowsocksRCreds{
			Method:       str(m, "cipher"),
			Password:     str(m, "password"),
			Protocol:     str(m, "protocol"),
			ProtocolParm: str(m, "protocol-param"),
			Obfs:         str(m, "obfs"),
			ObfsParam:    str(m, "obfs-param"),
		}
	case "vmess":
		n.Kind = node.VMess
		security := str(m, "cipher")
		if security == "" {
			security = "auto"
		}
		n.VMess = &node.VMessCreds{
			UUID:     str(m, "uuid"),
			AlterID:  intOf(m, "alterId"),
			Security: security,
		}
		applyClashTransportAndTLS(m, n)
	case "vless":
		n.Kind = node.VLESS
		n.VLESS = &node.VLESSCreds{
			UUID: str(m, "uuid"),
			Flow: str(m, "flow"),
		}
		applyClashTransportAndTLS(m, n)
	case "trojan":
		n.Kind = node.Trojan
		n.Trojan = &node.TrojanCreds{Password: str(m, "password")}
		n.TLS.Enabled = true
		applyClashTransportAndTLS(m, n)
	case "http":
		if boolOf(m, "tls") {
			n.Kind = node.HTTPS
			n.TLS.Enabled = true
		} else {
			n.Kind = node.HTTP
		}
		n.UserPass = &node.UserPassCreds{Username: str(m, "username"), Password: str(m, "password")}
	case "socks5":
		n.Kind = node.Socks5
		n.UserPass = &node.UserPassCreds{Username: str(m, "username"), Password: str(m, "password")}
	case "hysteria":
		n.Kind = node.Hysteria
		n.Hysteria = &node.HysteriaCreds{Auth: str(m, "auth-str"), Obfs: str(m, "obfs")}
		n.TLS.Enabled = true
		n.TLS.SNI = str(m, "sni")
	case "hysteria2":
		n.Kind = node.Hysteria2
		n.Hysteria2 = &node.Hysteria2Creds{Password: str(m, "password"), Obfs: str(m, "obfs"), ObfsPassword: str(m, "obfs-password")}
		n.TLS.Enabled = true
		n.TLS.SNI = str(m, "sni")
	case "snell":
		n.Kind = node.Snell
		n.Snell = &node.SnellCreds{PSK: str(m, "psk"), Version: intOf(m, "version")}
	case "wireguard":
		n.Kind = node.WireGuard
		n.WireGuard = &node.WireGuardCreds{
			PrivateKey:    str(m, "private-key"),
			PeerPublicKey: str(m, "public-key"),
			Addresses:     splitCSV(str(m, "ip")),
		}
		if ipv6 := str(m, "ipv6"); ipv6 != "" {
			n.WireGuard.Addresses = append(n.WireGuard.Addresses, ipv6)
		}
	default:
		return nil, "", fmt.Errorf("unsupported clash proxy type %q", typ)
	}

	if n.TLS.Enabled {
		n.TLS.SkipCertVerify = triOf(m, "skip-cert-verify")
		n.TLS.TLS13 = triOf(m, "tls13")
	}

	if err := n.Validate(); err != nil {
		return nil, "", err
	}
	return n, "", nil
}

func applyClashTransportAndTLS(m map[string]interface{}, n *node.Node) {
	network := strings.ToLower(str(m, "network"))
	if network == "" {
		network = "tcp"
	}
	n.Transport.Type = node.TransportType(network)

	switch network {
	case "ws":
		if wo, ok := toStringMap(m["ws-opts"]); ok {
			n.Transport.Path = str(wo, "path")
			if headers, ok := toStringMap(wo["headers"]); ok {
				n.Transport.Host = str(headers, "Host")
			}
		}
	case "grpc":
		if go_, ok := toStringMap(m["grpc-opts"]); ok {
			n.Transport.ServiceName = str(go_, "grpc-service-name")
		}
	case "h2":
		if ho, ok := toStringMap(m["h2-opts"]); ok {
			n.Transport.Path = str(ho, "path")
			if hosts, ok := ho["host"].([]interface{}); ok && len(hosts) > 0 {
				n.Transport.Host = fmt.Sprintf("%v", hosts[0])
			}
		}
	}

	if boolOf(m, "tls") {
		n.TLS.Enabled = true
	}
	if sni := str(m, "servername"); sni != "" {
		n.TLS.SNI = sni
	} else if n.TLS.Enabled && n.TLS.SNI == "" {
		n.TLS.SNI = n.Transport.Host
	}
	if alpn, ok := m["alpn"].([]interface{}); ok {
		for _, a := range alpn {
			n.TLS.ALPN = append(n.TLS.ALPN, fmt.Sprintf("%v", a))
		}
	}
	if fp := str(m, "client-fingerprint"); fp != "" {
		n.TLS.Fingerprint = fp
	}
	if ro, ok := toStringMap(m["reality-opts"]); ok {
		n.TLS.Enabled = true
		n.TLS.Reality = &node.Reality{
			PublicKey: str(ro, "public-key"),
			ShortID:   str(ro, "short-id"),
		}
	}
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
