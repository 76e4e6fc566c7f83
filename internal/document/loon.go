package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/xerrors"
)

func init() {
	register(loonParser{})
}

// loonParser decodes Loon's [Proxy] section, which shares Surge's
// "name = type, host, port, key=value" shape but adds its own type
// keywords (wireguard) and key names (interface-name, tfo).
type loonParser struct{}

func (loonParser) Name() string { return "loon" }

func (loonParser) Sniff(raw []byte) bool {
	sections := iniSections(raw)
	lines, ok := sections["proxy"]
	if !ok {
		return false
	}
	for _, line := range lines {
		_, rest, ok := splitNameValue(line)
		if !ok {
			continue
		}
		fields := splitCommaFields(rest)
		if len(fields) == 0 {
			continue
		}
		lower := strings.ToLower(fields[0])
		if lower == "wireguard" {
			return true
		}
		if strings.Contains(strings.ToLower(rest), "interface-name") {
			return true
		}
	}
	return false
}

func (loonParser) Parse(raw []byte, group string) (Result, error) {
	sections := iniSections(raw)
	lines, ok := sections["proxy"]
	if !ok {
		return Result{}, &xerrors.ParseError{Format: "loon", Position: -1, Reason: "missing [Proxy] section"}
	}

	var res Result
	for i, line := range lines {
		name, rest, ok := splitNameValue(line)
		if !ok {
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("proxy line %d: missing '='", i+1)))
			continue
		}
		fields := splitCommaFields(rest)
		if len(fields) < 1 {
			continue
		}
		typ := strings.ToLower(fields[0])
		if typ == "wireguard" {
			n, err := loonWireGuardNode(name, group, keyValueFields(fields[1:]))
			if err != nil {
				res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("proxy %q: %v", name, err)))
				continue
			}
			res.Nodes = append(res.Nodes, n)
			continue
		}
		if len(fields) < 3 {
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("proxy %q: too few fields", name)))
			continue
		}
		host := fields[1]
		port, err := strconv.Atoi(fields[2])
		if err != nil {
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("proxy %q: invalid port", name)))
			continue
		}
		kv := keyValueFields(fields[3:])

		n := &node.Node{Remark: name, Group: group, Host: host, Port: port}
		switch typ {
		case "shadowsocks":
			n.Kind = node.Shadowsocks
			n.Shadowsocks = &node.ShadowsocksCreds{Method: kv["cipher"], Password: kv["password"]}
		case "vmess":
			n.Kind = node.VMess
			n.VMess = &node.VMessCreds{UUID: kv["username"], Security: "auto"}
			if kvBool(kv, "transport") || kv["transport"] == "ws" {
				n.Transport.Type = node.WS
				n.Transport.Path = kv["path"]
				n.Transport.Host = kv["host"]
			}
			if kvBool(kv, "over-tls") {
				n.TLS.Enabled = true
				n.TLS.SNI = kv["tls-name"]
			}
		case "trojan":
			n.Kind = node.Trojan
			n.Trojan = &node.TrojanCreds{Password: kv["password"]}
			n.TLS.Enabled = true
			if sni := kv["tls-name"]; sni != "" {
				n.TLS.SNI = sni
			}
		case "http":
			n.Kind = node.HTTP
			n.UserPass = &node.UserPassCreds{Username: kv["username"], Password: kv["password"]}
		case "https":
			n.Kind = node.HTTPS
			n.UserPass = &node.UserPassCreds{Username: kv["username"], Password: kv["password"]}
			n.TLS.Enabled = true
		case "socks5":
			n.Kind = node.Socks5
			n.UserPass = &node.UserPassCreds{Username: kv["username"], Password: kv["password"]}
		default:
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("proxy %q: unsupported type %q", name, typ)))
			continue
		}

		if kvBool(kv, "skip-cert-verify") {
			n.TLS.SkipCertVerify = node.True
		}
		if kvBool(kv, "fast-open") {
			n.TFO = node.True
		}

		if err := n.Validate(); err != nil {
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("proxy %q: %v", name, err)))
			continue
		}
		res.Nodes = append(res.Nodes, n)
	}
	return res, nil
}

func loonWireGuardNode(name, group string, kv map[string]string) (*node.Node, error) {
	host, portStr, ok := strings.Cut(kv["endpoint"], ":")
	if !ok {
		return nil, fmt.Errorf("wireguard proxy missing endpoint")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("wireguard proxy invalid endpoint port")
	}
	n := &node.Node{
		Kind:   node.WireGuard,
		Remark: name,
		Group:  group,
		Host:   host,
		Port:   port,
		WireGuard: &node.WireGuardCreds{
			PrivateKey:    kv["private-key"],
			PeerPublicKey: kv["public-key"],
			Addresses:     splitNonEmpty(kv["ip"], ","),
			DNS:           splitNonEmpty(kv["dns"], ","),
		},
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}
