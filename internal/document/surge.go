package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/xerrors"
)

func init() {
	register(surgeParser{})
}

// surgeParser decodes a Surge INI-like configuration's [Proxy] section.
// Surge versions 2/3/4 share this proxy-line grammar; version-specific
// feature gating belongs to the generator, not the parser.
type surgeParser struct{}

func (surgeParser) Name() string { return "surge" }

func (surgeParser) Sniff(raw []byte) bool {
	sections := iniSections(raw)
	lines, ok := sections["proxy"]
	if !ok || len(lines) == 0 {
		return false
	}
	return surgeLooksLikeOurs(lines)
}

// surgeLooksLikeOurs disambiguates Surge from Quantumult/QuanX/Loon,
// all of which can populate a [Proxy] section: Surge lines use
// "key=value" trailing fields with a comma-separated type in position 2.
func surgeLooksLikeOurs(lines []string) bool {
	for _, line := range lines {
		_, rest, ok := splitNameValue(line)
		if !ok {
			continue
		}
		fields := splitCommaFields(rest)
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "ss", "shadowsocks", "vmess", "trojan", "http", "https", "socks5", "socks5-tls", "snell", "direct", "reject":
			return true
		}
	}
	return false
}

func (surgeParser) Parse(raw []byte, group string) (Result, error) {
	sections := iniSections(raw)
	lines, ok := sections["proxy"]
	if !ok {
		return Result{}, &xerrors.ParseError{Format: "surge", Position: -1, Reason: "missing [Proxy] section"}
	}

	var res Result
	for i, line := range lines {
		name, rest, ok := splitNameValue(line)
		if !ok {
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("proxy line %d: missing '='", i+1)))
			continue
		}
		fields := splitCommaFields(rest)
		if len(fields) == 0 {
			continue
		}
		typ := strings.ToLower(fields[0])
		if typ == "direct" || typ == "reject" {
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
		case "ss", "shadowsocks":
			n.Kind = node.Shadowsocks
			n.Shadowsocks = &node.ShadowsocksCreds{Method: kv["encrypt-method"], Password: kv["password"]}
		case "vmess":
			n.Kind = node.VMess
			n.VMess = &node.VMessCreds{UUID: kv["username"], Security: "auto"}
			if kvBool(kv, "ws") {
				n.Transport.Type = node.WS
				n.Transport.Path = kv["ws-path"]
				n.Transport.Host = surgeWSHost(kv["ws-headers"])
			}
			if kvBool(kv, "tls") {
				n.TLS.Enabled = true
				n.TLS.SNI = host
			}
		case "trojan":
			n.Kind = node.Trojan
			n.Trojan = &node.TrojanCreds{Password: kv["password"]}
			n.TLS.Enabled = true
			if sni := kv["sni"]; sni != "" {
				n.TLS.SNI = sni
			}
		case "http":
			n.Kind = node.HTTP
			n.UserPass = &node.UserPassCreds{Username: kv["username"], Password: kv["password"]}
			if kvBool(kv, "tls") {
				n.Kind = node.HTTPS
				n.TLS.Enabled = true
			}
		case "https":
			n.Kind = node.HTTPS
			n.UserPass = &node.UserPassCreds{Username: kv["username"], Password: kv["password"]}
			n.TLS.Enabled = true
		case "socks5":
			n.Kind = node.Socks5
			n.UserPass = &node.UserPassCreds{Username: kv["username"], Password: kv["password"]}
		case "socks5-tls":
			n.Kind = node.Socks5
			n.UserPass = &node.UserPassCreds{Username: kv["username"], Password: kv["password"]}
			n.TLS.Enabled = true
		case "snell":
			n.Kind = node.Snell
			version, _ := strconv.Atoi(kv["version"])
			if version == 0 {
				version = 3
			}
			n.Snell = &node.SnellCreds{PSK: kv["psk"], Version: version}
			if obfs := kv["obfs"]; obfs != "" {
				n.Transport.HeaderType = obfs
				n.Transport.Host = kv["obfs-host"]
			}
		default:
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("proxy %q: unsupported type %q", name, typ)))
			continue
		}

		if kvBool(kv, "skip-cert-verify") {
			n.TLS.SkipCertVerify = node.True
		}
		if v, ok := kv["udp-relay"]; ok {
			n.UDP = node.FromBoolPtr(boolPtrFromString(v))
		}

		if err := n.Validate(); err != nil {
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("proxy %q: %v", name, err)))
			continue
		}
		res.Nodes = append(res.Nodes, n)
	}
	return res, nil
}

func surgeWSHost(headers string) string {
	for _, part := range strings.Split(headers, "|") {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) == 2 && strings.EqualFold(strings.TrimSpace(kv[0]), "Host") {
			return strings.TrimSpace(kv[1])
		}
	}
	return ""
}

func boolPtrFromString(s string) *bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil
	}
	b := s == "true" || s == "1"
	return &b
}
