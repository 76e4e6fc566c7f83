package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/xerrors"
)

func init() {
	register(quanxParser{})
}

// quanxParser decodes Quantumult X's [server_remote]/[server_local]
// line grammar, a superset of classic Quantumult's with "over-tls",
// "tls-verification", "fast-open" keys and a "trojan=" scheme.
type quanxParser struct{}

func (quanxParser) Name() string { return "quantumultx" }

func (quanxParser) Sniff(raw []byte) bool {
	lines := quanxLines(raw)
	for _, line := range lines {
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "trojan=") {
			return true
		}
		if strings.Contains(lower, "tls-verification=") || strings.Contains(lower, "fast-open=") {
			return true
		}
	}
	return false
}

func quanxLines(raw []byte) []string {
	sections := iniSections(raw)
	lines := sections["server_remote"]
	lines = append(lines, sections["server_local"]...)
	return lines
}

func (quanxParser) Parse(raw []byte, group string) (Result, error) {
	lines := quanxLines(raw)
	if len(lines) == 0 {
		return Result{}, &xerrors.ParseError{Format: "quantumultx", Position: -1, Reason: "missing [server_remote]/[server_local] section"}
	}

	var res Result
	for i, line := range lines {
		scheme, rest, ok := splitNameValue(line)
		if !ok {
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("server line %d: missing '='", i+1)))
			continue
		}
		scheme = strings.ToLower(scheme)
		fields := splitCommaFields(rest)
		if len(fields) == 0 {
			continue
		}
		hostPort := strings.SplitN(fields[0], ":", 2)
		if len(hostPort) != 2 {
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("server line %d: invalid host:port", i+1)))
			continue
		}
		port, err := strconv.Atoi(hostPort[1])
		if err != nil {
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("server line %d: invalid port", i+1)))
			continue
		}
		kv := keyValueFields(fields[1:])
		tag := kv["tag"]

		n := &node.Node{Remark: tag, Group: group, Host: hostPort[0], Port: port}
		switch scheme {
		case "shadowsocks":
			n.Kind = node.Shadowsocks
			n.Shadowsocks = &node.ShadowsocksCreds{Method: kv["method"], Password: kv["password"]}
		case "vmess":
			n.Kind = node.VMess
			n.VMess = &node.VMessCreds{UUID: kv["password"], Security: "auto"}
			quanxApplyObfs(kv, n)
		case "trojan":
			n.Kind = node.Trojan
			n.Trojan = &node.TrojanCreds{Password: kv["password"]}
			n.TLS.Enabled = true
			n.TLS.SNI = kv["tls-host"]
		case "http":
			n.Kind = node.HTTP
			n.UserPass = &node.UserPassCreds{Username: kv["username"], Password: kv["password"]}
			if kvBool(kv, "over-tls") {
				n.Kind = node.HTTPS
				n.TLS.Enabled = true
			}
		case "socks5":
			n.Kind = node.Socks5
			n.UserPass = &node.UserPassCreds{Username: kv["username"], Password: kv["password"]}
			if kvBool(kv, "over-tls") {
				n.TLS.Enabled = true
			}
		default:
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("server line %d: unsupported scheme %q", i+1, scheme)))
			continue
		}

		if _, ok := kv["tls-verification"]; ok && !kvBool(kv, "tls-verification") {
			n.TLS.SkipCertVerify = node.True
		}

		if err := n.Validate(); err != nil {
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("server %q: %v", tag, err)))
			continue
		}
		res.Nodes = append(res.Nodes, n)
	}
	return res, nil
}

func quanxApplyObfs(kv map[string]string, n *node.Node) {
	switch kv["obfs"] {
	case "ws":
		n.Transport.Type = node.WS
		n.Transport.Path = kv["obfs-uri"]
		n.Transport.Host = kv["obfs-host"]
	case "over-tls", "wss":
		n.Transport.Type = node.WS
		n.Transport.Path = kv["obfs-uri"]
		n.Transport.Host = kv["obfs-host"]
		n.TLS.Enabled = true
		n.TLS.SNI = kv["obfs-host"]
	}
	if kvBool(kv, "over-tls") {
		n.TLS.Enabled = true
		if n.TLS.SNI == "" {
			n.TLS.SNI = kv["tls-host"]
		}
	}
}
