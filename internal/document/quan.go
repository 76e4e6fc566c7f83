package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/xerrors"
)

func init() {
	register(quanParser{})
}

// quanParser decodes classic Quantumult's [SERVER] line grammar:
// "vmess=host:port, method=..., password=..., obfs=..., obfs-host=...,
// tag=name" — one scheme keyword per line, unlike Surge's leading type
// field.
type quanParser struct{}

func (quanParser) Name() string { return "quantumult" }

func (quanParser) Sniff(raw []byte) bool {
	sections := iniSections(raw)
	lines, ok := sections["server_remote"]
	if !ok {
		lines, ok = sections["server"]
	}
	if !ok {
		return false
	}
	for _, line := range lines {
		if strings.HasPrefix(line, "vmess=") || strings.HasPrefix(line, "shadowsocks=") || strings.HasPrefix(line, "ss=") {
			return true
		}
	}
	return false
}

func (quanParser) Parse(raw []byte, group string) (Result, error) {
	sections := iniSections(raw)
	lines, ok := sections["server_remote"]
	if !ok {
		lines, ok = sections["server"]
	}
	if !ok {
		return Result{}, &xerrors.ParseError{Format: "quantumult", Position: -1, Reason: "missing [SERVER] section"}
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
		case "shadowsocks", "ss":
			n.Kind = node.Shadowsocks
			n.Shadowsocks = &node.ShadowsocksCreds{Method: kv["method"], Password: kv["password"]}
			if obfs := kv["obfs"]; obfs != "" {
				n.Shadowsocks.Plugin = &node.Plugin{
					Name:    "obfs-local",
					Options: map[string]string{"obfs": obfs, "obfs-host": kv["obfs-host"]},
				}
			}
		case "vmess":
			n.Kind = node.VMess
			n.VMess = &node.VMessCreds{UUID: kv["password"], Security: "auto"}
			if obfs := kv["obfs"]; obfs == "ws" || obfs == "wss" {
				n.Transport.Type = node.WS
				n.Transport.Path = kv["obfs-uri"]
				n.Transport.Host = kv["obfs-host"]
			}
			if obfs := kv["obfs"]; obfs == "wss" || kvBool(kv, "tls") {
				n.TLS.Enabled = true
				n.TLS.SNI = kv["obfs-host"]
			}
		default:
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("server line %d: unsupported scheme %q", i+1, scheme)))
			continue
		}

		if err := n.Validate(); err != nil {
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("server %q: %v", tag, err)))
			continue
		}
		res.Nodes = append(res.Nodes, n)
	}
	return res, nil
}
