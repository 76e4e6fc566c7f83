package uri

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/xerrors"
)

func init() {
	register(shadowsocksCodec{})
}

type shadowsocksCodec struct{}

func (shadowsocksCodec) Scheme() string { return "ss" }

// Decode accepts SIP002 (ss://base64(user:pass)@host:port?plugin=...#remark)
// and legacy (ss://base64(method:pass@host:port)#remark) forms.
func (shadowsocksCodec) Decode(raw string) (*node.Node, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "ss://") {
		return nil, &xerrors.ParseError{Format: "ss", Position: 0, Reason: "missing ss:// prefix"}
	}
	body := raw[len("ss://"):]

	fragment := ""
	if idx := strings.IndexByte(body, '#'); idx >= 0 {
		fragment = body[idx+1:]
		body = body[:idx]
	}

	if strings.Contains(body, "@") {
		n, err := decodeSIP002(body, fragment)
		if err == nil {
			return n, nil
		}
	}
	return decodeLegacy(body, fragment)
}

func decodeSIP002(body, fragment string) (*node.Node, error) {
	query := ""
	if idx := strings.IndexByte(body, '?'); idx >= 0 {
		query = body[idx+1:]
		body = body[:idx]
	}

	at := strings.LastIndexByte(body, '@')
	if at < 0 {
		return nil, &xerrors.ParseError{Format: "ss", Position: -1, Reason: "missing '@' separator"}
	}
	userInfo, hostPort := body[:at], body[at+1:]

	var method, password string
	if decoded, err := Base64Decode(userInfo); err == nil && strings.Contains(string(decoded), ":") {
		method, password, _ = strings.Cut(string(decoded), ":")
	} else {
		// Some SIP002 producers leave user:pass unencoded.
		method, password, _ = strings.Cut(userInfo, ":")
	}
	if method == "" || password == "" {
		return nil, &xerrors.ParseError{Format: "ss", Position: -1, Reason: "missing method or password"}
	}

	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		return nil, &xerrors.ParseError{Format: "ss", Position: -1, Reason: "invalid host:port: " + err.Error()}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return nil, &xerrors.ParseError{Format: "ss", Position: -1, Reason: "invalid port"}
	}

	n := &node.Node{
		Kind: node.Shadowsocks,
		Host: host,
		Port: port,
		Shadowsocks: &node.ShadowsocksCreds{
			Method:   method,
			Password: password,
		},
	}

	if query != "" {
		values, err := url.ParseQuery(query)
		if err == nil {
			if pluginStr := values.Get("plugin"); pluginStr != "" {
				n.Shadowsocks.Plugin = parsePlugin(pluginStr)
			}
		}
	}

	n.Remark = unescapeFragment(fragment)
	if err := n.Validate(); err != nil {
		return nil, &xerrors.ParseError{Format: "ss", Position: -1, Reason: err.Error()}
	}
	return n, nil
}

func decodeLegacy(body, fragment string) (*node.Node, error) {
	decoded, err := Base64Decode(body)
	if err != nil {
		return nil, &xerrors.ParseError{Format: "ss", Position: -1, Reason: "invalid base64 body: " + err.Error()}
	}
	// method:password@host:port
	s := string(decoded)
	at := strings.LastIndexByte(s, '@')
	if at < 0 {
		return nil, &xerrors.ParseError{Format: "ss", Position: -1, Reason: "legacy body missing '@'"}
	}
	methodPass, hostPort := s[:at], s[at+1:]
	method, password, ok := strings.Cut(methodPass, ":")
	if !ok {
		return nil, &xerrors.ParseError{Format: "ss", Position: -1, Reason: "legacy body missing method:password"}
	}
	host, portStr, err := net.SplitHostPort(hostPort)
	if err != nil {
		return nil, &xerrors.ParseError{Format: "ss", Position: -1, Reason: "invalid host:port: " + err.Error()}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return nil, &xerrors.ParseError{Format: "ss", Position: -1, Reason: "invalid port"}
	}

	n := &node.Node{
		Kind: node.Shadowsocks,
		Host: host,
		Port: port,
		Shadowsocks: &node.ShadowsocksCreds{
			Method:   method,
			Password: password,
		},
		Remark: unescapeFragment(fragment),
	}
	if err := n.Validate(); err != nil {
		return nil, &xerrors.ParseError{Format: "ss", Position: -1, Reason: err.Error()}
	}
	return n, nil
}

// parsePlugin splits a plugin query value ("obfs-local;obfs=tls;obfs-host=x")
// into a name plus an option dictionary. Recognized keys for obfs-local
// and v2ray-plugin are preserved as-is; unrecognized keys pass through.
func parsePlugin(raw string) *node.Plugin {
	raw, _ = url.QueryUnescape(raw)
	parts := strings.Split(raw, ";")
	p := &node.Plugin{Options: map[string]string{}}
	for i, part := range parts {
		if i == 0 {
			p.Name = part
			continue
		}
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			p.Options[k] = ""
			continue
		}
		p.Options[k] = v
	}
	return p
}

func formatPlugin(p *node.Plugin) string {
	if p == nil || p.Name == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(p.Name)
	keys := make([]string, 0, len(p.Options))
	for k := range p.Options {
		keys = append(keys, k)
	}
	// deterministic output
	sort.Strings(keys)
	for _, k := range keys {
		if p.Options[k] == "" {
			fmt.Fprintf(&b, ";%s", k)
		} else {
			fmt.Fprintf(&b, ";%s=%s", k, p.Options[k])
		}
	}
	return b.String()
}

func unescapeFragment(fragment string) string {
	if fragment == "" {
		return ""
	}
	if unescaped, err := url.PathUnescape(fragment); err == nil {
		return unescaped
	}
	return fragment
}

// Encode re-emits a Shadowsocks node in SIP002 form.
func (shadowsocksCodec) Encode(n *node.Node) (string, error) {
	if n.Kind != node.Shadowsocks || n.Shadowsocks == nil {
		return "", &xerrors.ParseError{Format: "ss", Position: -1, Reason: "not a shadowsocks node"}
	}
	userInfo := Base64EncodeStd([]byte(n.Shadowsocks.Method + ":" + n.Shadowsocks.Password))
	u := fmt.Sprintf("ss://%s@%s:%d", userInfo, n.Host, n.Port)
	if n.Shadowsocks.Plugin != nil {
		u += "?plugin=" + url.QueryEscape(formatPlugin(n.Shadowsocks.Plugin))
	}
	if n.Remark != "" {
		u += "#" + url.PathEscape(n.Remark)
	}
	return u, nil
}
