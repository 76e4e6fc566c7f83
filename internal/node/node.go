// Package node defines the canonical proxy representation (the Node
// Model) shared by every URI codec, document parser, pipeline step and
// generator in the converter core.
package node

import (
	"fmt"
	"sort"
	"strings"
)

// Node is a single outbound proxy endpoint. Exactly one of the kind-
// specific credential pointers is populated, selected by Kind; this is
// the "common base + discriminator + per-kind payload" shape a language
// without sum types falls back to.
type Node struct {
	Kind   Kind
	Remark string
	Group  string // source-subscription tag
	Host   string
	Port   int

	Shadowsocks  *ShadowsocksCreds
	ShadowsocksR *ShadowsocksRCreds
	VMess        *VMessCreds
	VLESS        *VLESSCreds
	Trojan       *TrojanCreds
	UserPass     *UserPassCreds
	Hysteria     *HysteriaCreds
	Hysteria2    *Hysteria2Creds
	WireGuard    *WireGuardCreds
	Snell        *SnellCreds

	Transport Transport
	TLS       TLS

	UDP            TriState
	TFO            TriState
	SkipCertVerify TriState
	TLS13          TriState
}

// Validate checks the core invariants: port range, a kind-appropriate
// credential set, TLS fields only meaningful when enabled, VMess
// security default, WireGuard address requirement.
func (n *Node) Validate() error {
	if n.Port < 1 || n.Port > 65535 {
		return fmt.Errorf("node %q: port %d out of range", n.Remark, n.Port)
	}
	if !n.Kind.Valid() {
		return fmt.Errorf("node %q: invalid kind %q", n.Remark, n.Kind)
	}

	switch n.Kind {
	case Shadowsocks:
		if n.Shadowsocks == nil {
			return fmt.Errorf("node %q: shadowsocks credentials missing", n.Remark)
		}
	case ShadowsocksR:
		if n.ShadowsocksR == nil {
			return fmt.Errorf("node %q: shadowsocksr credentials missing", n.Remark)
		}
	case VMess:
		if n.VMess == nil {
			return fmt.Errorf("node %q: vmess credentials missing", n.Remark)
		}
		if n.VMess.Security == "" {
			n.VMess.Security = "auto"
		}
	case VLESS:
		if n.VLESS == nil {
			return fmt.Errorf("node %q: vless credentials missing", n.Remark)
		}
	case Trojan:
		if n.Trojan == nil {
			return fmt.Errorf("node %q: trojan credentials missing", n.Remark)
		}
	case HTTP, HTTPS, Socks5:
		if n.UserPass == nil {
			n.UserPass = &UserPassCreds{}
		}
	case Hysteria:
		if n.Hysteria == nil {
			return fmt.Errorf("node %q: hysteria credentials missing", n.Remark)
		}
	case Hysteria2:
		if n.Hysteria2 == nil {
			return fmt.Errorf("node %q: hysteria2 credentials missing", n.Remark)
		}
	case WireGuard:
		if n.WireGuard == nil {
			return fmt.Errorf("node %q: wireguard credentials missing", n.Remark)
		}
		if len(n.WireGuard.Addresses) == 0 {
			return fmt.Errorf("node %q: wireguard requires at least one address", n.Remark)
		}
	case Snell:
		if n.Snell == nil {
			return fmt.Errorf("node %q: snell credentials missing", n.Remark)
		}
	}

	if !n.TLS.Enabled {
		if n.TLS.SNI != "" || len(n.TLS.ALPN) != 0 || n.TLS.Fingerprint != "" || n.TLS.Reality != nil {
			return fmt.Errorf("node %q: TLS fields set without TLS enabled", n.Remark)
		}
	}
	return nil
}

// Identity returns the stable identity string used for deduplication:
// (kind, host, port, credentials, transport fingerprint). Remark is
// deliberately excluded.
func (n *Node) Identity() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%d|", n.Kind, strings.ToLower(n.Host), n.Port)

	switch n.Kind {
	case Shadowsocks:
		if c := n.Shadowsocks; c != nil {
			fmt.Fprintf(&b, "%s|%s", c.Method, c.Password)
			if c.Plugin != nil {
				fmt.Fprintf(&b, "|%s|%s", c.Plugin.Name, sortedOptions(c.Plugin.Options))
			}
		}
	case ShadowsocksR:
		if c := n.ShadowsocksR; c != nil {
			fmt.Fprintf(&b, "%s|%s|%s|%s", c.Method, c.Password, c.Protocol, c.Obfs)
		}
	case VMess:
		if c := n.VMess; c != nil {
			fmt.Fprintf(&b, "%s|%d|%s", c.UUID, c.AlterID, c.Security)
		}
	case VLESS:
		if c := n.VLESS; c != nil {
			fmt.Fprintf(&b, "%s|%s", c.UUID, c.Flow)
		}
	case Trojan:
		if c := n.Trojan; c != nil {
			fmt.Fprintf(&b, "%s", c.Password)
		}
	case HTTP, HTTPS, Socks5:
		if c := n.UserPass; c != nil {
			fmt.Fprintf(&b, "%s|%s", c.Username, c.Password)
		}
	case Hysteria:
		if c := n.Hysteria; c != nil {
			fmt.Fprintf(&b, "%s|%s", c.Auth, c.Obfs)
		}
	case Hysteria2:
		if c := n.Hysteria2; c != nil {
			fmt.Fprintf(&b, "%s|%s", c.Password, c.Obfs)
		}
	case WireGuard:
		if c := n.WireGuard; c != nil {
			fmt.Fprintf(&b, "%s|%s|%s", c.PrivateKey, c.PeerPublicKey, strings.Join(c.Addresses, ","))
		}
	case Snell:
		if c := n.Snell; c != nil {
			fmt.Fprintf(&b, "%s|%d", c.PSK, c.Version)
		}
	}

	fmt.Fprintf(&b, "|%s|%s|%s", n.Transport.Type, n.Transport.Path, n.Transport.Host)
	return b.String()
}

func sortedOptions(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s;", k, m[k])
	}
	return b.String()
}

// Equal compares two nodes by stable identity, ignoring Remark.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.Identity() == other.Identity()
}

// CleanRemark trims whitespace and collapses runs of spaces; used by the
// preprocess pipeline step but exposed here since it operates purely on
// Node-owned data.
func CleanRemark(remark string) string {
	remark = strings.ReplaceAll(remark, "\r\n", "\n")
	remark = strings.ReplaceAll(remark, "\r", "\n")
	remark = strings.ReplaceAll(remark, "\n", " ")
	fields := strings.Fields(remark)
	return strings.Join(fields, " ")
}
