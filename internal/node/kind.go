package node

// Kind discriminates the proxy variants the Node Model can represent.
// Implementations without first-class sum types fall back to a common
// base struct with a discriminator field and per-kind payload structs;
// that is exactly the shape Node uses below, never open inheritance.
type Kind string

const (
	Shadowsocks  Kind = "shadowsocks"
	ShadowsocksR Kind = "shadowsocksr"
	VMess        Kind = "vmess"
	VLESS        Kind = "vless"
	Trojan       Kind = "trojan"
	HTTP         Kind = "http"
	HTTPS        Kind = "https"
	Socks5       Kind = "socks5"
	Hysteria     Kind = "hysteria"
	Hysteria2    Kind = "hysteria2"
	WireGuard    Kind = "wireguard"
	Snell        Kind = "snell"
	Unknown      Kind = "unknown"
)

func (k Kind) String() string { return string(k) }

func (k Kind) Valid() bool {
	switch k {
	case Shadowsocks, ShadowsocksR, VMess, VLESS, Trojan, HTTP, HTTPS, Socks5,
		Hysteria, Hysteria2, WireGuard, Snell:
		return true
	default:
		return false
	}
}

// SupportsTransport reports whether a pluggable transport layer (the
// Transport descriptor) is meaningful for this kind.
func (k Kind) SupportsTransport() bool {
	switch k {
	case VMess, VLESS, Trojan:
		return true
	default:
		return false
	}
}

// SupportsTLS reports whether the TLS descriptor is meaningful for this
// kind: VMess, VLESS, Trojan, HTTPS, Hysteria and Hysteria2. Every other
// kind (including HTTP, Socks5 and Snell) reports false.
func (k Kind) SupportsTLS() bool {
	switch k {
	case VMess, VLESS, Trojan, HTTPS, Hysteria, Hysteria2:
		return true
	default:
		return false
	}
}

// SupportsUDP reports whether the udp runtime flag is meaningful.
func (k Kind) SupportsUDP() bool {
	return k != HTTP && k != HTTPS
}
