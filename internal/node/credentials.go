package node

// ShadowsocksCreds holds Shadowsocks cipher credentials.
type ShadowsocksCreds struct {
	Method   string // cipher, e.g. aes-128-gcm, chacha20-ietf-poly1305
	Password string
	Plugin   *Plugin
}

// ShadowsocksRCreds holds ShadowsocksR credentials, which add a protocol
// and obfuscation layer with their own parameter strings on top of SS.
type ShadowsocksRCreds struct {
	Method       string
	Password     string
	Protocol     string
	ProtocolParm string
	Obfs         string
	ObfsParam    string
}

// VMessCreds holds VMess credentials.
type VMessCreds struct {
	UUID     string
	AlterID  int // 0 implies AEAD VMess
	Security string // "auto" by default
}

// VLESSCreds holds VLESS credentials.
type VLESSCreds struct {
	UUID string
	Flow string // e.g. xtls-rprx-vision
}

// TrojanCreds holds Trojan credentials.
type TrojanCreds struct {
	Password string
}

// UserPassCreds holds the shared username+password credential shape used
// by plain HTTP/HTTPS and Socks5.
type UserPassCreds struct {
	Username string
	Password string
}

// HysteriaCreds holds Hysteria v1 credentials.
type HysteriaCreds struct {
	Auth     string
	Obfs     string
	UpMbps   int
	DownMbps int
}

// Hysteria2Creds holds Hysteria2 credentials; password and auth are
// distinct fields in the wire format even though they serve the same
// purpose.
type Hysteria2Creds struct {
	Password     string
	Obfs         string
	ObfsPassword string
	UpMbps       int
	DownMbps     int
}

// WireGuardCreds holds WireGuard peer configuration. At least one entry
// in Addresses is required.
type WireGuardCreds struct {
	PrivateKey    string
	PeerPublicKey string
	PreSharedKey  string
	Addresses     []string
	DNS           []string
	MTU           int
	Reserved      []byte
}

// SnellCreds holds Snell credentials.
type SnellCreds struct {
	PSK     string
	Version int
}

// Plugin describes a Shadowsocks plugin invocation, e.g. obfs-local or
// v2ray-plugin, as a name plus an arbitrary option dictionary.
type Plugin struct {
	Name    string
	Options map[string]string
}
