package node

// TransportType enumerates the pluggable stream transports a node's
// traffic may ride over.
type TransportType string

const (
	TCP  TransportType = "tcp"
	WS   TransportType = "ws"
	HTTPTransport TransportType = "http"
	H2   TransportType = "h2"
	GRPC TransportType = "grpc"
	QUIC TransportType = "quic"
	KCP  TransportType = "kcp"
)

// Transport is the pluggable-transport descriptor. Fields not meaningful
// for a given Type are left zero; generators consult Type before reading
// the rest.
type Transport struct {
	Type TransportType

	// ws / http / h2
	Path string
	Host string // Host header

	// grpc
	ServiceName string

	// kcp
	Seed       string
	HeaderType string
}

// TLS is the TLS descriptor. Enabled gates whether SNI/ALPN/fingerprint
// and Reality are meaningful.
type TLS struct {
	Enabled         bool
	SNI             string
	ALPN            []string
	Fingerprint     string
	SkipCertVerify  TriState
	TLS13           TriState
	Reality         *Reality
}

// Reality holds REALITY-specific TLS camouflage parameters.
type Reality struct {
	PublicKey string
	ShortID   string
	SpiderX   string
}
