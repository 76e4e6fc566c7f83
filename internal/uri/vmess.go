package uri

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/xerrors"
)

func init() {
	register(vmessCodec{})
}

type vmessCodec struct{}

func (vmessCodec) Scheme() string { return "vmess" }

// vmessWire mirrors the JSON keys of vmess://base64(json): v, ps, add,
// port, id, aid, net, type, host, path, tls, sni, alpn, scy, fp. Port
// and aid are sometimes emitted as strings by some
// producers, hence the loose-typed fields.
type vmessWire struct {
	V    string      `json:"v"`
	PS   string      `json:"ps"`
	Add  string      `json:"add"`
	Port interface{} `json:"port"`
	ID   string      `json:"id"`
	Aid  interface{} `json:"aid"`
	Net  string      `json:"net"`
	Type string      `json:"type"`
	Host string      `json:"host"`
	Path string      `json:"path"`
	TLS  string      `json:"tls"`
	SNI  string      `json:"sni"`
	ALPN string      `json:"alpn"`
	Scy  string      `json:"scy"`
	FP   string      `json:"fp"`
}

func (vmessCodec) Decode(raw string) (*node.Node, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "vmess://") {
		return nil, &xerrors.ParseError{Format: "vmess", Position: 0, Reason: "missing vmess:// prefix"}
	}
	decoded, err := Base64Decode(raw[len("vmess://"):])
	if err != nil {
		return nil, &xerrors.ParseError{Format: "vmess", Position: -1, Reason: "invalid base64 body: " + err.Error()}
	}
	var w vmessWire
	if err := json.Unmarshal(decoded, &w); err != nil {
		return nil, &xerrors.ParseError{Format: "vmess", Position: -1, Reason: "invalid json: " + err.Error()}
	}

	port, err := toInt(w.Port)
	if err != nil || port < 1 || port > 65535 {
		return nil, &xerrors.ParseError{Format: "vmess", Position: -1, Reason: "invalid port"}
	}
	aid, _ := toInt(w.Aid)

	security := w.Scy
	if security == "" {
		security = "auto"
	}

	n := &node.Node{
		Kind:   node.VMess,
		Host:   w.Add,
		Port:   port,
		Remark: w.PS,
		VMess: &node.VMessCreds{
			UUID:     w.ID,
			AlterID:  aid,
			Security: security,
		},
	}

	netType := w.Net
	if netType == "" {
		netType = "tcp"
	}
	n.Transport = node.Transport{
		Type: node.TransportType(netType),
		Path: w.Path,
		Host: w.Host,
	}

	if w.TLS == "tls" || w.TLS == "1" {
		n.TLS.Enabled = true
		sni := w.SNI
		if sni == "" {
			sni = w.Host // alias: sni falls back to host header when absent
		}
		n.TLS.SNI = sni
		if w.ALPN != "" {
			n.TLS.ALPN = strings.Split(w.ALPN, ",")
		}
		n.TLS.Fingerprint = w.FP
	}

	if err := n.Validate(); err != nil {
		return nil, &xerrors.ParseError{Format: "vmess", Position: -1, Reason: err.Error()}
	}
	return n, nil
}

func toInt(v interface{}) (int, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return int(t), nil
	case string:
		if t == "" {
			return 0, nil
		}
		return strconv.Atoi(t)
	case int:
		return t, nil
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", v)
	}
}

func (vmessCodec) Encode(n *node.Node) (string, error) {
	if n.Kind != node.VMess || n.VMess == nil {
		return "", &xerrors.ParseError{Format: "vmess", Position: -1, Reason: "not a vmess node"}
	}
	w := vmessWire{
		V:    "2",
		PS:   n.Remark,
		Add:  n.Host,
		Port: n.Port,
		ID:   n.VMess.UUID,
		Aid:  n.VMess.AlterID,
		Net:  string(n.Transport.Type),
		Host: n.Transport.Host,
		Path: n.Transport.Path,
		Scy:  n.VMess.Security,
	}
	if n.TLS.Enabled {
		w.TLS = "tls"
		w.SNI = n.TLS.SNI
		w.FP = n.TLS.Fingerprint
		w.ALPN = strings.Join(n.TLS.ALPN, ",")
	}
	data, err := json.Marshal(w)
	if err != nil {
		return "", err
	}
	return "vmess://" + Base64EncodeStd(data), nil
}
