package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/muhammadmuzzammil1998/jsonc"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/xerrors"
)

func init() {
	register(singboxParser{})
}

// singboxParser decodes a sing-box client configuration's "outbounds"
// array. Comments are tolerated via jsonc, since hand-edited sing-box
// configs commonly carry them.
type singboxParser struct{}

func (singboxParser) Name() string { return "singbox" }

func (singboxParser) Sniff(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(trimmed, []byte("{")) {
		return false
	}
	stripped := jsonc.ToJSON(trimmed)
	var probe struct {
		Outbounds []json.RawMessage `json:"outbounds"`
	}
	if err := json.Unmarshal(stripped, &probe); err != nil {
		return false
	}
	return len(probe.Outbounds) > 0
}

type singboxOutbound struct {
	Type       string `json:"type"`
	Tag        string `json:"tag"`
	Server     string `json:"server"`
	ServerPort int    `json:"server_port"`

	// shadowsocks
	Method   string `json:"method"`
	Password string `json:"password"`

	// vmess / vless / trojan
	UUID       string `json:"uuid"`
	AlterID    int    `json:"alter_id"`
	Security   string `json:"security"`
	Flow       string `json:"flow"`

	// socks/http
	Username string `json:"username"`

	TLS       *singboxTLS       `json:"tls"`
	Transport *singboxTransport `json:"transport"`

	// hysteria2
	UpMbps   int    `json:"up_mbps"`
	DownMbps int    `json:"down_mbps"`
	Obfs     *singboxObfs `json:"obfs"`
}

type singboxObfs struct {
	Type     string `json:"type"`
	Password string `json:"password"`
}

type singboxTLS struct {
	Enabled    bool     `json:"enabled"`
	ServerName string   `json:"server_name"`
	Insecure   bool     `json:"insecure"`
	ALPN       []string `json:"alpn"`
	Reality    *struct {
		Enabled   bool   `json:"enabled"`
		PublicKey string `json:"public_key"`
		ShortID   string `json:"short_id"`
	} `json:"reality"`
}

type singboxTransport struct {
	Type        string `json:"type"`
	Path        string `json:"path"`
	ServiceName string `json:"service_name"`
	Host        []string `json:"host"`
}

type singboxDocument struct {
	Outbounds []singboxOutbound `json:"outbounds"`
}

func (singboxParser) Parse(raw []byte, group string) (Result, error) {
	stripped := jsonc.ToJSON(raw)
	var doc singboxDocument
	if err := json.Unmarshal(stripped, &doc); err != nil {
		return Result{}, &xerrors.ParseError{Format: "singbox", Position: -1, Reason: "invalid json: " + err.Error()}
	}

	var res Result
	for i, ob := range doc.Outbounds {
		n, err := singboxOutboundToNode(ob, group)
		if err != nil {
			if err == errSkipOutbound {
				continue
			}
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("outbounds[%d]: %v", i, err)))
			continue
		}
		res.Nodes = append(res.Nodes, n)
	}
	return res, nil
}

var errSkipOutbound = fmt.Errorf("non-proxy outbound")

func singboxOutboundToNode(ob singboxOutbound, group string) (*node.Node, error) {
	n := &node.Node{
		Remark: ob.Tag,
		Group:  group,
		Host:   ob.Server,
		Port:   ob.ServerPort,
	}

	switch ob.Type {
	case "shadowsocks":
		n.Kind = node.Shadowsocks
		n.Shadowsocks = &node.ShadowsocksCreds{Method: ob.Method, Password: ob.Password}
	case "vmess":
		n.Kind = node.VMess
		security := ob.Security
		if security == "" {
			security = "auto"
		}
		n.VMess = &node.VMessCreds{UUID: ob.UUID, AlterID: ob.AlterID, Security: security}
		applySingboxTransportAndTLS(ob, n)
	case "vless":
		n.Kind = node.VLESS
		n.VLESS = &node.VLESSCreds{UUID: ob.UUID, Flow: ob.Flow}
		applySingboxTransportAndTLS(ob, n)
	case "trojan":
		n.Kind = node.Trojan
		n.Trojan = &node.TrojanCreds{Password: ob.Password}
		n.TLS.Enabled = true
		applySingboxTransportAndTLS(ob, n)
	case "socks":
		n.Kind = node.Socks5
		n.UserPass = &node.UserPassCreds{Username: ob.Username, Password: ob.Password}
	case "http":
		n.Kind = node.HTTP
		n.UserPass = &node.UserPassCreds{Username: ob.Username, Password: ob.Password}
		if ob.TLS != nil && ob.TLS.Enabled {
			n.Kind = node.HTTPS
			n.TLS.Enabled = true
		}
	case "hysteria2":
		n.Kind = node.Hysteria2
		h2 := &node.Hysteria2Creds{Password: ob.Password, UpMbps: ob.UpMbps, DownMbps: ob.DownMbps}
		if ob.Obfs != nil {
			h2.Obfs = ob.Obfs.Type
			h2.ObfsPassword = ob.Obfs.Password
		}
		n.Hysteria2 = h2
		n.TLS.Enabled = true
		if ob.TLS != nil {
			n.TLS.SNI = ob.TLS.ServerName
		}
	default:
		return nil, errSkipOutbound
	}

	if n.TLS.Enabled && ob.TLS != nil {
		if ob.TLS.Insecure {
			n.TLS.SkipCertVerify = node.True
		}
	}

	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

func applySingboxTransportAndTLS(ob singboxOutbound, n *node.Node) {
	if ob.Transport != nil {
		switch ob.Transport.Type {
		case "ws":
			n.Transport.Type = node.WS
			n.Transport.Path = ob.Transport.Path
			if len(ob.Transport.Host) > 0 {
				n.Transport.Host = ob.Transport.Host[0]
			}
		case "grpc":
			n.Transport.Type = node.GRPC
			n.Transport.ServiceName = ob.Transport.ServiceName
		case "http":
			n.Transport.Type = node.HTTPTransport
			n.Transport.Path = ob.Transport.Path
			if len(ob.Transport.Host) > 0 {
				n.Transport.Host = ob.Transport.Host[0]
			}
		default:
			n.Transport.Type = node.TCP
		}
	} else {
		n.Transport.Type = node.TCP
	}

	if ob.TLS != nil && ob.TLS.Enabled {
		n.TLS.Enabled = true
		n.TLS.SNI = ob.TLS.ServerName
		n.TLS.ALPN = ob.TLS.ALPN
		if ob.TLS.Reality != nil && ob.TLS.Reality.Enabled {
			n.TLS.Reality = &node.Reality{
				PublicKey: ob.TLS.Reality.PublicKey,
				ShortID:   ob.TLS.Reality.ShortID,
			}
		}
	}
}
