package generator

import (
	"encoding/json"
	"strings"

	"github.com/relayforge/subconverter/internal/node"
)

type singboxOutboundOut struct {
	Type       string          `json:"type"`
	Tag        string          `json:"tag"`
	Server     string          `json:"server"`
	ServerPort int             `json:"server_port"`
	Method     string          `json:"method,omitempty"`
	Password   string          `json:"password,omitempty"`
	Username   string          `json:"username,omitempty"`
	UUID       string          `json:"uuid,omitempty"`
	AlterID    int             `json:"alter_id,omitempty"`
	Security   string          `json:"security,omitempty"`
	Flow       string          `json:"flow,omitempty"`
	TLS        *singboxTLSOut  `json:"tls,omitempty"`
	Transport  *singboxTranOut `json:"transport,omitempty"`
}

type singboxTLSOut struct {
	Enabled    bool     `json:"enabled"`
	ServerName string   `json:"server_name,omitempty"`
	ALPN       []string `json:"alpn,omitempty"`
	Insecure   bool     `json:"insecure,omitempty"`
}

type singboxTranOut struct {
	Type        string `json:"type"`
	Path        string `json:"path,omitempty"`
	ServiceName string `json:"service_name,omitempty"`
}

type singboxRuleOut struct {
	DomainSuffix []string `json:"domain_suffix,omitempty"`
	IPCIDR       []string `json:"ip_cidr,omitempty"`
	Outbound     string   `json:"outbound"`
}

type singboxRouteOut struct {
	Rules []singboxRuleOut `json:"rules"`
}

type singboxDocOut struct {
	Outbounds []singboxOutboundOut `json:"outbounds"`
	Route     *singboxRouteOut     `json:"route,omitempty"`
}

// GenerateSingBox renders a SingBox JSON document: outbounds plus an
// optional route block built from the resolved rulesets. Clash-style
// route mode grouping is out of scope beyond the plain outbound/rule
// mapping singbox_add_clash_modes would add.
func GenerateSingBox(in Input) (Result, error) {
	doc := singboxDocOut{}
	skipped := 0
	for _, n := range in.Nodes {
		out, ok := singboxOutbound(n)
		if !ok {
			skipped++
			continue
		}
		doc.Outbounds = append(doc.Outbounds, out)
	}

	if len(in.Rulesets) > 0 {
		route := &singboxRouteOut{}
		for _, rs := range in.Rulesets {
			if rs.IsScript {
				continue // SingBox has no opaque-script rule form
			}
			rule := singboxRuleOut{Outbound: rs.TargetGroup}
			for _, line := range rs.Lines {
				switch {
				case strings.HasPrefix(line, "DOMAIN-SUFFIX,"):
					rule.DomainSuffix = append(rule.DomainSuffix, strings.TrimPrefix(line, "DOMAIN-SUFFIX,"))
				case strings.HasPrefix(line, "IP-CIDR,"):
					rule.IPCIDR = append(rule.IPCIDR, strings.TrimPrefix(line, "IP-CIDR,"))
				}
			}
			route.Rules = append(route.Rules, rule)
		}
		doc.Route = route
	}

	if in.BaseTemplate != "" {
		outboundsJSON, err := json.MarshalIndent(doc.Outbounds, "", "  ")
		if err != nil {
			return Result{}, err
		}
		var routeJSON []byte
		if doc.Route != nil {
			routeJSON, err = json.MarshalIndent(doc.Route, "", "  ")
			if err != nil {
				return Result{}, err
			}
		}
		expanded, err := expandTemplate(in, map[string]string{
			"outbounds": string(outboundsJSON),
			"route":     string(routeJSON),
		})
		if err != nil {
			return Result{}, err
		}
		return Result{Document: expanded, Skipped: skipped}, nil
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Result{}, err
	}
	return Result{Document: string(out), Skipped: skipped}, nil
}

func singboxOutbound(n *node.Node) (singboxOutboundOut, bool) {
	out := singboxOutboundOut{Tag: n.Remark, Server: n.Host, ServerPort: n.Port}
	switch n.Kind {
	case node.Shadowsocks:
		if n.Shadowsocks == nil {
			return out, false
		}
		out.Type = "shadowsocks"
		out.Method = n.Shadowsocks.Method
		out.Password = n.Shadowsocks.Password
	case node.VMess:
		if n.VMess == nil {
			return out, false
		}
		out.Type = "vmess"
		out.UUID = n.VMess.UUID
		out.AlterID = n.VMess.AlterID
		out.Security = n.VMess.Security
		out.TLS = singboxTLS(n)
		out.Transport = singboxTransport(n)
	case node.VLESS:
		if n.VLESS == nil {
			return out, false
		}
		out.Type = "vless"
		out.UUID = n.VLESS.UUID
		out.Flow = n.VLESS.Flow
		out.TLS = singboxTLS(n)
		out.Transport = singboxTransport(n)
	case node.Trojan:
		if n.Trojan == nil {
			return out, false
		}
		out.Type = "trojan"
		out.Password = n.Trojan.Password
		out.TLS = singboxTLS(n)
		out.Transport = singboxTransport(n)
	case node.Socks5:
		out.Type = "socks"
		if n.UserPass != nil {
			out.Username = n.UserPass.Username
			out.Password = n.UserPass.Password
		}
	case node.HTTP, node.HTTPS:
		out.Type = "http"
		if n.UserPass != nil {
			out.Username = n.UserPass.Username
			out.Password = n.UserPass.Password
		}
		out.TLS = singboxTLS(n)
	case node.Hysteria2:
		if n.Hysteria2 == nil {
			return out, false
		}
		out.Type = "hysteria2"
		out.Password = n.Hysteria2.Password
		out.TLS = singboxTLS(n)
	default:
		return out, false
	}
	return out, true
}

func singboxTLS(n *node.Node) *singboxTLSOut {
	if !n.Kind.SupportsTLS() || !n.TLS.Enabled {
		return nil
	}
	return &singboxTLSOut{
		Enabled:    true,
		ServerName: n.TLS.SNI,
		ALPN:       n.TLS.ALPN,
		Insecure:   n.TLS.SkipCertVerify.Resolve(false),
	}
}

func singboxTransport(n *node.Node) *singboxTranOut {
	switch n.Transport.Type {
	case node.WS:
		return &singboxTranOut{Type: "ws", Path: n.Transport.Path}
	case node.GRPC:
		return &singboxTranOut{Type: "grpc", ServiceName: n.Transport.ServiceName}
	case node.H2:
		return &singboxTranOut{Type: "http", Path: n.Transport.Path}
	default:
		return nil
	}
}
