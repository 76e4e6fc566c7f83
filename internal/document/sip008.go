package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/xerrors"
)

func init() {
	register(sip008Parser{})
}

// sip008Parser decodes the SIP008 online-configuration-delivery format:
// a flat JSON array (or {"servers": [...]} envelope) of Shadowsocks
// servers identified by a "server" + "server_port" pair.
type sip008Parser struct{}

func (sip008Parser) Name() string { return "sip008" }

func (sip008Parser) Sniff(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var probe []sip008Server
		return json.Unmarshal(trimmed, &probe) == nil && len(probe) > 0 && probe[0].Server != ""
	}
	if bytes.HasPrefix(trimmed, []byte("{")) {
		var probe struct {
			Version int             `json:"version"`
			Servers []sip008Server  `json:"servers"`
		}
		return json.Unmarshal(trimmed, &probe) == nil && probe.Version > 0 && len(probe.Servers) > 0
	}
	return false
}

type sip008Server struct {
	ID       string `json:"id"`
	Remarks  string `json:"remarks"`
	Server   string `json:"server"`
	Port     int    `json:"server_port"`
	Password string `json:"password"`
	Method   string `json:"method"`
	Plugin   string `json:"plugin"`
	PluginOpts string `json:"plugin_opts"`
}

func (sip008Parser) Parse(raw []byte, group string) (Result, error) {
	var servers []sip008Server
	trimmed := bytes.TrimSpace(raw)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		if err := json.Unmarshal(trimmed, &servers); err != nil {
			return Result{}, &xerrors.ParseError{Format: "sip008", Position: -1, Reason: "invalid json: " + err.Error()}
		}
	} else {
		var envelope struct {
			Servers []sip008Server `json:"servers"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return Result{}, &xerrors.ParseError{Format: "sip008", Position: -1, Reason: "invalid json: " + err.Error()}
		}
		servers = envelope.Servers
	}

	var res Result
	for i, s := range servers {
		remark := s.Remarks
		if remark == "" {
			remark = s.ID
		}
		n := &node.Node{
			Kind:   node.Shadowsocks,
			Remark: remark,
			Group:  group,
			Host:   s.Server,
			Port:   s.Port,
			Shadowsocks: &node.ShadowsocksCreds{
				Method:   s.Method,
				Password: s.Password,
			},
		}
		if s.Plugin != "" {
			n.Shadowsocks.Plugin = &node.Plugin{Name: s.Plugin, Options: parseSSDPluginOpt(s.PluginOpts)}
		}
		if err := n.Validate(); err != nil {
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("servers[%d]: %v", i, err)))
			continue
		}
		res.Nodes = append(res.Nodes, n)
	}
	return res, nil
}
