package document

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/xerrors"
)

func init() {
	register(ssdParser{})
}

// ssdParser decodes the SSD JSON format (a flat Shadowsocks subscription
// envelope with shared defaults and a per-server override list).
type ssdParser struct{}

func (ssdParser) Name() string { return "ssd" }

func (ssdParser) Sniff(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(trimmed, []byte("{")) {
		return false
	}
	var probe struct {
		Airport string          `json:"airport"`
		Servers json.RawMessage `json:"servers"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return false
	}
	return probe.Servers != nil
}

type ssdServer struct {
	Server    string `json:"server"`
	Port      int    `json:"port"`
	Encrypt   string `json:"encryption"`
	Password  string `json:"password"`
	Remarks   string `json:"remarks"`
	Plugin    string `json:"plugin"`
	PluginOpt string `json:"plugin_options"`
}

type ssdDocument struct {
	Airport       string      `json:"airport"`
	Port          int         `json:"port"`
	Encryption    string      `json:"encryption"`
	Password      string      `json:"password"`
	Servers       []ssdServer `json:"servers"`
}

func (ssdParser) Parse(raw []byte, group string) (Result, error) {
	var doc ssdDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Result{}, &xerrors.ParseError{Format: "ssd", Position: -1, Reason: "invalid json: " + err.Error()}
	}
	if group == "" {
		group = doc.Airport
	}

	var res Result
	for i, s := range doc.Servers {
		port := s.Port
		if port == 0 {
			port = doc.Port
		}
		encrypt := s.Encrypt
		if encrypt == "" {
			encrypt = doc.Encryption
		}
		password := s.Password
		if password == "" {
			password = doc.Password
		}
		n := &node.Node{
			Kind:   node.Shadowsocks,
			Remark: s.Remarks,
			Group:  group,
			Host:   s.Server,
			Port:   port,
			Shadowsocks: &node.ShadowsocksCreds{
				Method:   encrypt,
				Password: password,
			},
		}
		if s.Plugin != "" {
			n.Shadowsocks.Plugin = &node.Plugin{Name: s.Plugin, Options: parseSSDPluginOpt(s.PluginOpt)}
		}
		if err := n.Validate(); err != nil {
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("servers[%d]: %v", i, err)))
			continue
		}
		res.Nodes = append(res.Nodes, n)
	}
	return res, nil
}

func parseSSDPluginOpt(opt string) map[string]string {
	out := map[string]string{}
	if opt == "" {
		return out
	}
	for _, kv := range bytes.Split([]byte(opt), []byte(";")) {
		parts := bytes.SplitN(kv, []byte("="), 2)
		if len(parts) == 2 {
			out[string(parts[0])] = string(parts[1])
		} else if len(parts[0]) > 0 {
			out[string(parts[0])] = ""
		}
	}
	return out
}
