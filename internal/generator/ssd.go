package generator

import (
	"encoding/json"

	"github.com/relayforge/subconverter/internal/node"
)

type ssdServerOut struct {
	ID            int    `json:"id"`
	Remarks       string `json:"remarks"`
	Server        string `json:"server"`
	Port          int    `json:"port"`
	Encryption    string `json:"encryption"`
	Password      string `json:"password"`
	Plugin        string `json:"plugin,omitempty"`
	PluginOptions string `json:"plugin_options,omitempty"`
}

type ssdDocOut struct {
	Airport        string         `json:"airport"`
	Port           int            `json:"port"`
	Encryption     string         `json:"encryption"`
	Password       string         `json:"password"`
	ServersArray   []ssdServerOut `json:"servers"`
}

// GenerateSSD renders a Shadowsocks-only SSD JSON document; every
// non-Shadowsocks node is skipped.
func GenerateSSD(in Input) (Result, error) {
	doc := ssdDocOut{Airport: "subconverter", Encryption: "aes-256-gcm"}
	skipped := 0
	id := 1
	for _, n := range in.Nodes {
		if n.Kind != node.Shadowsocks || n.Shadowsocks == nil {
			skipped++
			continue
		}
		s := ssdServerOut{
			ID:         id,
			Remarks:    n.Remark,
			Server:     n.Host,
			Port:       n.Port,
			Encryption: n.Shadowsocks.Method,
			Password:   n.Shadowsocks.Password,
		}
		if p := n.Shadowsocks.Plugin; p != nil {
			s.Plugin = p.Name
			s.PluginOptions = encodePluginOptions(p.Options)
		}
		doc.ServersArray = append(doc.ServersArray, s)
		id++
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Result{}, err
	}
	return Result{Document: string(out), Skipped: skipped}, nil
}

func encodePluginOptions(opts map[string]string) string {
	var out string
	first := true
	for k, v := range opts {
		if !first {
			out += ";"
		}
		first = false
		out += k + "=" + v
	}
	return out
}
