package generator

import (
	"encoding/base64"
	"strings"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/uri"
)

// GenerateSSSub renders SIP002 ss:// URIs, one per Shadowsocks node,
// newline-joined and base64-encoded once.
func GenerateSSSub(in Input) (Result, error) {
	var lines []string
	skipped := 0
	for _, n := range in.Nodes {
		if n.Kind != node.Shadowsocks {
			skipped++
			continue
		}
		line, err := uri.Encode(n)
		if err != nil {
			skipped++
			continue
		}
		lines = append(lines, line)
	}
	joined := strings.Join(lines, "\n")
	return Result{Document: base64.StdEncoding.EncodeToString([]byte(joined)), Skipped: skipped}, nil
}

// GenerateMixed renders every node whose kind has a URI scheme as a
// newline-joined, once base64-encoded plain list.
func GenerateMixed(in Input) (Result, error) {
	var lines []string
	skipped := 0
	for _, n := range in.Nodes {
		line, err := uri.Encode(n)
		if err != nil {
			skipped++
			continue
		}
		lines = append(lines, line)
	}
	joined := strings.Join(lines, "\n")
	return Result{Document: base64.StdEncoding.EncodeToString([]byte(joined)), Skipped: skipped}, nil
}
