package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/relayforge/subconverter/internal/uri"
	"github.com/relayforge/subconverter/internal/xerrors"
)

func init() {
	register(plainListParser{})
}

// plainListParser decodes a base64-encoded (or raw) newline-separated
// list of single-node URIs, the lowest-common-denominator subscription
// format: one URI codec line per node.
type plainListParser struct{}

func (plainListParser) Name() string { return "plainlist" }

func (plainListParser) Sniff(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	if decoded, err := uri.Base64Decode(string(trimmed)); err == nil {
		trimmed = bytes.TrimSpace(decoded)
	}
	for _, line := range bytes.Split(trimmed, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if uri.DetectScheme(string(line)) != "" {
			return true
		}
		return false
	}
	return false
}

func (plainListParser) Parse(raw []byte, group string) (Result, error) {
	body := bytes.TrimSpace(raw)
	if decoded, err := uri.Base64Decode(string(body)); err == nil {
		body = decoded
	}

	var res Result
	for i, rawLine := range strings.Split(string(body), "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}
		n, err := uri.Decode(line)
		if err != nil {
			res.Warnings = append(res.Warnings, partial(group, fmt.Sprintf("line %d: %v", i+1, err)))
			continue
		}
		if group != "" {
			n.Group = group
		}
		res.Nodes = append(res.Nodes, n)
	}
	if len(res.Nodes) == 0 && len(res.Warnings) == 0 {
		return Result{}, &xerrors.ParseError{Format: "plainlist", Position: -1, Reason: "no recognizable uri lines"}
	}
	return res, nil
}
