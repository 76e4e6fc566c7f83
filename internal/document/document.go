// Package document implements the multi-node Document Parsers: Clash
// YAML, SSD JSON, SingBox JSON, Surge/Quan/QuanX/Loon INI-like,
// plain-base64 list, SIP008 JSON, plus format auto-detection.
package document

import (
	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/xerrors"
)

// Result is what a document parser returns: the nodes it could build,
// tagged with the source's group, plus any partial-node warnings. A
// parser never drops a recognized-but-incomplete node silently — it is
// reported here instead.
type Result struct {
	Nodes    []*node.Node
	Warnings []xerrors.Warning
}

// Parser decodes one document format into a Result.
type Parser interface {
	Name() string
	// Sniff reports whether raw plausibly belongs to this format, used
	// by the auto-detect dispatcher. It must be cheap and must not
	// mutate raw.
	Sniff(raw []byte) bool
	Parse(raw []byte, group string) (Result, error)
}

var parsers []Parser

func register(p Parser) {
	parsers = append(parsers, p)
}

// Parsers returns the registered parsers in registration order.
// Autodetect does not use this order: it looks parsers up by name in its
// own fixed sequence. Direct callers should prefer a named parser.
func Parsers() []Parser {
	return parsers
}

func partial(group, reason string) xerrors.Warning {
	return xerrors.Warning{Source: group, Message: "partial node: " + reason}
}
