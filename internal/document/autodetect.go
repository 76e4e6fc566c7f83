package document

import (
	"fmt"

	"github.com/relayforge/subconverter/internal/xerrors"
)

func findParser(name string) Parser {
	for _, p := range parsers {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// Autodetect implements fixed-order format detection: the first parser
// whose rule matches wins, falling back to the plain-list base64/raw-URI
// path as a last resort.
func Autodetect(raw []byte, group string) (Result, error) {
	order := []string{"clash", "ssd", "singbox", "surge", "loon", "quantumultx", "quantumult"}
	for _, name := range order {
		p := findParser(name)
		if p == nil || !p.Sniff(raw) {
			continue
		}
		res, err := p.Parse(raw, group)
		if err == nil {
			return res, nil
		}
	}

	if p := findParser("sip008"); p != nil && p.Sniff(raw) {
		if res, err := p.Parse(raw, group); err == nil {
			return res, nil
		}
	}

	if p := findParser("plainlist"); p != nil {
		res, err := p.Parse(raw, group)
		if err == nil {
			return res, nil
		}
	}

	return Result{}, &xerrors.ParseError{Format: "autodetect", Position: -1, Reason: fmt.Sprintf("no parser recognized %d bytes of input", len(raw))}
}
