// Package template implements the Template Engine: a minimal, total
// token-substitution language with include directives that may nest up
// to maxIncludeDepth levels, deliberately
// short of a general templating engine since the contract
// forbids loops and conditionals.
package template

import (
	"regexp"

	"github.com/relayforge/subconverter/internal/xerrors"
)

// Loader resolves an include path to its raw contents. Callers wire
// this to the filesystem, an embedded FS, or a remote fetch depending
// on where base templates live.
type Loader func(path string) ([]byte, error)

var (
	tokenPattern   = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)
	includePattern = regexp.MustCompile(`\{\{#\s*include\s+"([^"]+)"\s*\}\}`)
)

// Expand substitutes every `{{ key }}` token from bindings and inlines
// every `{{# include "path" }}` directive via load, recursively. Unknown
// keys expand to empty string. A missing include file is the only
// failure mode; the engine is total otherwise.
func Expand(text string, bindings map[string]string, load Loader) (string, error) {
	return expand(text, bindings, load, 0)
}

// maxIncludeDepth bounds recursive includes; the language has no loop
// construct, so a cycle can only arise from includes referencing each
// other, and this catches it without a separate visited-set.
const maxIncludeDepth = 16

func expand(text string, bindings map[string]string, load Loader, depth int) (string, error) {
	if depth > maxIncludeDepth {
		return "", &xerrors.TemplateError{File: "<nested include>", Kind: xerrors.TemplateMissingInclude}
	}

	var expandErr error
	withIncludes := includePattern.ReplaceAllStringFunc(text, func(match string) string {
		if expandErr != nil {
			return ""
		}
		sub := includePattern.FindStringSubmatch(match)
		path := sub[1]
		raw, err := load(path)
		if err != nil {
			expandErr = &xerrors.TemplateError{File: path, Kind: xerrors.TemplateMissingInclude}
			return ""
		}
		inlined, err := expand(string(raw), bindings, load, depth+1)
		if err != nil {
			expandErr = err
			return ""
		}
		return inlined
	})
	if expandErr != nil {
		return "", expandErr
	}

	out := tokenPattern.ReplaceAllStringFunc(withIncludes, func(match string) string {
		key := tokenPattern.FindStringSubmatch(match)[1]
		return bindings[key]
	})
	return out, nil
}
