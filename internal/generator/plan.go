// Package generator implements the Generators: each target is a pure
// function from (nodes, group plan, ruleset plan, settings, base
// template) to document text.
package generator

import (
	"errors"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/ruleset"
	"github.com/relayforge/subconverter/internal/settings"
	"github.com/relayforge/subconverter/internal/template"
)

var errNoLoader = errors.New("base template includes a file but no loader was wired")

// GroupPlan is one resolved proxy group, ready for a generator: its
// name, type (select/url-test/fallback/load-balance; generators that
// don't distinguish types collapse this), and resolved member remarks.
type GroupPlan struct {
	Name    string
	Type    string // "select", "url-test", "fallback", "load-balance"
	Members []string
}

// Input bundles everything a generator needs to render one target
// document. BaseTemplate is the raw base document text (already
// fetched); generators that don't use a base template ignore it and
// assemble the document from scratch. BaseTemplateLoader resolves
// `{{# include "path" }}` directives found inside BaseTemplate; it is
// nil whenever BaseTemplate is empty.
type Input struct {
	Nodes    []*node.Node
	Groups   []GroupPlan
	Rulesets []ruleset.Resolved
	Eff      settings.Effective

	BaseTemplate       string
	BaseTemplateLoader template.Loader
}

// expandTemplate runs BaseTemplate through the Template Engine with the
// given bindings, using a no-op loader (every include fails) if the
// caller didn't wire one.
func expandTemplate(in Input, bindings map[string]string) (string, error) {
	load := in.BaseTemplateLoader
	if load == nil {
		load = func(path string) ([]byte, error) {
			return nil, errNoLoader
		}
	}
	return template.Expand(in.BaseTemplate, bindings, load)
}

// Target names the document formats a generator can render.
type Target string

const (
	Clash         Target = "clash"
	Surge         Target = "surge"
	SingBox       Target = "singbox"
	Quantumult    Target = "quan"
	QuantumultX   Target = "quanx"
	Loon          Target = "loon"
	Mellow        Target = "mellow"
	SSD           Target = "ssd"
	SSSub         Target = "sssub"
	Mixed         Target = "mixed"
)

// Generator renders one Input into the target's document text. A node
// whose kind the target cannot express is silently skipped and counted
// in Result.Skipped.
type Generator func(in Input) (Result, error)

// Result is a rendered document plus diagnostics.
type Result struct {
	Document string
	Skipped  int // nodes dropped because the target cannot express their kind
}

var registry = map[Target]Generator{}

func register(t Target, g Generator) { registry[t] = g }

// Lookup returns the generator function for a target, if registered.
func Lookup(t Target) (Generator, bool) {
	g, ok := registry[t]
	return g, ok
}

func init() {
	register(Clash, GenerateClash)
	register(Surge, GenerateSurge)
	register(SingBox, GenerateSingBox)
	register(Quantumult, GenerateQuantumult)
	register(QuantumultX, GenerateQuantumultX)
	register(Loon, GenerateLoon)
	register(Mellow, GenerateMellow)
	register(SSD, GenerateSSD)
	register(SSSub, GenerateSSSub)
	register(Mixed, GenerateMixed)
}
