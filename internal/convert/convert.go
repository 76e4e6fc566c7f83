// Package convert wires the Subscription Fetcher, Document Parsers,
// Transformation Pipeline, Ruleset Engine, Template Engine, Proxy-Group
// Resolver and Generators into the converter core's outward contract:
// given a settings.Request, produce one target document plus
// accumulated warnings, or a fatal error.
package convert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/relayforge/subconverter/internal/document"
	"github.com/relayforge/subconverter/internal/fetch"
	"github.com/relayforge/subconverter/internal/generator"
	"github.com/relayforge/subconverter/internal/group"
	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/pipeline"
	"github.com/relayforge/subconverter/internal/ruleset"
	"github.com/relayforge/subconverter/internal/settings"
	"github.com/relayforge/subconverter/internal/template"
	"github.com/relayforge/subconverter/internal/xerrors"
)

// Orchestrator owns the long-lived collaborators a single process needs
// across many requests: the static settings snapshot and the ruleset
// cache, which persists across requests; everything else here is built
// fresh per request.
type Orchestrator struct {
	Static  settings.Settings
	Rules   *ruleset.Engine
	FetchOp fetch.Options
}

// New builds an Orchestrator from a static settings snapshot, sizing
// the ruleset cache TTL from it.
func New(static settings.Settings) *Orchestrator {
	return &Orchestrator{
		Static:  static,
		Rules:   ruleset.NewEngine(static.Cache.RulesetTTL),
		FetchOp: fetch.Options{
			PoolSize:            static.HTTP.Concurrency,
			Timeout:             static.HTTP.Timeout,
			Retries:             static.HTTP.Retries,
			BackoffBase:         static.HTTP.BackoffBase,
			TotalOutstandingCap: static.TotalOutstandingFetchCap,
		},
	}
}

// Outcome is the result of one Convert call: the rendered document plus
// every non-fatal diagnostic accumulated along the way. A warning never
// changes output bytes.
type Outcome struct {
	Document string
	Skipped  int
	Warnings []xerrors.Warning
}

// Convert runs the full pipeline for one request. ctx cancellation is
// observed at every suspension point (fetch, ruleset fetch); a
// cancellation surfaces as *xerrors.CancelledError.
func (o *Orchestrator) Convert(ctx context.Context, req *settings.Request) (Outcome, error) {
	var warnings []xerrors.Warning

	ext, extWarn := o.loadExternalConfig(ctx, req)
	warnings = append(warnings, extWarn...)

	eff := settings.Resolve(o.Static, ext, req)

	if len(req.URLs) == 0 {
		return Outcome{}, &xerrors.SettingsError{Field: "url", Reason: "target requires at least one source"}
	}

	fetchOpts := o.FetchOp
	fetchOpts.Strict = eff.API.Strict
	if fetchOpts.PoolSize == 0 {
		fetchOpts = fetch.DefaultOptions()
		fetchOpts.Strict = eff.API.Strict
	}

	targets := buildTargets(req.URLs)
	report, err := fetch.Fetch(ctx, targets, fetchOpts)
	if ctx.Err() != nil {
		return Outcome{}, &xerrors.CancelledError{Where: "fetch"}
	}
	if err != nil {
		return Outcome{}, err
	}
	for _, ierr := range report.Errors {
		warnings = append(warnings, xerrors.Warning{Source: ierr.Source, Message: ierr.Error()})
	}

	var nodes []*node.Node
	for _, res := range report.Results {
		parsed, err := document.Autodetect(res.Raw, res.SourceTag)
		if err != nil {
			warnings = append(warnings, xerrors.Warning{Source: res.SourceTag, Message: err.Error()})
			continue
		}
		warnings = append(warnings, parsed.Warnings...)
		nodes = append(nodes, parsed.Nodes...)
	}

	nodes = pipeline.Run(nodes, eff)

	groupCfgs := parseGroupConfigs(eff.ProxyGroups)
	resolvedGroups, err := group.Resolve(groupCfgs, nodes, nil)
	if err != nil {
		return Outcome{}, err
	}
	var groupPlans []generator.GroupPlan
	for _, cfg := range groupCfgs {
		groupPlans = append(groupPlans, generator.GroupPlan{
			Name: cfg.Name, Type: cfg.Type, Members: resolvedGroups[cfg.Name],
		})
	}

	refs := parseRulesetRefs(eff.Rulesets)
	resolvedRules, ruleErrs := o.Rules.Resolve(ctx, refs, fetchOpts)
	if ctx.Err() != nil {
		return Outcome{}, &xerrors.CancelledError{Where: "ruleset fetch"}
	}
	for _, rerr := range ruleErrs {
		warnings = append(warnings, xerrors.Warning{Source: rerr.URL, Message: rerr.Error()})
	}

	targetName := resolveTargetName(req)
	gen, ok := generator.Lookup(targetName)
	if !ok {
		return Outcome{}, fmt.Errorf("no generator registered for target %q", targetName)
	}

	baseTemplate, baseLoader, baseWarn := o.loadBaseTemplate(ctx, eff.BaseTemplates[string(targetName)], fetchOpts)
	warnings = append(warnings, baseWarn...)

	result, err := gen(generator.Input{
		Nodes:              nodes,
		Groups:             groupPlans,
		Rulesets:           resolvedRules,
		Eff:                eff,
		BaseTemplate:       baseTemplate,
		BaseTemplateLoader: baseLoader,
	})
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{Document: result.Document, Skipped: result.Skipped, Warnings: warnings}, nil
}

func resolveTargetName(req *settings.Request) generator.Target {
	if req.Target != "" {
		return generator.Target(req.Target)
	}
	return generator.Mixed
}

func buildTargets(urls []string) []fetch.Target {
	targets := make([]fetch.Target, len(urls))
	for i, u := range urls {
		targets[i] = fetch.Target{Value: u, Group: fmt.Sprintf("feed%d", i)}
	}
	return targets
}

func parseGroupConfigs(lines []string) []group.Config {
	var cfgs []group.Config
	for _, line := range lines {
		if cfg, ok := group.ParseConfigLine(line); ok {
			cfgs = append(cfgs, cfg)
		}
	}
	return cfgs
}

func parseRulesetRefs(lines []string) []ruleset.Reference {
	var refs []ruleset.Reference
	for _, line := range lines {
		refs = append(refs, parseRulesetLine(line))
	}
	return refs
}

// parseRulesetLine parses the classic `target,url-or-inline` ruleset
// grammar; a `[]` prefix on the target marks a script ruleset destined
// only for targets that support opaque script rules.
func parseRulesetLine(line string) ruleset.Reference {
	idx := strings.IndexByte(line, ',')
	if idx < 0 {
		return ruleset.Reference{DeclaredType: ruleset.TypeClassical, TargetGroup: line}
	}
	target := line[:idx]
	rest := line[idx+1:]
	declared := ruleset.TypeClassical
	if len(target) > 2 && target[0] == '[' && target[1] == ']' {
		target = target[2:]
		declared = ruleset.TypeScript
	}
	ref := ruleset.Reference{TargetGroup: target, DeclaredType: declared}
	if len(rest) > 0 && (rest[0] == '/' || rest[0] == '.') {
		ref.URL = rest // treated as local path by the fetcher
	} else if hasURLScheme(rest) {
		ref.URL = rest
	} else {
		ref.InlineBody = rest
	}
	return ref
}

func hasURLScheme(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// loadBaseTemplate fetches a target's configured base template, if any,
// and returns a Loader that resolves `{{# include "path" }}` directives
// inside it through the same fetch path (local file or remote URL).
func (o *Orchestrator) loadBaseTemplate(ctx context.Context, uri string, opts fetch.Options) (string, template.Loader, []xerrors.Warning) {
	if uri == "" {
		return "", nil, nil
	}
	report, err := fetch.Fetch(ctx, []fetch.Target{{Value: uri, Group: "base-template"}}, opts)
	if err != nil || len(report.Results) == 0 {
		return "", nil, []xerrors.Warning{{Source: "base-template", Message: "could not load base template, falling back to scratch generation"}}
	}
	loader := func(path string) ([]byte, error) {
		rep, err := fetch.Fetch(ctx, []fetch.Target{{Value: path, Group: "base-template-include"}}, opts)
		if err != nil {
			return nil, err
		}
		if len(rep.Results) == 0 {
			return nil, &xerrors.TemplateError{File: path, Kind: xerrors.TemplateMissingInclude}
		}
		return rep.Results[0].Raw, nil
	}
	return string(report.Results[0].Raw), loader, nil
}

func (o *Orchestrator) loadExternalConfig(ctx context.Context, req *settings.Request) (*settings.ExternalConfig, []xerrors.Warning) {
	if req.Config == "" {
		return nil, nil
	}
	opts := o.FetchOp
	if opts.PoolSize == 0 {
		opts = fetch.DefaultOptions()
	}
	opts.Timeout = 10 * time.Second
	report, err := fetch.Fetch(ctx, []fetch.Target{{Value: req.Config, Group: "external-config"}}, opts)
	if err != nil || len(report.Results) == 0 {
		return nil, []xerrors.Warning{{Source: "external-config", Message: "could not load config= document"}}
	}
	raw := report.Results[0].Raw

	if ext, err := settings.LoadINIExternal(raw); err == nil {
		return ext, nil
	}
	if s, err := settings.LoadYAML(raw); err == nil {
		return &settings.ExternalConfig{Overrides: s, HasOverrides: map[string]bool{}}, nil
	}
	return nil, []xerrors.Warning{{Source: "external-config", Message: "unrecognized config= document format"}}
}
