// Package settings holds the static Settings value: the
// defaults loaded once from a configuration file, then overlaid per
// request. Precedence, high to low: request parameters > external
// config > static settings > hard-coded defaults.
package settings

import (
	"time"

	"github.com/relayforge/subconverter/internal/node"
)

// RenameRule rewrites a remark. Script is carried through from
// configuration, but the Rename pipeline step does not read it: every
// rule, Script or not, is applied as a plain regex replacement.
type RenameRule struct {
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
	Script  bool   `yaml:"script"`
}

// EmojiRule maps a remark-matching pattern to a glyph prepended by the
// add-emoji pipeline step.
type EmojiRule struct {
	Pattern string `yaml:"pattern"`
	Glyph   string `yaml:"glyph"`
}

// HTTPParams mirrors the fetcher's concurrency/retry knobs.
type HTTPParams struct {
	Timeout     time.Duration
	Retries     int
	BackoffBase time.Duration
	Concurrency int
	UserAgent   string
}

// CacheParams governs the ruleset cache's TTL behavior.
type CacheParams struct {
	RulesetTTL time.Duration
}

// APIModeSwitches are the boolean knobs grouped under "API-mode
// switches".
type APIModeSwitches struct {
	Strict  bool
	Classic bool
	Expand  bool
	NewName bool
	Script  bool
}

// RenderOptions are target-specific rendering switches
// (clash_use_new_field_name, Surge's version-gated parameter set,
// singbox_add_clash_modes).
type RenderOptions struct {
	ClashUseNewFieldName bool
	SurgeVersion         int
	SingboxAddClashModes bool
}

// Settings is the full static configuration snapshot. A Settings value
// is immutable for the duration of a request; reconfiguration swaps the
// snapshot atomically for subsequent requests.
type Settings struct {
	// Global pipeline toggles.
	Include      []string
	Exclude      []string
	EmojiRules   []EmojiRule
	AddEmoji     node.TriState
	RemoveEmoji  node.TriState
	RenameRules  []RenameRule
	SortEnabled  bool
	SortScript   string
	DedupEnabled bool
	AppendType   bool

	HTTP  HTTPParams
	Cache CacheParams

	// BaseTemplates maps a target identifier (e.g. "clash", "surge") to
	// the URI of its default base template document.
	BaseTemplates map[string]string

	DefaultRulesets []string

	EnableInsert bool
	InsertURL    string

	API    APIModeSwitches
	Render RenderOptions

	TotalOutstandingFetchCap int
}

// Default returns the hard-coded defaults, the bottom of the overlay
// chain.
func Default() Settings {
	return Settings{
		DedupEnabled: true,
		HTTP: HTTPParams{
			Timeout:     10 * time.Second,
			Retries:     3,
			BackoffBase: 250 * time.Millisecond,
			Concurrency: 8,
			UserAgent:   "subconverter/1.0",
		},
		Cache: CacheParams{
			RulesetTTL: 6 * time.Hour,
		},
		BaseTemplates:            map[string]string{},
		TotalOutstandingFetchCap: 32,
		Render: RenderOptions{
			ClashUseNewFieldName: true,
			SurgeVersion:         4,
		},
	}
}
