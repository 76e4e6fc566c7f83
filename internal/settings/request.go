package settings

import "github.com/relayforge/subconverter/internal/node"

// Request is the per-request overlay of the conversion query surface.
// Every field is optional; a nil/zero-value field leaves the lower
// layer (external config, then static Settings, then hard-coded
// default) in effect.
type Request struct {
	Target string
	URLs   []string
	Config string

	Include []string
	Exclude []string
	Rename  []RenameRule

	Emoji       node.TriState
	AddEmoji    node.TriState
	RemoveEmoji node.TriState

	UDP   node.TriState
	TFO   node.TriState
	SCV   node.TriState
	TLS13 node.TriState

	Sort       *bool
	List       *bool
	AppendType *bool
	FDN        *bool
	NewName    *bool
	Script     *bool
	Classic    *bool
	Expand     *bool

	SurgeVersion int

	Filename string
	Group    string
	Groups   []string
	Ruleset  []string

	Interval int
	Strict   *bool
	Token    string
	DevID    string
}

// ExternalConfig is what a `config=` INI/YAML document overlays onto the
// static Settings for a single request: its own ruleset list,
// proxy-group list, emoji rules, rename rules, and setting overrides.
type ExternalConfig struct {
	Rulesets    []string
	ProxyGroups []string
	EmojiRules  []EmojiRule
	RenameRules []RenameRule

	Overrides Settings
	// HasOverrides marks which Overrides fields the document actually
	// set, since Settings' zero values (e.g. DedupEnabled=false) are
	// themselves meaningful and must not silently clobber static config.
	HasOverrides map[string]bool
}
