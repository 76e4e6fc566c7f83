package settings

import (
	"time"

	"gopkg.in/yaml.v3"

	"github.com/relayforge/subconverter/internal/xerrors"
)

// yamlConfig mirrors the on-disk static configuration file's shape.
// Field names use the same snake_case vocabulary as the query surface
// so a config file and a request overlay read the same way.
type yamlConfig struct {
	Dedup      *bool    `yaml:"dedup"`
	Sort       *bool    `yaml:"sort"`
	AppendType *bool    `yaml:"append_type"`
	Include    []string `yaml:"include"`
	Exclude    []string `yaml:"exclude"`

	EnableInsert bool   `yaml:"enable_insert"`
	InsertURL    string `yaml:"insert_url"`

	HTTP struct {
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		Retries        int    `yaml:"retries"`
		Concurrency    int    `yaml:"concurrency"`
		UserAgent      string `yaml:"user_agent"`
	} `yaml:"http"`

	Cache struct {
		RulesetTTLSeconds int `yaml:"ruleset_ttl_seconds"`
	} `yaml:"cache"`

	BaseTemplates   map[string]string `yaml:"base_templates"`
	DefaultRulesets []string          `yaml:"default_rulesets"`

	EmojiRules  []EmojiRule  `yaml:"emoji_rules"`
	RenameRules []RenameRule `yaml:"rename_rules"`
}

// LoadYAML parses a static configuration document and overlays it onto
// Default(), the bottom of the settings precedence chain.
func LoadYAML(raw []byte) (Settings, error) {
	base := Default()
	var cfg yamlConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return base, &xerrors.SettingsError{Field: "config", Reason: "invalid yaml: " + err.Error()}
	}

	if cfg.Dedup != nil {
		base.DedupEnabled = *cfg.Dedup
	}
	if cfg.Sort != nil {
		base.SortEnabled = *cfg.Sort
	}
	if cfg.AppendType != nil {
		base.AppendType = *cfg.AppendType
	}
	if len(cfg.Include) > 0 {
		base.Include = cfg.Include
	}
	if len(cfg.Exclude) > 0 {
		base.Exclude = cfg.Exclude
	}
	base.EnableInsert = cfg.EnableInsert
	base.InsertURL = cfg.InsertURL

	if cfg.HTTP.TimeoutSeconds > 0 {
		base.HTTP.Timeout = time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	}
	if cfg.HTTP.Retries > 0 {
		base.HTTP.Retries = cfg.HTTP.Retries
	}
	if cfg.HTTP.Concurrency > 0 {
		base.HTTP.Concurrency = cfg.HTTP.Concurrency
	}
	if cfg.HTTP.UserAgent != "" {
		base.HTTP.UserAgent = cfg.HTTP.UserAgent
	}
	if cfg.Cache.RulesetTTLSeconds > 0 {
		base.Cache.RulesetTTL = time.Duration(cfg.Cache.RulesetTTLSeconds) * time.Second
	}
	if len(cfg.BaseTemplates) > 0 {
		base.BaseTemplates = cfg.BaseTemplates
	}
	if len(cfg.DefaultRulesets) > 0 {
		base.DefaultRulesets = cfg.DefaultRulesets
	}
	if len(cfg.EmojiRules) > 0 {
		base.EmojiRules = cfg.EmojiRules
	}
	if len(cfg.RenameRules) > 0 {
		base.RenameRules = cfg.RenameRules
	}

	return base, nil
}
