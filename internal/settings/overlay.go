package settings

// Effective is the fully-resolved configuration for one request: the
// result of layering Request over ExternalConfig over the static
// Settings over hard-coded defaults.
type Effective struct {
	Settings
	Rulesets    []string
	ProxyGroups []string
}

// Resolve merges static, external and request-level configuration,
// high-to-low precedence: request > external config >
// static settings > hard-coded defaults. static is assumed to already
// have been built by overlaying a loaded config file onto Default().
func Resolve(static Settings, ext *ExternalConfig, req *Request) Effective {
	eff := Effective{Settings: static}

	if ext != nil {
		eff.Rulesets = ext.Rulesets
		eff.ProxyGroups = ext.ProxyGroups
		if len(ext.EmojiRules) > 0 {
			eff.EmojiRules = ext.EmojiRules
		}
		if len(ext.RenameRules) > 0 {
			eff.RenameRules = ext.RenameRules
		}
		applyOverrides(&eff.Settings, ext)
	}
	if len(eff.Rulesets) == 0 {
		eff.Rulesets = static.DefaultRulesets
	}

	if req == nil {
		return eff
	}

	if len(req.Include) > 0 {
		eff.Include = req.Include
	}
	if len(req.Exclude) > 0 {
		eff.Exclude = req.Exclude
	}
	if len(req.Rename) > 0 {
		eff.RenameRules = req.Rename
	}
	if req.AddEmoji != 0 {
		eff.AddEmoji = req.AddEmoji
	} else if req.Emoji != 0 {
		eff.AddEmoji = req.Emoji
	}
	if req.RemoveEmoji != 0 {
		eff.RemoveEmoji = req.RemoveEmoji
	} else if req.Emoji != 0 {
		eff.RemoveEmoji = req.Emoji
	}
	if req.Sort != nil {
		eff.SortEnabled = *req.Sort
	}
	if req.AppendType != nil {
		eff.AppendType = *req.AppendType
	}
	if req.Strict != nil {
		eff.API.Strict = *req.Strict
	}
	if req.Classic != nil {
		eff.API.Classic = *req.Classic
	}
	if req.Expand != nil {
		eff.API.Expand = *req.Expand
	}
	if req.NewName != nil {
		eff.API.NewName = *req.NewName
	}
	if req.Script != nil {
		eff.API.Script = *req.Script
	}
	if len(req.Ruleset) > 0 {
		eff.Rulesets = req.Ruleset
	}
	if len(req.Groups) > 0 {
		eff.ProxyGroups = req.Groups
	}
	if req.SurgeVersion != 0 {
		eff.Render.SurgeVersion = req.SurgeVersion
	}

	return eff
}

func applyOverrides(dst *Settings, ext *ExternalConfig) {
	if ext.HasOverrides == nil {
		return
	}
	src := ext.Overrides
	if ext.HasOverrides["dedup"] {
		dst.DedupEnabled = src.DedupEnabled
	}
	if ext.HasOverrides["sort"] {
		dst.SortEnabled = src.SortEnabled
	}
	if ext.HasOverrides["append_type"] {
		dst.AppendType = src.AppendType
	}
	if ext.HasOverrides["enable_insert"] {
		dst.EnableInsert = src.EnableInsert
	}
	if ext.HasOverrides["insert_url"] {
		dst.InsertURL = src.InsertURL
	}
}
