package settings

import (
	"bufio"
	"strings"

	"github.com/relayforge/subconverter/internal/xerrors"
)

// LoadINIExternal parses an INI-style external config document (the
// `config=` request parameter): a [custom] section carrying ruleset=,
// custom_proxy_group=, rename=, emoji= repeated keys, plus a handful of
// bare setting overrides.
func LoadINIExternal(raw []byte) (*ExternalConfig, error) {
	ext := &ExternalConfig{HasOverrides: map[string]bool{}}
	section := ""

	scanner := bufio.NewScanner(strings.NewReader(string(raw)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])

		if section != "custom" && section != "" {
			continue
		}

		switch key {
		case "ruleset", "surge_ruleset":
			ext.Rulesets = append(ext.Rulesets, value)
		case "custom_proxy_group":
			ext.ProxyGroups = append(ext.ProxyGroups, value)
		case "rename":
			if rule, ok := parseRenameField(value); ok {
				ext.RenameRules = append(ext.RenameRules, rule)
			}
		case "emoji":
			if rule, ok := parseEmojiField(value); ok {
				ext.EmojiRules = append(ext.EmojiRules, rule)
			}
		case "enable_insert":
			ext.Overrides.EnableInsert = value == "true"
			ext.HasOverrides["enable_insert"] = true
		case "insert_url":
			ext.Overrides.InsertURL = value
			ext.HasOverrides["insert_url"] = true
		case "dedup":
			ext.Overrides.DedupEnabled = value == "true"
			ext.HasOverrides["dedup"] = true
		case "sort":
			ext.Overrides.SortEnabled = value == "true"
			ext.HasOverrides["sort"] = true
		case "append_type":
			ext.Overrides.AppendType = value == "true"
			ext.HasOverrides["append_type"] = true
		}
	}

	if len(ext.Rulesets) == 0 && len(ext.ProxyGroups) == 0 && len(ext.RenameRules) == 0 && len(ext.EmojiRules) == 0 && len(ext.HasOverrides) == 0 {
		return nil, &xerrors.SettingsError{Field: "config", Reason: "no recognizable [custom] directives"}
	}
	return ext, nil
}

// parseRenameField parses a "pattern@replacement" rename directive.
func parseRenameField(field string) (RenameRule, bool) {
	idx := strings.Index(field, "@")
	if idx < 0 {
		return RenameRule{}, false
	}
	return RenameRule{Pattern: field[:idx], Replace: field[idx+1:]}, true
}

// parseEmojiField parses a "pattern,glyph" emoji rule directive.
func parseEmojiField(field string) (EmojiRule, bool) {
	idx := strings.LastIndex(field, ",")
	if idx < 0 {
		return EmojiRule{}, false
	}
	return EmojiRule{Pattern: strings.TrimSpace(field[:idx]), Glyph: strings.TrimSpace(field[idx+1:])}, true
}
