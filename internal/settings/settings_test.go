package settings

import "testing"

func TestLoadYAMLOverlaysDefaults(t *testing.T) {
	doc := `
dedup: false
sort: true
http:
  timeout_seconds: 20
  retries: 5
rename_rules:
  - pattern: "US"
    replace: "United States"
`
	got, err := LoadYAML([]byte(doc))
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if got.DedupEnabled {
		t.Fatalf("expected dedup overridden to false")
	}
	if !got.SortEnabled {
		t.Fatalf("expected sort overridden to true")
	}
	if got.HTTP.Retries != 5 {
		t.Fatalf("expected retries=5, got %d", got.HTTP.Retries)
	}
	if len(got.RenameRules) != 1 || got.RenameRules[0].Replace != "United States" {
		t.Fatalf("unexpected rename rules: %+v", got.RenameRules)
	}
}

func TestLoadINIExternal(t *testing.T) {
	doc := `
[custom]
ruleset=https://example.com/a.list,Proxy
custom_proxy_group=Proxy` + "`" + `select` + "`" + `[]DIRECT
rename=US@United States
emoji=🇺🇸,US
dedup=false
`
	ext, err := LoadINIExternal([]byte(doc))
	if err != nil {
		t.Fatalf("LoadINIExternal: %v", err)
	}
	if len(ext.Rulesets) != 1 {
		t.Fatalf("expected 1 ruleset, got %+v", ext.Rulesets)
	}
	if len(ext.RenameRules) != 1 || ext.RenameRules[0].Pattern != "US" {
		t.Fatalf("unexpected rename rules: %+v", ext.RenameRules)
	}
	if !ext.HasOverrides["dedup"] || ext.Overrides.DedupEnabled {
		t.Fatalf("expected dedup override to false")
	}
}

func TestResolvePrecedence(t *testing.T) {
	static := Default()
	static.SortEnabled = false
	ext := &ExternalConfig{
		Rulesets:     []string{"a"},
		HasOverrides: map[string]bool{"sort": true},
		Overrides:    Settings{SortEnabled: true},
	}
	trueVal := false
	req := &Request{Sort: &trueVal}

	eff := Resolve(static, ext, req)
	if eff.SortEnabled {
		t.Fatalf("request sort=false must win over external config sort=true")
	}
	if len(eff.Rulesets) != 1 {
		t.Fatalf("expected external config ruleset to carry through")
	}
}
