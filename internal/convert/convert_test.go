package convert

import (
	"context"
	"errors"
	"testing"

	"github.com/relayforge/subconverter/internal/ruleset"
	"github.com/relayforge/subconverter/internal/settings"
	"github.com/relayforge/subconverter/internal/xerrors"
)

func TestConvertInlineURIToMixed(t *testing.T) {
	o := New(settings.Default())
	req := &settings.Request{
		Target: "mixed",
		URLs:   []string{"ss://YWVzLTI1Ni1nY206cGFzc3dvcmQ@1.2.3.4:8388#test-node"},
	}
	out, err := o.Convert(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Document == "" {
		t.Fatalf("expected non-empty document")
	}
}

func TestConvertEmptyURLsIsSettingsError(t *testing.T) {
	o := New(settings.Default())
	req := &settings.Request{Target: "mixed"}
	_, err := o.Convert(context.Background(), req)
	var settingsErr *xerrors.SettingsError
	if !errors.As(err, &settingsErr) {
		t.Fatalf("expected *xerrors.SettingsError, got %v", err)
	}
	if settingsErr.Field != "url" {
		t.Fatalf("expected Field %q, got %q", "url", settingsErr.Field)
	}
}

func TestParseRulesetLineClassical(t *testing.T) {
	ref := parseRulesetLine("Proxy,https://example.com/rules.list")
	if ref.TargetGroup != "Proxy" || ref.URL != "https://example.com/rules.list" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
}

func TestParseRulesetLineScript(t *testing.T) {
	ref := parseRulesetLine("[]Proxy,function match() {}")
	if ref.TargetGroup != "Proxy" {
		t.Fatalf("expected target group Proxy, got %q", ref.TargetGroup)
	}
	if ref.DeclaredType != ruleset.TypeScript || ref.InlineBody != "function match() {}" {
		t.Fatalf("unexpected script ref: %+v", ref)
	}
}

func TestParseGroupConfigLine(t *testing.T) {
	cfgs := parseGroupConfigs([]string{"Proxy`select`DIRECT`REJECT"})
	if len(cfgs) != 1 || cfgs[0].Name != "Proxy" || len(cfgs[0].Members) != 2 {
		t.Fatalf("unexpected group configs: %+v", cfgs)
	}
}
