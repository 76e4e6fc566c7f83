package ruleset

import (
	"context"
	"testing"
	"time"

	"github.com/relayforge/subconverter/internal/fetch"
)

func TestClassifyClassicalPassthrough(t *testing.T) {
	ref := Reference{DeclaredType: TypeClassical, TargetGroup: "Proxy"}
	body := "DOMAIN-SUFFIX,google.com,Proxy\n# comment\nIP-CIDR,1.2.3.0/24,Proxy\n"
	r, err := classify(ref, body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %v", len(r.Lines), r.Lines)
	}
}

func TestClassifyDomainNormalizes(t *testing.T) {
	ref := Reference{DeclaredType: TypeDomain, TargetGroup: "Proxy"}
	body := "example.com\n+.wildcard.com\nDOMAIN,already.com,Proxy\n"
	r, err := classify(ref, body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"DOMAIN,example.com", "DOMAIN-SUFFIX,wildcard.com", "DOMAIN,already.com,Proxy"}
	for i, w := range want {
		if r.Lines[i] != w {
			t.Fatalf("line %d: got %q want %q", i, r.Lines[i], w)
		}
	}
}

func TestClassifyIPCIDRNormalizes(t *testing.T) {
	ref := Reference{DeclaredType: TypeIPCIDR, TargetGroup: "Proxy"}
	body := "10.0.0.0/8\n"
	r, err := classify(ref, body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Lines[0] != "IP-CIDR,10.0.0.0/8" {
		t.Fatalf("got %q", r.Lines[0])
	}
}

func TestClassifyScriptOpaque(t *testing.T) {
	ref := Reference{DeclaredType: TypeScript, TargetGroup: "Proxy"}
	body := "function match(ctx) { return true }"
	r, err := classify(ref, body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.IsScript || r.Script != body {
		t.Fatalf("expected opaque script body preserved, got %+v", r)
	}
}

func TestResolveInlineBody(t *testing.T) {
	e := NewEngine(time.Hour)
	refs := []Reference{
		{InlineBody: "DOMAIN,example.com,Proxy", DeclaredType: TypeClassical, TargetGroup: "Proxy"},
	}
	resolved, errs := e.Resolve(context.Background(), refs, fetch.DefaultOptions())
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(resolved) != 1 || resolved[0].Lines[0] != "DOMAIN,example.com,Proxy" {
		t.Fatalf("unexpected resolved: %+v", resolved)
	}
}

func TestResolveLocalFileTarget(t *testing.T) {
	e := NewEngine(time.Hour)
	refs := []Reference{
		{URL: "/nonexistent/path/does/not/exist.list", DeclaredType: TypeClassical, TargetGroup: "Proxy"},
	}
	_, errs := e.Resolve(context.Background(), refs, fetch.DefaultOptions())
	if len(errs) != 1 {
		t.Fatalf("expected one ruleset error for missing file, got %d", len(errs))
	}
}
