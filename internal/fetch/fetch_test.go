package fetch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFetchInlineURI(t *testing.T) {
	targets := []Target{{Value: "ss://YWVzLTEyOC1nY206dGVzdA==@192.168.100.1:8888#x", Group: "inline"}}
	report, err := Fetch(context.Background(), targets, DefaultOptions())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(report.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(report.Results))
	}
	if report.Results[0].SourceTag != "inline" {
		t.Fatalf("unexpected source tag: %q", report.Results[0].SourceTag)
	}
}

func TestFetchLocalPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	targets := []Target{{Value: path, Group: "local"}}
	report, err := Fetch(context.Background(), targets, DefaultOptions())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(report.Results) != 1 || string(report.Results[0].Raw) != "hello" {
		t.Fatalf("unexpected result: %+v", report.Results)
	}
}

func TestFetchLocalPathMissingContinuesNonStrict(t *testing.T) {
	targets := []Target{
		{Value: "/nonexistent/path/should/not/exist", Group: "bad"},
	}
	opts := DefaultOptions()
	opts.Retries = 0
	report, err := Fetch(context.Background(), targets, opts)
	if err != nil {
		t.Fatalf("non-strict fetch should not return a top-level error: %v", err)
	}
	if len(report.Errors) != 1 {
		t.Fatalf("expected 1 ingest error, got %d", len(report.Errors))
	}
}

func TestFetchRespectsOutstandingCap(t *testing.T) {
	var targets []Target
	for i := 0; i < 50; i++ {
		targets = append(targets, Target{Value: "ss://YWVzLTEyOC1nY206dGVzdA==@192.168.100.1:8888#x", Group: "inline"})
	}
	opts := DefaultOptions()
	opts.TotalOutstandingCap = 5
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	report, err := Fetch(ctx, targets, opts)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(report.Results) != 5 {
		t.Fatalf("expected cap of 5 results, got %d", len(report.Results))
	}
}
