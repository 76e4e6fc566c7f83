package template

import (
	"errors"
	"strings"
	"testing"
)

func TestExpandTokenSubstitution(t *testing.T) {
	out, err := Expand("host={{ host }} port={{port}}", map[string]string{"host": "example.com", "port": "443"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "host=example.com port=443" {
		t.Fatalf("got %q", out)
	}
}

func TestExpandUnknownKeyIsEmpty(t *testing.T) {
	out, err := Expand("x={{ missing }}", map[string]string{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "x=" {
		t.Fatalf("got %q", out)
	}
}

func TestExpandInclude(t *testing.T) {
	load := func(path string) ([]byte, error) {
		if path == "rules.tpl" {
			return []byte("included {{ name }}"), nil
		}
		return nil, errors.New("not found")
	}
	out, err := Expand(`base {{# include "rules.tpl" }} end`, map[string]string{"name": "X"}, load)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "base included X end" {
		t.Fatalf("got %q", out)
	}
}

func TestExpandMissingIncludeErrors(t *testing.T) {
	load := func(path string) ([]byte, error) { return nil, errors.New("boom") }
	_, err := Expand(`{{# include "missing.tpl" }}`, nil, load)
	if err == nil {
		t.Fatalf("expected error for missing include")
	}
	if !strings.Contains(err.Error(), "missing.tpl") {
		t.Fatalf("expected error to name the file, got %v", err)
	}
}

func TestExpandNestedInclude(t *testing.T) {
	load := func(path string) ([]byte, error) {
		switch path {
		case "a.tpl":
			return []byte(`A {{# include "b.tpl" }}`), nil
		case "b.tpl":
			return []byte("B"), nil
		}
		return nil, errors.New("not found")
	}
	out, err := Expand(`{{# include "a.tpl" }}`, nil, load)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "A B" {
		t.Fatalf("got %q", out)
	}
}
