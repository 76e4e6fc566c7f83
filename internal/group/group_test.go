package group

import (
	"testing"

	"github.com/relayforge/subconverter/internal/node"
)

func mkNode(remark, sourceGroup string) *node.Node {
	return &node.Node{Kind: node.Shadowsocks, Remark: remark, Group: sourceGroup}
}

func TestResolveRegexAndSynthetic(t *testing.T) {
	nodes := []*node.Node{
		mkNode("US-01", "feedA"),
		mkNode("JP-01", "feedA"),
	}
	cfgs := []Config{
		{Name: "Proxy", Members: []string{"![US.*]", "DIRECT"}},
	}
	resolved, err := Resolve(cfgs, nodes, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"US-01", "DIRECT"}
	got := resolved["Proxy"]
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("index %d: got %q want %q (%v)", i, got[i], w, got)
		}
	}
}

func TestResolveGroupTagAndLiteralChain(t *testing.T) {
	nodes := []*node.Node{
		mkNode("US-01", "feedA"),
		mkNode("JP-01", "feedB"),
	}
	cfgs := []Config{
		{Name: "USOnly", Members: []string{"!!GROUP=feedA"}},
		{Name: "All", Members: []string{"USOnly", "!!GROUP=feedB"}},
	}
	resolved, err := Resolve(cfgs, nodes, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resolved["All"]) != 2 || resolved["All"][0] != "US-01" || resolved["All"][1] != "JP-01" {
		t.Fatalf("unexpected chain resolution: %v", resolved["All"])
	}
}

func TestResolveDedupPreservesFirstOccurrence(t *testing.T) {
	nodes := []*node.Node{mkNode("US-01", "feedA")}
	cfgs := []Config{{Name: "Proxy", Members: []string{"![US.*]", "![US.*]"}}}
	resolved, err := Resolve(cfgs, nodes, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resolved["Proxy"]) != 1 {
		t.Fatalf("expected dedup to one member, got %v", resolved["Proxy"])
	}
}

func TestResolveEmptyGroupPolicy(t *testing.T) {
	cfgs := []Config{{Name: "Empty", Members: []string{"![nonexistent]"}, AllowEmptyGroup: true}}
	resolved, err := Resolve(cfgs, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resolved["Empty"]) != 1 || resolved["Empty"][0] != "DIRECT" {
		t.Fatalf("expected DIRECT placeholder, got %v", resolved["Empty"])
	}

	cfgsStrict := []Config{{Name: "Strict", Members: []string{"![nonexistent]"}, AllowEmptyGroup: false}}
	_, err = Resolve(cfgsStrict, nil, nil)
	if err == nil {
		t.Fatalf("expected GroupError for empty strict group")
	}
}

func TestResolveInsert(t *testing.T) {
	cfgs := []Config{{Name: "Proxy", Members: []string{"!!INSERT=extra-feed"}}}
	insert := func(source string) []*node.Node {
		if source == "extra-feed" {
			return []*node.Node{mkNode("Inserted-01", "extra-feed")}
		}
		return nil
	}
	resolved, err := Resolve(cfgs, nil, insert)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resolved["Proxy"]) != 1 || resolved["Proxy"][0] != "Inserted-01" {
		t.Fatalf("unexpected insert resolution: %v", resolved["Proxy"])
	}
}
