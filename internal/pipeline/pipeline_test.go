package pipeline

import (
	"testing"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/settings"
)

func mkNode(remark, host string, port int) *node.Node {
	return &node.Node{
		Kind:        node.Shadowsocks,
		Remark:      remark,
		Host:        host,
		Port:        port,
		Shadowsocks: &node.ShadowsocksCreds{Method: "aes-256-gcm", Password: "pw"},
	}
}

func TestRunOrderDedupBeforeSort(t *testing.T) {
	nodes := []*node.Node{
		mkNode("Charlie", "1.1.1.1", 80),
		mkNode("Alpha", "2.2.2.2", 80),
		mkNode("Alpha-dup", "2.2.2.2", 80), // same identity as Alpha
	}
	eff := settings.Effective{Settings: settings.Default()}
	eff.SortEnabled = true

	out := Run(nodes, eff)
	if len(out) != 2 {
		t.Fatalf("expected dedup to 2 nodes, got %d", len(out))
	}
	if out[0].Remark != "Alpha" || out[1].Remark != "Charlie" {
		t.Fatalf("unexpected order after sort: %+v", []string{out[0].Remark, out[1].Remark})
	}
}

func TestIncludeExcludeFilters(t *testing.T) {
	nodes := []*node.Node{
		mkNode("US-01", "1.1.1.1", 80),
		mkNode("JP-01", "2.2.2.2", 80),
		mkNode("US-EXPIRED", "3.3.3.3", 80),
	}
	eff := settings.Effective{Settings: settings.Default()}
	eff.Include = []string{"^US"}
	eff.Exclude = []string{"EXPIRED"}

	out := Run(nodes, eff)
	if len(out) != 1 || out[0].Remark != "US-01" {
		t.Fatalf("unexpected filter result: %+v", out)
	}
}

func TestEmojiRemoveThenAdd(t *testing.T) {
	nodes := []*node.Node{mkNode("🇯🇵 Old Japan", "1.1.1.1", 80)}
	eff := settings.Effective{Settings: settings.Default()}
	eff.RemoveEmoji = node.True
	eff.AddEmoji = node.True
	eff.EmojiRules = []settings.EmojiRule{{Pattern: "Japan", Glyph: "🇯🇵"}}

	out := EmojiHandling(nodes, eff)
	if out[0].Remark != "🇯🇵 Old Japan" {
		t.Fatalf("unexpected remark after emoji handling: %q", out[0].Remark)
	}
}

func TestRenameOrderChaining(t *testing.T) {
	nodes := []*node.Node{mkNode("US Node", "1.1.1.1", 80)}
	eff := settings.Effective{Settings: settings.Default()}
	eff.RenameRules = []settings.RenameRule{
		{Pattern: "US", Replace: "United States"},
		{Pattern: "Node", Replace: "Server"},
	}
	out := Rename(nodes, eff)
	if out[0].Remark != "United States Server" {
		t.Fatalf("unexpected remark: %q", out[0].Remark)
	}
}

func TestAppendTypeSuffix(t *testing.T) {
	nodes := []*node.Node{mkNode("US Node", "1.1.1.1", 80)}
	eff := settings.Effective{Settings: settings.Default()}
	eff.AppendType = true
	out := AppendType(nodes, eff)
	if out[0].Remark != "US Node [SS]" {
		t.Fatalf("unexpected remark: %q", out[0].Remark)
	}
}
