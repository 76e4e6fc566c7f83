package generator

import (
	"strings"
	"testing"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/ruleset"
	"github.com/relayforge/subconverter/internal/settings"
)

func sampleNodes() []*node.Node {
	return []*node.Node{
		{
			Kind: node.Shadowsocks, Remark: "US-01", Host: "1.1.1.1", Port: 8388,
			Shadowsocks: &node.ShadowsocksCreds{Method: "aes-256-gcm", Password: "pw"},
		},
		{
			Kind: node.Trojan, Remark: "JP-01", Host: "2.2.2.2", Port: 443,
			Trojan: &node.TrojanCreds{Password: "tpw"},
			TLS:    node.TLS{Enabled: true, SNI: "jp.example.com"},
		},
	}
}

func sampleInput() Input {
	return Input{
		Nodes: sampleNodes(),
		Groups: []GroupPlan{
			{Name: "Proxy", Type: "select", Members: []string{"US-01", "JP-01"}},
		},
		Rulesets: []ruleset.Resolved{
			{TargetGroup: "Proxy", Lines: []string{"DOMAIN-SUFFIX,google.com"}},
		},
		Eff: settings.Effective{Settings: settings.Default()},
	}
}

func TestGenerateClashContainsProxiesAndGroups(t *testing.T) {
	res, err := GenerateClash(sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Document, "proxies:") || !strings.Contains(res.Document, "proxy-groups:") {
		t.Fatalf("missing expected sections: %s", res.Document)
	}
}

func TestGenerateClashOldFieldName(t *testing.T) {
	in := sampleInput()
	in.Eff.Render.ClashUseNewFieldName = false
	res, err := GenerateClash(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Document, "Proxy:") {
		t.Fatalf("expected legacy Proxy key, got: %s", res.Document)
	}
}

func TestGenerateClashOmitsZeroAlterID(t *testing.T) {
	in := sampleInput()
	in.Nodes = []*node.Node{
		{Kind: node.VMess, Remark: "AEAD", Host: "4.4.4.4", Port: 443,
			VMess: &node.VMessCreds{UUID: "uuid-1", AlterID: 0, Security: "auto"}},
	}
	res, err := GenerateClash(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(res.Document, "alterId") {
		t.Fatalf("expected no alterId field for alterId=0, got: %s", res.Document)
	}
}

func TestGenerateClashKeepsNonZeroAlterID(t *testing.T) {
	in := sampleInput()
	in.Nodes = []*node.Node{
		{Kind: node.VMess, Remark: "Legacy", Host: "4.4.4.4", Port: 443,
			VMess: &node.VMessCreds{UUID: "uuid-1", AlterID: 64, Security: "auto"}},
	}
	res, err := GenerateClash(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Document, "alterId") {
		t.Fatalf("expected alterId field for alterId=64, got: %s", res.Document)
	}
}

func TestGenerateClashExpandsBaseTemplate(t *testing.T) {
	in := sampleInput()
	in.BaseTemplate = "proxies:\n{{ proxies }}\ngroups:\n{{ proxy-groups }}\nrules:\n{{ rules }}\n"
	res, err := GenerateClash(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Document, "US-01") || !strings.Contains(res.Document, "DOMAIN-SUFFIX") {
		t.Fatalf("expected expanded base template to carry rendered fragments, got: %s", res.Document)
	}
}

func TestGenerateSurgeSkipsUnsupportedVersion(t *testing.T) {
	in := sampleInput()
	in.Nodes = append(in.Nodes, &node.Node{Kind: node.Socks5, Remark: "SOCKS", Host: "3.3.3.3", Port: 1080})
	in.Eff.Render.SurgeVersion = 2
	res, err := GenerateSurge(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Skipped != 1 {
		t.Fatalf("expected socks5 skipped on surge v2, got skipped=%d doc=%s", res.Skipped, res.Document)
	}
}

func TestGenerateSSSubBase64(t *testing.T) {
	in := sampleInput()
	res, err := GenerateSSSub(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Skipped != 1 {
		t.Fatalf("expected trojan node skipped from ss-sub, got %d", res.Skipped)
	}
	if res.Document == "" {
		t.Fatalf("expected non-empty base64 document")
	}
}

func TestGenerateSingBoxOutbounds(t *testing.T) {
	res, err := GenerateSingBox(sampleInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Document, "\"outbounds\"") {
		t.Fatalf("missing outbounds: %s", res.Document)
	}
}

func TestGenerateSingBoxUsesUsernameField(t *testing.T) {
	in := sampleInput()
	in.Nodes = []*node.Node{
		{Kind: node.Socks5, Remark: "SOCKS", Host: "3.3.3.3", Port: 1080,
			UserPass: &node.UserPassCreds{Username: "alice", Password: "pw"}},
	}
	res, err := GenerateSingBox(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Document, `"username"`) || !strings.Contains(res.Document, "alice") {
		t.Fatalf("expected username field, got: %s", res.Document)
	}
	if strings.Contains(res.Document, `"uuid"`) {
		t.Fatalf("username leaked into uuid field: %s", res.Document)
	}
}

func TestGenerateSingBoxExpandsBaseTemplate(t *testing.T) {
	in := sampleInput()
	in.BaseTemplate = `{"outbounds": {{ outbounds }}, "route": {{ route }}}`
	res, err := GenerateSingBox(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Document, "US-01") {
		t.Fatalf("expected expanded base template to carry rendered outbounds, got: %s", res.Document)
	}
}

func TestDetectTargetByUserAgent(t *testing.T) {
	tgt, ok := DetectTargetByUserAgent("ClashforWindows/0.18")
	if !ok || tgt != Clash {
		t.Fatalf("expected clash, got %v %v", tgt, ok)
	}
	tgt, ok = DetectTargetByUserAgent("QuantumultX/1.0")
	if !ok || tgt != QuantumultX {
		t.Fatalf("expected quanx, got %v %v", tgt, ok)
	}
	if _, ok := DetectTargetByUserAgent("curl/8.0"); ok {
		t.Fatalf("expected no match for unrelated UA")
	}
}
