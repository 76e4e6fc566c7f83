package document

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestAutodetectBase64List(t *testing.T) {
	lines := []string{
		"ss://YWVzLTEyOC1nY206dGVzdA==@192.168.100.1:8888#Example1",
		"ss://YWVzLTEyOC1nY206dGVzdA==@192.168.100.2:8888#Example2",
		"ss://YWVzLTEyOC1nY206dGVzdA==@192.168.100.3:8888#Example3",
	}
	payload := base64.StdEncoding.EncodeToString([]byte(strings.Join(lines, "\n")))

	res, err := Autodetect([]byte(payload), "testsub")
	if err != nil {
		t.Fatalf("autodetect: %v", err)
	}
	if len(res.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(res.Nodes))
	}
	for _, n := range res.Nodes {
		if n.Group != "testsub" {
			t.Fatalf("expected group testsub, got %q", n.Group)
		}
	}
}

func TestAutodetectClash(t *testing.T) {
	doc := `
proxies:
  - name: "node1"
    type: ss
    server: 192.168.1.1
    port: 8388
    cipher: aes-256-gcm
    password: "pw"
  - name: "node2"
    type: vmess
    server: example.com
    port: 443
    uuid: b831381d-6324-4d53-ad4f-8cda48b30811
    alterId: 0
    cipher: auto
    network: ws
    tls: true
    servername: example.com
    ws-opts:
      path: /path
      headers:
        Host: example.com
`
	res, err := Autodetect([]byte(doc), "g")
	if err != nil {
		t.Fatalf("autodetect: %v", err)
	}
	if len(res.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(res.Nodes))
	}
	vmess := res.Nodes[1]
	if vmess.Transport.Type != "ws" || vmess.Transport.Path != "/path" {
		t.Fatalf("unexpected transport: %+v", vmess.Transport)
	}
	if !vmess.TLS.Enabled || vmess.TLS.SNI != "example.com" {
		t.Fatalf("unexpected tls: %+v", vmess.TLS)
	}
}

func TestAutodetectSSD(t *testing.T) {
	doc := `{
  "airport": "testairport",
  "port": 8388,
  "encryption": "aes-256-gcm",
  "password": "defaultpw",
  "servers": [
    {"server": "1.2.3.4", "remarks": "node-a"},
    {"server": "5.6.7.8", "port": 9000, "password": "otherpw", "remarks": "node-b"}
  ]
}`
	res, err := Autodetect([]byte(doc), "")
	if err != nil {
		t.Fatalf("autodetect: %v", err)
	}
	if len(res.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(res.Nodes))
	}
	if res.Nodes[0].Port != 8388 || res.Nodes[1].Port != 9000 {
		t.Fatalf("port defaulting failed: %+v %+v", res.Nodes[0], res.Nodes[1])
	}
}

func TestAutodetectSurge(t *testing.T) {
	doc := `[Proxy]
direct = direct
proxy-a = ss, 1.2.3.4, 8388, encrypt-method=aes-256-gcm, password=pw, udp-relay=true
proxy-b = trojan, example.com, 443, password=secret, sni=example.com
`
	res, err := Autodetect([]byte(doc), "sub")
	if err != nil {
		t.Fatalf("autodetect: %v", err)
	}
	if len(res.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(res.Nodes))
	}
	if !res.Nodes[0].UDP.Resolve(false) {
		t.Fatalf("expected udp-relay=true to resolve true")
	}
}

func TestAutodetectSingbox(t *testing.T) {
	doc := `{
  // a comment jsonc tolerates
  "outbounds": [
    {"type": "shadowsocks", "tag": "sb-node", "server": "1.2.3.4", "server_port": 8388, "method": "aes-256-gcm", "password": "pw"},
    {"type": "direct", "tag": "direct"}
  ]
}`
	res, err := Autodetect([]byte(doc), "g")
	if err != nil {
		t.Fatalf("autodetect: %v", err)
	}
	if len(res.Nodes) != 1 {
		t.Fatalf("expected 1 node (direct skipped), got %d", len(res.Nodes))
	}
}
