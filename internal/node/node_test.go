package node

import "testing"

func TestValidatePortRange(t *testing.T) {
	cases := []struct {
		port int
		ok   bool
	}{
		{0, false},
		{1, true},
		{65535, true},
		{65536, false},
	}
	for _, c := range cases {
		n := &Node{Kind: Shadowsocks, Port: c.port, Shadowsocks: &ShadowsocksCreds{Method: "aes-128-gcm", Password: "x"}}
		err := n.Validate()
		if (err == nil) != c.ok {
			t.Errorf("port %d: got err=%v, want ok=%v", c.port, err, c.ok)
		}
	}
}

func TestValidateRequiresCredentials(t *testing.T) {
	n := &Node{Kind: VMess, Port: 443}
	if err := n.Validate(); err == nil {
		t.Fatal("expected error for missing vmess credentials")
	}
}

func TestValidateVMessSecurityDefaultsToAuto(t *testing.T) {
	n := &Node{Kind: VMess, Port: 443, VMess: &VMessCreds{UUID: "u"}}
	if err := n.Validate(); err != nil {
		t.Fatal(err)
	}
	if n.VMess.Security != "auto" {
		t.Fatalf("got security %q, want auto", n.VMess.Security)
	}
}

func TestValidateTLSFieldsRequireEnabled(t *testing.T) {
	n := &Node{
		Kind:   Trojan,
		Port:   443,
		Trojan: &TrojanCreds{Password: "p"},
		TLS:    TLS{Enabled: false, SNI: "example.com"},
	}
	if err := n.Validate(); err == nil {
		t.Fatal("expected error for TLS fields set without TLS enabled")
	}
}

func TestValidateWireGuardRequiresAddress(t *testing.T) {
	n := &Node{
		Kind:      WireGuard,
		Port:      51820,
		WireGuard: &WireGuardCreds{PrivateKey: "a", PeerPublicKey: "b"},
	}
	if err := n.Validate(); err == nil {
		t.Fatal("expected error for missing wireguard address")
	}
}

func TestIdentityIgnoresRemark(t *testing.T) {
	a := &Node{Kind: Shadowsocks, Host: "example.com", Port: 8388, Remark: "A", Shadowsocks: &ShadowsocksCreds{Method: "aes-256-gcm", Password: "secret"}}
	b := &Node{Kind: Shadowsocks, Host: "example.com", Port: 8388, Remark: "B", Shadowsocks: &ShadowsocksCreds{Method: "aes-256-gcm", Password: "secret"}}
	if !a.Equal(b) {
		t.Fatalf("expected nodes to be equal ignoring remark: %q vs %q", a.Identity(), b.Identity())
	}
}

func TestIdentityDistinguishesCredentials(t *testing.T) {
	a := &Node{Kind: Shadowsocks, Host: "example.com", Port: 8388, Shadowsocks: &ShadowsocksCreds{Method: "aes-256-gcm", Password: "secret"}}
	b := &Node{Kind: Shadowsocks, Host: "example.com", Port: 8388, Shadowsocks: &ShadowsocksCreds{Method: "aes-256-gcm", Password: "other"}}
	if a.Equal(b) {
		t.Fatal("expected nodes with different passwords to differ")
	}
}

func TestTriStateResolve(t *testing.T) {
	if Unset.Resolve(true) != true {
		t.Fatal("unset should inherit default true")
	}
	if Unset.Resolve(false) != false {
		t.Fatal("unset should inherit default false")
	}
	if True.Resolve(false) != true {
		t.Fatal("true should override default")
	}
	if False.Resolve(true) != false {
		t.Fatal("false should override default")
	}
}

func TestCleanRemark(t *testing.T) {
	got := CleanRemark("HK  -\r\n 1 \n")
	want := "HK - 1"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
