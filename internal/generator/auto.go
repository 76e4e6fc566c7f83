package generator

import "strings"

// autoUARule pairs a case-insensitive User-Agent substring with the
// target it implies. Order matters: the first match wins.
type autoUARule struct {
	Substring string
	Target    Target
}

var autoUATable = []autoUARule{
	{"clash-verge", Clash},
	{"clashmeta", Clash},
	{"clash", Clash},
	{"stash", Clash},
	{"surge", Surge},
	{"quantumult%20x", QuantumultX},
	{"quantumultx", QuantumultX},
	{"quantumult", Quantumult},
	{"loon", Loon},
	{"sing-box", SingBox},
	{"singbox", SingBox},
	{"mellow", Mellow},
}

// DetectTargetByUserAgent maps a client User-Agent string to a target
// via a fixed substring table; the external HTTP layer supplies the
// header value, the core never reads it itself.
func DetectTargetByUserAgent(ua string) (Target, bool) {
	lower := strings.ToLower(ua)
	for _, rule := range autoUATable {
		if strings.Contains(lower, rule.Substring) {
			return rule.Target, true
		}
	}
	return "", false
}
