// Package fetch implements the Subscription Fetcher: a
// bounded-concurrency collector that turns a list of subscription
// targets (remote URL, inline URI, or local path) into raw payloads
// ready for the document parsers.
package fetch

import "strings"

// Target is one subscription source to ingest.
type Target struct {
	// Value is a URL, an inline single-node URI, or a local file path.
	Value string
	// Group tags every node parsed out of this source, and is the
	// identity surfaced in IngestError on total failure.
	Group   string
	Headers map[string]string
}

// Kind classifies a Target's Value so the fetcher knows which path to
// take without re-parsing it downstream.
type Kind int

const (
	KindURL Kind = iota
	KindInlineURI
	KindLocalPath
)

func (t Target) detectKind() Kind {
	switch {
	case hasHTTPScheme(t.Value):
		return KindURL
	case hasKnownURIScheme(t.Value):
		return KindInlineURI
	default:
		return KindLocalPath
	}
}

func hasHTTPScheme(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

var knownURISchemes = []string{
	"ss://", "ssr://", "vmess://", "vless://", "trojan://",
	"hysteria://", "hysteria2://", "socks://", "wg://", "snell://",
}

func hasKnownURIScheme(s string) bool {
	for _, scheme := range knownURISchemes {
		if strings.HasPrefix(s, scheme) {
			return true
		}
	}
	return false
}
