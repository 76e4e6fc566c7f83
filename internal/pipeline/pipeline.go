// Package pipeline implements the Transformation Pipeline: a fixed
// sequence of pure steps over a flat node list.
package pipeline

import (
	"regexp"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/settings"
)

// Step is a pure transformation of a node list given the effective
// settings for the request.
type Step func(nodes []*node.Node, eff settings.Effective) []*node.Node

// Run executes every step in the exact mandated order. After Run
// returns, the list is frozen for the generator.
func Run(nodes []*node.Node, eff settings.Effective) []*node.Node {
	steps := []Step{
		Preprocess,
		IncludeFilter,
		ExcludeFilter,
		EmojiHandling,
		Rename,
		Dedup,
		Sort,
		AppendType,
	}
	for _, step := range steps {
		nodes = step(nodes, eff)
	}
	return nodes
}

// Preprocess strips unprintable characters and normalizes whitespace in
// every remark.
func Preprocess(nodes []*node.Node, _ settings.Effective) []*node.Node {
	for _, n := range nodes {
		n.Remark = node.CleanRemark(stripUnprintable(n.Remark))
	}
	return nodes
}

func stripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		if r == 0x7f {
			return -1
		}
		return r
	}, s)
}

// IncludeFilter keeps a node iff its remark matches at least one
// include pattern, or no include pattern is configured.
func IncludeFilter(nodes []*node.Node, eff settings.Effective) []*node.Node {
	if len(eff.Include) == 0 {
		return nodes
	}
	patterns := compileAll(eff.Include)
	return lo.Filter(nodes, func(n *node.Node, _ int) bool {
		return matchesAny(patterns, n.Remark)
	})
}

// ExcludeFilter drops a node iff its remark matches any exclude pattern.
func ExcludeFilter(nodes []*node.Node, eff settings.Effective) []*node.Node {
	if len(eff.Exclude) == 0 {
		return nodes
	}
	patterns := compileAll(eff.Exclude)
	return lo.Filter(nodes, func(n *node.Node, _ int) bool {
		return !matchesAny(patterns, n.Remark)
	})
}

func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		if re, err := regexp.Compile(p); err == nil {
			out = append(out, re)
		}
	}
	return out
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// Dedup keeps the first occurrence of each stable identity and discards
// later duplicates, on by default.
func Dedup(nodes []*node.Node, eff settings.Effective) []*node.Node {
	if !eff.DedupEnabled {
		return nodes
	}
	return lo.UniqBy(nodes, func(n *node.Node) string {
		return n.Identity()
	})
}

// Sort orders the list by remark, locale-insensitive codepoint order by
// default, or by a user-supplied regex sort-key extractor. It is stable
// and optional.
func Sort(nodes []*node.Node, eff settings.Effective) []*node.Node {
	if !eff.SortEnabled {
		return nodes
	}
	keyFn := func(n *node.Node) string { return n.Remark }
	if eff.SortScript != "" {
		if re, err := regexp.Compile(eff.SortScript); err == nil {
			keyFn = func(n *node.Node) string {
				if m := re.FindStringSubmatch(n.Remark); len(m) > 1 {
					return m[1]
				} else if len(m) == 1 {
					return m[0]
				}
				return n.Remark
			}
		}
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return keyFn(nodes[i]) < keyFn(nodes[j])
	})
	return nodes
}

// AppendType appends a bracketed kind tag to the remark, e.g. "[SS]".
func AppendType(nodes []*node.Node, eff settings.Effective) []*node.Node {
	if !eff.AppendType {
		return nodes
	}
	for _, n := range nodes {
		n.Remark = n.Remark + " [" + kindTag(n.Kind) + "]"
	}
	return nodes
}

// kindTag maps a Kind to its short uppercase tag ("[SS]", "[SSR]",
// "[VMESS]", ...).
func kindTag(k node.Kind) string {
	switch k {
	case node.Shadowsocks:
		return "SS"
	case node.ShadowsocksR:
		return "SSR"
	case node.VMess:
		return "VMESS"
	case node.VLESS:
		return "VLESS"
	case node.Trojan:
		return "TROJAN"
	case node.HTTP:
		return "HTTP"
	case node.HTTPS:
		return "HTTPS"
	case node.Socks5:
		return "SOCKS5"
	case node.Hysteria:
		return "HYSTERIA"
	case node.Hysteria2:
		return "HYSTERIA2"
	case node.WireGuard:
		return "WG"
	case node.Snell:
		return "SNELL"
	default:
		return strings.ToUpper(string(k))
	}
}
