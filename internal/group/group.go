// Package group implements the Proxy-Group Resolver: it expands a
// group's member expression into a concrete, deduplicated, ordered
// list of node remarks.
package group

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/xerrors"
)

// Config is one proxy group's static definition: a name, a list of
// member expressions evaluated left-to-right, and the empty-result
// policy.
type Config struct {
	Name            string
	Type            string // "select", "url-test", "fallback", "load-balance"
	Members         []string
	AllowEmptyGroup bool
}

// Insert pulls in members from an additional source at resolve time,
// keyed by the `!!INSERT=` token's argument (a URL or provider name).
// The caller supplies the already-fetched-and-parsed node list for
// each insert source; the resolver does not fetch on its own.
type Insert func(source string) []*node.Node

// Resolve expands every configured group's member expression against
// the current node list (already source-tagged and indexed by group).
// Resolution order across groups is the order of cfgs, so a literal
// reference to an earlier group sees its already-resolved member list.
func Resolve(cfgs []Config, nodes []*node.Node, insert Insert) (map[string][]string, error) {
	byGroupTag := indexBySourceGroup(nodes)
	resolved := make(map[string][]string, len(cfgs))

	for _, cfg := range cfgs {
		members, err := resolveOne(cfg, nodes, byGroupTag, resolved, insert)
		if err != nil {
			return nil, err
		}
		resolved[cfg.Name] = members
	}
	return resolved, nil
}

func resolveOne(cfg Config, nodes []*node.Node, byGroupTag map[string][]*node.Node, resolved map[string][]string, insert Insert) ([]string, error) {
	var out []string
	seen := make(map[string]bool)

	add := func(remark string) {
		if seen[remark] {
			return
		}
		seen[remark] = true
		out = append(out, remark)
	}

	for _, expr := range cfg.Members {
		switch {
		case expr == "DIRECT" || expr == "REJECT":
			add(expr)
		case strings.HasPrefix(expr, "![") && strings.HasSuffix(expr, "]"):
			pattern := expr[2 : len(expr)-1]
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, &xerrors.GroupError{Group: cfg.Name, Kind: xerrors.GroupUnknownReference}
			}
			for _, n := range nodes {
				if re.MatchString(n.Remark) {
					add(n.Remark)
				}
			}
		case strings.HasPrefix(expr, "!!GROUP="):
			tag := strings.TrimPrefix(expr, "!!GROUP=")
			for _, n := range byGroupTag[tag] {
				add(n.Remark)
			}
		case strings.HasPrefix(expr, "!!GROUPID="):
			idxStr := strings.TrimPrefix(expr, "!!GROUPID=")
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, &xerrors.GroupError{Group: cfg.Name, Kind: xerrors.GroupUnknownReference}
			}
			for _, n := range nodesAtSourceIndex(nodes, idx) {
				add(n.Remark)
			}
		case strings.HasPrefix(expr, "!!INSERT="):
			source := strings.TrimPrefix(expr, "!!INSERT=")
			if insert == nil {
				continue
			}
			for _, n := range insert(source) {
				add(n.Remark)
			}
		default:
			if members, ok := resolved[expr]; ok {
				for _, m := range members {
					add(m)
				}
				continue
			}
			return nil, &xerrors.GroupError{Group: cfg.Name, Kind: xerrors.GroupUnknownReference}
		}
	}

	if len(out) == 0 {
		if cfg.AllowEmptyGroup {
			return []string{"DIRECT"}, nil
		}
		return nil, &xerrors.GroupError{Group: cfg.Name, Kind: xerrors.GroupEmptyAfterExpansion}
	}
	return out, nil
}

func indexBySourceGroup(nodes []*node.Node) map[string][]*node.Node {
	idx := make(map[string][]*node.Node)
	for _, n := range nodes {
		idx[n.Group] = append(idx[n.Group], n)
	}
	return idx
}

// nodesAtSourceIndex resolves `!!GROUPID=<n>` by the numeric position
// of n.Group's first appearance in the node list, matching the
// subscription-ingest order rather than an arbitrary map order.
func nodesAtSourceIndex(nodes []*node.Node, idx int) []*node.Node {
	var order []string
	seen := make(map[string]bool)
	for _, n := range nodes {
		if !seen[n.Group] {
			seen[n.Group] = true
			order = append(order, n.Group)
		}
	}
	if idx < 0 || idx >= len(order) {
		return nil
	}
	target := order[idx]
	var out []*node.Node
	for _, n := range nodes {
		if n.Group == target {
			out = append(out, n)
		}
	}
	return out
}
