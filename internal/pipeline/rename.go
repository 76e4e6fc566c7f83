package pipeline

import (
	"regexp"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/settings"
)

// Rename applies each rename rule in order, so later rules see earlier
// rules' output. A Script rule is treated as a
// plain regex replacement too: the distinction matters to a richer
// rename-script engine the generator side may add, not to this step.
func Rename(nodes []*node.Node, eff settings.Effective) []*node.Node {
	if len(eff.RenameRules) == 0 {
		return nodes
	}
	compiled := make([]*regexp.Regexp, len(eff.RenameRules))
	for i, rule := range eff.RenameRules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			continue
		}
		compiled[i] = re
	}

	for _, n := range nodes {
		for i, rule := range eff.RenameRules {
			re := compiled[i]
			if re == nil {
				continue
			}
			n.Remark = re.ReplaceAllString(n.Remark, rule.Replace)
		}
	}
	return nodes
}
