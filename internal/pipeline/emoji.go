package pipeline

import (
	"regexp"
	"strings"

	"github.com/relayforge/subconverter/internal/node"
	"github.com/relayforge/subconverter/internal/settings"
)

// emojiPrefixPattern matches a leading run of emoji glyphs plus any
// trailing separator whitespace, covering the common pictograph,
// symbol, and variation-selector blocks.
var emojiPrefixPattern = regexp.MustCompile(`^[\x{1F000}-\x{1FFFF}\x{2600}-\x{27BF}\x{2190}-\x{21FF}\x{2B00}-\x{2BFF}\x{FE0F}\x{200D}]+\s*`)

// EmojiHandling: remove_emoji strips a leading emoji glyph before
// add_emoji runs, so a remark is never double-tagged. add_emoji finds
// the first matching rule and prepends
// its glyph, never twice.
func EmojiHandling(nodes []*node.Node, eff settings.Effective) []*node.Node {
	remove := eff.RemoveEmoji.Resolve(false)
	add := eff.AddEmoji.Resolve(false)
	if !remove && !add {
		return nodes
	}

	for _, n := range nodes {
		if remove {
			n.Remark = emojiPrefixPattern.ReplaceAllString(n.Remark, "")
		}
		if add {
			if glyph, ok := firstMatchingEmoji(eff.EmojiRules, n.Remark); ok && !strings.HasPrefix(n.Remark, glyph+" ") {
				n.Remark = glyph + " " + n.Remark
			}
		}
	}
	return nodes
}

func firstMatchingEmoji(rules []settings.EmojiRule, remark string) (string, bool) {
	for _, rule := range rules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			continue
		}
		if re.MatchString(remark) {
			return rule.Glyph, true
		}
	}
	return "", false
}
