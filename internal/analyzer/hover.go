package analyzer

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/FrancescoCarrabino/sqlhopper/internal/position"
)

// KeywordAt returns the source text of the keyword node whose single-line span
// envelops the cursor. The first such node in query order wins; keyword nodes
// are not expected to overlap. A BY reports the clause it closes, e.g.
// "GROUP BY"; a BY outside such a clause has no hover.
func (a *Analyzer) KeywordAt(root *sitter.Node, src []byte, cursor sitter.Point) (string, bool) {
	for _, m := range runQuery(a.queries.Keywords, root, src, nil) {
		for _, c := range m {
			if !position.Envelops(cursor, c.node.StartPoint(), c.node.EndPoint()) {
				continue
			}
			node := c.node
			if node.Type() == byKeyword {
				prev := node.PrevSibling()
				if prev == nil || !byClauseOpeners[prev.Type()] {
					continue
				}
				start, end := prev.StartByte(), node.EndByte()
				if start > end || end > uint32(len(src)) {
					continue
				}
				return strings.Join(strings.Fields(string(src[start:end])), " "), true
			}
			text, ok := nodeText(node, src)
			if !ok {
				a.logger.Warn("Keyword node out of source bounds",
					zap.String("type", c.node.Type()),
					zap.Uint32("start", c.node.StartByte()),
					zap.Uint32("end", c.node.EndByte()),
				)
				continue
			}
			return text, true
		}
	}
	return "", false
}

const byKeyword = "keyword_by"

// byClauseOpeners are the keywords a trailing BY completes.
var byClauseOpeners = map[string]bool{
	"keyword_group": true,
	"keyword_order": true,
}
