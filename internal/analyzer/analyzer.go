package analyzer

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/FrancescoCarrabino/sqlhopper/internal/parser"
	"github.com/FrancescoCarrabino/sqlhopper/internal/position"
)

// Analyzer resolves cursor context (hover keyword, completion options) against
// syntax trees produced by a parser.Manager.
type Analyzer struct {
	parser  *parser.Manager
	queries *parser.Queries
	logger  *zap.Logger
}

// New creates an Analyzer sharing the manager's compiled queries.
func New(p *parser.Manager, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{parser: p, queries: p.Queries(), logger: logger}
}

// ResolveHoverKeyword parses text from scratch and returns the keyword under
// the cursor, if any.
func (a *Analyzer) ResolveHoverKeyword(ctx context.Context, text string, cursor sitter.Point) (string, bool, error) {
	src := []byte(text)
	tree, err := a.parser.Parse(ctx, nil, src)
	if err != nil {
		return "", false, fmt.Errorf("resolve hover keyword: %w", err)
	}
	defer tree.Close()

	kw, ok := a.KeywordAt(tree.RootNode(), src, cursor)
	return kw, ok, nil
}

// ResolveCompletionContext flattens text, parses it from scratch and returns
// the completion options admissible at the cursor, if any.
func (a *Analyzer) ResolveCompletionContext(ctx context.Context, text string, cursor sitter.Point) ([]string, bool, error) {
	flat, flatCursor := position.Flatten(text, cursor)
	src := []byte(flat)
	tree, err := a.parser.Parse(ctx, nil, src)
	if err != nil {
		return nil, false, fmt.Errorf("resolve completion context: %w", err)
	}
	defer tree.Close()

	c, ok := a.CompletionContext(tree.RootNode(), src, flatCursor)
	if !ok {
		return nil, false, nil
	}
	return c.Options(), true, nil
}

// capture is one (label, node) pair of a query match.
type capture struct {
	label string
	node  *sitter.Node
}

// pointRange restricts query execution to a window of points.
type pointRange struct {
	start, end sitter.Point
}

// runQuery executes q under root and returns the captures of every match in
// the order the query cursor yields them.
func runQuery(q *sitter.Query, root *sitter.Node, src []byte, window *pointRange) [][]capture {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	if window != nil {
		cursor.SetPointRange(window.start, window.end)
	}
	cursor.Exec(q, root)

	var out [][]capture
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, src)
		caps := make([]capture, 0, len(match.Captures))
		for _, c := range match.Captures {
			caps = append(caps, capture{label: q.CaptureNameForId(c.Index), node: c.Node})
		}
		out = append(out, caps)
	}
	return out
}

// nodeText safely extracts the source text of node.
func nodeText(node *sitter.Node, src []byte) (string, bool) {
	if node == nil {
		return "", false
	}
	start, end := node.StartByte(), node.EndByte()
	if start > end || end > uint32(len(src)) {
		return "", false
	}
	return string(src[start:end]), true
}
