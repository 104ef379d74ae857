package analyzer

import (
	"math"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/FrancescoCarrabino/sqlhopper/internal/parser"
	"github.com/FrancescoCarrabino/sqlhopper/internal/position"
)

// Context classifies what may be inserted at the cursor.
type Context int

const (
	// TargetOptions: the cursor follows the target of a FROM clause.
	TargetOptions Context = iota + 1
	// SelectOptions: the cursor is on or right after the SELECT keyword.
	SelectOptions
	// SelectStatementStart: the cursor sits where a select expression may start.
	SelectStatementStart
)

func (c Context) String() string {
	switch c {
	case TargetOptions:
		return "target_options"
	case SelectOptions:
		return "select_options"
	case SelectStatementStart:
		return "select_statement_start"
	default:
		return "unknown"
	}
}

var contextOptions = map[Context][]string{
	TargetOptions: {
		"WHERE",
		"SPLIT",
		"WITH",
		"GROUP BY",
		"LIMIT",
		"ORDER BY",
		"TIMEOUT",
		"EXPLAIN",
		"PARALLEL",
	},
	SelectOptions:        {"VALUE"},
	SelectStatementStart: {"VALUE"},
}

// Options returns a copy of the option list for c.
func (c Context) Options() []string {
	opts := contextOptions[c]
	out := make([]string, len(opts))
	copy(out, opts)
	return out
}

// contextForCapture maps a clause-context capture label to its Context.
func contextForCapture(label string) (Context, bool) {
	switch label {
	case parser.CaptureTargetOptions:
		return TargetOptions, true
	case parser.CaptureSelectOptions:
		return SelectOptions, true
	}
	return 0, false
}

// matcher is one stage of the completion cascade.
type matcher func(a *Analyzer, root *sitter.Node, src []byte, cursor sitter.Point) (Context, bool)

// cascade lists the stages in precedence order.
var cascade = []matcher{
	(*Analyzer).matchClauseContext,
	(*Analyzer).matchErrorRegion,
	(*Analyzer).matchSelectNeighbor,
	(*Analyzer).matchTrailingSelect,
}

// CompletionContext runs the cascade against root and returns the first
// context any stage produces. ok is false when nothing applies, which is a
// normal outcome.
func (a *Analyzer) CompletionContext(root *sitter.Node, src []byte, cursor sitter.Point) (Context, bool) {
	return a.firstMatch(cascade, root, src, cursor)
}

func (a *Analyzer) firstMatch(stages []matcher, root *sitter.Node, src []byte, cursor sitter.Point) (Context, bool) {
	for _, stage := range stages {
		if c, ok := stage(a, root, src, cursor); ok {
			return c, true
		}
	}
	return 0, false
}

// matchClauseContext keeps the last visited capture whose span contains the
// cursor. Matches arrive in document order, so later (more deeply placed)
// clauses win over the SELECT keyword that precedes them.
func (a *Analyzer) matchClauseContext(root *sitter.Node, src []byte, cursor sitter.Point) (Context, bool) {
	last := ""
	for _, m := range runQuery(a.queries.ClauseContext, root, src, nil) {
		for _, c := range m {
			if position.Contains(cursor, c.node.StartPoint(), c.node.EndPoint()) {
				last = c.label
			}
		}
	}
	if last == "" {
		return 0, false
	}
	return contextForCapture(last)
}

// matchErrorRegion offers the broadest suggestion inside an error region,
// where the tree structure cannot be trusted.
func (a *Analyzer) matchErrorRegion(root *sitter.Node, src []byte, cursor sitter.Point) (Context, bool) {
	for _, m := range runQuery(a.queries.Errors, root, src, nil) {
		for _, c := range m {
			if position.Contains(cursor, c.node.StartPoint(), c.node.EndPoint()) {
				return SelectStatementStart, true
			}
		}
	}
	return 0, false
}

// matchSelectNeighbor fires when the cursor is in the gap between SELECT and
// the node that follows it.
func (a *Analyzer) matchSelectNeighbor(root *sitter.Node, src []byte, cursor sitter.Point) (Context, bool) {
	for _, m := range runQuery(a.queries.SelectNeighbor, root, src, nil) {
		var sel, neighbor *sitter.Node
		for _, c := range m {
			switch c.label {
			case parser.CaptureSelect:
				sel = c.node
			case parser.CaptureNeighbor:
				neighbor = c.node
			}
		}
		if sel == nil || neighbor == nil {
			continue
		}
		if position.After(cursor, sel.EndPoint()) && position.Before(cursor, neighbor.StartPoint()) {
			return SelectStatementStart, true
		}
	}
	return 0, false
}

// matchTrailingSelect looks only at the cursor's line for a SELECT that ends
// before the cursor with nothing parsed after it yet.
func (a *Analyzer) matchTrailingSelect(root *sitter.Node, src []byte, cursor sitter.Point) (Context, bool) {
	window := &pointRange{
		start: sitter.Point{Row: cursor.Row, Column: 0},
		end:   sitter.Point{Row: cursor.Row, Column: math.MaxUint32},
	}
	for _, m := range runQuery(a.queries.Select, root, src, window) {
		for _, c := range m {
			if position.After(cursor, c.node.EndPoint()) {
				return SelectStatementStart, true
			}
		}
	}
	return 0, false
}
