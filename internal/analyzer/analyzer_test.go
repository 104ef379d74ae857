package analyzer

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/FrancescoCarrabino/sqlhopper/internal/parser"
)

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	p, err := parser.NewManager(zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return New(p, zaptest.NewLogger(t))
}

// parseTree parses src and returns its root, closing the tree at test end.
func parseTree(t *testing.T, a *Analyzer, src string) *sitter.Node {
	t.Helper()
	tree, err := a.parser.Parse(context.Background(), nil, []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree.RootNode()
}

func pt(row, col uint32) sitter.Point {
	return sitter.Point{Row: row, Column: col}
}

var targetOptions = []string{"WHERE", "SPLIT", "WITH", "GROUP BY", "LIMIT", "ORDER BY", "TIMEOUT", "EXPLAIN", "PARALLEL"}

func TestResolveCompletionContext_SelectOnly(t *testing.T) {
	a := newTestAnalyzer(t)

	opts, ok, err := a.ResolveCompletionContext(context.Background(), "SELECT ", pt(0, 7))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"VALUE"}, opts)
}

func TestResolveCompletionContext_AfterFromTarget(t *testing.T) {
	a := newTestAnalyzer(t)

	opts, ok, err := a.ResolveCompletionContext(context.Background(), "SELECT * FROM person ", pt(0, 21))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, targetOptions, opts)
}

func TestResolveCompletionContext_MultiLineMatchesFlattened(t *testing.T) {
	a := newTestAnalyzer(t)
	ctx := context.Background()

	multi, okMulti, err := a.ResolveCompletionContext(ctx, "SELECT *\nFROM person ", pt(1, 12))
	require.NoError(t, err)
	single, okSingle, err := a.ResolveCompletionContext(ctx, "SELECT * FROM person ", pt(0, 21))
	require.NoError(t, err)

	assert.Equal(t, okSingle, okMulti)
	assert.Equal(t, single, multi)
	assert.Equal(t, targetOptions, multi)
}

func TestResolveCompletionContext_EmptyDocument(t *testing.T) {
	a := newTestAnalyzer(t)

	opts, ok, err := a.ResolveCompletionContext(context.Background(), "", pt(0, 0))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, opts)
}

func TestCompletionContext_ClauseContextLabels(t *testing.T) {
	a := newTestAnalyzer(t)
	src := "SELECT * FROM person "
	root := parseTree(t, a, src)

	c, ok := a.matchClauseContext(root, []byte(src), pt(0, 21))
	require.True(t, ok)
	assert.Equal(t, TargetOptions, c)
	assert.Equal(t, "target_options", c.String())
}

func TestMatchSelectNeighbor_GapAfterSelect(t *testing.T) {
	a := newTestAnalyzer(t)
	src := "SELECT   * FROM person"
	root := parseTree(t, a, src)

	c, ok := a.matchSelectNeighbor(root, []byte(src), pt(0, 7))
	require.True(t, ok)
	assert.Equal(t, SelectStatementStart, c)

	_, ok = a.matchSelectNeighbor(root, []byte(src), pt(0, 3))
	assert.False(t, ok, "cursor inside SELECT is not in the gap")
}

func TestMatchTrailingSelect(t *testing.T) {
	a := newTestAnalyzer(t)
	src := "SELECT "
	root := parseTree(t, a, src)

	c, ok := a.matchTrailingSelect(root, []byte(src), pt(0, 7))
	require.True(t, ok)
	assert.Equal(t, SelectStatementStart, c)

	_, ok = a.matchTrailingSelect(root, []byte(src), pt(1, 7))
	assert.False(t, ok, "other lines are outside the query window")
}

func TestMatchErrorRegion_NoErrors(t *testing.T) {
	a := newTestAnalyzer(t)
	src := "SELECT * FROM person"
	root := parseTree(t, a, src)

	_, ok := a.matchErrorRegion(root, []byte(src), pt(0, 5))
	assert.False(t, ok)
}

func TestMatchErrorRegion_UnparsedStatement(t *testing.T) {
	a := newTestAnalyzer(t)
	src := "UPDATE x "
	root := parseTree(t, a, src)

	_, ok := a.matchClauseContext(root, []byte(src), pt(0, 9))
	assert.False(t, ok)

	c, ok := a.matchErrorRegion(root, []byte(src), pt(0, 9))
	require.True(t, ok)
	assert.Equal(t, SelectStatementStart, c)

	c, ok = a.CompletionContext(root, []byte(src), pt(0, 9))
	require.True(t, ok)
	assert.Equal(t, SelectStatementStart, c)
}

func TestCompletionContext_ClauseWinsOverError(t *testing.T) {
	a := newTestAnalyzer(t)
	src := "SELECT * FROM person WHERE"
	root := parseTree(t, a, src)

	c, ok := a.matchErrorRegion(root, []byte(src), pt(0, 26))
	require.True(t, ok, "the dangling WHERE sits in an error region")
	assert.Equal(t, SelectStatementStart, c)

	c, ok = a.CompletionContext(root, []byte(src), pt(0, 26))
	require.True(t, ok)
	assert.Equal(t, TargetOptions, c)
}

func TestFirstMatch_StopsAtFirstStage(t *testing.T) {
	a := &Analyzer{}
	var calls []string

	stage := func(name string, c Context, hit bool) matcher {
		return func(*Analyzer, *sitter.Node, []byte, sitter.Point) (Context, bool) {
			calls = append(calls, name)
			return c, hit
		}
	}

	// Both the clause stage and the error stage would match; the clause wins.
	got, ok := a.firstMatch([]matcher{
		stage("clause", TargetOptions, true),
		stage("error", SelectStatementStart, true),
		stage("neighbor", SelectStatementStart, true),
	}, nil, nil, pt(0, 0))
	require.True(t, ok)
	assert.Equal(t, TargetOptions, got)
	assert.Equal(t, []string{"clause"}, calls)

	calls = nil
	got, ok = a.firstMatch([]matcher{
		stage("clause", TargetOptions, false),
		stage("error", SelectStatementStart, true),
		stage("neighbor", SelectOptions, true),
	}, nil, nil, pt(0, 0))
	require.True(t, ok)
	assert.Equal(t, SelectStatementStart, got)
	assert.Equal(t, []string{"clause", "error"}, calls)

	calls = nil
	_, ok = a.firstMatch([]matcher{
		stage("clause", TargetOptions, false),
		stage("error", SelectStatementStart, false),
	}, nil, nil, pt(0, 0))
	assert.False(t, ok)
	assert.Equal(t, []string{"clause", "error"}, calls)
}

func TestCascadeOrder(t *testing.T) {
	require.Len(t, cascade, 4)
}

func TestContextOptions_ReturnsCopy(t *testing.T) {
	opts := TargetOptions.Options()
	opts[0] = "MUTATED"
	assert.Equal(t, "WHERE", TargetOptions.Options()[0])

	assert.Equal(t, []string{"VALUE"}, SelectOptions.Options())
	assert.Equal(t, []string{"VALUE"}, SelectStatementStart.Options())
	assert.Empty(t, Context(0).Options())
	assert.Equal(t, "unknown", Context(0).String())
}

func TestContextForCapture(t *testing.T) {
	c, ok := contextForCapture(parser.CaptureTargetOptions)
	assert.True(t, ok)
	assert.Equal(t, TargetOptions, c)

	c, ok = contextForCapture(parser.CaptureSelectOptions)
	assert.True(t, ok)
	assert.Equal(t, SelectOptions, c)

	_, ok = contextForCapture("neighbor")
	assert.False(t, ok)
}
