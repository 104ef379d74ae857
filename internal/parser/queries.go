package parser

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Capture labels used by the compiled queries.
const (
	CaptureTargetOptions = "target_options"
	CaptureSelectOptions = "select_options"
	CaptureError         = "error"
	CaptureSelect        = "select"
	CaptureNeighbor      = "neighbor"
	CaptureKeyword       = "keyword"
)

// SelectKeyword is the node class of the SELECT keyword.
const SelectKeyword = "keyword_select"

// Query patterns. The clause query matches the last relation of a FROM clause
// and the SELECT keyword itself; the neighbor query pairs SELECT with whatever
// node immediately follows it.
const (
	clauseContextPattern  = `(from (relation) @` + CaptureTargetOptions + ` .) (` + SelectKeyword + `) @` + CaptureSelectOptions
	errorPattern          = `(ERROR) @` + CaptureError
	selectNeighborPattern = `((` + SelectKeyword + `) @` + CaptureSelect + ` . (_) @` + CaptureNeighbor + `)`
	selectPattern         = `(` + SelectKeyword + `) @` + CaptureSelect
)

// keywordCandidates lists the keyword node classes hover may report. Only the
// ones the loaded grammar declares end up in the keyword query.
var keywordCandidates = []string{
	"keyword_select",
	"keyword_from",
	"keyword_where",
	"keyword_group",
	"keyword_by",
	"keyword_order",
	"keyword_limit",
	"keyword_offset",
	"keyword_with",
	"keyword_having",
	"keyword_distinct",
	"keyword_explain",
	"keyword_only",
	"keyword_value",
	"keyword_split",
	"keyword_timeout",
	"keyword_parallel",
	"keyword_group_by",
	"keyword_order_by",
}

// Queries is the immutable set of compiled patterns shared by every request.
type Queries struct {
	ClauseContext  *sitter.Query
	Errors         *sitter.Query
	SelectNeighbor *sitter.Query
	Select         *sitter.Query
	Keywords       *sitter.Query

	// KeywordClasses are the keyword node classes present in the grammar.
	KeywordClasses []string
}

var (
	queriesOnce   sync.Once
	sharedQueries *Queries
	queriesErr    error
)

// LoadQueries compiles the query set on first use and returns the same
// instance afterwards.
func LoadQueries(lang *sitter.Language) (*Queries, error) {
	queriesOnce.Do(func() {
		sharedQueries, queriesErr = compileQueries(lang)
	})
	return sharedQueries, queriesErr
}

func compileQueries(lang *sitter.Language) (*Queries, error) {
	q := &Queries{}
	var err error

	if q.ClauseContext, err = sitter.NewQuery([]byte(clauseContextPattern), lang); err != nil {
		return nil, fmt.Errorf("clause context query: %w", err)
	}
	if q.Errors, err = sitter.NewQuery([]byte(errorPattern), lang); err != nil {
		return nil, fmt.Errorf("error query: %w", err)
	}
	if q.SelectNeighbor, err = sitter.NewQuery([]byte(selectNeighborPattern), lang); err != nil {
		return nil, fmt.Errorf("select neighbor query: %w", err)
	}
	if q.Select, err = sitter.NewQuery([]byte(selectPattern), lang); err != nil {
		return nil, fmt.Errorf("select query: %w", err)
	}

	q.KeywordClasses = supportedClasses(lang, keywordCandidates)
	if len(q.KeywordClasses) == 0 {
		return nil, fmt.Errorf("grammar declares none of the keyword node classes")
	}
	if q.Keywords, err = sitter.NewQuery([]byte(keywordPattern(q.KeywordClasses)), lang); err != nil {
		return nil, fmt.Errorf("keyword query: %w", err)
	}
	return q, nil
}

// supportedClasses keeps the node classes the grammar can compile a query for.
func supportedClasses(lang *sitter.Language, candidates []string) []string {
	var out []string
	for _, class := range candidates {
		probe, err := sitter.NewQuery([]byte("("+class+")"), lang)
		if err != nil {
			continue
		}
		probe.Close()
		out = append(out, class)
	}
	return out
}

func keywordPattern(classes []string) string {
	var b strings.Builder
	b.WriteString("[")
	for _, class := range classes {
		b.WriteString(" (")
		b.WriteString(class)
		b.WriteString(")")
	}
	b.WriteString(" ] @")
	b.WriteString(CaptureKeyword)
	return b.String()
}
