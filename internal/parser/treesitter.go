package parser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/sql"
	"go.uber.org/zap"
)

// LanguageID is the LSP language identifier served by this parser.
const LanguageID = "sql"

// Manager owns the tree-sitter parser for the query language. The underlying
// parser is not reentrant, so every Parse call is serialized.
type Manager struct {
	parser  *sitter.Parser
	lang    *sitter.Language
	queries *Queries
	logger  *zap.Logger
	mu      sync.Mutex
}

// NewManager loads the embedded grammar and compiles the shared query set.
// Any failure here means no request can be served, so callers should treat
// the error as fatal.
func NewManager(logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	lang := sql.GetLanguage()
	if lang == nil {
		return nil, errors.New("embedded grammar for sql loaded as nil")
	}

	queries, err := LoadQueries(lang)
	if err != nil {
		return nil, fmt.Errorf("compile queries: %w", err)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)

	logger.Info("Parser initialized",
		zap.String("language", LanguageID),
		zap.Strings("keyword_classes", queries.KeywordClasses),
	)

	return &Manager{
		parser:  parser,
		lang:    lang,
		queries: queries,
		logger:  logger,
	}, nil
}

// Language returns the grammar in use.
func (m *Manager) Language() *sitter.Language {
	return m.lang
}

// Queries returns the compiled query set.
func (m *Manager) Queries() *Queries {
	return m.queries
}

// Parse parses content. When oldTree is non-nil it must already have been
// edited to match content; tree-sitter then reuses its unchanged subtrees.
func (m *Manager) Parse(ctx context.Context, oldTree *sitter.Tree, content []byte) (*sitter.Tree, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	newTree, err := m.parser.ParseCtx(ctx, oldTree, content)
	if err != nil {
		return nil, fmt.Errorf("parsing failed for lang %s: %w", LanguageID, err)
	}
	if newTree == nil {
		return nil, fmt.Errorf("parsing %s produced no tree", LanguageID)
	}

	if root := newTree.RootNode(); root.HasError() {
		m.logger.Debug("Syntax errors in parsed content",
			zap.Int("size", len(content)),
			zap.Bool("incremental", oldTree != nil),
		)
	}
	return newTree, nil
}

// Close releases the parser.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.parser != nil {
		m.parser.Close()
		m.parser = nil
	}
}
