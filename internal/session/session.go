// Package session owns the single live document and its syntax tree, and
// serializes every request that reads or mutates them.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/FrancescoCarrabino/sqlhopper/internal/analyzer"
	"github.com/FrancescoCarrabino/sqlhopper/internal/document"
	"github.com/FrancescoCarrabino/sqlhopper/internal/keywords"
	"github.com/FrancescoCarrabino/sqlhopper/internal/parser"
	"github.com/FrancescoCarrabino/sqlhopper/internal/position"
)

// ErrNoDocument is returned when a request targets a document that is not open.
var ErrNoDocument = errors.New("no open document")

// Notifier forwards warnings to the client, e.g. as window/logMessage.
type Notifier func(message string)

// Hover is the documentation for the keyword under the cursor.
type Hover struct {
	Keyword  string
	Markdown string
}

// Option is one completion suggestion; Documentation is empty when the
// keyword has no docs.
type Option struct {
	Label         string
	Documentation string
}

// Session holds one document, its tree and the components that query them.
// All exported methods run as a single critical section.
type Session struct {
	mu sync.Mutex

	parser   *parser.Manager
	analyzer *analyzer.Analyzer
	docs     *keywords.Docs
	logger   *zap.Logger
	notify   Notifier
	flatten  bool

	doc   *document.Document
	tree  *sitter.Tree
	stale bool // tree missed an edit; the next parse starts from scratch
}

// New creates a session. flatten enables multi-line normalization on the
// completion path.
func New(p *parser.Manager, docs *keywords.Docs, logger *zap.Logger, flatten bool) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		parser:   p,
		analyzer: analyzer.New(p, logger),
		docs:     docs,
		logger:   logger,
		flatten:  flatten,
	}
}

// SetNotifier installs the client warning sink.
func (s *Session) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = n
}

func (s *Session) warn(msg string, fields ...zap.Field) {
	s.logger.Warn(msg, fields...)
	if s.notify != nil {
		s.notify(msg)
	}
}

// Open replaces any current document with text and parses it.
func (s *Session) Open(ctx context.Context, uri, languageID string, version int32, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc != nil && s.doc.URI != uri {
		s.logger.Info("Replacing open document", zap.String("old", s.doc.URI), zap.String("new", uri))
	}
	s.dropTree()
	s.doc = document.New(uri, languageID, version, text)

	tree, err := s.parser.Parse(ctx, nil, []byte(text))
	if err != nil {
		return fmt.Errorf("open %s: %w", uri, err)
	}
	s.tree = tree
	s.logger.Debug("Opened document",
		zap.String("uri", uri),
		zap.Int32("version", version),
		zap.Int("size", len(text)),
	)
	return nil
}

// Change applies content changes in order. Each change is first translated
// into a tree edit against the pre-change text; a change that cannot be
// translated is logged and leaves the tree marked stale until the next parse;
// one that cannot be applied to the text is logged and skipped. Re-parsing is
// deferred to the next query.
func (s *Session) Change(ctx context.Context, uri string, version int32, changes []document.Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil || s.doc.URI != uri {
		return fmt.Errorf("change %s: %w", uri, ErrNoDocument)
	}

	for i, c := range changes {
		edit, err := document.TranslateEdit(c, s.doc)
		if err != nil {
			s.warn(fmt.Sprintf("Bad edit info, failed to edit tree: %v", err),
				zap.String("uri", uri),
				zap.Int("change", i),
			)
			s.stale = true
		} else if s.tree != nil && !s.stale {
			s.tree.Edit(edit)
		}

		if err := s.doc.Apply(c); err != nil {
			// The text no longer matches the client; the tree is already stale.
			s.warn(fmt.Sprintf("Skipping change that cannot be applied: %v", err),
				zap.String("uri", uri),
				zap.Int("change", i),
			)
			continue
		}
	}
	s.doc.Version = version
	return nil
}

// Close forgets the document if uri is the open one.
func (s *Session) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil || s.doc.URI != uri {
		s.logger.Warn("Close for unknown document", zap.String("uri", uri))
		return
	}
	s.dropTree()
	s.doc = nil
}

// Shutdown releases the document and tree.
func (s *Session) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropTree()
	s.doc = nil
}

// Hover resolves the keyword at pos and its documentation. A keyword without
// documentation is reported as a warning and yields no hover.
func (s *Session) Hover(ctx context.Context, pos document.Position) (Hover, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return Hover{}, false, ErrNoDocument
	}
	tree, err := s.reparse(ctx)
	if err != nil {
		return Hover{}, false, err
	}

	src := []byte(s.doc.Text())
	keyword, ok := s.analyzer.KeywordAt(tree.RootNode(), src, s.doc.PointFor(pos))
	if !ok {
		return Hover{}, false, nil
	}

	text, found := s.docs.Lookup(keyword)
	if !found {
		s.warn(fmt.Sprintf("Documentation for keyword '%s' not found.", keyword))
		return Hover{}, false, nil
	}
	return Hover{Keyword: keyword, Markdown: text}, true, nil
}

// Completion returns the options admissible at pos. ok is false when the
// cascade finds no context.
func (s *Session) Completion(ctx context.Context, pos document.Position) ([]Option, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return nil, false, ErrNoDocument
	}

	text := s.doc.Text()
	cursor := s.doc.PointFor(pos)
	flat, flatCursor := text, cursor
	if s.flatten {
		flat, flatCursor = position.Flatten(text, cursor)
	}

	src := []byte(flat)
	var root *sitter.Node
	if flat == text {
		tree, err := s.reparse(ctx)
		if err != nil {
			return nil, false, err
		}
		root = tree.RootNode()
	} else {
		// The flattened text gets its own tree; the session tree keeps
		// tracking the real document.
		scratch, err := s.parser.Parse(ctx, nil, src)
		if err != nil {
			return nil, false, fmt.Errorf("completion: %w", err)
		}
		defer scratch.Close()
		root = scratch.RootNode()
	}

	c, ok := s.analyzer.CompletionContext(root, src, flatCursor)
	if !ok {
		return nil, false, nil
	}
	s.logger.Debug("Completion context",
		zap.Stringer("context", c),
		zap.Uint32("row", flatCursor.Row),
		zap.Uint32("column", flatCursor.Column),
	)

	labels := c.Options()
	opts := make([]Option, 0, len(labels))
	for _, l := range labels {
		doc, _ := s.docs.Lookup(l)
		opts = append(opts, Option{Label: l, Documentation: doc})
	}
	return opts, true, nil
}

// reparse brings the session tree in line with the document text. The edited
// tree is passed as a reuse hint unless it missed an edit.
func (s *Session) reparse(ctx context.Context) (*sitter.Tree, error) {
	hint := s.tree
	if s.stale {
		hint = nil
	}
	tree, err := s.parser.Parse(ctx, hint, []byte(s.doc.Text()))
	if err != nil {
		return nil, fmt.Errorf("reparse %s: %w", s.doc.URI, err)
	}
	s.dropTree()
	s.tree = tree
	return tree, nil
}

func (s *Session) dropTree() {
	if s.tree != nil {
		s.tree.Close()
		s.tree = nil
	}
	s.stale = false
}
