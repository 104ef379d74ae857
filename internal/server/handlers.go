package server

import (
	"context"
	"errors"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"go.uber.org/zap"

	"github.com/FrancescoCarrabino/sqlhopper/internal/session"
)

var (
	errAlreadyInitialized = errors.New("server already initialized")
	errNotInitialized     = errors.New("server not initialized")
)

// --- Lifecycle Handlers ---

func (s *Server) handleInitialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.stateMutex.Lock()
	if s.initialized {
		s.stateMutex.Unlock()
		s.logger.Warn("Received initialize request after server already initialized")
		return nil, errAlreadyInitialized
	}
	s.initialized = true
	s.stateMutex.Unlock()

	if params.ClientInfo != nil {
		s.logger.Info("Client connected", zap.String("client", params.ClientInfo.Name))
	}

	openClose := true
	resolve := false
	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: &openClose,
			Change:    &syncKind,
		},
		HoverProvider:      &openClose,
		CompletionProvider: &protocol.CompletionOptions{ResolveProvider: &resolve},
	}

	version := s.version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    s.name,
			Version: &version,
		},
	}, nil
}

func (s *Server) handleInitialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	notify := ctx.Notify
	s.session.SetNotifier(func(message string) {
		if notify == nil {
			return
		}
		notify(protocol.ServerWindowLogMessage, protocol.LogMessageParams{
			Type:    protocol.MessageTypeWarning,
			Message: message,
		})
	})
	s.logger.Info("Client initialized")
	return nil
}

func (s *Server) handleShutdown(ctx *glsp.Context) error {
	s.stateMutex.Lock()
	s.shutdown = true
	s.stateMutex.Unlock()
	s.session.Shutdown()
	s.logger.Info("Shutdown requested")
	return nil
}

func (s *Server) handleSetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// --- Document Synchronization Handlers ---

func (s *Server) handleDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	if !s.isInitialized() {
		return errNotInitialized
	}
	item := params.TextDocument
	return s.session.Open(context.Background(), string(item.URI), item.LanguageID, item.Version, item.Text)
}

func (s *Server) handleDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if !s.isInitialized() {
		return errNotInitialized
	}
	changes := toChanges(params.ContentChanges)
	return s.session.Change(context.Background(), string(params.TextDocument.URI), params.TextDocument.Version, changes)
}

func (s *Server) handleDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	if !s.isInitialized() {
		return errNotInitialized
	}
	s.session.Close(string(params.TextDocument.URI))
	return nil
}

// --- Language Feature Handlers ---

// handleHover answers with markdown docs for the keyword under the cursor, or
// null when there is none.
func (s *Server) handleHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	if !s.isInitialized() {
		return nil, errNotInitialized
	}
	h, ok, err := s.session.Hover(context.Background(), toPosition(params.Position))
	if errors.Is(err, session.ErrNoDocument) {
		return nil, nil
	}
	if err != nil || !ok {
		return nil, err
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: h.Markdown,
		},
	}, nil
}

// handleCompletion always marks the list incomplete so the client asks again
// as the user keeps typing.
func (s *Server) handleCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	if !s.isInitialized() {
		return nil, errNotInitialized
	}
	opts, ok, err := s.session.Completion(context.Background(), toPosition(params.Position))
	if errors.Is(err, session.ErrNoDocument) {
		return nil, nil
	}
	if err != nil || !ok {
		return nil, err
	}
	return toCompletionList(opts), nil
}
