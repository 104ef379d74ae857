package server

import (
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
	"go.uber.org/zap"

	"github.com/FrancescoCarrabino/sqlhopper/internal/session"
)

// NewServer wires the protocol handlers to sess. verbosity configures the
// protocol library's own logging (see logging.Verbosity).
func NewServer(name, version string, sess *session.Session, logger *zap.Logger, verbosity int) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	commonlog.Configure(verbosity, nil)

	s := &Server{
		session: sess,
		logger:  logger,
		name:    name,
		version: version,
	}

	s.handler = protocol.Handler{
		Initialize:             s.handleInitialize,
		Initialized:            s.handleInitialized,
		Shutdown:               s.handleShutdown,
		SetTrace:               s.handleSetTrace,
		TextDocumentDidOpen:    s.handleDidOpen,
		TextDocumentDidChange:  s.handleDidChange,
		TextDocumentDidClose:   s.handleDidClose,
		TextDocumentHover:      s.handleHover,
		TextDocumentCompletion: s.handleCompletion,
	}
	s.server = glspserver.NewServer(&s.handler, name, false)
	return s
}

// RunStdio serves the protocol over stdin/stdout until the client exits.
func (s *Server) RunStdio() error {
	s.logger.Info("Language server starting", zap.String("name", s.name), zap.String("version", s.version))
	defer s.session.Shutdown()
	return s.server.RunStdio()
}
