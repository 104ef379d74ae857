package server

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"
	"go.uber.org/zap"

	"github.com/FrancescoCarrabino/sqlhopper/internal/session"
)

// Server adapts the language server protocol onto a session.
type Server struct {
	handler protocol.Handler
	server  *glspserver.Server
	session *session.Session
	logger  *zap.Logger
	name    string
	version string

	stateMutex  sync.RWMutex // Protects fields below
	initialized bool
	shutdown    bool
}

// isInitialized reports whether requests may be served.
func (s *Server) isInitialized() bool {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return s.initialized && !s.shutdown
}
