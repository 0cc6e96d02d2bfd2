package handler

import (
	"github.com/deppfellow/data-api/internal/server"
)

// Handlers is a container that groups all HTTP handlers so router setup can
// take a single value.
type Handlers struct {
	Data     *DataHandler     // Data serves "/" and the /data routes.
	Fallback *FallbackHandler // Fallback answers every request no route matched.
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server) *Handlers {
	return &Handlers{
		Data:     NewDataHandler(s),
		Fallback: NewFallbackHandler(s),
	}
}
