package middleware

import (
	"github.com/deppfellow/data-api/internal/server"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Middlewares groups all middleware components used by the HTTP server so
// the router can be wired from a single value.
type Middlewares struct {
	// Global holds request logging, recovery, path normalisation and the
	// global error handler.
	Global *GlobalMiddlewares

	// ContextEnhancer attaches a request-scoped logger.
	ContextEnhancer *ContextEnhancer

	// Tracing provides New Relic middleware; a no-op without an application.
	Tracing *TracingMiddleware

	// Body decodes JSON request bodies.
	Body *BodyMiddleware
}

// NewMiddlewares constructs all middleware components using the application container.
func NewMiddlewares(s *server.Server) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		Body:            NewBodyMiddleware(s),
	}
}
