// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares in their fixed order and maps the routes
// to their handlers.
package router

import (
	"github.com/deppfellow/data-api/internal/handler"
	"github.com/deppfellow/data-api/internal/middleware"
	"github.com/deppfellow/data-api/internal/server"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the request dispatcher for s.
//
// Middleware order, outermost first:
//   - pre-routing: trailing slash removal, case-insensitive paths
//   - New Relic transaction, request id, tracing attributes, request logger
//     context
//   - access logger (runs the error handler for returned errors)
//   - panic recovery
//   - JSON body decoding
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Pre(
		middlewares.Global.RemoveTrailingSlash(),
		middlewares.Global.CaseInsensitivePaths(),
	)

	router.Use(
		middlewares.Tracing.NewRelicMiddleware(),
		middleware.RequestID(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Body.DecodeJSON(),
	)

	registerDataRoutes(router, h)

	return router
}
