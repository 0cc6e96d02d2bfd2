package handler

import (
	"github.com/deppfellow/data-api/internal/errs"
	"github.com/deppfellow/data-api/internal/middleware"
	"github.com/deppfellow/data-api/internal/server"
	"github.com/labstack/echo/v4"
)

// FallbackHandler answers requests that matched no route.
type FallbackHandler struct {
	Handler
}

// NewFallbackHandler constructs a FallbackHandler.
func NewFallbackHandler(s *server.Server) *FallbackHandler {
	return &FallbackHandler{
		Handler: NewHandler(s),
	}
}

// NotFound writes the uniform 404 response.
func (h *FallbackHandler) NotFound(c echo.Context) error {
	notFound := errs.NewNotFoundError()

	middleware.GetLogger(c).Debug().
		Str("error_code", notFound.Code).
		Msg("no route matched")

	return c.JSON(notFound.Status, notFound)
}
