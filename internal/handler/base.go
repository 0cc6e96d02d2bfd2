package handler

import (
	"time"

	"github.com/deppfellow/data-api/internal/middleware"
	"github.com/deppfellow/data-api/internal/payload"
	"github.com/deppfellow/data-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler is the base handler type that holds shared application dependencies.
type Handler struct {
	server *server.Server
}

// NewHandler constructs a base Handler.
func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// --- Generic typed handler plumbing -----------------------------------------

// HandlerFunc is a typed endpoint function. It receives the request body
// decoded by the body middleware (Absent when there was none) and returns a
// response or an error.
type HandlerFunc[Res any] func(c echo.Context, body payload.Value) (Res, error)

// ResponseHandler defines how a successful handler result is written and
// which observability attributes go with it.
type ResponseHandler interface {
	// Handle writes the HTTP response for the given result.
	Handle(c echo.Context, result interface{}) error

	// GetOperation names the response type in structured logs.
	GetOperation() string

	// AddAttributes attaches New Relic attributes for the result.
	AddAttributes(txn *newrelic.Transaction, result interface{})
}

// JSONResponseHandler writes JSON responses with a given status code.
type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	// http.status_code is already set by tracing middleware (EnhanceTracing).
}

// TextResponseHandler writes plain text responses. The handler result must
// be a string.
type TextResponseHandler struct {
	status int
}

func (h TextResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.String(h.status, result.(string))
}

func (h TextResponseHandler) GetOperation() string {
	return "handler_text"
}

func (h TextResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	if txn == nil {
		return
	}
	if text, ok := result.(string); ok {
		txn.AddAttribute("response.text_length", len(text))
	}
}

// handleRequest is the shared execution pipeline for all handlers. It
// centralizes structured logging, New Relic attributes, timing and
// response writing.
func handleRequest(
	c echo.Context,
	handler func(c echo.Context, body payload.Value) (interface{}, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	route := c.Path()
	body := middleware.GetBody(c)

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
		txn.AddAttribute("request.body_kind", body.Kind().String())
		responseHandler.AddAttributes(txn, nil)
	}

	logger := middleware.LoggerFromContext(c.Request().Context()).With().
		Str("operation", responseHandler.GetOperation()).
		Str("route", route).
		Str("body_kind", body.Kind().String()).
		Logger()

	logger.Debug().Msg("handling request")

	result, err := handler(c, body)
	handlerDuration := time.Since(start)

	if err != nil {
		logger.Error().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		}
		return err
	}

	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		responseHandler.AddAttributes(txn, result)
	}

	logger.Debug().
		Dur("handler_duration", handlerDuration).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// Handle wraps a typed handler returning a JSON body.
//
// Usage pattern:
//
//	router.GET("/data", handler.Handle(h.Handler, h.GetData, http.StatusOK))
func Handle[Res any](h Handler, handler HandlerFunc[Res], status int) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, func(c echo.Context, body payload.Value) (interface{}, error) {
			return handler(c, body)
		}, JSONResponseHandler{status: status})
	}
}

// HandleText wraps a typed handler returning a plain text body.
func HandleText(h Handler, handler HandlerFunc[string], status int) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, func(c echo.Context, body payload.Value) (interface{}, error) {
			return handler(c, body)
		}, TextResponseHandler{status: status})
	}
}
