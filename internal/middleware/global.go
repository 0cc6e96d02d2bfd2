package middleware

import (
	"net/http"
	"strings"

	"github.com/deppfellow/data-api/internal/errs"
	"github.com/deppfellow/data-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// GlobalMiddlewares groups the middleware applied to every request and the
// global error handler.
type GlobalMiddlewares struct {
	server *server.Server
}

// NewGlobalMiddlewares constructs the middleware bundle.
func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// RemoveTrailingSlash makes "/data/" route like "/data".
func (global *GlobalMiddlewares) RemoveTrailingSlash() echo.MiddlewareFunc {
	return middleware.RemoveTrailingSlash()
}

// CaseInsensitivePaths lower-cases the request path before routing so
// "/DATA" routes like "/data". It must be registered with Echo#Pre.
func (global *GlobalMiddlewares) CaseInsensitivePaths() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := c.Request().URL
			u.Path = strings.ToLower(u.Path)
			if u.RawPath != "" {
				u.RawPath = strings.ToLower(u.RawPath)
			}
			return next(c)
		}
	}
}

// RequestLogger writes one access log line per request. Method, path,
// request id and timestamp come from the request-scoped logger.
//
// HandleError makes the logger run the error handler before logging, so
// the logged status and size are the ones actually sent.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		HandleError:     true,
		LogLatency:      true,
		LogProtocol:     true,
		LogRemoteIP:     true,
		LogURI:          true,
		LogStatus:       true,
		LogError:        true,
		LogResponseSize: true,
		LogReferer:      true,
		LogUserAgent:    true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case v.Status >= http.StatusInternalServerError:
				e = logger.Error()
			case v.Status >= http.StatusBadRequest:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			e.
				Str("remote_ip", v.RemoteIP).
				Str("uri", v.URI).
				Str("protocol", v.Protocol).
				Int("status", v.Status).
				Int64("size", v.ResponseSize).
				Str("referer", v.Referer).
				Str("user_agent", v.UserAgent).
				Dur("latency", v.Latency).
				Msg("API")

			return nil
		},
	})
}

// Recover turns panics into errors for the error handler and logs the
// goroutine stack through the request logger.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableErrorHandler: true,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			GetLogger(c).Error().
				Err(err).
				Str("stack", string(stack)).
				Msg("panic recovered")

			return errors.Wrap(err, "panic recovered")
		},
	})
}

// errorHandledKey marks a request whose error was already logged and
// answered. echo invokes the handler a second time when RequestLogger
// returns the error it handled.
const errorHandledKey = "error_handled"

// GlobalErrorHandler is the final error funnel for the entire HTTP server.
//
// Route misses (including echo's own 404 and 405) become the 404 fallback
// response. Everything else, a malformed body included, becomes the
// generic 500. The cause is logged, never sent. An error raised after the
// response was committed is only logged.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	if handled, _ := c.Get(errorHandledKey).(bool); handled {
		return
	}
	c.Set(errorHandledKey, true)

	var httpErr *errs.HTTPError
	if !errors.As(err, &httpErr) {
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) && (echoErr.Code == http.StatusNotFound || echoErr.Code == http.StatusMethodNotAllowed) {
			httpErr = errs.NewNotFoundError()
		} else {
			httpErr = errs.NewInternalServerError()
		}
	}

	code := httpErr.Code
	var bodyErr *errs.BodyError
	if errors.As(err, &bodyErr) {
		code = bodyErr.Code
	}

	committed := c.Response().Committed

	logger := GetLogger(c)
	var e *zerolog.Event
	if httpErr.Status >= http.StatusInternalServerError {
		e = logger.Error().Stack()
	} else {
		e = logger.Warn()
	}
	e.Err(err).
		Int("status", httpErr.Status).
		Str("error_code", code).
		Bool("committed", committed).
		Msg(httpErr.Message)

	if committed {
		return
	}

	if err := c.JSON(httpErr.Status, httpErr); err != nil {
		logger.Error().Err(err).Msg("failed to write error response")
	}
}
