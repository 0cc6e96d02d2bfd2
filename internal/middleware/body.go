package middleware

import (
	"github.com/deppfellow/data-api/internal/payload"
	"github.com/deppfellow/data-api/internal/server"
	"github.com/labstack/echo/v4"
)

// BodyKey is the echo context key of the decoded request body.
const BodyKey = "body"

// BodyMiddleware decodes JSON request bodies before routing results are
// used, so a malformed body fails the request even on unknown routes.
type BodyMiddleware struct {
	server *server.Server
	limit  int64
}

// NewBodyMiddleware constructs a BodyMiddleware limited to the configured
// server body limit.
func NewBodyMiddleware(s *server.Server) *BodyMiddleware {
	limit := s.Config.Server.BodyLimitBytes
	if limit <= 0 {
		limit = payload.DefaultLimit
	}

	return &BodyMiddleware{
		server: s,
		limit:  limit,
	}
}

// DecodeJSON stores the decoded body under BodyKey. Decoding failures are
// returned as *errs.BodyError and end the request in the error handler.
func (b *BodyMiddleware) DecodeJSON() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			body, err := payload.FromRequest(c.Request(), b.limit)
			if err != nil {
				return err
			}

			if !body.IsAbsent() {
				GetLogger(c).Debug().
					Str("kind", body.Kind().String()).
					Int("length", body.Len()).
					Msg("decoded JSON body")
			}

			c.Set(BodyKey, body)
			return next(c)
		}
	}
}

// GetBody returns the decoded request body, Absent when none was decoded.
func GetBody(c echo.Context) payload.Value {
	if body, ok := c.Get(BodyKey).(payload.Value); ok {
		return body
	}
	return payload.Absent()
}
