package router

import (
	"github.com/deppfellow/data-api/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerDataRoutes maps the route table. HEAD mirrors GET. OPTIONS is
// registered explicitly so echo does not answer it on its own; like every
// other unmatched request it gets the 404 fallback.
func registerDataRoutes(r *echo.Echo, h *handler.Handlers) {
	home := h.Data.Home()
	r.GET("/", home)
	r.HEAD("/", home)
	r.OPTIONS("/", h.Fallback.NotFound)

	getData := h.Data.GetData()
	r.GET("/data", getData)
	r.HEAD("/data", getData)
	r.POST("/data", h.Data.PostData())
	r.PUT("/data", h.Data.PutData())
	r.DELETE("/data", h.Data.DeleteData())
	r.OPTIONS("/data", h.Fallback.NotFound)

	r.RouteNotFound("/*", h.Fallback.NotFound)
}
