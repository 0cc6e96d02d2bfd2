package handler

import (
	"net/http"

	"github.com/deppfellow/data-api/internal/payload"
	"github.com/deppfellow/data-api/internal/server"
	"github.com/labstack/echo/v4"
)

// HomeMessage is the plain text body of GET /.
const HomeMessage = "Welcome to the Home Page!"

// DataResponse is the body of every /data route. Data is only set by the
// routes that echo the request body.
type DataResponse struct {
	Message string         `json:"message"`
	Data    *payload.Value `json:"data,omitempty"`
}

// DataHandler serves the home page and the /data routes. Every response is
// static or echoes the request body; nothing is stored.
type DataHandler struct {
	Handler
}

// NewDataHandler constructs a DataHandler.
func NewDataHandler(s *server.Server) *DataHandler {
	return &DataHandler{
		Handler: NewHandler(s),
	}
}

func (h *DataHandler) home(c echo.Context, body payload.Value) (string, error) {
	return HomeMessage, nil
}

func (h *DataHandler) getData(c echo.Context, body payload.Value) (DataResponse, error) {
	return DataResponse{Message: "GET request to /data"}, nil
}

func (h *DataHandler) postData(c echo.Context, body payload.Value) (DataResponse, error) {
	return DataResponse{Message: "POST request to /data", Data: &body}, nil
}

func (h *DataHandler) putData(c echo.Context, body payload.Value) (DataResponse, error) {
	return DataResponse{Message: "PUT request to /data", Data: &body}, nil
}

func (h *DataHandler) deleteData(c echo.Context, body payload.Value) (DataResponse, error) {
	return DataResponse{Message: "DELETE request to /data"}, nil
}

// Home handles GET /.
func (h *DataHandler) Home() echo.HandlerFunc {
	return HandleText(h.Handler, h.home, http.StatusOK)
}

// GetData handles GET /data.
func (h *DataHandler) GetData() echo.HandlerFunc {
	return Handle(h.Handler, h.getData, http.StatusOK)
}

// PostData handles POST /data, echoing the body.
func (h *DataHandler) PostData() echo.HandlerFunc {
	return Handle(h.Handler, h.postData, http.StatusOK)
}

// PutData handles PUT /data, echoing the body.
func (h *DataHandler) PutData() echo.HandlerFunc {
	return Handle(h.Handler, h.putData, http.StatusOK)
}

// DeleteData handles DELETE /data.
func (h *DataHandler) DeleteData() echo.HandlerFunc {
	return Handle(h.Handler, h.deleteData, http.StatusOK)
}
