package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/errs"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/server"
)

// OpenAPIUIPath is the docs page. It is read from the working directory on
// every request so it can be edited without a rebuild.
const OpenAPIUIPath = "static/openapi.html"

// OpenAPIHandler serves the API docs UI, which loads static/openapi.json.
type OpenAPIHandler struct {
	Handler
	path string
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
		path:    OpenAPIUIPath,
	}
}

func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	page, err := os.ReadFile(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return errs.NewNotFoundError("API docs are not available", true, nil)
	}
	if err != nil {
		return err
	}

	header := c.Response().Header()
	header.Set(echo.HeaderCacheControl, "no-cache")
	header.Set("X-Robots-Tag", "noindex")

	return c.HTMLBlob(http.StatusOK, page)
}
