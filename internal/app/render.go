package app

import (
	"embed"
	"html/template"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed views
var viewFiles embed.FS

type renderer struct {
	templates *template.Template
}

func newRenderer() *renderer {
	return &renderer{
		templates: template.Must(template.ParseFS(viewFiles, "views/*.html")),
	}
}

// Render satisfies [echo.Renderer].
func (r *renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// Envelope is the JSON response body for all write-style admin endpoints.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// jsonOK responds with a success envelope. The HTTP status is always 200; the
// outcome is carried by the envelope itself.
func jsonOK(c echo.Context, message string, data any) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// jsonFail responds with a failure envelope.
func jsonFail(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Envelope{Success: false, Message: message, Data: ""})
}
