// Package views holds the server-rendered pages.
package views

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/geocoder89/memberhub/internal/observability"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var files embed.FS

func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(files, "templates/*.html"))
}

// Error renders the shared error page.
func Error(c *gin.Context, status int, message string) {
	c.HTML(status, "error.html", gin.H{
		"Title":     http.StatusText(status),
		"Status":    status,
		"Message":   message,
		"RequestID": observability.RequestIDFrom(c.Request.Context()),
	})
}

func Internal(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

// Warning is shown when a submission looked like an injection attempt.
func Warning(c *gin.Context) {
	c.HTML(http.StatusBadRequest, "warning.html", gin.H{
		"Title": "Request rejected",
	})
}
