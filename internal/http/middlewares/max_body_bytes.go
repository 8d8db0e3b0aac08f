package middlewares

import (
	"net/http"

	"github.com/geocoder89/memberhub/internal/http/views"
	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps request bodies. Declared oversize bodies are refused up
// front; undeclared ones fail when the handler reads past the limit.
func MaxBodyBytes(max int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.ContentLength > max {
			views.Error(ctx, http.StatusRequestEntityTooLarge, "The submitted form is too large.")
			ctx.Abort()
			return
		}

		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)

		ctx.Next()
	}
}
