package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAuth redirects anonymous visitors to redirectTo.
func RequireAuth(redirectTo string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := SessionFrom(c)
		if !ok || !s.Authenticated {
			c.Redirect(http.StatusFound, redirectTo)
			c.Abort()
			return
		}
		c.Next()
	}
}
