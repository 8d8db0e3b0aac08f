package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/memberhub/internal/domain/user"
	"github.com/geocoder89/memberhub/internal/http/views"
	"github.com/gin-gonic/gin"
)

const forbiddenMessage = "You are not authorized to view this page."

type UserLookup interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// RequireAdmin re-reads the session's user on every request, so a role
// change applies without logging in again.
func RequireAdmin(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := SessionFrom(c)
		if !ok || !s.Authenticated {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		cctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		u, err := users.GetByID(cctx, s.UserID)
		switch {
		case err == nil:
		case errors.Is(err, user.ErrUserNotFound), errors.Is(err, user.ErrInvalidID):
			views.Error(c, http.StatusForbidden, forbiddenMessage)
			c.Abort()
			return
		default:
			slog.ErrorContext(c.Request.Context(), "admin check failed", "err", err, "user_id", s.UserID)
			views.Internal(c)
			c.Abort()
			return
		}

		if !u.IsAdmin() {
			views.Error(c, http.StatusForbidden, forbiddenMessage)
			c.Abort()
			return
		}

		c.Set(ctxUser, u)
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxUser)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}
