package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/memberhub/internal/domain/user"
	"github.com/geocoder89/memberhub/internal/http/middlewares"
	"github.com/geocoder89/memberhub/internal/http/views"
	"github.com/gin-gonic/gin"
)

// render adds the visitor's session to the page data.
func render(ctx *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if s, ok := middlewares.SessionFrom(ctx); ok {
		data["Session"] = s
	}
	ctx.HTML(status, page, data)
}

// respondStoreError maps user store failures onto error pages.
func respondStoreError(ctx *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, user.ErrInvalidID):
		views.Error(ctx, http.StatusBadRequest, "Invalid identifier.")
	case errors.Is(err, user.ErrUserNotFound):
		views.Error(ctx, http.StatusNotFound, "User not found.")
	case errors.Is(err, user.ErrLastAdmin):
		views.Error(ctx, http.StatusConflict, "The last remaining admin cannot be demoted.")
	default:
		respondInternal(ctx, op, err)
	}
}

func respondInternal(ctx *gin.Context, op string, err error) {
	attrs := []any{"op", op, "err", err}

	var se *user.StoreError
	if errors.As(err, &se) {
		attrs = append(attrs, "retryable", se.Temporary())
	}

	slog.ErrorContext(ctx.Request.Context(), "request failed", attrs...)
	views.Internal(ctx)
}
