package handlers

import (
	"net/http"

	"github.com/geocoder89/memberhub/internal/http/views"
	"github.com/gin-gonic/gin"
)

func Home(ctx *gin.Context) {
	render(ctx, http.StatusOK, "home.html", gin.H{"Title": "Home"})
}

func NotFound(ctx *gin.Context) {
	views.Error(ctx, http.StatusNotFound, "Page not found.")
}
