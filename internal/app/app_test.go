package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/memberhub/internal/config"
	"github.com/geocoder89/memberhub/internal/domain/user"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() config.Config {
	return config.Config{
		Env:            "test",
		UserStore:      config.StoreMemory,
		SessionBackend: config.StoreMemory,
		SessionSecret:  "app-test-secret",
		SessionTTL:     time.Hour,
		ServiceName:    "memberhub-test",
		AdminName:      "Boss",
		AdminEmail:     "boss@example.com",
		AdminPassword:  "boss-password",
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_InMemory(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	a, err := New(ctx, memoryConfig(), quietLogger())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.Nil(t, a.Pool)
	assert.Nil(t, a.Redis)

	_, sweeps := a.Sweeper()
	assert.True(t, sweeps, "memory store needs sweeping")

	require.NoError(t, a.SeedAdmin(ctx))
	u, err := a.Users.GetByEmail(ctx, "boss@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, u.Role)
	assert.Equal(t, "Boss", u.Name)

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "memberhub_")
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.SessionBackend = "mongo"

	_, err := New(context.Background(), cfg, quietLogger())
	assert.Error(t, err)
}
