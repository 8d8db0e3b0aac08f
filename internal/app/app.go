// Package app builds the long-lived dependencies once at startup and hands
// them to the HTTP layer and workers.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/memberhub/internal/auth"
	"github.com/geocoder89/memberhub/internal/config"
	"github.com/geocoder89/memberhub/internal/db"
	apphttp "github.com/geocoder89/memberhub/internal/http"
	"github.com/geocoder89/memberhub/internal/http/handlers"
	"github.com/geocoder89/memberhub/internal/notifications"
	"github.com/geocoder89/memberhub/internal/observability"
	"github.com/geocoder89/memberhub/internal/redisclient"
	"github.com/geocoder89/memberhub/internal/repo/memory"
	"github.com/geocoder89/memberhub/internal/repo/postgres"
	"github.com/geocoder89/memberhub/internal/security"
	"github.com/geocoder89/memberhub/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	Cfg  config.Config
	Log  *slog.Logger
	Prom *observability.Prom

	// Pool is nil unless a backend lives in Postgres; Redis likewise.
	Pool  *pgxpool.Pool
	Redis *redisclient.Client

	Users    handlers.UserStore
	Store    session.Store
	Sessions *session.Manager
	Hasher   *security.Hasher
	Notifier notifications.Notifier
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		Cfg:    cfg,
		Log:    log,
		Prom:   observability.NewProm(),
		Hasher: security.NewHasher(security.PasswordCost),
		Notifier: notifications.NewProtectedNotifier(
			notifications.NewLogNotifier(log),
			notifications.ProtectedNotifierConfig{Timeout: 2 * time.Second},
		),
	}

	if cfg.NeedsPostgres() {
		if err := db.Migrate(ctx, cfg.DBURL); err != nil {
			return nil, err
		}

		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.Pool = pool
	}

	switch cfg.UserStore {
	case config.StorePostgres:
		a.Users = postgres.NewUsersRepo(a.Pool, a.Prom)
	default:
		log.Warn("users are kept in memory and will not survive a restart")
		a.Users = memory.NewUsersRepo()
	}

	switch cfg.SessionBackend {
	case config.StoreRedis:
		client, err := redisclient.Connect(ctx, redisclient.Config{
			URL:      cfg.RedisURL,
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.Redis = client
		a.Store = session.NewRedisStore(client)
	case config.StorePostgres:
		a.Store = session.NewPostgresStore(a.Pool, a.Prom)
	default:
		a.Store = session.NewMemoryStore()
	}

	signer, err := auth.NewManager(cfg.SessionSecret)
	if err != nil {
		a.Close()
		return nil, err
	}

	if cfg.SessionStoreSecret == "" {
		log.Info("session payloads stored unsealed; set SESSION_STORE_SECRET to encrypt them")
	}

	a.Sessions = session.NewManager(a.Store, signer, session.Config{
		TTL:         cfg.SessionTTL,
		StoreSecret: cfg.SessionStoreSecret,
	}, a.Prom)

	return a, nil
}

func (a *App) Router() *gin.Engine {
	return apphttp.NewRouter(a.Log, a.Cfg, apphttp.Deps{
		Users:    a.Users,
		Sessions: a.Sessions,
		Hasher:   a.Hasher,
		Prom:     a.Prom,
		Notifier: a.Notifier,
		Checks:   a.Checks(),
	})
}

// Checks lists the dependencies a ready instance must reach.
func (a *App) Checks() map[string]handlers.Check {
	checks := map[string]handlers.Check{
		"sessions": a.Sessions.Ping,
	}
	if a.Pool != nil {
		checks["postgres"] = a.Pool.Ping
	}
	return checks
}

// SeedAdmin applies ADMIN_EMAIL / ADMIN_PASSWORD when both are set.
func (a *App) SeedAdmin(ctx context.Context) error {
	res, err := db.EnsureAdminUser(ctx, a.Users, a.Hasher, a.Cfg.AdminName, a.Cfg.AdminEmail, a.Cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if res != db.SeedSkipped {
		a.Log.Info("admin account checked", "email", a.Cfg.AdminEmail, "result", string(res))
	}
	return nil
}

// Sweeper returns the session store when it needs explicit expiry sweeps.
func (a *App) Sweeper() (session.Sweeper, bool) {
	s, ok := a.Store.(session.Sweeper)
	return s, ok
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warn("redis close failed", "err", err)
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}
