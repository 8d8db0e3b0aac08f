package http

import (
	"io"
	"log/slog"

	"github.com/geocoder89/memberhub/internal/config"
	"github.com/geocoder89/memberhub/internal/http/handlers"
	"github.com/geocoder89/memberhub/internal/http/middlewares"
	"github.com/geocoder89/memberhub/internal/http/views"
	"github.com/geocoder89/memberhub/internal/notifications"
	"github.com/geocoder89/memberhub/internal/observability"
	"github.com/geocoder89/memberhub/internal/session"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxFormBytes = 64 << 10

type Deps struct {
	Users    handlers.UserStore
	Sessions *session.Manager
	Hasher   handlers.PasswordHasher
	Prom     *observability.Prom
	// Notifier receives role changes; nil disables notifications.
	Notifier notifications.Notifier
	// Checks back /readyz; keyed by dependency name.
	Checks map[string]handlers.Check
}

func NewRouter(log *slog.Logger, cfg config.Config, d Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.SetHTMLTemplate(views.Templates())

	// middleware
	r.Use(gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		log.ErrorContext(c.Request.Context(), "panic recovered", "panic", recovered, "path", c.Request.URL.Path)
		views.Internal(c)
		c.Abort()
	}))
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	}

	// operational endpoints carry no session
	health := handlers.NewHealthHandler(d.Checks)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	if d.Prom != nil {
		r.GET("/metrics", gin.WrapH(d.Prom.Handler()))
	}

	sessions := middlewares.NewSessionMiddleware(d.Sessions, cfg.Env == "prod")
	authH := handlers.NewAuthHandler(d.Users, d.Sessions, d.Hasher, d.Prom)
	adminH := handlers.NewAdminHandler(d.Users, d.Notifier, d.Prom)

	pages := r.Group("/")
	pages.Use(sessions.Handle())
	{
		pages.GET("/", handlers.Home)

		pages.GET("/signup", authH.SignupForm)
		pages.POST("/signup", middlewares.MaxBodyBytes(maxFormBytes), authH.Signup)
		pages.GET("/login", authH.LoginForm)
		pages.POST("/login", middlewares.MaxBodyBytes(maxFormBytes), authH.Login)
		pages.GET("/logout", authH.Logout)

		pages.GET("/members", middlewares.RequireAuth("/"), authH.Members)

		admin := pages.Group("/")
		admin.Use(middlewares.RequireAdmin(d.Users))
		admin.GET("/admin", adminH.List)
		admin.GET("/promote/:id", adminH.Promote)
		admin.GET("/demote/:id", adminH.Demote)
	}

	r.NoRoute(sessions.HandleExisting(), handlers.NotFound)

	return r
}
