package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

type Config struct {
	Env   string
	Port  int
	DBURL string

	// backends
	UserStore      string
	SessionBackend string

	RedisURL      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionSecret      string
	SessionStoreSecret string
	SessionTTL         time.Duration

	AdminEmail    string
	AdminPassword string
	AdminName     string

	CORSAllowedOrigins []string

	OTLPEndpoint     string
	ServiceName      string
	TraceSampleRatio float64

	SweepInterval time.Duration
}

var ErrMissingSessionSecret = errors.New("SESSION_SECRET is required outside dev")

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", "dev")

	return Config{
		Env:   env,
		Port:  getEnvInt("PORT", 3000),
		DBURL: buildDBURL(),

		UserStore:      strings.ToLower(getEnv("USER_STORE", StorePostgres)),
		SessionBackend: strings.ToLower(getEnv("SESSION_BACKEND", StoreRedis)),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		SessionSecret:      getEnv("SESSION_SECRET", devSecret(env)),
		SessionStoreSecret: getEnv("SESSION_STORE_SECRET", ""),
		SessionTTL:         time.Duration(getEnvInt("SESSION_TTL_MINUTES", 60)) * time.Minute,

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),

		OTLPEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:      getEnv("OTEL_SERVICE_NAME", "memberhub"),
		TraceSampleRatio: getEnvFloat("OTEL_TRACES_SAMPLER_ARG", 1),

		SweepInterval: time.Duration(getEnvInt("SWEEP_INTERVAL_SECONDS", 60)) * time.Second,
	}
}

func (c Config) Validate() error {
	if c.Env != "dev" && c.Env != "test" && c.SessionSecret == "" {
		return ErrMissingSessionSecret
	}

	switch c.UserStore {
	case StorePostgres, StoreMemory:
	default:
		return errors.New("USER_STORE must be postgres or memory")
	}

	switch c.SessionBackend {
	case StoreRedis, StorePostgres, StoreMemory:
	default:
		return errors.New("SESSION_BACKEND must be redis, postgres or memory")
	}

	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL_MINUTES must be positive")
	}

	return nil
}

// NeedsPostgres reports whether any configured backend talks to Postgres.
func (c Config) NeedsPostgres() bool {
	return c.UserStore == StorePostgres || c.SessionBackend == StorePostgres
}

func buildDBURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "memberhub")
	pass := getEnv("DB_PASSWORD", "memberhub")
	name := getEnv("DB_NAME", "memberhub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

// dev gets a fixed signing secret so local restarts keep sessions valid.
func devSecret(env string) string {
	if env == "dev" || env == "test" {
		return "memberhub-dev-secret"
	}
	return ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer in environment, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("invalid number in environment, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return f
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
