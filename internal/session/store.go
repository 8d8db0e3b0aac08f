package session

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("session not found")

// Store persists encoded sessions. Implementations must be safe for
// concurrent use and must treat entries past expiresAt as absent.
type Store interface {
	Save(ctx context.Context, id string, data []byte, expiresAt time.Time) error
	// Load returns ErrNotFound for missing or expired entries.
	Load(ctx context.Context, id string) ([]byte, error)
	// Delete is a no-op for unknown ids.
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// Sweeper is implemented by stores that need expired entries removed
// explicitly. Redis expires keys on its own and does not implement it.
type Sweeper interface {
	DeleteExpired(ctx context.Context) (int64, error)
}
