package session

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/memberhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps sessions in the sessions table. Expired rows stay
// invisible to Load and are removed by DeleteExpired.
type PostgresStore struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPostgresStore(pool *pgxpool.Pool, prom *observability.Prom) *PostgresStore {
	return &PostgresStore{pool: pool, prom: prom}
}

func (s *PostgresStore) Save(ctx context.Context, id string, data []byte, expiresAt time.Time) error {
	return s.prom.ObserveDB("sessions_save", func() error {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO sessions (id, data, expires_at, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (id) DO UPDATE
			SET data = EXCLUDED.data,
				expires_at = EXCLUDED.expires_at,
				updated_at = NOW()`,
			id, data, expiresAt.UTC(),
		)
		return err
	})
}

func (s *PostgresStore) Load(ctx context.Context, id string) ([]byte, error) {
	var data []byte

	err := s.prom.ObserveDB("sessions_load", func() error {
		return s.pool.QueryRow(ctx,
			`SELECT data FROM sessions WHERE id = $1 AND expires_at > NOW()`,
			id,
		).Scan(&data)
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	return s.prom.ObserveDB("sessions_delete", func() error {
		_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
		return err
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	var n int64

	err := s.prom.ObserveDB("sessions_delete_expired", func() error {
		tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`)
		n = tag.RowsAffected()
		return err
	})

	return n, err
}
