package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/memberhub/internal/domain/user"
	"github.com/geocoder89/memberhub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

const userColumns = `id, name, email, password_hash, role, created_at, updated_at`

func (r *UsersRepo) Create(ctx context.Context, name, email, passwordHash string, role user.Role) (user.User, error) {
	if _, err := user.ParseRole(string(role)); err != nil {
		return user.User{}, err
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.prom.ObserveDB("users_create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt, u.UpdatedAt,
		)
		return err
	})

	if err != nil {
		return user.User{}, &user.StoreError{Op: "create", Err: err}
	}

	return u, nil
}

// GetByEmail returns the oldest account registered under email. Email is
// not unique at the table level.
func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.prom.ObserveDB("users_get_by_email", func() error {
		row := r.pool.QueryRow(ctx,
			`SELECT `+userColumns+`
			FROM users
			WHERE email = $1
			ORDER BY created_at ASC, id ASC
			LIMIT 1`,
			email,
		)

		var err error
		u, err = scanUser(row)
		return err
	})

	return u, classify("get_by_email", err)
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrInvalidID
	}

	var u user.User

	err := r.prom.ObserveDB("users_get_by_id", func() error {
		row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)

		var err error
		u, err = scanUser(row)
		return err
	})

	return u, classify("get_by_id", err)
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	var items []user.User

	err := r.prom.ObserveDB("users_list", func() error {
		rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			items = append(items, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, classify("list", err)
	}

	return items, nil
}

// SetRole is idempotent: setting the current role again still succeeds.
func (r *UsersRepo) SetRole(ctx context.Context, id string, role user.Role) error {
	if _, err := uuid.Parse(id); err != nil {
		return user.ErrInvalidID
	}

	if _, err := user.ParseRole(string(role)); err != nil {
		return err
	}

	var affected int64

	err := r.prom.ObserveDB("users_set_role", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`,
			id, string(role),
		)
		affected = tag.RowsAffected()
		return err
	})

	if err != nil {
		return &user.StoreError{Op: "set_role", Err: err}
	}

	if affected == 0 {
		return user.ErrUserNotFound
	}

	return nil
}

func (r *UsersRepo) CountByRole(ctx context.Context, role user.Role) (int, error) {
	var n int

	err := r.prom.ObserveDB("users_count_by_role", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, string(role)).Scan(&n)
	})

	if err != nil {
		return 0, &user.StoreError{Op: "count_by_role", Err: err}
	}

	return n, nil
}

func scanUser(row pgx.Row) (user.User, error) {
	var (
		u    user.User
		role string
	)

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return user.User{}, err
	}

	u.Role, err = user.ParseRole(role)
	if err != nil {
		return user.User{}, err
	}

	return u, nil
}

func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return user.ErrUserNotFound
	case errors.Is(err, user.ErrUnknownRole):
		return err
	default:
		return &user.StoreError{Op: op, Err: err}
	}
}
