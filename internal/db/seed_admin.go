package db

import (
	"context"
	"errors"
	"strings"

	"github.com/geocoder89/memberhub/internal/domain/user"
	"github.com/geocoder89/memberhub/internal/security"
)

type AdminSeeder interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, name, email, passwordHash string, role user.Role) (user.User, error)
	SetRole(ctx context.Context, id string, role user.Role) error
}

type SeedResult string

const (
	SeedCreated  SeedResult = "created"
	SeedPromoted SeedResult = "promoted"
	SeedExisting SeedResult = "existing"
	SeedSkipped  SeedResult = "skipped"
)

// EnsureAdminUser makes sure an admin account exists under email. An existing
// account keeps its password and is promoted if needed.
func EnsureAdminUser(ctx context.Context, users AdminSeeder, hasher *security.Hasher, name, email, password string) (SeedResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return SeedSkipped, nil
	}

	existing, err := users.GetByEmail(ctx, email)
	if err == nil {
		if existing.IsAdmin() {
			return SeedExisting, nil
		}
		if err := users.SetRole(ctx, existing.ID, user.RoleAdmin); err != nil {
			return "", err
		}
		return SeedPromoted, nil
	}

	if !errors.Is(err, user.ErrUserNotFound) {
		return "", err
	}

	hash, err := hasher.HashPassword(password)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}

	if _, err := users.Create(ctx, name, email, hash, user.RoleAdmin); err != nil {
		return "", err
	}

	return SeedCreated, nil
}
