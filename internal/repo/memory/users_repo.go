package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/memberhub/internal/domain/user"
	"github.com/google/uuid"
)

// UsersRepo keeps users in process memory. It backs USER_STORE=memory and
// the handler tests.
type UsersRepo struct {
	mu    sync.RWMutex
	items map[string]user.User
	seq   int64
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make(map[string]user.User),
	}
}

func (r *UsersRepo) Create(_ context.Context, name, email, passwordHash string, role user.Role) (user.User, error) {
	if _, err := user.ParseRole(string(role)); err != nil {
		return user.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// strictly increasing timestamps keep List and GetByEmail ordering stable
	r.seq++
	now := time.Now().UTC().Add(time.Duration(r.seq))

	u := user.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		found user.User
		ok    bool
	)
	for _, u := range r.items {
		if u.Email != email {
			continue
		}
		if !ok || u.CreatedAt.Before(found.CreatedAt) {
			found, ok = u, true
		}
	}

	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return found, nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrInvalidID
	}

	r.mu.RLock()
	u, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *UsersRepo) List(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	out := make([]user.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (r *UsersRepo) SetRole(_ context.Context, id string, role user.Role) error {
	if _, err := uuid.Parse(id); err != nil {
		return user.ErrInvalidID
	}
	if _, err := user.ParseRole(string(role)); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.ErrUserNotFound
	}

	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	r.items[id] = u

	return nil
}

func (r *UsersRepo) CountByRole(_ context.Context, role user.Role) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, u := range r.items {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}
