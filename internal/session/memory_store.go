package session

import (
	"context"
	"time"

	"github.com/geocoder89/memberhub/internal/cache"
)

// MemoryStore keeps sessions in process memory. For development and tests;
// entries are lost on restart and not shared between instances.
type MemoryStore struct {
	c *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{c: cache.New()}
}

func (m *MemoryStore) Save(_ context.Context, id string, data []byte, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		m.c.Delete(id)
		return nil
	}

	m.c.Set(id, data, ttl)
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) ([]byte, error) {
	data, ok := m.c.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.c.Delete(id)
	return nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

func (m *MemoryStore) DeleteExpired(context.Context) (int64, error) {
	return int64(m.c.DeleteExpired()), nil
}

// Len is the number of entries currently held, expired or not.
func (m *MemoryStore) Len() int {
	return m.c.Len()
}
