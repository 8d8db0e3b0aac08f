package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/memberhub/internal/auth"
	"github.com/geocoder89/memberhub/internal/observability"
	"github.com/google/uuid"
)

const storeTimeout = 2 * time.Second

type Config struct {
	TTL time.Duration
	// StoreSecret enables sealing of stored payloads when non-empty.
	StoreSecret string
}

type Manager struct {
	store  Store
	signer *auth.Manager
	sealer *sealer
	ttl    time.Duration
	now    func() time.Time
	prom   *observability.Prom
}

func NewManager(store Store, signer *auth.Manager, cfg Config, prom *observability.Prom) *Manager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Manager{
		store:  store,
		signer: signer,
		sealer: newSealer(cfg.StoreSecret),
		ttl:    ttl,
		now:    time.Now,
		prom:   prom,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Load resolves the cookie value to a stored session. Any miss yields a
// fresh anonymous session; only store failures are returned as errors.
func (m *Manager) Load(ctx context.Context, cookie string) (*Session, error) {
	if cookie == "" {
		return m.fresh(), nil
	}

	id, err := m.signer.VerifySession(cookie)
	if err != nil {
		m.prom.SessionOp("load", nil)
		return m.fresh(), nil
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	raw, err := m.store.Load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		m.prom.SessionOp("load", nil)
		return m.fresh(), nil
	}
	if err != nil {
		m.prom.SessionOp("load", err)
		return nil, fmt.Errorf("load session: %w", err)
	}

	s, err := m.decode(raw)
	if err != nil {
		// unreadable entries are dropped rather than surfaced
		_ = m.store.Delete(ctx, id)
		m.prom.SessionOp("load", nil)
		return m.fresh(), nil
	}

	if !m.now().Before(s.ExpiresAt) {
		_ = m.store.Delete(ctx, id)
		m.prom.SessionOp("load", nil)
		return m.fresh(), nil
	}

	s.ID = id
	m.prom.SessionOp("load", nil)
	return s, nil
}

// Save extends the session by one TTL from now, persists it and returns a
// newly signed cookie value.
func (m *Manager) Save(ctx context.Context, s *Session) (string, error) {
	s.ExpiresAt = m.now().Add(m.ttl)

	raw, err := m.encode(s)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := m.store.Save(ctx, s.ID, raw, s.ExpiresAt); err != nil {
		m.prom.SessionOp("save", err)
		return "", fmt.Errorf("save session: %w", err)
	}
	m.prom.SessionOp("save", nil)

	s.fresh = false

	return m.signer.SignSession(s.ID, s.ExpiresAt)
}

// Regenerate moves s to a new id and drops the old entry. The caller saves
// the session afterwards.
func (m *Manager) Regenerate(ctx context.Context, s *Session) error {
	old := s.ID
	wasNew := s.fresh

	s.ID = uuid.NewString()
	s.CreatedAt = m.now().UTC()

	if wasNew || old == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	err := m.store.Delete(ctx, old)
	m.prom.SessionOp("regenerate", err)
	if err != nil {
		return fmt.Errorf("drop previous session: %w", err)
	}
	return nil
}

func (m *Manager) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	err := m.store.Delete(ctx, id)
	m.prom.SessionOp("destroy", err)
	if err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}

func (m *Manager) fresh() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: m.now().UTC(),
		fresh:     true,
	}
}

func (m *Manager) encode(s *Session) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return m.sealer.seal(raw)
}

func (m *Manager) decode(raw []byte) (*Session, error) {
	plain, err := m.sealer.open(raw)
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal(plain, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
