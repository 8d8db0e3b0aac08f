// Package session keeps per-visitor state server-side. The browser only
// carries a signed token naming the session id.
package session

import (
	"time"

	"github.com/geocoder89/memberhub/internal/domain/user"
)

const CookieName = "memberhub.sid"

type Session struct {
	ID            string    `json:"-"`
	Authenticated bool      `json:"authenticated"`
	UserID        string    `json:"userId,omitempty"`
	Name          string    `json:"name,omitempty"`
	Email         string    `json:"email,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	ExpiresAt     time.Time `json:"expiresAt"`

	fresh bool
}

// IsNew reports whether the session was allocated during this request.
func (s *Session) IsNew() bool {
	return s.fresh
}

// Authenticate binds the session to u. Name and email are copied and not
// refreshed afterwards.
func (s *Session) Authenticate(u user.User) {
	s.Authenticated = true
	s.UserID = u.ID
	s.Name = u.Name
	s.Email = u.Email
}
