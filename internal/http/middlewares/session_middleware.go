package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/memberhub/internal/http/views"
	"github.com/geocoder89/memberhub/internal/session"
	"github.com/gin-gonic/gin"
)

type SessionStore interface {
	Load(ctx context.Context, cookie string) (*session.Session, error)
	Save(ctx context.Context, s *session.Session) (string, error)
	TTL() time.Duration
}

type SessionMiddleware struct {
	sessions SessionStore
	secure   bool
}

func NewSessionMiddleware(sessions SessionStore, secure bool) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions, secure: secure}
}

// Handle attaches the visitor's session to the context and persists it
// right before the response headers go out, so every request slides the
// expiry forward.
func (m *SessionMiddleware) Handle() gin.HandlerFunc {
	return m.handle(false)
}

// HandleExisting behaves like Handle but does not persist a session that was
// allocated for this request and never authenticated, so stray requests
// from cookieless clients leave nothing behind in the store.
func (m *SessionMiddleware) HandleExisting() gin.HandlerFunc {
	return m.handle(true)
}

func (m *SessionMiddleware) handle(skipFresh bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := c.Cookie(session.CookieName)

		s, err := m.sessions.Load(c.Request.Context(), raw)
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "session load failed", "err", err)
			views.Internal(c)
			c.Abort()
			return
		}

		c.Set(ctxSession, s)

		w := &sessionWriter{ResponseWriter: c.Writer}
		w.commit = func() {
			if skipFresh && s.IsNew() && !s.Authenticated {
				return
			}
			m.commit(c, s)
		}
		c.Writer = w

		c.Next()

		w.flush()
	}
}

func (m *SessionMiddleware) commit(c *gin.Context, s *session.Session) {
	if c.GetBool(ctxEndSession) {
		m.writeCookie(c, "", -1)
		return
	}

	value, err := m.sessions.Save(c.Request.Context(), s)
	if err != nil {
		// headers are about to be sent; the visitor keeps the old cookie
		slog.ErrorContext(c.Request.Context(), "session save failed", "err", err)
		return
	}

	m.writeCookie(c, value, int(m.sessions.TTL().Seconds()))
}

func (m *SessionMiddleware) writeCookie(c *gin.Context, value string, maxAge int) {
	h := c.Writer.Header()

	// at most one session cookie per response
	var kept []string
	for _, v := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(v, session.CookieName+"=") {
			kept = append(kept, v)
		}
	}
	h.Del("Set-Cookie")
	for _, v := range kept {
		h.Add("Set-Cookie", v)
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionFrom returns the session attached by the session middleware.
func SessionFrom(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(ctxSession)
	if !ok {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok && s != nil
}

// EndSession makes the response clear the session cookie instead of
// re-issuing it. The caller destroys the stored entry.
func EndSession(c *gin.Context) {
	c.Set(ctxEndSession, true)
}

type sessionWriter struct {
	gin.ResponseWriter
	once   sync.Once
	commit func()
}

func (w *sessionWriter) flush() {
	w.once.Do(w.commit)
}

func (w *sessionWriter) WriteHeader(code int) {
	w.flush()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) WriteHeaderNow() {
	w.flush()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.flush()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) WriteString(s string) (int, error) {
	w.flush()
	return w.ResponseWriter.WriteString(s)
}
