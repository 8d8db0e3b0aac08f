package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/memberhub/internal/auth"
	"github.com/geocoder89/memberhub/internal/http/views"
	"github.com/geocoder89/memberhub/internal/session"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSessions struct {
	loadErr error
	saveErr error
	saved   []*session.Session
}

func (f *fakeSessions) Load(_ context.Context, cookie string) (*session.Session, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return &session.Session{ID: "sid-" + cookie}, nil
}

func (f *fakeSessions) Save(_ context.Context, s *session.Session) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.saved = append(f.saved, s)
	return "signed-" + s.ID, nil
}

func (f *fakeSessions) TTL() time.Duration { return time.Hour }

func newEngine(store SessionStore, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(views.Templates())
	r.Use(NewSessionMiddleware(store, true).Handle())
	r.GET("/", h)
	return r
}

func sessionCookies(w *httptest.ResponseRecorder) []*http.Cookie {
	var out []*http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			out = append(out, c)
		}
	}
	return out
}

func TestSessionMiddleware_SavesBeforeHeaders(t *testing.T) {
	store := &fakeSessions{}
	r := newEngine(store, func(c *gin.Context) {
		s, ok := SessionFrom(c)
		if !ok {
			t.Fatalf("no session in context")
		}
		s.Name = "set by handler"
		c.Redirect(http.StatusFound, "/next")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "abc"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if len(store.saved) != 1 || store.saved[0].Name != "set by handler" {
		t.Fatalf("session not saved with handler changes: %+v", store.saved)
	}

	cookies := sessionCookies(w)
	if len(cookies) != 1 {
		t.Fatalf("expected one session cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Value != "signed-sid-abc" || !c.Secure || !c.HttpOnly || c.MaxAge != 3600 {
		t.Fatalf("unexpected cookie: %+v", c)
	}
}

func TestSessionMiddleware_SavesWhenNothingWritten(t *testing.T) {
	store := &fakeSessions{}
	r := newEngine(store, func(c *gin.Context) {})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if len(store.saved) != 1 {
		t.Fatalf("expected one save, got %d", len(store.saved))
	}
	if len(sessionCookies(w)) != 1 {
		t.Fatalf("expected a session cookie")
	}
}

func TestSessionMiddleware_EndSessionClearsCookie(t *testing.T) {
	store := &fakeSessions{}
	r := newEngine(store, func(c *gin.Context) {
		EndSession(c)
		c.Redirect(http.StatusFound, "/")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if len(store.saved) != 0 {
		t.Fatalf("ended session must not be saved")
	}
	cookies := sessionCookies(w)
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected an expiring cookie, got %+v", cookies)
	}
}

func TestSessionMiddleware_LoadFailureIs500(t *testing.T) {
	store := &fakeSessions{loadErr: errors.New("redis down")}
	called := false
	r := newEngine(store, func(c *gin.Context) { called = true })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if called {
		t.Fatalf("handler must not run without a session")
	}
}

func TestSessionMiddleware_SaveFailureKeepsResponse(t *testing.T) {
	store := &fakeSessions{saveErr: errors.New("redis down")}
	r := newEngine(store, func(c *gin.Context) {
		c.String(http.StatusOK, "hello")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK || w.Body.String() != "hello" {
		t.Fatalf("unexpected response %d %q", w.Code, w.Body.String())
	}
	if len(sessionCookies(w)) != 0 {
		t.Fatalf("no cookie should be issued when save fails")
	}
}

func TestSessionMiddleware_HandleExistingSkipsFreshSessions(t *testing.T) {
	signer, err := auth.NewManager("middleware-test-secret")
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	store := session.NewMemoryStore()
	mgr := session.NewManager(store, signer, session.Config{TTL: time.Hour}, nil)

	r := gin.New()
	r.SetHTMLTemplate(views.Templates())
	r.NoRoute(NewSessionMiddleware(mgr, false).HandleExisting(), func(c *gin.Context) {
		c.String(http.StatusNotFound, "missing")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if got := sessionCookies(w); len(got) != 0 {
		t.Fatalf("fresh session issued a cookie: %+v", got)
	}
	if n := store.Len(); n != 0 {
		t.Fatalf("store entries = %d, want 0", n)
	}

	// an existing session still slides forward
	existing := &session.Session{ID: "existing-sid"}
	cookie, err := mgr.Save(context.Background(), existing)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookie})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := sessionCookies(w); len(got) != 1 || got[0].Value == "" {
		t.Fatalf("existing session cookie not refreshed: %+v", got)
	}
}

func TestRequireAuth(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ctxSession, &session.Session{Authenticated: c.Query("auth") == "1"})
	})
	r.GET("/members", RequireAuth("/"), func(c *gin.Context) { c.String(http.StatusOK, "secret") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/members", nil))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/" {
		t.Fatalf("anonymous: %d %q", w.Code, w.Header().Get("Location"))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/members?auth=1", nil))
	if w.Code != http.StatusOK || w.Body.String() != "secret" {
		t.Fatalf("authenticated: %d %q", w.Code, w.Body.String())
	}
}
