package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/memberhub/internal/domain/user"
	"github.com/geocoder89/memberhub/internal/http/middlewares"
	"github.com/geocoder89/memberhub/internal/http/views"
	"github.com/geocoder89/memberhub/internal/observability"
	"github.com/geocoder89/memberhub/internal/session"
	"github.com/geocoder89/memberhub/internal/validation"
	"github.com/gin-gonic/gin"
)

const (
	loginFailedMessage = "Email or password is incorrect."
	accountExists      = "An account with this email already exists."
)

type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash string, role user.Role) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	SetRole(ctx context.Context, id string, role user.Role) error
	CountByRole(ctx context.Context, role user.Role) (int, error)
}

type SessionRotator interface {
	Regenerate(ctx context.Context, s *session.Session) error
	Destroy(ctx context.Context, id string) error
}

type PasswordHasher interface {
	HashPassword(plain string) (string, error)
	VerifyPassword(hash, plain string) bool
}

type AuthHandler struct {
	users    UserStore
	sessions SessionRotator
	hasher   PasswordHasher
	prom     *observability.Prom

	// compared against when the email is unknown so both failure paths
	// cost one bcrypt comparison
	dummyHash string
}

func NewAuthHandler(users UserStore, sessions SessionRotator, hasher PasswordHasher, prom *observability.Prom) *AuthHandler {
	dummy, err := hasher.HashPassword("memberhub-timing-equaliser")
	if err != nil {
		slog.Warn("could not prepare dummy password hash", "err", err)
	}

	return &AuthHandler{
		users:     users,
		sessions:  sessions,
		hasher:    hasher,
		prom:      prom,
		dummyHash: dummy,
	}
}

func (h *AuthHandler) SignupForm(ctx *gin.Context) {
	render(ctx, http.StatusOK, "signup.html", gin.H{"Title": "Sign up"})
}

func (h *AuthHandler) LoginForm(ctx *gin.Context) {
	render(ctx, http.StatusOK, "login.html", gin.H{"Title": "Log in"})
}

func (h *AuthHandler) Signup(ctx *gin.Context) {
	payload, err := ReadPayload(ctx)
	if err != nil {
		respondBodyError(ctx, err)
		return
	}

	in, res := validation.ValidateSignup(payload)
	if !res.OK() {
		if res.Injection() {
			h.rejectInjection(ctx, "signup", res.Err)
			return
		}

		h.prom.AuthEvent("signup", "invalid")
		render(ctx, http.StatusBadRequest, "signup.html", gin.H{
			"Title": "Sign up",
			"Error": res.Err.Message(),
			"Name":  stringValue(payload, "name"),
			"Email": stringValue(payload, "email"),
		})
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	_, err = h.users.GetByEmail(cctx, in.Email)
	switch {
	case err == nil:
		h.prom.AuthEvent("signup", "duplicate")
		render(ctx, http.StatusConflict, "signup.html", gin.H{
			"Title": "Sign up",
			"Error": accountExists,
			"Name":  in.Name,
			"Email": in.Email,
		})
		return
	case !errors.Is(err, user.ErrUserNotFound):
		respondInternal(ctx, "signup_lookup", err)
		return
	}

	hash, err := h.hasher.HashPassword(in.Password)
	if err != nil {
		respondInternal(ctx, "signup_hash", err)
		return
	}

	u, err := h.users.Create(cctx, in.Name, in.Email, hash, user.RoleUser)
	if err != nil {
		respondInternal(ctx, "signup_create", err)
		return
	}

	if !h.establish(ctx, u) {
		return
	}

	h.prom.AuthEvent("signup", "success")
	slog.InfoContext(ctx.Request.Context(), "user signed up", "user_id", u.ID)

	ctx.Redirect(http.StatusFound, "/members")
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	payload, err := ReadPayload(ctx)
	if err != nil {
		respondBodyError(ctx, err)
		return
	}

	in, res := validation.ValidateLogin(payload)
	if !res.OK() {
		if res.Injection() {
			h.rejectInjection(ctx, "login", res.Err)
			return
		}
		h.loginFailed(ctx, stringValue(payload, "email"))
		return
	}

	// short timeout for DB lookup
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	found, err := h.users.GetByEmail(cctx, in.Email)
	if errors.Is(err, user.ErrUserNotFound) {
		h.hasher.VerifyPassword(h.dummyHash, in.Password)
		h.loginFailed(ctx, in.Email)
		return
	}
	if err != nil {
		respondInternal(ctx, "login_lookup", err)
		return
	}

	if !h.hasher.VerifyPassword(found.PasswordHash, in.Password) {
		h.loginFailed(ctx, in.Email)
		return
	}

	if !h.establish(ctx, found) {
		return
	}

	h.prom.AuthEvent("login", "success")
	ctx.Redirect(http.StatusFound, "/members")
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	if s, ok := middlewares.SessionFrom(ctx); ok {
		if err := h.sessions.Destroy(ctx.Request.Context(), s.ID); err != nil {
			slog.ErrorContext(ctx.Request.Context(), "session destroy failed", "err", err)
		}
	}

	middlewares.EndSession(ctx)
	h.prom.AuthEvent("logout", "success")

	ctx.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) Members(ctx *gin.Context) {
	render(ctx, http.StatusOK, "members.html", gin.H{"Title": "Members"})
}

// establish moves the visitor to a new session id and binds it to u.
func (h *AuthHandler) establish(ctx *gin.Context, u user.User) bool {
	s, ok := middlewares.SessionFrom(ctx)
	if !ok {
		respondInternal(ctx, "session_missing", errors.New("no session on request"))
		return false
	}

	if err := h.sessions.Regenerate(ctx.Request.Context(), s); err != nil {
		// the id has rotated regardless; the stale entry expires on its own
		slog.WarnContext(ctx.Request.Context(), "previous session not dropped", "err", err)
	}

	s.Authenticate(u)
	return true
}

func (h *AuthHandler) loginFailed(ctx *gin.Context, email string) {
	h.prom.AuthEvent("login", "failure")
	render(ctx, http.StatusUnauthorized, "login.html", gin.H{
		"Title": "Log in",
		"Error": loginFailedMessage,
		"Email": email,
	})
}

func (h *AuthHandler) rejectInjection(ctx *gin.Context, flow string, fe *validation.FieldError) {
	h.prom.AuthEvent(flow, "injection")
	slog.WarnContext(ctx.Request.Context(), "rejected structured input",
		"flow", flow,
		"field", fe.Field,
		"client_ip", ctx.ClientIP(),
	)
	views.Warning(ctx)
}
