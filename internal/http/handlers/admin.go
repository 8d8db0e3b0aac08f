package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/memberhub/internal/domain/user"
	"github.com/geocoder89/memberhub/internal/notifications"
	"github.com/geocoder89/memberhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	users    UserStore
	notifier notifications.Notifier
	prom     *observability.Prom
}

func NewAdminHandler(users UserStore, notifier notifications.Notifier, prom *observability.Prom) *AdminHandler {
	return &AdminHandler{users: users, notifier: notifier, prom: prom}
}

func (h *AdminHandler) List(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	users, err := h.users.List(cctx)
	if err != nil {
		respondInternal(ctx, "admin_list", err)
		return
	}

	render(ctx, http.StatusOK, "admin.html", gin.H{
		"Title": "Admin",
		"Users": users,
	})
}

func (h *AdminHandler) Promote(ctx *gin.Context) {
	h.changeRole(ctx, user.RoleAdmin)
}

func (h *AdminHandler) Demote(ctx *gin.Context) {
	h.changeRole(ctx, user.RoleUser)
}

func (h *AdminHandler) changeRole(ctx *gin.Context, role user.Role) {
	id := ctx.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		respondStoreError(ctx, "set_role", user.ErrInvalidID)
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	target, err := h.users.GetByID(cctx, id)
	if err != nil {
		respondStoreError(ctx, "set_role_lookup", err)
		return
	}

	if role == user.RoleUser && target.IsAdmin() {
		admins, err := h.users.CountByRole(cctx, user.RoleAdmin)
		if err != nil {
			respondStoreError(ctx, "set_role_count", err)
			return
		}
		if admins <= 1 {
			h.prom.AuthEvent("demote", "last_admin")
			respondStoreError(ctx, "set_role", user.ErrLastAdmin)
			return
		}
	}

	if err := h.users.SetRole(cctx, id, role); err != nil {
		respondStoreError(ctx, "set_role", err)
		return
	}

	h.prom.AuthEvent(eventFor(role), "success")
	h.notify(ctx, target, role)
	ctx.Redirect(http.StatusFound, "/admin")
}

// notify never fails the request; the role change is already committed.
func (h *AdminHandler) notify(ctx *gin.Context, target user.User, role user.Role) {
	if h.notifier == nil {
		return
	}

	change := notifications.RoleChange{
		TargetID:    target.ID,
		TargetEmail: target.Email,
		Role:        string(role),
	}

	if err := h.notifier.NotifyRoleChange(ctx.Request.Context(), change); err != nil {
		slog.WarnContext(ctx.Request.Context(), "role change notification failed",
			"target_id", target.ID, "err", err)
	}
}

func eventFor(role user.Role) string {
	if role == user.RoleAdmin {
		return "promote"
	}
	return "demote"
}
