// internal/app/features/notifications/list.go
package notifications

import (
	"errors"
	"net/http"

	"github.com/findxvision/casewatch/internal/app/features/respond"
	"github.com/findxvision/casewatch/internal/app/system/apperr"
	sysauth "github.com/findxvision/casewatch/internal/app/system/auth"
	"github.com/findxvision/casewatch/internal/app/system/paging"
	"github.com/findxvision/casewatch/internal/app/system/timeouts"
	"github.com/findxvision/casewatch/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type listResponse struct {
	Notifications []models.Notification `json:"notifications"`
	Pagination    paging.Meta           `json:"pagination"`
}

// ServeList handles GET /notifications — the caller's own rows only.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	id, ok := sysauth.CurrentIdentity(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}
	p := paging.Parse(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list notifications")
	defer cancel()

	rows, total, err := h.Store.ListByUser(ctx, id.ActorID, p.Skip(), p.Limit)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, listResponse{Notifications: rows, Pagination: paging.NewMeta(p, total)})
}

// ServeUnreadCount handles GET /notifications/unread-count.
func (h *Handler) ServeUnreadCount(w http.ResponseWriter, r *http.Request) {
	id, ok := sysauth.CurrentIdentity(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "unread count")
	defer cancel()

	n, err := h.Store.CountUnread(ctx, id.ActorID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, map[string]int64{"unread": n})
}

// ServeMarkRead handles POST /notifications/{notificationID}/read.
// Scoped to the caller; marking someone else's row reads as absent.
func (h *Handler) ServeMarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := sysauth.CurrentIdentity(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}
	rowID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "notificationID"))
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "mark notification read")
	defer cancel()

	if err := h.Store.MarkRead(ctx, rowID, id.ActorID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, h.Log, apperr.ErrNotFound)
			return
		}
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, map[string]string{"status": "read"})
}
