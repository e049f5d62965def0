// internal/app/features/auth/me.go
package auth

import (
	"errors"
	"net/http"

	"github.com/findxvision/casewatch/internal/app/features/respond"
	"github.com/findxvision/casewatch/internal/app/system/apperr"
	sysauth "github.com/findxvision/casewatch/internal/app/system/auth"
	"github.com/findxvision/casewatch/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServeMe handles GET /auth/me. Requires the identity middleware.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	id, ok := sysauth.CurrentIdentity(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "load profile")
	defer cancel()

	u, err := h.Users.GetByID(ctx, id.ActorID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			respond.Error(w, h.Log, apperr.ErrNotFound)
			return
		}
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, viewOf(u))
}
