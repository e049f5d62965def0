// internal/app/features/cases/comments.go
package cases

import (
	"net/http"

	"github.com/findxvision/casewatch/internal/app/features/respond"
	"github.com/findxvision/casewatch/internal/app/store/audit"
	sysauth "github.com/findxvision/casewatch/internal/app/system/auth"
	"github.com/findxvision/casewatch/internal/app/system/timeouts"
)

// ServeAddComment handles POST /cases/{caseID}/comments.
func (h *Handler) ServeAddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := sysauth.CurrentIdentity(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}
	caseID, err := caseIDParam(r)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	var req commentRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "add comment")
	defer cancel()

	comment, err := h.Svc.AddComment(ctx, id, caseID, req.Content, req.IsPrivate)
	if err != nil {
		h.respondError(ctx, w, r, id, audit.ActionCommentAdded, caseID, err)
		return
	}

	h.Audit.CaseAction(ctx, r, id.ActorID, audit.ActionCommentAdded, caseID, map[string]any{
		"is_private": req.IsPrivate,
	})
	respond.Created(w, comment)
}
