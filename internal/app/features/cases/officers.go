// internal/app/features/cases/officers.go
package cases

import (
	"net/http"

	"github.com/findxvision/casewatch/internal/app/features/respond"
	"github.com/findxvision/casewatch/internal/app/store/audit"
	sysauth "github.com/findxvision/casewatch/internal/app/system/auth"
	"github.com/findxvision/casewatch/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeAssignOfficer handles POST /cases/{caseID}/officers.
func (h *Handler) ServeAssignOfficer(w http.ResponseWriter, r *http.Request) {
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

	var req assignRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	officerID, err := primitive.ObjectIDFromHex(req.OfficerID)
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid officer id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "assign officer")
	defer cancel()

	c, err := h.Svc.AssignOfficer(ctx, id, caseID, officerID, req.Role)
	if err != nil {
		h.respondError(ctx, w, r, id, audit.ActionOfficerAssigned, caseID, err)
		return
	}

	h.Audit.CaseAction(ctx, r, id.ActorID, audit.ActionOfficerAssigned, caseID, map[string]any{
		"officer_id": officerID.Hex(),
	})
	respond.OK(w, c)
}

// ServeRemoveOfficer handles DELETE /cases/{caseID}/officers/{officerID}.
func (h *Handler) ServeRemoveOfficer(w http.ResponseWriter, r *http.Request) {
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
	officerID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "officerID"))
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid officer id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "remove officer")
	defer cancel()

	c, err := h.Svc.RemoveOfficer(ctx, id, caseID, officerID)
	if err != nil {
		h.respondError(ctx, w, r, id, audit.ActionOfficerRemoved, caseID, err)
		return
	}

	h.Audit.CaseAction(ctx, r, id.ActorID, audit.ActionOfficerRemoved, caseID, map[string]any{
		"officer_id": officerID.Hex(),
	})
	respond.OK(w, c)
}
