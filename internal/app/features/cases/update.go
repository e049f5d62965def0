// internal/app/features/cases/update.go
package cases

import (
	"net/http"

	"github.com/findxvision/casewatch/internal/app/features/respond"
	casesvc "github.com/findxvision/casewatch/internal/app/services/cases"
	"github.com/findxvision/casewatch/internal/app/store/audit"
	sysauth "github.com/findxvision/casewatch/internal/app/system/auth"
	"github.com/findxvision/casewatch/internal/app/system/timeouts"
)

// ServeUpdate handles PATCH /cases/{caseID}.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
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

	var req updateRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update case")
	defer cancel()

	c, err := h.Svc.Update(ctx, id, caseID, casesvc.UpdateInput{
		Status:            req.Status,
		Priority:          req.Priority,
		MissingPerson:     req.MissingPerson,
		LastSeenLocation:  req.LastSeenLocation,
		LastSeenDate:      req.LastSeenDate,
		Circumstances:     req.Circumstances,
		Tags:              req.Tags,
		IsPublic:          req.IsPublic,
		PublicDescription: req.PublicDescription,
	})
	if err != nil {
		h.respondError(ctx, w, r, id, audit.ActionCaseUpdated, caseID, err)
		return
	}

	h.Audit.CaseAction(ctx, r, id.ActorID, audit.ActionCaseUpdated, c.ID, nil)
	respond.OK(w, c)
}

// ServeClose handles POST /cases/{caseID}/close. Closing is the only
// deletion path; case documents are never removed.
func (h *Handler) ServeClose(w http.ResponseWriter, r *http.Request) {
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

	var req closeRequest
	if r.ContentLength > 0 {
		if err := respond.Decode(r, &req); err != nil {
			respond.Fail(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "close case")
	defer cancel()

	c, err := h.Svc.Close(ctx, id, caseID, req.Reason)
	if err != nil {
		h.respondError(ctx, w, r, id, audit.ActionCaseClosed, caseID, err)
		return
	}

	h.Audit.CaseAction(ctx, r, id.ActorID, audit.ActionCaseClosed, c.ID, nil)
	respond.OK(w, c)
}
