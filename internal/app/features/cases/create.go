// internal/app/features/cases/create.go
package cases

import (
	"net/http"

	"github.com/findxvision/casewatch/internal/app/features/respond"
	casesvc "github.com/findxvision/casewatch/internal/app/services/cases"
	"github.com/findxvision/casewatch/internal/app/store/audit"
	sysauth "github.com/findxvision/casewatch/internal/app/system/auth"
	"github.com/findxvision/casewatch/internal/app/system/timeouts"
)

// ServeCreate handles POST /cases.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := sysauth.CurrentIdentity(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create case")
	defer cancel()

	c, err := h.Svc.Create(ctx, id, casesvc.CreateInput{
		MissingPerson:     req.MissingPerson,
		LastSeenLocation:  req.LastSeenLocation,
		LastSeenDate:      req.LastSeenDate,
		Circumstances:     req.Circumstances,
		Priority:          req.Priority,
		ReportedBy:        req.ReportedBy,
		EmergencyContacts: req.EmergencyContacts,
		Tags:              req.Tags,
		IsPublic:          req.IsPublic,
		PublicDescription: req.PublicDescription,
	})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	h.Audit.CaseAction(ctx, r, id.ActorID, audit.ActionCaseCreated, c.ID, map[string]any{
		"case_number": c.CaseNumber,
	})
	respond.Created(w, c)
}
