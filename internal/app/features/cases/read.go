// internal/app/features/cases/read.go
package cases

import (
	"net/http"

	"github.com/findxvision/casewatch/internal/app/features/respond"
	"github.com/findxvision/casewatch/internal/app/store/audit"
	sysauth "github.com/findxvision/casewatch/internal/app/system/auth"
	"github.com/findxvision/casewatch/internal/app/system/paging"
	"github.com/findxvision/casewatch/internal/app/system/timeouts"
)

// ServeGet handles GET /cases/{caseID}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get case")
	defer cancel()

	c, err := h.Svc.Get(ctx, id, caseID)
	if err != nil {
		h.respondError(ctx, w, r, id, audit.ActionCaseViewed, caseID, err)
		return
	}
	respond.OK(w, c)
}

// ServeList handles GET /cases and GET /cases/search. Both share the
// same filter grammar; search just requires "q".
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	id, ok := sysauth.CurrentIdentity(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}
	f, p := parseFilter(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "list cases")
	defer cancel()

	out, total, err := h.Svc.List(ctx, id, f)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, listResponse{Cases: out, Pagination: paging.NewMeta(p, total)})
}

// ServeStats handles GET /cases/stats.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	id, ok := sysauth.CurrentIdentity(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "case statistics")
	defer cancel()

	stats, err := h.Svc.Statistics(ctx, id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, stats)
}
