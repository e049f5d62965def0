// internal/app/features/compliance/handler.go
package compliance

import (
	"net/http"

	"github.com/findxvision/casewatch/internal/app/features/respond"
	compliancesvc "github.com/findxvision/casewatch/internal/app/services/compliance"
	"github.com/findxvision/casewatch/internal/app/store/audit"
	sysauth "github.com/findxvision/casewatch/internal/app/system/auth"
	"github.com/findxvision/casewatch/internal/app/system/auditlog"
	"github.com/findxvision/casewatch/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the data-subject rights endpoints.
type Handler struct {
	Svc   *compliancesvc.Service
	Audit *auditlog.Recorder
	Log   *zap.Logger
}

// NewHandler creates the compliance handler.
func NewHandler(svc *compliancesvc.Service, recorder *auditlog.Recorder, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Audit: recorder, Log: logger}
}

// ServeExportSelf handles GET /compliance/export — the caller's own
// data bundle.
func (h *Handler) ServeExportSelf(w http.ResponseWriter, r *http.Request) {
	id, ok := sysauth.CurrentIdentity(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}
	h.export(w, r, id.ActorID, id.ActorID)
}

// ServeExportSubject handles GET /compliance/export/{userID}
// (administrators only).
func (h *Handler) ServeExportSubject(w http.ResponseWriter, r *http.Request) {
	id, ok := sysauth.CurrentIdentity(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}
	subjectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid user id")
		return
	}
	h.export(w, r, id.ActorID, subjectID)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request, actorID, subjectID primitive.ObjectID) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "compliance export")
	defer cancel()

	bundle, err := h.Svc.Export(ctx, subjectID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	h.Audit.Compliance(ctx, r, actorID, audit.ActionDataExported, subjectID.Hex())
	respond.OK(w, bundle)
}

// ServeErase handles DELETE /compliance/users/{userID}
// (administrators only). Irreversible.
func (h *Handler) ServeErase(w http.ResponseWriter, r *http.Request) {
	id, ok := sysauth.CurrentIdentity(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}
	subjectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "userID"))
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Batch(), h.Log, "compliance erasure")
	defer cancel()

	result, err := h.Svc.Erase(ctx, subjectID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	h.Audit.Compliance(ctx, r, id.ActorID, audit.ActionDataErased, subjectID.Hex())
	respond.OK(w, result)
}

type rectifyRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
}

// ServeRectify handles PATCH /compliance/profile — the caller
// corrects their own identifying fields.
func (h *Handler) ServeRectify(w http.ResponseWriter, r *http.Request) {
	id, ok := sysauth.CurrentIdentity(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req rectifyRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "rectify profile")
	defer cancel()

	if err := h.Svc.Rectify(ctx, id.ActorID, req.FirstName, req.LastName, req.PhoneNumber); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	h.Audit.Compliance(ctx, r, id.ActorID, audit.ActionDataRectified, id.ActorID.Hex())
	respond.OK(w, map[string]string{"status": "updated"})
}
