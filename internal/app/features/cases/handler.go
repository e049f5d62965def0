// internal/app/features/cases/handler.go
package cases

import (
	"context"
	"errors"
	"net/http"

	"github.com/findxvision/casewatch/internal/app/features/respond"
	casesvc "github.com/findxvision/casewatch/internal/app/services/cases"
	"github.com/findxvision/casewatch/internal/app/storage"
	"github.com/findxvision/casewatch/internal/app/system/apperr"
	"github.com/findxvision/casewatch/internal/app/system/auditlog"
	sysauth "github.com/findxvision/casewatch/internal/app/system/auth"
	"github.com/findxvision/casewatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler adapts the case service to HTTP.
type Handler struct {
	Svc    *casesvc.Service
	Images *storage.ImageStore
	Audit  *auditlog.Recorder
	Log    *zap.Logger
}

// NewHandler creates the cases handler.
func NewHandler(svc *casesvc.Service, images *storage.ImageStore, recorder *auditlog.Recorder, logger *zap.Logger) *Handler {
	return &Handler{
		Svc:    svc,
		Images: images,
		Audit:  recorder,
		Log:    logger,
	}
}

// respondError writes the error response and, when the service refused
// access to a case, records the denial on the audit trail. Absent and
// forbidden are indistinguishable to the caller, so both outcomes
// audit the same way.
func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, r *http.Request, id sysauth.Identity, attempted string, caseID primitive.ObjectID, err error) {
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrForbidden) {
		h.Audit.PermissionDenied(ctx, r, id.ActorID, attempted, models.AuditResourceCase, caseID.Hex())
	}
	respond.Error(w, h.Log, err)
}
