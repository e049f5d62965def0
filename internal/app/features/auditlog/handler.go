// internal/app/features/auditlog/handler.go
package auditlog

import (
	"github.com/findxvision/casewatch/internal/app/store/audit"
	userstore "github.com/findxvision/casewatch/internal/app/store/users"
	"go.uber.org/zap"
)

// Handler serves the administrator's view of the audit trail.
type Handler struct {
	Store *audit.Store
	Users *userstore.Store
	Log   *zap.Logger
}

// NewHandler creates the audit log handler.
func NewHandler(store *audit.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Users: users, Log: logger}
}
