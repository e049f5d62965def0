// internal/app/features/auth/handler.go
package auth

import (
	userstore "github.com/findxvision/casewatch/internal/app/store/users"
	"github.com/findxvision/casewatch/internal/app/system/auditlog"
	sysauth "github.com/findxvision/casewatch/internal/app/system/auth"
	"github.com/findxvision/casewatch/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Handler serves login and identity endpoints.
type Handler struct {
	Users   *userstore.Store
	Tokens  *sysauth.Tokens
	Limiter *ratelimit.Limiter
	Audit   *auditlog.Recorder
	Log     *zap.Logger
}

// NewHandler creates the auth handler. Limiter may be nil when Redis
// is not configured; login then skips rate limiting.
func NewHandler(users *userstore.Store, tokens *sysauth.Tokens, limiter *ratelimit.Limiter, recorder *auditlog.Recorder, logger *zap.Logger) *Handler {
	return &Handler{
		Users:   users,
		Tokens:  tokens,
		Limiter: limiter,
		Audit:   recorder,
		Log:     logger,
	}
}
