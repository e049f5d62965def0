// internal/app/system/auditlog/recorder.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/findxvision/casewatch/internal/app/store/audit"
	"github.com/findxvision/casewatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit recording configuration.
//
// Each resource class can go to MongoDB, zap, both, or nowhere:
// "all" (MongoDB + zap), "db", "log", "off".
type Config struct {
	// Auth controls recording of authentication events (login, token
	// rejections, permission denials).
	Auth string
	// Case controls recording of case mutations.
	Case string
	// Admin controls recording of compliance and system actions.
	Admin string
}

// Recorder writes security events to the audit trail and mirrors
// them to structured logs. Recording never fails the operation that
// triggered it: store errors are logged and swallowed.
type Recorder struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a Recorder.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Recorder {
	return &Recorder{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// clientIP extracts the client IP from the request.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

// RequestDetails captures method, endpoint, IP and user agent for an
// audit entry.
func RequestDetails(r *http.Request) models.AuditDetails {
	if r == nil {
		return models.AuditDetails{}
	}
	return models.AuditDetails{
		Method:    r.Method,
		Endpoint:  r.URL.Path,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	}
}

func (rec *Recorder) logToZap(entry models.AuditLog) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("action", entry.Action),
		zap.String("resource", entry.Resource),
		zap.Bool("success", entry.Success),
		zap.String("ip", entry.Details.IPAddress),
	}
	if entry.UserID != nil {
		fields = append(fields, zap.String("user_id", entry.UserID.Hex()))
	}
	if entry.ResourceID != "" {
		fields = append(fields, zap.String("resource_id", entry.ResourceID))
	}
	if entry.ErrorMessage != "" {
		fields = append(fields, zap.String("error", entry.ErrorMessage))
	}

	if entry.Success {
		rec.zapLog.Info("audit event", fields...)
	} else {
		rec.zapLog.Warn("audit event", fields...)
	}
}

func (rec *Recorder) setting(resource string) string {
	switch resource {
	case models.AuditResourceAuth:
		return rec.config.Auth
	case models.AuditResourceCase:
		return rec.config.Case
	case models.AuditResourceAdmin, models.AuditResourceSystem:
		return rec.config.Admin
	default:
		return "all"
	}
}

// Record stores an audit entry based on configuration.
// If the recorder is nil, this is a no-op (allows tests to use a nil
// recorder). Record never returns an error.
func (rec *Recorder) Record(ctx context.Context, entry models.AuditLog) {
	if rec == nil {
		return
	}

	setting := rec.setting(entry.Resource)
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		rec.logToZap(entry)
	}

	if setting == "all" || setting == "db" {
		if err := rec.store.Log(ctx, entry); err != nil {
			rec.zapLog.Error("failed to store audit entry",
				zap.Error(err),
				zap.String("action", entry.Action),
			)
		}
	}
}

// --- Authentication events ---

// LoginSuccess records a successful login.
func (rec *Recorder) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	rec.Record(ctx, models.AuditLog{
		UserID:   &userID,
		Action:   audit.ActionLoginSuccess,
		Resource: models.AuditResourceAuth,
		Details:  RequestDetails(r),
		Success:  true,
	})
}

// LoginFailed records a failed login attempt. userID is nil when the
// email did not resolve to an account.
func (rec *Recorder) LoginFailed(ctx context.Context, r *http.Request, userID *primitive.ObjectID, reason string) {
	rec.Record(ctx, models.AuditLog{
		UserID:       userID,
		Action:       audit.ActionLoginFailed,
		Resource:     models.AuditResourceAuth,
		Details:      RequestDetails(r),
		Success:      false,
		ErrorMessage: reason,
	})
}

// LoginLocked records a login rejected because the account is locked.
func (rec *Recorder) LoginLocked(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	rec.Record(ctx, models.AuditLog{
		UserID:       &userID,
		Action:       audit.ActionLoginLocked,
		Resource:     models.AuditResourceAuth,
		Details:      RequestDetails(r),
		Success:      false,
		ErrorMessage: "account locked",
	})
}

// LoginRateLimited records a login rejected by the rate limiter.
func (rec *Recorder) LoginRateLimited(ctx context.Context, r *http.Request) {
	rec.Record(ctx, models.AuditLog{
		Action:       audit.ActionLoginRateLimited,
		Resource:     models.AuditResourceAuth,
		Details:      RequestDetails(r),
		Success:      false,
		ErrorMessage: "rate limit exceeded",
	})
}

// TokenRejected records a request with a bad or stale bearer token.
func (rec *Recorder) TokenRejected(ctx context.Context, r *http.Request, reason string) {
	rec.Record(ctx, models.AuditLog{
		Action:       audit.ActionTokenRejected,
		Resource:     models.AuditResourceAuth,
		Details:      RequestDetails(r),
		Success:      false,
		ErrorMessage: reason,
	})
}

// PermissionDenied records an authorization failure.
func (rec *Recorder) PermissionDenied(ctx context.Context, r *http.Request, userID primitive.ObjectID, action, resource, resourceID string) {
	details := RequestDetails(r)
	details.Metadata = map[string]any{"attempted_action": action}
	rec.Record(ctx, models.AuditLog{
		UserID:       &userID,
		Action:       audit.ActionPermissionDenied,
		Resource:     resource,
		ResourceID:   resourceID,
		Details:      details,
		Success:      false,
		ErrorMessage: "permission denied",
	})
}

// --- Case events ---

// CaseAction records a successful case mutation. metadata carries
// structural facts such as changed field names, never field values.
func (rec *Recorder) CaseAction(ctx context.Context, r *http.Request, userID primitive.ObjectID, action string, caseID primitive.ObjectID, metadata map[string]any) {
	details := RequestDetails(r)
	details.Metadata = metadata
	rec.Record(ctx, models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   models.AuditResourceCase,
		ResourceID: caseID.Hex(),
		Details:    details,
		Success:    true,
	})
}

// --- Compliance events ---

// Compliance records an export, erasure, or rectification.
func (rec *Recorder) Compliance(ctx context.Context, r *http.Request, actorID primitive.ObjectID, action, subjectID string) {
	rec.Record(ctx, models.AuditLog{
		UserID:     &actorID,
		Action:     action,
		Resource:   models.AuditResourceAdmin,
		ResourceID: subjectID,
		Details:    RequestDetails(r),
		Success:    true,
	})
}

// System records a system-level event such as a retention purge.
func (rec *Recorder) System(ctx context.Context, action string, metadata map[string]any) {
	rec.Record(ctx, models.AuditLog{
		Action:   action,
		Resource: models.AuditResourceSystem,
		Details:  models.AuditDetails{Metadata: metadata},
		Success:  true,
	})
}
