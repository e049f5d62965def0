// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/findxvision/casewatch/internal/app/system/auditlog"
	"github.com/findxvision/casewatch/internal/app/system/auth"
	"github.com/findxvision/casewatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the caller's role, ObjectID, and a found flag.
// ok=false means the request carries no verified identity; callers
// can trust ok=true means a valid, authenticated user.
func UserCtx(r *http.Request) (role string, userID primitive.ObjectID, ok bool) {
	id, ok := auth.CurrentIdentity(r)
	if !ok {
		return "", primitive.NilObjectID, false
	}
	return id.Role, id.ActorID, true
}

// IsAdministrator reports whether the current request's user is an administrator.
func IsAdministrator(r *http.Request) bool {
	role, _, ok := UserCtx(r)
	return ok && role == models.RoleAdministrator
}

// IsLawEnforcement reports whether the current request's user is law enforcement.
func IsLawEnforcement(r *http.Request) bool {
	role, _, ok := UserCtx(r)
	return ok && role == models.RoleLawEnforcement
}

// RequireRole gates a route to the given roles. Denials are recorded
// on the audit trail.
func RequireRole(rec *auditlog.Recorder, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, userID, ok := UserCtx(r)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"success":false,"message":"authentication required"}`))
				return
			}
			if !allowed[role] {
				rec.PermissionDenied(r.Context(), r, userID, "access_route", models.AuditResourceAdmin, r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"success":false,"message":"insufficient permissions"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
