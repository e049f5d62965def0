// internal/app/system/auth/middleware.go
package auth

import (
	"net/http"
	"strings"
	"time"

	userstore "github.com/findxvision/casewatch/internal/app/store/users"
	"github.com/findxvision/casewatch/internal/app/system/auditlog"
	"github.com/findxvision/casewatch/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Middleware verifies bearer tokens and loads the caller's identity
// into the request context.
//
// The token alone is not trusted for account state: the user record
// is re-loaded on each request so deactivation and lockout take
// effect before the token expires.
type Middleware struct {
	Tokens *Tokens
	Users  *userstore.Store
	Audit  *auditlog.Recorder
	Log    *zap.Logger
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"error":"` + msg + `"}`))
}

// Require admits only requests with a valid token bound to an active,
// unlocked account.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			writeUnauthorized(w, "authentication required")
			return
		}

		claims, err := m.Tokens.Parse(raw)
		if err != nil {
			m.Audit.TokenRejected(r.Context(), r, "invalid token")
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		actorID, err := primitive.ObjectIDFromHex(claims.Subject)
		if err != nil {
			m.Audit.TokenRejected(r.Context(), r, "malformed subject")
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), m.Log, "auth user load")
		defer cancel()

		u, err := m.Users.GetByID(ctx, actorID)
		if err != nil {
			m.Audit.TokenRejected(r.Context(), r, "user not found")
			writeUnauthorized(w, "invalid or expired token")
			return
		}
		if !u.IsActive {
			m.Audit.TokenRejected(r.Context(), r, "account deactivated")
			writeUnauthorized(w, "account deactivated")
			return
		}
		if u.Locked(time.Now()) {
			m.Audit.TokenRejected(r.Context(), r, "account locked")
			writeUnauthorized(w, "account locked")
			return
		}

		id := Identity{ActorID: u.ID, Role: u.Role, Email: u.Email}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
