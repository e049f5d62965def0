// internal/app/features/auth/login.go
package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/findxvision/casewatch/internal/app/features/respond"
	userstore "github.com/findxvision/casewatch/internal/app/store/users"
	"github.com/findxvision/casewatch/internal/app/system/normalize"
	"github.com/findxvision/casewatch/internal/app/system/ratelimit"
	"github.com/findxvision/casewatch/internal/app/system/timeouts"
	"github.com/findxvision/casewatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

// userView is the safe projection of a user for API responses.
type userView struct {
	ID        string                   `json:"id"`
	Email     string                   `json:"email"`
	FirstName string                   `json:"first_name"`
	LastName  string                   `json:"last_name"`
	Role      string                   `json:"role"`
	Phone     string                   `json:"phone_number,omitempty"`
	Prefs     models.NotificationPrefs `json:"notification_prefs"`
}

func viewOf(u *models.User) userView {
	return userView{
		ID:        u.ID.Hex(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		Phone:     u.PhoneNumber,
		Prefs:     u.NotificationPrefs,
	}
}

// ServeLogin handles POST /auth/login.
//
// Outcomes are audited individually: rate-limited, unknown account,
// locked, wrong password, success. Five consecutive failures lock the
// account for two hours.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()

	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email := normalize.Email(req.Email)
	if email == "" || req.Password == "" {
		respond.Fail(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if !h.Limiter.Allow(ctx, ratelimit.ClientKey(r)+":"+email) {
		h.Audit.LoginRateLimited(ctx, r)
		respond.Fail(w, http.StatusTooManyRequests, "too many login attempts, try again later")
		return
	}

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.Audit.LoginFailed(ctx, r, nil, "unknown email")
			respond.Fail(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.Log.Error("login lookup failed", zap.Error(err))
		respond.Fail(w, http.StatusInternalServerError, "internal error")
		return
	}

	if !u.IsActive {
		h.Audit.LoginFailed(ctx, r, &u.ID, "account deactivated")
		respond.Fail(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if u.Locked(time.Now()) {
		h.Audit.LoginLocked(ctx, r, u.ID)
		respond.Fail(w, http.StatusLocked, "account temporarily locked")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		attempts, ferr := h.Users.RecordLoginFailure(ctx, u.ID)
		if ferr != nil {
			h.Log.Error("failed to record login failure", zap.Error(ferr))
		}
		if attempts >= userstore.MaxLoginAttempts {
			h.Audit.LoginLocked(ctx, r, u.ID)
			respond.Fail(w, http.StatusLocked, "account temporarily locked")
			return
		}
		h.Audit.LoginFailed(ctx, r, &u.ID, "wrong password")
		respond.Fail(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if err := h.Users.RecordLoginSuccess(ctx, u.ID); err != nil {
		h.Log.Warn("failed to record login success", zap.Error(err))
	}
	h.Limiter.Reset(ctx, ratelimit.ClientKey(r)+":"+email)

	token, err := h.Tokens.Issue(u)
	if err != nil {
		h.Log.Error("token issue failed", zap.Error(err))
		respond.Fail(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Audit.LoginSuccess(ctx, r, u.ID)
	respond.OK(w, loginResponse{Token: token, User: viewOf(u)})
}
