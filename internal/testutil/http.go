package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sysauth "github.com/findxvision/casewatch/internal/app/system/auth"
	"github.com/findxvision/casewatch/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminIdentity returns an ADMINISTRATOR identity with a fresh ID.
func AdminIdentity() sysauth.Identity {
	return sysauth.Identity{
		ActorID: primitive.NewObjectID(),
		Role:    models.RoleAdministrator,
		Email:   "admin@test.com",
	}
}

// OfficerIdentity returns a LAW_ENFORCEMENT identity with a fresh ID.
func OfficerIdentity() sysauth.Identity {
	return sysauth.Identity{
		ActorID: primitive.NewObjectID(),
		Role:    models.RoleLawEnforcement,
		Email:   "officer@test.com",
	}
}

// GeneralIdentity returns a GENERAL_USER identity with a fresh ID.
func GeneralIdentity() sysauth.Identity {
	return sysauth.Identity{
		ActorID: primitive.NewObjectID(),
		Role:    models.RoleGeneralUser,
		Email:   "user@test.com",
	}
}

// IdentityFor builds an identity matching an existing user fixture.
func IdentityFor(u models.User) sysauth.Identity {
	return sysauth.Identity{ActorID: u.ID, Role: u.Role, Email: u.Email}
}

// WithIdentity injects an identity into the request context,
// bypassing the bearer-token middleware.
func WithIdentity(r *http.Request, id sysauth.Identity) *http.Request {
	return r.WithContext(sysauth.WithIdentity(r.Context(), id))
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates an HTTP request with a JSON body.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewAuthenticatedRequest creates an HTTP request with an identity in
// context.
func NewAuthenticatedRequest(method, target string, id sysauth.Identity) *http.Request {
	return WithIdentity(httptest.NewRequest(method, target, nil), id)
}

// WithURLParam injects a chi route parameter so handlers can be
// exercised without mounting a router.
func WithURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// DecodeData unmarshals the "data" payload of a success envelope.
func (r *ResponseRecorder) DecodeData(t *testing.T, v any) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(r.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to parse response envelope: %v", err)
	}
	if !env.Success {
		t.Fatalf("expected success envelope, got error %q", env.Error)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("failed to parse response data: %v", err)
	}
}
