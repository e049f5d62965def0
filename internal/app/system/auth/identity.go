// internal/app/system/auth/identity.go
package auth

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity is the verified caller stored in the request context.
type Identity struct {
	ActorID primitive.ObjectID
	Role    string
	Email   string
}

type ctxKey int

const identityKey ctxKey = 0

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// CurrentIdentity returns the verified identity for the request, if
// the auth middleware admitted one.
func CurrentIdentity(r *http.Request) (Identity, bool) {
	id, ok := r.Context().Value(identityKey).(Identity)
	return id, ok
}

// IdentityFromContext is CurrentIdentity for non-HTTP call sites.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
