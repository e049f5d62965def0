// internal/app/features/auth/routes.go
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the auth subrouter. requireAuth is the bearer-token
// middleware; login stays public.
func Routes(h *Handler, requireAuth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.ServeLogin)
	r.With(requireAuth).Get("/me", h.ServeMe)
	return r
}
