// internal/app/features/compliance/routes.go
package compliance

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the compliance subrouter. The identity middleware is
// applied by the caller; adminOnly gates subject-level operations.
func Routes(h *Handler, adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/export", h.ServeExportSelf)
	r.Patch("/profile", h.ServeRectify)
	r.With(adminOnly).Get("/export/{userID}", h.ServeExportSubject)
	r.With(adminOnly).Delete("/users/{userID}", h.ServeErase)
	return r
}
