// internal/app/features/detections/routes.go
package detections

import "github.com/go-chi/chi/v5"

// Routes returns the detections subrouter. The caller applies the
// identity middleware and a LAW_ENFORCEMENT/ADMINISTRATOR gate.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeIntake)
	r.Get("/recent", h.ServeRecent)
	return r
}
