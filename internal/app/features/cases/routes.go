// internal/app/features/cases/routes.go
package cases

import "github.com/go-chi/chi/v5"

// Routes returns the cases subrouter. The identity middleware is
// applied by the caller; every route here expects an authenticated
// actor.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeCreate)
	r.Get("/", h.ServeList)
	r.Get("/search", h.ServeList)
	r.Get("/stats", h.ServeStats)
	r.Get("/{caseID}", h.ServeGet)
	r.Patch("/{caseID}", h.ServeUpdate)
	r.Post("/{caseID}/close", h.ServeClose)
	r.Post("/{caseID}/comments", h.ServeAddComment)
	r.Post("/{caseID}/officers", h.ServeAssignOfficer)
	r.Delete("/{caseID}/officers/{officerID}", h.ServeRemoveOfficer)
	r.Post("/{caseID}/images", h.ServeUploadImage)
	return r
}
