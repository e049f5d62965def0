// internal/app/features/notifications/routes.go
package notifications

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the notifications subrouter. The identity middleware
// is applied by the caller; adminOnly gates the test-send route.
func Routes(h *Handler, adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/unread-count", h.ServeUnreadCount)
	r.Get("/channels", h.ServeChannelStatus)
	r.Patch("/preferences", h.ServeUpdatePrefs)
	r.Post("/{notificationID}/read", h.ServeMarkRead)
	r.With(adminOnly).Post("/test-sms", h.ServeTestSMS)
	return r
}
