// internal/app/features/notifications/handler.go
package notifications

import (
	"github.com/findxvision/casewatch/internal/app/notify"
	notifstore "github.com/findxvision/casewatch/internal/app/store/notifications"
	userstore "github.com/findxvision/casewatch/internal/app/store/users"
	"go.uber.org/zap"
)

// Handler serves the per-user notification endpoints.
type Handler struct {
	Store   *notifstore.Store
	Users   *userstore.Store
	Senders map[string]notify.Sender
	Log     *zap.Logger
}

// NewHandler creates the notifications handler. senders is the same
// channel map the dispatcher uses; it backs the channel-status and
// test-send endpoints.
func NewHandler(store *notifstore.Store, users *userstore.Store, senders map[string]notify.Sender, logger *zap.Logger) *Handler {
	return &Handler{
		Store:   store,
		Users:   users,
		Senders: senders,
		Log:     logger,
	}
}
