// internal/app/features/detections/handler.go
package detections

import (
	"github.com/findxvision/casewatch/internal/app/notify"
	detectstore "github.com/findxvision/casewatch/internal/app/store/detections"
	notifstore "github.com/findxvision/casewatch/internal/app/store/notifications"
	userstore "github.com/findxvision/casewatch/internal/app/store/users"
	"github.com/findxvision/casewatch/internal/app/system/auditlog"
	"github.com/findxvision/casewatch/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler consumes face-recognition match events and raises alerts.
type Handler struct {
	Store    *detectstore.Store
	Notifs   *notifstore.Store
	Users    *userstore.Store
	SMS      notify.Sender
	Cooldown *ratelimit.Cooldown
	Audit    *auditlog.Recorder
	// AlertUserID receives DETECTION_ALERT notifications. Zero means
	// alerts are stored but nobody is notified.
	AlertUserID primitive.ObjectID
	Log         *zap.Logger
}

// NewHandler creates the detections handler.
func NewHandler(store *detectstore.Store, notifs *notifstore.Store, users *userstore.Store, sms notify.Sender, cooldown *ratelimit.Cooldown, recorder *auditlog.Recorder, alertUserID primitive.ObjectID, logger *zap.Logger) *Handler {
	return &Handler{
		Store:       store,
		Notifs:      notifs,
		Users:       users,
		SMS:         sms,
		Cooldown:    cooldown,
		Audit:       recorder,
		AlertUserID: alertUserID,
		Log:         logger,
	}
}
