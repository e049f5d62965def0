// internal/app/features/notifications/channels.go
package notifications

import (
	"net/http"

	"github.com/findxvision/casewatch/internal/app/features/respond"
	sysauth "github.com/findxvision/casewatch/internal/app/system/auth"
	"github.com/findxvision/casewatch/internal/app/system/normalize"
	"github.com/findxvision/casewatch/internal/app/system/timeouts"
	"github.com/findxvision/casewatch/internal/domain/models"
)

// ServeChannelStatus handles GET /notifications/channels. Reports
// which delivery channels are configured on this deployment.
func (h *Handler) ServeChannelStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]bool{models.ChannelInApp: true}
	for _, ch := range []string{models.ChannelEmail, models.ChannelSMS, models.ChannelWhatsApp} {
		s, ok := h.Senders[ch]
		status[ch] = ok && s != nil && s.Enabled()
	}
	respond.OK(w, status)
}

type prefsRequest struct {
	Email    *bool `json:"email,omitempty"`
	WhatsApp *bool `json:"whatsapp,omitempty"`
	SMS      *bool `json:"sms,omitempty"`
	InApp    *bool `json:"in_app,omitempty"`
}

// ServeUpdatePrefs handles PATCH /notifications/preferences. Only the
// provided channels change.
func (h *Handler) ServeUpdatePrefs(w http.ResponseWriter, r *http.Request) {
	id, ok := sysauth.CurrentIdentity(r)
	if !ok {
		respond.Fail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req prefsRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update notification prefs")
	defer cancel()

	u, err := h.Users.GetByID(ctx, id.ActorID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	prefs := u.NotificationPrefs
	if req.Email != nil {
		prefs.Email = *req.Email
	}
	if req.WhatsApp != nil {
		prefs.WhatsApp = *req.WhatsApp
	}
	if req.SMS != nil {
		prefs.SMS = *req.SMS
	}
	if req.InApp != nil {
		prefs.InApp = *req.InApp
	}
	if err := h.Users.UpdateNotificationPrefs(ctx, id.ActorID, prefs); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, prefs)
}

type testSMSRequest struct {
	PhoneNumber string `json:"phone_number"`
	Message     string `json:"message"`
}

// ServeTestSMS handles POST /notifications/test-sms. Administrators
// use it to verify the SMS channel configuration.
func (h *Handler) ServeTestSMS(w http.ResponseWriter, r *http.Request) {
	var req testSMSRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	phone := normalize.Phone(req.PhoneNumber)
	if phone == "" {
		respond.Fail(w, http.StatusBadRequest, "phone_number is required")
		return
	}
	sender, ok := h.Senders[models.ChannelSMS]
	if !ok || sender == nil || !sender.Enabled() {
		respond.Fail(w, http.StatusServiceUnavailable, "SMS channel not configured")
		return
	}
	msg := req.Message
	if msg == "" {
		msg = "CaseWatch SMS channel test"
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "test sms")
	defer cancel()

	if err := sender.Send(ctx, phone, "CaseWatch", msg); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, map[string]string{"status": "sent"})
}
