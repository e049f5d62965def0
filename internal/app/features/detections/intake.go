// internal/app/features/detections/intake.go
package detections

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/findxvision/casewatch/internal/app/features/respond"
	"github.com/findxvision/casewatch/internal/app/store/audit"
	"github.com/findxvision/casewatch/internal/app/system/normalize"
	"github.com/findxvision/casewatch/internal/app/system/paging"
	"github.com/findxvision/casewatch/internal/app/system/timeouts"
	"github.com/findxvision/casewatch/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type intakeRequest struct {
	PersonName  string     `json:"person_name"`
	Confidence  float64    `json:"confidence"`
	Source      string     `json:"source"`
	CaptureTime *time.Time `json:"capture_time,omitempty"`
	Location    string     `json:"location"`
	MediaURL    string     `json:"media_url"`
}

type intakeResponse struct {
	Detection models.Detection `json:"detection"`
	Alerted   bool             `json:"alerted"`
}

// ServeIntake handles POST /detections. The detection is always
// stored; alerting is throttled per person name so a camera stream
// matching the same face repeatedly raises one alert per window.
func (h *Handler) ServeIntake(w http.ResponseWriter, r *http.Request) {
	var req intakeRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.PersonName = normalize.Name(req.PersonName)
	if req.PersonName == "" {
		respond.Fail(w, http.StatusBadRequest, "person_name is required")
		return
	}
	if req.Confidence < 0 || req.Confidence > 1 {
		respond.Fail(w, http.StatusBadRequest, "confidence must be between 0 and 1")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "detection intake")
	defer cancel()

	captureTime := time.Now()
	if req.CaptureTime != nil {
		captureTime = *req.CaptureTime
	}
	d, err := h.Store.Insert(ctx, models.Detection{
		PersonName:  req.PersonName,
		Confidence:  req.Confidence,
		Source:      req.Source,
		CaptureTime: captureTime,
		Location:    req.Location,
		MediaURL:    req.MediaURL,
	})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	alerted := false
	if !h.AlertUserID.IsZero() && h.Cooldown.Acquire(ctx, req.PersonName) {
		h.raiseAlert(ctx, &d)
		alerted = true
	}

	h.Audit.System(ctx, audit.ActionDetectionReceived, map[string]any{
		"detection_id": d.ID.Hex(),
		"source":       d.Source,
		"alerted":      alerted,
	})
	respond.Created(w, intakeResponse{Detection: d, Alerted: alerted})
}

// raiseAlert creates the DETECTION_ALERT rows for the configured
// recipient: an in-app row (immediately SENT) and, when the channel
// is up and the recipient opted in, an SMS.
func (h *Handler) raiseAlert(ctx context.Context, d *models.Detection) {
	title := "Possible Match Detected"
	message := fmt.Sprintf("Possible match for %s (%.0f%% confidence) from %s",
		d.PersonName, d.Confidence*100, d.Source)
	dispatchID := uuid.NewString()

	row, err := h.Notifs.Insert(ctx, models.Notification{
		UserID:     h.AlertUserID,
		Type:       models.NotifyDetectionAlert,
		Channel:    models.ChannelInApp,
		Title:      title,
		Message:    message,
		DispatchID: dispatchID,
	})
	if err != nil {
		h.Log.Error("failed to insert detection alert", zap.Error(err))
		return
	}
	if err := h.Notifs.MarkSent(ctx, row.ID); err != nil {
		h.Log.Warn("failed to mark detection alert sent", zap.Error(err))
	}

	if h.SMS != nil && h.SMS.Enabled() {
		if u, err := h.Users.GetByID(ctx, h.AlertUserID); err == nil && u.NotificationPrefs.SMS && u.PhoneNumber != "" {
			smsRow, err := h.Notifs.Insert(ctx, models.Notification{
				UserID:     h.AlertUserID,
				Type:       models.NotifyDetectionAlert,
				Channel:    models.ChannelSMS,
				Title:      title,
				Message:    message,
				DispatchID: dispatchID,
			})
			if err != nil {
				h.Log.Error("failed to insert detection alert sms", zap.Error(err))
			} else if err := h.SMS.Send(ctx, u.PhoneNumber, title, message); err != nil {
				_ = h.Notifs.MarkFailed(ctx, smsRow.ID, err.Error())
			} else {
				_ = h.Notifs.MarkSent(ctx, smsRow.ID)
			}
		}
	}

	if err := h.Store.MarkNotified(ctx, d.ID); err != nil {
		h.Log.Warn("failed to mark detection notified", zap.Error(err))
	}
}

// ServeRecent handles GET /detections/recent.
func (h *Handler) ServeRecent(w http.ResponseWriter, r *http.Request) {
	p := paging.Parse(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "recent detections")
	defer cancel()

	rows, err := h.Store.Recent(ctx, p.Limit)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, rows)
}
