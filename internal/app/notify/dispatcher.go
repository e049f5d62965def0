// internal/app/notify/dispatcher.go
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	notifstore "github.com/findxvision/casewatch/internal/app/store/notifications"
	userstore "github.com/findxvision/casewatch/internal/app/store/users"
	"github.com/findxvision/casewatch/internal/app/system/apperr"
	"github.com/findxvision/casewatch/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var errChannelDisabled = apperr.ErrChannelDisabled

// channelMask limits which opt-in channels a recipient gets for one
// event. In-app delivery is unconditional.
type channelMask struct {
	Email    bool
	WhatsApp bool
}

var fullMask = channelMask{Email: true, WhatsApp: true}

type recipient struct {
	userID primitive.ObjectID
	mask   channelMask
}

// Dispatcher expands case transition events into per-recipient,
// per-channel notification rows and attempts delivery for each row
// independently. A failed channel for one recipient never blocks the
// others, and dispatch errors never reach the mutation caller.
type Dispatcher struct {
	users       *userstore.Store
	rows        *notifstore.Store
	senders     map[string]Sender
	log         *zap.Logger
	sendTimeout time.Duration
}

// NewDispatcher wires the fan-out. Senders map channels (EMAIL, SMS,
// WHATSAPP) to their transports; IN_APP needs none, the stored row is
// the delivery.
func NewDispatcher(users *userstore.Store, rows *notifstore.Store, senders map[string]Sender, log *zap.Logger, sendTimeout time.Duration) *Dispatcher {
	if sendTimeout <= 0 {
		sendTimeout = 20 * time.Second
	}
	return &Dispatcher{
		users:       users,
		rows:        rows,
		senders:     senders,
		log:         log,
		sendTimeout: sendTimeout,
	}
}

// Dispatch fans one committed transition out to its recipients. One
// PENDING row is created per (recipient, channel) before any delivery
// attempt, so the ledger records intent even when transports fail.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	recipients, notifType, title, message, err := d.resolve(ctx, ev)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return nil
	}

	ids := make([]primitive.ObjectID, 0, len(recipients))
	for _, rcp := range recipients {
		ids = append(ids, rcp.userID)
	}
	users, err := d.users.GetMany(ctx, ids)
	if err != nil {
		return fmt.Errorf("load recipients: %w", err)
	}
	byID := make(map[primitive.ObjectID]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	dispatchID := uuid.NewString()
	caseID := ev.Case.ID

	for _, rcp := range recipients {
		u, ok := byID[rcp.userID]
		if !ok || !u.IsActive {
			continue
		}
		for _, channel := range expandChannels(u, rcp.mask) {
			row, err := d.rows.Insert(ctx, models.Notification{
				UserID:     u.ID,
				CaseID:     &caseID,
				Type:       notifType,
				Channel:    channel,
				Title:      title,
				Message:    message,
				DispatchID: dispatchID,
			})
			if err != nil {
				d.log.Error("notification row insert failed",
					zap.String("user_id", u.ID.Hex()),
					zap.String("channel", channel),
					zap.Error(err))
				continue
			}
			d.deliver(ctx, &row, u)
		}
	}
	return nil
}

// Redeliver re-attempts one failed row. Used by the retry sweep.
func (d *Dispatcher) Redeliver(ctx context.Context, row *models.Notification) {
	u, err := d.users.GetByID(ctx, row.UserID)
	if err != nil {
		if err := d.rows.MarkFailed(ctx, row.ID, "recipient no longer exists"); err != nil {
			d.log.Error("mark failed", zap.Error(err))
		}
		return
	}
	d.deliver(ctx, row, u)
}

// deliver attempts one row. In-app rows are complete once stored;
// external channels go through their sender under a bounded timeout.
func (d *Dispatcher) deliver(ctx context.Context, row *models.Notification, u *models.User) {
	fail := func(reason string) {
		if err := d.rows.MarkFailed(ctx, row.ID, reason); err != nil {
			d.log.Error("mark failed", zap.String("id", row.ID.Hex()), zap.Error(err))
		}
	}
	succeed := func() {
		if err := d.rows.MarkSent(ctx, row.ID); err != nil {
			d.log.Error("mark sent", zap.String("id", row.ID.Hex()), zap.Error(err))
		}
	}

	if row.Channel == models.ChannelInApp {
		succeed()
		return
	}

	sender := d.senders[row.Channel]
	if sender == nil || !sender.Enabled() {
		fail("channel not configured")
		return
	}

	var to string
	switch row.Channel {
	case models.ChannelEmail:
		to = u.Email
	case models.ChannelSMS, models.ChannelWhatsApp:
		to = u.PhoneNumber
	}
	if to == "" {
		fail("no delivery address")
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	if err := sender.Send(sendCtx, to, row.Title, row.Message); err != nil {
		d.log.Warn("notification delivery failed",
			zap.String("channel", row.Channel),
			zap.String("user_id", u.ID.Hex()),
			zap.Error(err))
		fail(err.Error())
		return
	}
	succeed()
}

// expandChannels computes the channels for one recipient: in-app
// always, the rest gated by the user's own preferences and, for
// stakeholders, their per-case opt-ins.
func expandChannels(u *models.User, mask channelMask) []string {
	channels := []string{models.ChannelInApp}
	if mask.Email && u.NotificationPrefs.Email && u.Email != "" {
		channels = append(channels, models.ChannelEmail)
	}
	if u.NotificationPrefs.SMS && u.PhoneNumber != "" {
		channels = append(channels, models.ChannelSMS)
	}
	if mask.WhatsApp && u.NotificationPrefs.WhatsApp && u.PhoneNumber != "" {
		channels = append(channels, models.ChannelWhatsApp)
	}
	return channels
}

// resolve computes the recipient set and message content for an
// event. Recipients come from the case snapshot.
func (d *Dispatcher) resolve(ctx context.Context, ev Event) ([]recipient, string, string, string, error) {
	c := ev.Case
	person := strings.TrimSpace(c.MissingPerson.FirstName + " " + c.MissingPerson.LastName)

	switch ev.Type {
	case EventCaseCreated:
		// Broadcast to every active law-enforcement account, the
		// reporting actor included.
		officers, err := d.users.ActiveByRole(ctx, models.RoleLawEnforcement)
		if err != nil {
			return nil, "", "", "", fmt.Errorf("law enforcement broadcast: %w", err)
		}
		recipients := make([]recipient, 0, len(officers))
		for _, o := range officers {
			recipients = append(recipients, recipient{userID: o.ID, mask: fullMask})
		}
		title := "New Missing Person Case"
		msg := fmt.Sprintf("Case %s: %s has been reported missing.", c.CaseNumber, person)
		return recipients, models.NotifyCaseUpdate, title, msg, nil

	case EventCaseUpdated:
		// Field updates land on the case ledger only; no fan-out.
		return nil, "", "", "", nil

	case EventCaseClosed:
		title := "Case Closed"
		msg := fmt.Sprintf("Case %s (%s) has been closed.", c.CaseNumber, person)
		return caseStakeholders(c, ev.ActorID), models.NotifyCaseResolved, title, msg, nil

	case EventCommentAdded:
		title := "New Comment"
		msg := fmt.Sprintf("A new comment was added to case %s (%s).", c.CaseNumber, person)
		return caseFollowers(c, ev.ActorID), models.NotifyCaseUpdate, title, msg, nil

	case EventOfficerAssigned:
		title := "Case Assigned to You"
		msg := fmt.Sprintf("You have been assigned to case %s (%s).", c.CaseNumber, person)
		return []recipient{{userID: ev.OfficerID, mask: fullMask}}, models.NotifyCaseAssigned, title, msg, nil

	case EventOfficerRemoved:
		title := "Case Assignment Removed"
		msg := fmt.Sprintf("You have been unassigned from case %s (%s).", c.CaseNumber, person)
		return []recipient{{userID: ev.OfficerID, mask: fullMask}}, models.NotifyCaseUpdate, title, msg, nil
	}

	return nil, "", "", "", fmt.Errorf("unknown event type %q", ev.Type)
}

// caseFollowers returns the union of the creator, assigned officers
// and stakeholders, deduplicated, minus the actor. Stakeholder channel
// opt-ins narrow their mask; the creator and officers get the full
// mask.
func caseFollowers(c *models.Case, actorID primitive.ObjectID) []recipient {
	seen := make(map[primitive.ObjectID]bool)
	var out []recipient

	if c.CreatedBy != nil && *c.CreatedBy != actorID {
		seen[*c.CreatedBy] = true
		out = append(out, recipient{userID: *c.CreatedBy, mask: fullMask})
	}
	for _, o := range c.AssignedOfficers {
		if o.UserID == actorID || seen[o.UserID] {
			continue
		}
		seen[o.UserID] = true
		out = append(out, recipient{userID: o.UserID, mask: fullMask})
	}
	for _, s := range c.Stakeholders {
		if s.UserID == actorID || seen[s.UserID] {
			continue
		}
		seen[s.UserID] = true
		out = append(out, recipient{userID: s.UserID, mask: channelMask{
			Email:    s.Notify.Email,
			WhatsApp: s.Notify.WhatsApp,
		}})
	}
	return out
}

// caseStakeholders returns the current stakeholders, minus the actor,
// each masked by their per-case channel opt-ins.
func caseStakeholders(c *models.Case, actorID primitive.ObjectID) []recipient {
	seen := make(map[primitive.ObjectID]bool)
	var out []recipient
	for _, s := range c.Stakeholders {
		if s.UserID == actorID || seen[s.UserID] {
			continue
		}
		seen[s.UserID] = true
		out = append(out, recipient{userID: s.UserID, mask: channelMask{
			Email:    s.Notify.Email,
			WhatsApp: s.Notify.WhatsApp,
		}})
	}
	return out
}
