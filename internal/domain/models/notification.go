// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotifyCaseUpdate     = "CASE_UPDATE"
	NotifyCaseAssigned   = "CASE_ASSIGNED"
	NotifyCaseResolved   = "CASE_RESOLVED"
	NotifyDetectionAlert = "DETECTION_ALERT"
	NotifySystemAlert    = "SYSTEM_ALERT"
)

// Delivery channels.
const (
	ChannelInApp    = "IN_APP"
	ChannelEmail    = "EMAIL"
	ChannelSMS      = "SMS"
	ChannelWhatsApp = "WHATSAPP"
)

// Delivery statuses. Status only moves forward:
// PENDING → SENT → DELIVERED → READ, or PENDING → FAILED.
const (
	StatusPending   = "PENDING"
	StatusSent      = "SENT"
	StatusDelivered = "DELIVERED"
	StatusRead      = "READ"
	StatusFailed    = "FAILED"
)

// DefaultMaxRetries bounds re-delivery attempts for failed rows.
const DefaultMaxRetries = 3

// Notification is one delivery attempt record: one row per
// (recipient, channel, triggering event). DispatchID groups the rows
// born from the same case transition.
type Notification struct {
	ID     primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID  `bson:"user_id" json:"user_id"`
	CaseID *primitive.ObjectID `bson:"case_id,omitempty" json:"case_id,omitempty"`

	Type    string `bson:"type" json:"type"`
	Channel string `bson:"channel" json:"channel"`
	Status  string `bson:"status" json:"status"`

	Title      string `bson:"title" json:"title"`
	Message    string `bson:"message" json:"message"`
	DispatchID string `bson:"dispatch_id" json:"dispatch_id"`

	SentAt       *time.Time `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
	DeliveredAt  *time.Time `bson:"delivered_at,omitempty" json:"delivered_at,omitempty"`
	ReadAt       *time.Time `bson:"read_at,omitempty" json:"read_at,omitempty"`
	ErrorMessage string     `bson:"error_message,omitempty" json:"error_message,omitempty"`

	RetryCount int `bson:"retry_count" json:"retry_count"`
	MaxRetries int `bson:"max_retries" json:"max_retries"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
