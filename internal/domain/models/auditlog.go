// internal/domain/models/auditlog.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit resources.
const (
	AuditResourceUser         = "USER"
	AuditResourceCase         = "CASE"
	AuditResourceNotification = "NOTIFICATION"
	AuditResourceAdmin        = "ADMIN"
	AuditResourceAuth         = "AUTH"
	AuditResourceSystem       = "SYSTEM"
)

// AuditDetails captures the request context an audit entry was
// recorded under.
type AuditDetails struct {
	Method    string         `bson:"method,omitempty" json:"method,omitempty"`
	Endpoint  string         `bson:"endpoint,omitempty" json:"endpoint,omitempty"`
	IPAddress string         `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent string         `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	Metadata  map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

// AuditLog is one append-only security event. Rows are never updated
// except by the erasure path, which nulls UserID inside the retention
// horizon and deletes rows beyond it.
type AuditLog struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID     *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Action     string              `bson:"action" json:"action"`
	Resource   string              `bson:"resource" json:"resource"`
	ResourceID string              `bson:"resource_id,omitempty" json:"resource_id,omitempty"`

	Details AuditDetails `bson:"details,omitempty" json:"details,omitempty"`

	Timestamp    time.Time `bson:"timestamp" json:"timestamp"`
	Success      bool      `bson:"success" json:"success"`
	ErrorMessage string    `bson:"error_message,omitempty" json:"error_message,omitempty"`
}
