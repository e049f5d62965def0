// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleGeneralUser    = "GENERAL_USER"
	RoleLawEnforcement = "LAW_ENFORCEMENT"
	RoleAdministrator  = "ADMINISTRATOR"
)

// NotificationPrefs holds a user's channel opt-ins. In-app is on by
// default; everything else is opt-in.
type NotificationPrefs struct {
	Email    bool `bson:"email" json:"email"`
	WhatsApp bool `bson:"whatsapp" json:"whatsapp"`
	SMS      bool `bson:"sms" json:"sms"`
	InApp    bool `bson:"in_app" json:"in_app"`
}

// User represents an account: reporters, officers, and administrators.
//
// NOTE:
//   - LockUntil is set after repeated failed logins; a user is locked
//     while LockUntil is in the future.
//   - Case relationships (creator, stakeholder, officer) live on the
//     case documents, not here.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	EmailCI      string             `bson:"email_ci" json:"-"` // lowercase, diacritics-stripped
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	FirstName    string             `bson:"first_name" json:"first_name"`
	LastName     string             `bson:"last_name" json:"last_name"`
	Role         string             `bson:"role" json:"role"` // GENERAL_USER | LAW_ENFORCEMENT | ADMINISTRATOR
	IsActive     bool               `bson:"is_active" json:"is_active"`
	PhoneNumber  string             `bson:"phone_number,omitempty" json:"phone_number,omitempty"`

	NotificationPrefs NotificationPrefs `bson:"notification_prefs" json:"notification_prefs"`

	LoginAttempts int        `bson:"login_attempts" json:"-"`
	LockUntil     *time.Time `bson:"lock_until,omitempty" json:"-"`
	LastLoginAt   *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Locked reports whether the account is currently locked out.
func (u *User) Locked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// FullName joins first and last name for display and delivery.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
