// Package apperr defines the sentinel errors shared across services.
//
// Services return these (wrapped with context via fmt.Errorf and %w);
// feature handlers translate them to HTTP status codes. Nothing below
// the feature layer knows about HTTP.
package apperr

import "errors"

var (
	// ErrNotFound covers both "does not exist" and "exists but the
	// caller may not see it". Read paths must not distinguish the two.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned by write paths when the caller can see
	// the record but may not change it.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict signals a uniqueness violation, e.g. assigning an
	// officer who is already on the case.
	ErrConflict = errors.New("conflict")

	// ErrValidation signals rejected input.
	ErrValidation = errors.New("invalid input")

	// ErrChannelDisabled is returned by senders whose channel has no
	// configuration.
	ErrChannelDisabled = errors.New("channel not configured")

	// ErrLocked is returned on login while the account is locked out.
	ErrLocked = errors.New("account locked")

	// ErrBadCredentials is returned on login for unknown email or
	// wrong password. Callers must not reveal which.
	ErrBadCredentials = errors.New("invalid credentials")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsForbidden reports whether err wraps ErrForbidden.
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }

// IsConflict reports whether err wraps ErrConflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsValidation reports whether err wraps ErrValidation.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
