// internal/app/notify/sender.go
package notify

import "context"

// Sender delivers one message over one external channel. The "to"
// address is channel-specific: an email address for EMAIL, an E.164
// number for SMS and WHATSAPP.
//
// Enabled reports whether the channel has configuration. A disabled
// channel still gets notification rows; they fail immediately with a
// recorded reason so the delivery ledger stays complete.
type Sender interface {
	Send(ctx context.Context, to, title, message string) error
	Enabled() bool
}
