// internal/app/notify/sms.go
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SMSSender delivers over the Twilio Messages REST API. There is no
// vendor SDK in use; the API is a single form-encoded POST.
type SMSSender struct {
	accountSID string
	authToken  string
	from       string
	httpClient *http.Client
}

// NewSMSSender builds the SMS channel sender. Missing credentials
// leave the channel disabled.
func NewSMSSender(accountSID, authToken, from string) *SMSSender {
	return &SMSSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *SMSSender) Enabled() bool {
	return s.accountSID != "" && s.authToken != "" && s.from != ""
}

func (s *SMSSender) Send(ctx context.Context, to, title, message string) error {
	if !s.Enabled() {
		return fmt.Errorf("sms: %w", errChannelDisabled)
	}

	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", s.accountSID)
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", s.from)
	form.Set("Body", title+"\n"+message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sms request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms send: twilio status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
