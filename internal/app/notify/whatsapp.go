// internal/app/notify/whatsapp.go
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WhatsAppSender delivers over the Meta WhatsApp Cloud API.
type WhatsAppSender struct {
	accessToken string
	phoneID     string
	httpClient  *http.Client
}

// NewWhatsAppSender builds the WHATSAPP channel sender. Missing
// credentials leave the channel disabled.
func NewWhatsAppSender(accessToken, phoneID string) *WhatsAppSender {
	return &WhatsAppSender{
		accessToken: accessToken,
		phoneID:     phoneID,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *WhatsAppSender) Enabled() bool {
	return s.accessToken != "" && s.phoneID != ""
}

func (s *WhatsAppSender) Send(ctx context.Context, to, title, message string) error {
	if !s.Enabled() {
		return fmt.Errorf("whatsapp: %w", errChannelDisabled)
	}

	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text": map[string]string{
			"body": "*" + title + "*\n" + message,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("whatsapp payload: %w", err)
	}

	endpoint := fmt.Sprintf("https://graph.facebook.com/v18.0/%s/messages", s.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("whatsapp send: graph status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
