package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"studio-booking-backend/config"
)

// Sender sends a transactional email. Transport details belong to the
// provider; callers only construct addressing and content.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// HTTPSender posts messages to a transactional email provider's JSON
// API.
type HTTPSender struct {
	cfg    *config.EmailConfig
	client *http.Client
}

// NewHTTPSender creates a sender for the configured provider.
func NewHTTPSender(cfg *config.EmailConfig) *HTTPSender {
	return &HTTPSender{
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Send posts one message. A non-2xx provider response is an error; the
// body is included for the admin UI.
func (s *HTTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if !s.cfg.Enabled {
		// Useful in development: log the message instead of sending it.
		log.Printf("email sending disabled; would send to %s: %s", to, subject)
		return nil
	}

	body, err := json.Marshal(sendRequest{
		From:    s.cfg.From,
		To:      to,
		Subject: subject,
		HTML:    htmlBody,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range s.cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("email provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("email provider returned status %d: %s", resp.StatusCode, detail)
	}
	return nil
}
