// Package whatsapp delivers short text messages through a WhatsApp gateway
// webhook. Phone numbers are normalized to Ecuadorian E.164 (+593) before
// sending, since that is where the clientele lives.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

type Sender interface {
	Send(ctx context.Context, phone string, text string) error
	ProviderID() string
}

type WebhookSender struct {
	url   string
	token string
	http  *http.Client
}

func NewWebhookSender(url string, token string) *WebhookSender {
	return &WebhookSender{
		url:   strings.TrimSpace(url),
		token: strings.TrimSpace(token),
		http: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (s *WebhookSender) ProviderID() string {
	return "whatsapp-webhook"
}

func (s *WebhookSender) Send(ctx context.Context, phone string, text string) error {
	if s.url == "" {
		return errors.New("whatsapp webhook url not configured")
	}
	to, ok := NormalizePhone(phone)
	if !ok {
		return errors.New("phone number not normalizable to +593")
	}
	payload := map[string]string{
		"to":   to,
		"body": text,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New("whatsapp webhook returned non-2xx")
	}
	return nil
}

// NormalizePhone converts local Ecuadorian forms to +593 E.164:
// "0991234567" -> "+593991234567", "991234567" -> "+593991234567",
// "593991234567" -> "+593991234567". Numbers already in +593 form pass
// through; anything else is rejected.
func NormalizePhone(raw string) (string, bool) {
	var digits strings.Builder
	plus := false
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == '+' && i == 0:
			plus = true
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return "", false
		}
	}
	n := digits.String()

	switch {
	case plus && strings.HasPrefix(n, "593"):
		// already international
	case strings.HasPrefix(n, "593") && len(n) == 12:
		// international without the plus
	case strings.HasPrefix(n, "0") && len(n) == 10:
		n = "593" + n[1:]
	case len(n) == 9:
		n = "593" + n
	default:
		return "", false
	}

	if len(n) != 12 {
		return "", false
	}
	return "+" + n, true
}

type NoopSender struct{}

func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

func (s *NoopSender) ProviderID() string {
	return "whatsapp-noop"
}

func (s *NoopSender) Send(_ context.Context, _ string, _ string) error {
	return nil
}
