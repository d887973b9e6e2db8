package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultResendEndpoint = "https://api.resend.com/emails"

// ResendDispatcher envia pela API HTTP do Resend.
type ResendDispatcher struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

type ResendOption func(*ResendDispatcher)

func WithResendEndpoint(endpoint string) ResendOption {
	return func(d *ResendDispatcher) { d.endpoint = endpoint }
}

func WithHTTPClient(c *http.Client) ResendOption {
	return func(d *ResendDispatcher) { d.client = c }
}

func NewResendDispatcher(apiKey string, opts ...ResendOption) *ResendDispatcher {
	d := &ResendDispatcher{
		apiKey:   apiKey,
		endpoint: DefaultResendEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

func (d *ResendDispatcher) Dispatch(ctx context.Context, msg Message) error {
	if d.apiKey == "" || msg.From == "" || msg.To == "" {
		return ErrNotConfigured
	}

	payload, err := json.Marshal(resendEmail{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		return fmt.Errorf("marshal resend email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if msg.ID != "" {
		req.Header.Set("Idempotency-Key", msg.ID)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send resend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("resend API returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
