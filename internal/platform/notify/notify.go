// Package notify provides the outbound notification channel used to reach
// patients when an alert fires. Delivery is best-effort point-to-point: a nil
// error means the transport accepted the message, not that it was delivered.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sender delivers a message body to a contact address.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

const defaultTwilioBaseURL = "https://api.twilio.com"

// TwilioWhatsAppSender sends WhatsApp messages through the Twilio Messages
// API.
type TwilioWhatsAppSender struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// SenderOption configures a TwilioWhatsAppSender.
type SenderOption func(*TwilioWhatsAppSender)

// WithHTTPClient overrides the HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) SenderOption {
	return func(s *TwilioWhatsAppSender) { s.httpClient = c }
}

// WithBaseURL overrides the Twilio API base URL, mainly for tests.
func WithBaseURL(u string) SenderOption {
	return func(s *TwilioWhatsAppSender) { s.baseURL = strings.TrimRight(u, "/") }
}

func NewTwilioWhatsAppSender(accountSID, authToken, from string, logger zerolog.Logger, opts ...SenderOption) *TwilioWhatsAppSender {
	s := &TwilioWhatsAppSender{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		baseURL:    defaultTwilioBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send posts a message to the Twilio Messages endpoint. Addresses are given
// as plain phone numbers; the whatsapp: prefix is added here.
func (s *TwilioWhatsAppSender) Send(ctx context.Context, to, body string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)

	form := url.Values{}
	form.Set("From", "whatsapp:"+s.from)
	form.Set("To", "whatsapp:"+to)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build twilio request: %w", err)
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.logger.Warn().
			Int("status", resp.StatusCode).
			Str("to", to).
			Msg("twilio rejected message")
		return fmt.Errorf("twilio returned status %d: %s", resp.StatusCode, string(snippet))
	}

	s.logger.Debug().Str("to", to).Msg("whatsapp message accepted")
	return nil
}

// LogSender writes messages to the log instead of sending them. Used when no
// transport is configured, typically in local development.
type LogSender struct {
	logger zerolog.Logger
}

func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, to, body string) error {
	s.logger.Info().Str("to", to).Str("body", body).Msg("notification (log only)")
	return nil
}

// SendCall records a single call to MockSender.Send.
type SendCall struct {
	To   string
	Body string
}

// MockSender is a test double for Sender.
type MockSender struct {
	mu         sync.Mutex
	calls      []SendCall
	ShouldFail bool
	FailError  string
}

// Send records the call and optionally returns an error.
func (m *MockSender) Send(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SendCall{To: to, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded send calls.
func (m *MockSender) Calls() []SendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SendCall, len(m.calls))
	copy(out, m.calls)
	return out
}
