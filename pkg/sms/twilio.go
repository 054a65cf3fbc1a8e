package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config holds Twilio credentials. All three identity fields are required
// for runtime operation; an unconfigured client degrades to a clear
// "not configured" error instead of reaching the network.
type Config struct {
	AccountSID string        `env:"TWILIO_ACCOUNT_SID"`
	AuthToken  string        `env:"TWILIO_AUTH_TOKEN"`
	FromNumber string        `env:"TWILIO_FROM_NUMBER"`
	BaseURL    string        `env:"TWILIO_BASE_URL" envDefault:"https://api.twilio.com"`
	Timeout    time.Duration `env:"TWILIO_TIMEOUT" envDefault:"10s"`
}

// Configured reports whether runtime credentials are present.
func (c Config) Configured() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != ""
}

// Sender sends one text message and returns the provider message SID.
type Sender interface {
	Send(ctx context.Context, to, body string) (messageID string, err error)
}

// Twilio error codes that mark the destination number as permanently
// undeliverable. Anything not in this table is treated as transient.
var invalidNumberCodes = map[int]string{
	21211: "invalid 'To' phone number",
	21610: "recipient has unsubscribed",
	21614: "'To' number is not a valid mobile number",
}

// TwilioSender is a minimal Twilio Messages API client.
type TwilioSender struct {
	cfg    Config
	client *http.Client
}

// NewTwilioSender creates a sender. A nil-configured client is still
// returned so the channel adapter can report "not configured" per send
// rather than the process failing at wiring time (sms is an optional
// channel in most deployments).
func NewTwilioSender(cfg Config) *TwilioSender {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &TwilioSender{
		cfg: cfg,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type twilioResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Send posts one message to the Twilio Messages endpoint.
func (s *TwilioSender) Send(ctx context.Context, to, body string) (string, error) {
	if !s.cfg.Configured() {
		return "", ErrNotConfigured
	}
	if to == "" {
		return "", ErrInvalidDestination
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", s.cfg.FromNumber)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.cfg.BaseURL, s.cfg.AccountSID)

	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)

	resp, err := s.client.Do(req)
	if err != nil {
		// Timeouts and network errors are transient by definition.
		return "", errors.Join(ErrSendFailed, err)
	}
	defer resp.Body.Close()

	var parsed twilioResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", errors.Join(ErrSendFailed, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return parsed.SID, nil
	}

	if reason, ok := invalidNumberCodes[parsed.Code]; ok {
		return "", fmt.Errorf("%w: %s (code %d)", ErrInvalidDestination, reason, parsed.Code)
	}
	return "", errors.Join(ErrSendFailed,
		fmt.Errorf("twilio status %d code %d: %s", resp.StatusCode, parsed.Code, parsed.Message))
}
