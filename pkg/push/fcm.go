package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/dmitrymomot/notifykit/pkg/notification"
)

// FCMConfig holds the Firebase service-account credentials for the HTTP v1
// messaging API.
type FCMConfig struct {
	CredentialsJSON string        `env:"FCM_CREDENTIALS_JSON"` // service account key file contents
	ProjectID       string        `env:"FCM_PROJECT_ID"`
	Endpoint        string        `env:"FCM_ENDPOINT" envDefault:"https://fcm.googleapis.com"`
	Timeout         time.Duration `env:"FCM_TIMEOUT" envDefault:"5s"`
}

// Configured reports whether runtime credentials are present.
func (c FCMConfig) Configured() bool {
	return c.CredentialsJSON != "" && c.ProjectID != ""
}

const fcmMessagingScope = "https://www.googleapis.com/auth/firebase.messaging"

// FCM v1 error statuses that mean the registration token is permanently
// dead. INVALID_ARGUMENT covers malformed tokens; UNREGISTERED and NOT_FOUND
// cover uninstalled apps.
var fcmDeadTokenStatuses = map[string]struct{}{
	"UNREGISTERED":     {},
	"INVALID_ARGUMENT": {},
	"NOT_FOUND":        {},
}

// FCMClient sends notifications through the FCM HTTP v1 API, authenticating
// with a cached OAuth2 access token minted from the service account. Token
// caching and refresh-on-expiry come from the oauth2 token source.
type FCMClient struct {
	cfg    FCMConfig
	tokens oauth2.TokenSource
	client *http.Client
}

// FCMOption customizes the client; used by tests to stub the token source.
type FCMOption func(*FCMClient)

// WithFCMTokenSource overrides the OAuth2 token source.
func WithFCMTokenSource(ts oauth2.TokenSource) FCMOption {
	return func(c *FCMClient) { c.tokens = ts }
}

// NewFCMClient creates the client. As with APNs, missing credentials leave
// the client in a degraded "not configured" mode; malformed credentials are
// a hard error.
func NewFCMClient(cfg FCMConfig, opts ...FCMOption) (*FCMClient, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://fcm.googleapis.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	c := &FCMClient{
		cfg: cfg,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.tokens == nil && cfg.Configured() {
		jwtCfg, err := google.JWTConfigFromJSON([]byte(cfg.CredentialsJSON), fcmMessagingScope)
		if err != nil {
			return nil, fmt.Errorf("fcm: parse credentials: %w", err)
		}
		c.tokens = jwtCfg.TokenSource(context.Background())
	}
	return c, nil
}

type fcmNotification struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	Image string `json:"image,omitempty"`
}

type fcmAndroid struct {
	Priority    string            `json:"priority,omitempty"` // NORMAL or HIGH
	TTL         string            `json:"ttl,omitempty"`      // e.g. "3600s"
	CollapseKey string            `json:"collapse_key,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
}

type fcmMessage struct {
	Token        string            `json:"token"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
	Android      *fcmAndroid       `json:"android,omitempty"`
}

// Send posts one message to the registration token.
func (c *FCMClient) Send(ctx context.Context, device notification.DeviceToken, p Payload) Result {
	if c.tokens == nil {
		return notConfigured(notification.PlatformAndroid)
	}

	tok, err := c.tokens.Token()
	if err != nil {
		return failure(notification.PlatformAndroid, "auth_token", err.Error(), true)
	}

	android := &fcmAndroid{Priority: fcmPriority(p.Priority), CollapseKey: p.CollapseKey}
	if p.TTL > 0 {
		android.TTL = strconv.FormatInt(int64(p.TTL.Seconds()), 10) + "s"
	}

	body, err := json.Marshal(struct {
		Message fcmMessage `json:"message"`
	}{Message: fcmMessage{
		Token:        device.Token,
		Notification: fcmNotification{Title: p.Title, Body: p.Body, Image: p.ImageURL},
		Data:         p.Data,
		Android:      android,
	}})
	if err != nil {
		return failure(notification.PlatformAndroid, "payload", err.Error(), false)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	url := fmt.Sprintf("%s/v1/projects/%s/messages:send", c.cfg.Endpoint, c.cfg.ProjectID)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return failure(notification.PlatformAndroid, "request", err.Error(), false)
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return failure(notification.PlatformAndroid, "network", err.Error(), true)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var ok struct {
			Name string `json:"name"` // projects/*/messages/{message_id}
		}
		_ = json.NewDecoder(resp.Body).Decode(&ok)
		return Result{Success: true, Platform: notification.PlatformAndroid, MessageID: ok.Name}
	}

	var fcmErr struct {
		Error struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&fcmErr)

	if _, dead := fcmDeadTokenStatuses[fcmErr.Error.Status]; dead {
		return failure(notification.PlatformAndroid, fcmErr.Error.Status, "registration token is no longer valid", false)
	}
	return failure(notification.PlatformAndroid, fcmErr.Error.Status,
		fmt.Sprintf("fcm status %d: %s", resp.StatusCode, fcmErr.Error.Message), true)
}

// fcmPriority maps the request priority onto FCM's two android tiers.
func fcmPriority(p notification.Priority) string {
	switch p {
	case notification.PriorityHigh, notification.PriorityCritical:
		return "HIGH"
	default:
		return "NORMAL"
	}
}
