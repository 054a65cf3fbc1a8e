package push

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notification"
)

// APNSConfig holds the provider-token credentials issued in the Apple
// developer portal. The private key is the contents of the .p8 file.
type APNSConfig struct {
	TeamID     string        `env:"APNS_TEAM_ID"`
	KeyID      string        `env:"APNS_KEY_ID"`
	PrivateKey string        `env:"APNS_PRIVATE_KEY"` // PKCS#8 PEM
	Topic      string        `env:"APNS_TOPIC"`       // app bundle ID
	Endpoint   string        `env:"APNS_ENDPOINT" envDefault:"https://api.push.apple.com"`
	Timeout    time.Duration `env:"APNS_TIMEOUT" envDefault:"5s"`
}

// Configured reports whether runtime credentials are present.
func (c APNSConfig) Configured() bool {
	return c.TeamID != "" && c.KeyID != "" && c.PrivateKey != "" && c.Topic != ""
}

// APNs rejection reasons that mean the device token is permanently dead.
// The caller should deactivate the token; retrying is pointless.
var apnsDeadTokenReasons = map[string]struct{}{
	"BadDeviceToken":         {},
	"Unregistered":           {},
	"ExpiredToken":           {},
	"DeviceTokenNotForTopic": {},
}

// Apple requires provider tokens to be refreshed between 20 and 60 minutes;
// 50 stays comfortably inside the window.
const apnsTokenTTL = 50 * time.Minute

// APNSClient sends HTTP/2 notifications to the Apple Push Notification
// service using ES256 provider-token authentication.
type APNSClient struct {
	cfg    APNSConfig
	key    *ecdsa.PrivateKey
	tokens *tokenCache
	client *http.Client
}

// NewAPNSClient creates the client. Missing credentials do not fail
// construction: the client degrades to "not configured" results so one
// unprovisioned platform never blocks the others. A malformed private key,
// however, is a hard configuration error.
func NewAPNSClient(cfg APNSConfig) (*APNSClient, error) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://api.push.apple.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	c := &APNSClient{
		cfg:    cfg,
		tokens: newTokenCache(),
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}

	if cfg.Configured() {
		key, err := parseECPrivateKey(cfg.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("apns: %w", err)
		}
		c.key = key
	}
	return c, nil
}

type apnsAlert struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
}

type apnsAPS struct {
	Alert    apnsAlert `json:"alert"`
	Sound    string    `json:"sound,omitempty"`
	Badge    *int      `json:"badge,omitempty"`
	ThreadID string    `json:"thread-id,omitempty"`
}

type apnsBody struct {
	APS  apnsAPS           `json:"aps"`
	Data map[string]string `json:"data,omitempty"`
}

// Send posts one notification to the device. All failures come back as a
// Result; the only internal errors are marshaling ones, which are treated
// as non-retryable.
func (c *APNSClient) Send(ctx context.Context, device notification.DeviceToken, p Payload) Result {
	if c.key == nil {
		return notConfigured(notification.PlatformIOS)
	}

	token, err := c.tokens.get("provider", apnsTokenTTL, c.mintProviderToken)
	if err != nil {
		return failure(notification.PlatformIOS, "auth_token", err.Error(), true)
	}

	body, err := json.Marshal(apnsBody{
		APS: apnsAPS{
			Alert:    apnsAlert{Title: p.Title, Body: p.Body},
			Sound:    p.Sound,
			Badge:    p.Badge,
			ThreadID: p.ThreadID,
		},
		Data: p.Data,
	})
	if err != nil {
		return failure(notification.PlatformIOS, "payload", err.Error(), false)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	url := fmt.Sprintf("%s/3/device/%s", c.cfg.Endpoint, device.Token)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return failure(notification.PlatformIOS, "request", err.Error(), false)
	}

	req.Header.Set("authorization", "bearer "+token)
	req.Header.Set("apns-topic", c.cfg.Topic)
	req.Header.Set("apns-push-type", "alert")
	req.Header.Set("apns-priority", apnsPriority(p.Priority))
	if p.CollapseKey != "" {
		req.Header.Set("apns-collapse-id", p.CollapseKey)
	}
	if p.TTL > 0 {
		req.Header.Set("apns-expiration", strconv.FormatInt(time.Now().Add(p.TTL).Unix(), 10))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return failure(notification.PlatformIOS, "network", err.Error(), true)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return Result{
			Success:   true,
			Platform:  notification.PlatformIOS,
			MessageID: resp.Header.Get("apns-id"),
		}
	}

	var apnsErr struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&apnsErr)

	if _, dead := apnsDeadTokenReasons[apnsErr.Reason]; dead {
		return failure(notification.PlatformIOS, apnsErr.Reason, "device token is no longer valid", false)
	}
	return failure(notification.PlatformIOS, apnsErr.Reason,
		fmt.Sprintf("apns status %d: %s", resp.StatusCode, apnsErr.Reason), true)
}

// mintProviderToken signs a fresh ES256 provider token.
func (c *APNSClient) mintProviderToken() (string, error) {
	header := struct {
		Alg string `json:"alg"`
		Kid string `json:"kid"`
	}{Alg: "ES256", Kid: c.cfg.KeyID}

	claims := struct {
		Iss string `json:"iss"`
		Iat int64  `json:"iat"`
	}{Iss: c.cfg.TeamID, Iat: time.Now().Unix()}

	return signJWTES256(c.key, header, claims)
}

// apnsPriority maps the request priority to the apns-priority header:
// 10 delivers immediately, 5 allows power-aware batching.
func apnsPriority(p notification.Priority) string {
	switch p {
	case notification.PriorityHigh, notification.PriorityCritical:
		return "10"
	default:
		return "5"
	}
}

// parseECPrivateKey decodes a PKCS#8 PEM block into an ECDSA P-256 key.
func parseECPrivateKey(pemData string) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("no PEM block in private key")
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is %T, want *ecdsa.PrivateKey", parsed)
	}
	return key, nil
}
