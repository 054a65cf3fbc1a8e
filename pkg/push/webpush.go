package push

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/dmitrymomot/notifykit/pkg/notification"
)

// WebPushConfig holds the VAPID key pair identifying this application
// server to browser push services. Keys are base64url: the public key an
// uncompressed P-256 point, the private key the 32-byte scalar.
type WebPushConfig struct {
	VAPIDPublicKey  string        `env:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string        `env:"VAPID_PRIVATE_KEY"`
	Subscriber      string        `env:"VAPID_SUBSCRIBER"` // mailto: contact
	Timeout         time.Duration `env:"WEBPUSH_TIMEOUT" envDefault:"5s"`
}

// Configured reports whether runtime credentials are present.
func (c WebPushConfig) Configured() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != "" && c.Subscriber != ""
}

// VAPID tokens may live up to 24h; 12h keeps the per-origin cache small
// while amortizing the signature cost.
const vapidTokenTTL = 12 * time.Hour

// WebPushClient delivers notifications to browser push endpoints with VAPID
// authentication and RFC 8291 aes128gcm payload encryption.
type WebPushClient struct {
	cfg    WebPushConfig
	key    *ecdsa.PrivateKey // VAPID signing key
	tokens *tokenCache       // per-origin VAPID JWTs
	client *http.Client
}

// NewWebPushClient creates the client, degrading to "not configured" when
// credentials are absent.
func NewWebPushClient(cfg WebPushConfig) (*WebPushClient, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	c := &WebPushClient{
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
		key, err := parseVAPIDPrivateKey(cfg.VAPIDPrivateKey)
		if err != nil {
			return nil, fmt.Errorf("webpush: %w", err)
		}
		c.key = key
	}
	return c, nil
}

// Send encrypts the payload for the subscription and posts it to the
// endpoint. 404/410 mean the subscription is gone for good.
func (c *WebPushClient) Send(ctx context.Context, device notification.DeviceToken, p Payload) Result {
	if c.key == nil {
		return notConfigured(notification.PlatformWeb)
	}
	if device.Endpoint == "" || device.P256DH == "" || device.Auth == "" {
		return failure(notification.PlatformWeb, "bad_subscription", "incomplete web push subscription", false)
	}

	origin, err := endpointOrigin(device.Endpoint)
	if err != nil {
		return failure(notification.PlatformWeb, "bad_subscription", err.Error(), false)
	}

	token, err := c.tokens.get(origin, vapidTokenTTL, func() (string, error) {
		return c.mintVAPIDToken(origin)
	})
	if err != nil {
		return failure(notification.PlatformWeb, "auth_token", err.Error(), true)
	}

	plaintext, err := json.Marshal(map[string]any{
		"title": p.Title,
		"body":  p.Body,
		"icon":  p.ImageURL,
		"data":  p.Data,
	})
	if err != nil {
		return failure(notification.PlatformWeb, "payload", err.Error(), false)
	}

	ciphertext, err := encryptAES128GCM(plaintext, device.P256DH, device.Auth)
	if err != nil {
		return failure(notification.PlatformWeb, "encrypt", err.Error(), false)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, device.Endpoint, bytes.NewReader(ciphertext))
	if err != nil {
		return failure(notification.PlatformWeb, "request", err.Error(), false)
	}

	ttl := p.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	req.Header.Set("TTL", strconv.FormatInt(int64(ttl.Seconds()), 10))
	req.Header.Set("Content-Encoding", "aes128gcm")
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Authorization", fmt.Sprintf("vapid t=%s, k=%s", token, c.cfg.VAPIDPublicKey))
	if p.Priority == notification.PriorityHigh || p.Priority == notification.PriorityCritical {
		req.Header.Set("Urgency", "high")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return failure(notification.PlatformWeb, "network", err.Error(), true)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return Result{
			Success:   true,
			Platform:  notification.PlatformWeb,
			MessageID: resp.Header.Get("Location"),
		}
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return failure(notification.PlatformWeb, strconv.Itoa(resp.StatusCode), "subscription has expired or been revoked", false)
	default:
		return failure(notification.PlatformWeb, strconv.Itoa(resp.StatusCode),
			fmt.Sprintf("push service status %d", resp.StatusCode), true)
	}
}

// mintVAPIDToken signs a VAPID JWT scoped to one push-service origin.
func (c *WebPushClient) mintVAPIDToken(origin string) (string, error) {
	header := struct {
		Typ string `json:"typ"`
		Alg string `json:"alg"`
	}{Typ: "JWT", Alg: "ES256"}

	claims := struct {
		Aud string `json:"aud"`
		Exp int64  `json:"exp"`
		Sub string `json:"sub"`
	}{Aud: origin, Exp: time.Now().Add(vapidTokenTTL).Unix(), Sub: c.cfg.Subscriber}

	return signJWTES256(c.key, header, claims)
}

// endpointOrigin extracts scheme://host, the audience VAPID requires.
func endpointOrigin(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("endpoint %q has no origin", endpoint)
	}
	return u.Scheme + "://" + u.Host, nil
}

// parseVAPIDPrivateKey rebuilds an ECDSA P-256 key from the base64url
// 32-byte scalar used by the VAPID key format.
func parseVAPIDPrivateKey(encoded string) (*ecdsa.PrivateKey, error) {
	raw, err := base64URLDecode(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("private key is %d bytes, want 32", len(raw))
	}

	key := &ecdsa.PrivateKey{D: new(big.Int).SetBytes(raw)}
	key.Curve = elliptic.P256()
	key.X, key.Y = key.Curve.ScalarBaseMult(raw)
	return key, nil
}

// encryptAES128GCM implements the RFC 8291 message encryption: ECDH over
// P-256 against the subscription's public key, HKDF key derivation bound to
// the auth secret, and a single aes128gcm record carrying the whole payload.
func encryptAES128GCM(plaintext []byte, p256dh, auth string) ([]byte, error) {
	uaPublicRaw, err := base64URLDecode(p256dh)
	if err != nil {
		return nil, fmt.Errorf("decode p256dh: %w", err)
	}
	authSecret, err := base64URLDecode(auth)
	if err != nil {
		return nil, fmt.Errorf("decode auth secret: %w", err)
	}

	curve := ecdh.P256()
	uaPublic, err := curve.NewPublicKey(uaPublicRaw)
	if err != nil {
		return nil, fmt.Errorf("subscription public key: %w", err)
	}

	asPrivate, err := curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ephemeral key: %w", err)
	}
	asPublicRaw := asPrivate.PublicKey().Bytes()

	sharedSecret, err := asPrivate.ECDH(uaPublic)
	if err != nil {
		return nil, fmt.Errorf("ecdh: %w", err)
	}

	// IKM = HKDF(salt=auth, ikm=ecdh, info="WebPush: info"||0x00||ua_pub||as_pub)
	info := make([]byte, 0, 14+1+len(uaPublicRaw)+len(asPublicRaw))
	info = append(info, []byte("WebPush: info")...)
	info = append(info, 0x00)
	info = append(info, uaPublicRaw...)
	info = append(info, asPublicRaw...)

	ikm := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, sharedSecret, authSecret, info), ikm); err != nil {
		return nil, fmt.Errorf("derive ikm: %w", err)
	}

	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	cek := make([]byte, 16)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, salt, append([]byte("Content-Encoding: aes128gcm"), 0x00)), cek); err != nil {
		return nil, fmt.Errorf("derive cek: %w", err)
	}
	nonce := make([]byte, 12)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ikm, salt, append([]byte("Content-Encoding: nonce"), 0x00)), nonce); err != nil {
		return nil, fmt.Errorf("derive nonce: %w", err)
	}

	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	// Single record: header(salt || rs || idlen || keyid) || ciphertext.
	const recordSize = 4096
	header := make([]byte, 0, 16+4+1+len(asPublicRaw))
	header = append(header, salt...)
	header = binary.BigEndian.AppendUint32(header, recordSize)
	header = append(header, byte(len(asPublicRaw)))
	header = append(header, asPublicRaw...)

	// 0x02 marks the last (only) record.
	padded := append(append([]byte{}, plaintext...), 0x02)
	return gcm.Seal(header, nonce, padded, nil), nil
}
