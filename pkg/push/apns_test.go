package push_test

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/notification"
	"github.com/dmitrymomot/notifykit/pkg/push"
)

func testAPNSKey(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, pem.Encode(&sb, &pem.Block{Type: "PRIVATE KEY", Bytes: der}))
	return key, sb.String()
}

func testAPNSConfig(t *testing.T, endpoint string) (push.APNSConfig, *ecdsa.PrivateKey) {
	t.Helper()

	key, pemKey := testAPNSKey(t)
	return push.APNSConfig{
		TeamID:     "TEAM123456",
		KeyID:      "KEY1234567",
		PrivateKey: pemKey,
		Topic:      "com.example.app",
		Endpoint:   endpoint,
		Timeout:    time.Second,
	}, key
}

func TestAPNSClient_Send(t *testing.T) {
	t.Parallel()

	t.Run("success returns apns id", func(t *testing.T) {
		t.Parallel()

		var gotTopic, gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotTopic = r.Header.Get("apns-topic")
			gotPath = r.URL.Path
			w.Header().Set("apns-id", "ABCD-1234")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		cfg, _ := testAPNSConfig(t, srv.URL)
		client, err := push.NewAPNSClient(cfg)
		require.NoError(t, err)

		res := client.Send(context.Background(), notification.DeviceToken{
			Platform: notification.PlatformIOS,
			Token:    "devicetoken",
		}, push.Payload{Title: "hi", Body: "there"})

		assert.True(t, res.Success)
		assert.Equal(t, "ABCD-1234", res.MessageID)
		assert.Equal(t, notification.PlatformIOS, res.Platform)
		assert.Equal(t, "com.example.app", gotTopic)
		assert.Equal(t, "/3/device/devicetoken", gotPath)
	})

	t.Run("unregistered token is not retryable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusGone)
			_ = json.NewEncoder(w).Encode(map[string]string{"reason": "Unregistered"})
		}))
		defer srv.Close()

		cfg, _ := testAPNSConfig(t, srv.URL)
		client, err := push.NewAPNSClient(cfg)
		require.NoError(t, err)

		res := client.Send(context.Background(), notification.DeviceToken{
			Platform: notification.PlatformIOS,
			Token:    "dead",
		}, push.Payload{Title: "hi"})

		assert.False(t, res.Success)
		assert.False(t, res.Retryable)
		assert.Equal(t, "Unregistered", res.ErrorCode)
	})

	t.Run("server error is retryable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"reason": "ServiceUnavailable"})
		}))
		defer srv.Close()

		cfg, _ := testAPNSConfig(t, srv.URL)
		client, err := push.NewAPNSClient(cfg)
		require.NoError(t, err)

		res := client.Send(context.Background(), notification.DeviceToken{
			Platform: notification.PlatformIOS,
			Token:    "tok",
		}, push.Payload{Title: "hi"})

		assert.False(t, res.Success)
		assert.True(t, res.Retryable)
	})

	t.Run("missing credentials degrade without network", func(t *testing.T) {
		t.Parallel()

		client, err := push.NewAPNSClient(push.APNSConfig{})
		require.NoError(t, err)

		res := client.Send(context.Background(), notification.DeviceToken{
			Platform: notification.PlatformIOS,
			Token:    "tok",
		}, push.Payload{Title: "hi"})

		assert.False(t, res.Success)
		assert.False(t, res.Retryable)
		assert.Equal(t, "not_configured", res.ErrorCode)
	})

	t.Run("malformed private key fails construction", func(t *testing.T) {
		t.Parallel()

		cfg, _ := testAPNSConfig(t, "https://example.com")
		cfg.PrivateKey = "not a pem"

		_, err := push.NewAPNSClient(cfg)
		require.Error(t, err)
	})
}

func TestAPNSClient_ProviderToken(t *testing.T) {
	t.Parallel()

	var tokens []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokens = append(tokens, strings.TrimPrefix(r.Header.Get("authorization"), "bearer "))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg, key := testAPNSConfig(t, srv.URL)
	client, err := push.NewAPNSClient(cfg)
	require.NoError(t, err)

	device := notification.DeviceToken{Platform: notification.PlatformIOS, Token: "tok"}
	require.True(t, client.Send(context.Background(), device, push.Payload{Title: "a"}).Success)
	require.True(t, client.Send(context.Background(), device, push.Payload{Title: "b"}).Success)

	require.Len(t, tokens, 2)
	assert.Equal(t, tokens[0], tokens[1], "provider token should be cached between sends")

	// The token must be a valid ES256 compact JWT with the raw r||s
	// signature format Apple expects.
	parts := strings.Split(tokens[0], ".")
	require.Len(t, parts, 3)

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	var header struct {
		Alg string `json:"alg"`
		Kid string `json:"kid"`
	}
	require.NoError(t, json.Unmarshal(headerJSON, &header))
	assert.Equal(t, "ES256", header.Alg)
	assert.Equal(t, cfg.KeyID, header.Kid)

	claimsJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var claims struct {
		Iss string `json:"iss"`
		Iat int64  `json:"iat"`
	}
	require.NoError(t, json.Unmarshal(claimsJSON, &claims))
	assert.Equal(t, cfg.TeamID, claims.Iss)
	assert.InDelta(t, time.Now().Unix(), claims.Iat, 60)

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)
	require.Len(t, sig, 64)

	digest := sha256.Sum256([]byte(parts[0] + "." + parts[1]))
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:])
	assert.True(t, ecdsa.Verify(&key.PublicKey, digest[:], r, s))
}
