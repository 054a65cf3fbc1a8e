package push_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/dmitrymomot/notifykit/pkg/notification"
	"github.com/dmitrymomot/notifykit/pkg/push"
)

func testFCMClient(t *testing.T, endpoint string) *push.FCMClient {
	t.Helper()

	client, err := push.NewFCMClient(push.FCMConfig{
		CredentialsJSON: "{}",
		ProjectID:       "test-project",
		Endpoint:        endpoint,
		Timeout:         time.Second,
	}, push.WithFCMTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})))
	require.NoError(t, err)
	return client
}

func TestFCMClient_Send(t *testing.T) {
	t.Parallel()

	t.Run("success returns message name", func(t *testing.T) {
		t.Parallel()

		var gotAuth, gotPath string
		var gotBody struct {
			Message struct {
				Token        string `json:"token"`
				Notification struct {
					Title string `json:"title"`
					Body  string `json:"body"`
				} `json:"notification"`
				Android struct {
					Priority string `json:"priority"`
					TTL      string `json:"ttl"`
				} `json:"android"`
			} `json:"message"`
		}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotPath = r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_ = json.NewEncoder(w).Encode(map[string]string{"name": "projects/test-project/messages/msg-1"})
		}))
		defer srv.Close()

		client := testFCMClient(t, srv.URL)
		res := client.Send(context.Background(), notification.DeviceToken{
			Platform: notification.PlatformAndroid,
			Token:    "regtoken",
		}, push.Payload{
			Title:    "hi",
			Body:     "there",
			Priority: notification.PriorityHigh,
			TTL:      time.Hour,
		})

		assert.True(t, res.Success)
		assert.Equal(t, "projects/test-project/messages/msg-1", res.MessageID)
		assert.Equal(t, "Bearer test-token", gotAuth)
		assert.Equal(t, "/v1/projects/test-project/messages:send", gotPath)
		assert.Equal(t, "regtoken", gotBody.Message.Token)
		assert.Equal(t, "hi", gotBody.Message.Notification.Title)
		assert.Equal(t, "HIGH", gotBody.Message.Android.Priority)
		assert.Equal(t, "3600s", gotBody.Message.Android.TTL)
	})

	t.Run("unregistered token is not retryable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"status": "UNREGISTERED", "message": "gone"},
			})
		}))
		defer srv.Close()

		client := testFCMClient(t, srv.URL)
		res := client.Send(context.Background(), notification.DeviceToken{
			Platform: notification.PlatformAndroid,
			Token:    "dead",
		}, push.Payload{Title: "hi"})

		assert.False(t, res.Success)
		assert.False(t, res.Retryable)
		assert.Equal(t, "UNREGISTERED", res.ErrorCode)
	})

	t.Run("unavailable is retryable", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]string{"status": "UNAVAILABLE", "message": "try later"},
			})
		}))
		defer srv.Close()

		client := testFCMClient(t, srv.URL)
		res := client.Send(context.Background(), notification.DeviceToken{
			Platform: notification.PlatformAndroid,
			Token:    "tok",
		}, push.Payload{Title: "hi"})

		assert.False(t, res.Success)
		assert.True(t, res.Retryable)
		assert.Equal(t, "UNAVAILABLE", res.ErrorCode)
	})

	t.Run("missing credentials degrade without network", func(t *testing.T) {
		t.Parallel()

		client, err := push.NewFCMClient(push.FCMConfig{})
		require.NoError(t, err)

		res := client.Send(context.Background(), notification.DeviceToken{
			Platform: notification.PlatformAndroid,
			Token:    "tok",
		}, push.Payload{Title: "hi"})

		assert.False(t, res.Success)
		assert.False(t, res.Retryable)
		assert.Equal(t, "not_configured", res.ErrorCode)
	})

	t.Run("malformed credentials fail construction", func(t *testing.T) {
		t.Parallel()

		_, err := push.NewFCMClient(push.FCMConfig{
			CredentialsJSON: "not json",
			ProjectID:       "p",
		})
		require.Error(t, err)
	})
}
