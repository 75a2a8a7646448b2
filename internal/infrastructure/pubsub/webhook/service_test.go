package webhookpubsub_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/stellrflow/anchord/internal/core/ports"
	webhookpubsub "github.com/stellrflow/anchord/internal/infrastructure/pubsub/webhook"
	"github.com/stretchr/testify/require"
)

const (
	testMessage = `{"topic":"DEPOSIT_COMPLETED","deposit":{"ID":"DEP-1"}}`
	testSecret  = "hooksecret"
)

type receivedRequest struct {
	path          string
	body          string
	authorization string
}

func newTestServer(t *testing.T) (*httptest.Server, func() []receivedRequest) {
	var (
		lock     sync.Mutex
		requests []receivedRequest
	)

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			lock.Lock()
			requests = append(requests, receivedRequest{
				path:          r.URL.Path,
				body:          string(body),
				authorization: r.Header.Get("Authorization"),
			})
			lock.Unlock()

			if r.URL.Path == "/broken" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusOK)
		},
	))
	t.Cleanup(server.Close)

	return server, func() []receivedRequest {
		lock.Lock()
		defer lock.Unlock()
		return append([]receivedRequest{}, requests...)
	}
}

func TestWebhookPubSubService(t *testing.T) {
	server, received := newTestServer(t)
	pubsubSvc := webhookpubsub.NewWebhookPubSubService()

	depositHookID, err := pubsubSvc.Subscribe(
		ports.DepositCompletedTopic, server.URL+"/deposits", testSecret,
	)
	require.NoError(t, err)
	require.NotEmpty(t, depositHookID)

	anyHookID, err := pubsubSvc.Subscribe(ports.AnyTopic, server.URL+"/all", "")
	require.NoError(t, err)
	require.NotEmpty(t, anyHookID)

	subs := pubsubSvc.ListSubscriptionsForTopic(ports.DepositCompletedTopic)
	require.Len(t, subs, 2)
	require.Equal(t, depositHookID, subs[0].Id())
	require.True(t, subs[0].IsSecured())
	require.Equal(t, anyHookID, subs[1].Id())
	require.False(t, subs[1].IsSecured())

	subs = pubsubSvc.ListSubscriptionsForTopic(ports.WithdrawalCompletedTopic)
	require.Len(t, subs, 1)

	err = pubsubSvc.Publish(ports.DepositCompletedTopic, testMessage)
	require.NoError(t, err)

	requests := received()
	require.Len(t, requests, 2)
	for _, r := range requests {
		require.Equal(t, testMessage, r.body)
		if r.path == "/all" {
			require.Empty(t, r.authorization)
			continue
		}

		require.True(t, strings.HasPrefix(r.authorization, "Bearer "))
		tokenString := strings.TrimPrefix(r.authorization, "Bearer ")
		claims := &jwt.StandardClaims{}
		token, err := jwt.ParseWithClaims(
			tokenString, claims, func(*jwt.Token) (interface{}, error) {
				return []byte(testSecret), nil
			},
		)
		require.NoError(t, err)
		require.True(t, token.Valid)
		require.Equal(t, ports.DepositCompletedTopic, claims.Subject)
	}

	err = pubsubSvc.Unsubscribe(depositHookID)
	require.NoError(t, err)
	err = pubsubSvc.Unsubscribe(anyHookID)
	require.NoError(t, err)
	require.Empty(t, pubsubSvc.ListSubscriptionsForTopic(ports.DepositCompletedTopic))

	// Publishing with no subscribers is a no-op.
	err = pubsubSvc.Publish(ports.WithdrawalFailedTopic, testMessage)
	require.NoError(t, err)
	require.Len(t, received(), 2)
}

func TestWebhookPubSubServiceFailures(t *testing.T) {
	server, _ := newTestServer(t)
	pubsubSvc := webhookpubsub.NewWebhookPubSubService()

	t.Run("invalid subscriptions", func(t *testing.T) {
		_, err := pubsubSvc.Subscribe("TRADE_SETTLED", server.URL, "")
		require.ErrorIs(t, err, webhookpubsub.ErrInvalidTopic)

		_, err = pubsubSvc.Subscribe(ports.DepositFailedTopic, "not a url", "")
		require.ErrorIs(t, err, webhookpubsub.ErrInvalidEndpoint)
	})

	t.Run("invalid topic", func(t *testing.T) {
		err := pubsubSvc.Publish("UNKNOWN", testMessage)
		require.ErrorIs(t, err, webhookpubsub.ErrInvalidTopic)
	})

	t.Run("failing endpoint", func(t *testing.T) {
		_, err := pubsubSvc.Subscribe(
			ports.DepositFailedTopic, server.URL+"/broken", "",
		)
		require.NoError(t, err)

		err = pubsubSvc.Publish(ports.DepositFailedTopic, testMessage)
		require.Error(t, err)
	})
}

func TestParseWebhook(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec          string
		expectedTopic string
		expectedURL   string
		expectedErr   error
	}{
		{
			spec:          "http://localhost:8000/hooks",
			expectedTopic: ports.AnyTopic,
			expectedURL:   "http://localhost:8000/hooks",
		},
		{
			spec:          "deposit_completed@http://localhost:8000/hooks",
			expectedTopic: ports.DepositCompletedTopic,
			expectedURL:   "http://localhost:8000/hooks",
		},
		{
			spec:        "@http://localhost:8000/hooks",
			expectedErr: webhookpubsub.ErrInvalidHookSpec,
		},
		{
			spec:        "",
			expectedErr: webhookpubsub.ErrInvalidHookSpec,
		},
		{
			spec:        "NOT_A_TOPIC@http://localhost:8000/hooks",
			expectedErr: webhookpubsub.ErrInvalidTopic,
		},
	}

	for _, tt := range tests {
		hook, err := webhookpubsub.ParseWebhook(tt.spec, testSecret)
		if tt.expectedErr != nil {
			require.ErrorIs(t, err, tt.expectedErr)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tt.expectedTopic, hook.Topic())
		require.Equal(t, tt.expectedURL, hook.NotifyAt())
		require.True(t, hook.IsSecured())
	}
}
