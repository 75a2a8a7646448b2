package webhookpubsub

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stellrflow/anchord/internal/core/ports"
	"github.com/stellrflow/anchord/pkg/circuitbreaker"
	"github.com/stellrflow/anchord/pkg/httputil"
	"golang.org/x/sync/errgroup"
)

const (
	requestTimeout = 10 * time.Second
	tokenLifetime  = time.Minute
)

type webhookService struct {
	lock         *sync.RWMutex
	hooks        map[string]*Webhook
	hooksByTopic map[string][]string

	httpClient *httputil.Client
	cb         *gobreaker.CircuitBreaker
}

// NewWebhookPubSubService returns a publisher notifying ramp events to http
// endpoints. Subscriptions are kept in memory and the given hooks are
// registered right away.
func NewWebhookPubSubService(hooks ...*Webhook) ports.Publisher {
	ws := &webhookService{
		lock:         &sync.RWMutex{},
		hooks:        make(map[string]*Webhook),
		hooksByTopic: make(map[string][]string),
		httpClient:   httputil.NewClient(requestTimeout),
		cb:           circuitbreaker.NewCircuitBreaker("webhooks"),
	}
	for _, hook := range hooks {
		ws.addWebhook(hook)
	}
	return ws
}

func (ws *webhookService) Subscribe(topic, endpoint, secret string) (string, error) {
	hook, err := NewWebhook(topic, endpoint, secret)
	if err != nil {
		return "", err
	}
	ws.addWebhook(hook)
	return hook.ID, nil
}

// Unsubscribe removes the hook with the given id. Nothing is done if the hook
// does not exist.
func (ws *webhookService) Unsubscribe(id string) error {
	ws.lock.Lock()
	defer ws.lock.Unlock()

	hook, ok := ws.hooks[id]
	if !ok {
		return nil
	}
	delete(ws.hooks, id)

	ids := ws.hooksByTopic[hook.Event]
	for i, hookID := range ids {
		if hookID == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) <= 0 {
		delete(ws.hooksByTopic, hook.Event)
		return nil
	}
	ws.hooksByTopic[hook.Event] = ids
	return nil
}

func (ws *webhookService) ListSubscriptionsForTopic(
	topic string,
) []ports.Subscription {
	hooks := ws.hooksForTopic(topic)
	subs := make([]ports.Subscription, 0, len(hooks))
	for _, h := range hooks {
		subs = append(subs, h)
	}
	return subs
}

// Publish makes a POST request to every endpoint registered for the topic or
// for any topic. Requests go through a circuit breaker to stop hammering
// endpoints that keep failing.
func (ws *webhookService) Publish(topic, message string) error {
	if topic == ports.AnyTopic || !IsValidTopic(topic) {
		return ErrInvalidTopic
	}

	eg := &errgroup.Group{}
	for _, hook := range ws.hooksForTopic(topic) {
		hook := hook
		eg.Go(func() error { return ws.doRequest(hook, message) })
	}
	return eg.Wait()
}

func (ws *webhookService) addWebhook(hook *Webhook) {
	ws.lock.Lock()
	defer ws.lock.Unlock()

	// Hook ids are random uuids, same id means same hook.
	if _, ok := ws.hooks[hook.ID]; ok {
		return
	}
	ws.hooks[hook.ID] = hook
	ws.hooksByTopic[hook.Event] = append(ws.hooksByTopic[hook.Event], hook.ID)
	log.Debugf("webhook: added %s subscription for %s", hook.Event, hook.Endpoint)
}

func (ws *webhookService) hooksForTopic(topic string) []*Webhook {
	ws.lock.RLock()
	defer ws.lock.RUnlock()

	ids := append([]string{}, ws.hooksByTopic[topic]...)
	if topic != ports.AnyTopic {
		ids = append(ids, ws.hooksByTopic[ports.AnyTopic]...)
	}

	hooks := make([]*Webhook, 0, len(ids))
	for _, id := range ids {
		hooks = append(hooks, ws.hooks[id])
	}
	return hooks
}

func (ws *webhookService) doRequest(hook *Webhook, payload string) error {
	_, err := ws.cb.Execute(func() (interface{}, error) {
		headers := map[string]string{
			"Content-Type": "application/json",
		}
		if hook.IsSecured() {
			tokenString, err := signToken(hook)
			if err != nil {
				return nil, err
			}
			headers["Authorization"] = fmt.Sprintf("Bearer %s", tokenString)
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		status, resp, err := ws.httpClient.Post(ctx, hook.Endpoint, payload, headers)
		if err != nil {
			return nil, err
		}
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return nil, fmt.Errorf(
				"webhook %s responded with status %d: %s", hook.Endpoint, status, resp,
			)
		}
		return nil, nil
	})
	return err
}

func signToken(hook *Webhook) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   hook.Event,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(tokenLifetime).Unix(),
	})
	return token.SignedString([]byte(hook.Secret))
}
