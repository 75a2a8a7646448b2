package webhookpubsub

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/stellrflow/anchord/internal/core/ports"
)

type Webhook struct {
	ID       string `json:"id"`
	Event    string `json:"topic"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"-"`
}

func NewWebhook(topic, endpoint, secret string) (*Webhook, error) {
	if !IsValidTopic(topic) {
		return nil, ErrInvalidTopic
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, ErrInvalidEndpoint
	}
	return &Webhook{uuid.New().String(), topic, endpoint, secret}, nil
}

// ParseWebhook parses a hook specified as <topic>@<endpoint>. A spec without
// topic subscribes to any topic.
func ParseWebhook(spec, secret string) (*Webhook, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, ErrInvalidHookSpec
	}

	topic, endpoint, found := strings.Cut(spec, "@")
	if !found || strings.Contains(topic, "://") {
		return NewWebhook(ports.AnyTopic, spec, secret)
	}
	if topic == "" || endpoint == "" {
		return nil, ErrInvalidHookSpec
	}
	return NewWebhook(strings.ToUpper(topic), endpoint, secret)
}

func (h *Webhook) Topic() string {
	return h.Event
}

func (h *Webhook) Id() string {
	return h.ID
}

func (h *Webhook) NotifyAt() string {
	return h.Endpoint
}

func (h *Webhook) IsSecured() bool {
	return len(h.Secret) > 0
}
