package application

import (
	"encoding/json"

	log "github.com/sirupsen/logrus"
	"github.com/stellrflow/anchord/internal/core/domain"
	"github.com/stellrflow/anchord/internal/core/ports"
)

// eventPublisher publishes ramp lifecycle events in background. Delivery is
// best effort and a nil publisher disables it.
type eventPublisher struct {
	publisher ports.Publisher
}

type depositEvent struct {
	Topic   string         `json:"topic"`
	Deposit domain.Deposit `json:"deposit"`
}

type withdrawalEvent struct {
	Topic      string            `json:"topic"`
	Withdrawal domain.Withdrawal `json:"withdrawal"`
}

func (p eventPublisher) depositEvent(topic string, deposit *domain.Deposit) {
	if p.publisher == nil || deposit == nil {
		return
	}
	p.publish(topic, depositEvent{topic, *deposit})
}

func (p eventPublisher) withdrawalEvent(
	topic string, withdrawal *domain.Withdrawal,
) {
	if p.publisher == nil || withdrawal == nil {
		return
	}
	p.publish(topic, withdrawalEvent{topic, *withdrawal})
}

func (p eventPublisher) publish(topic string, event interface{}) {
	buf, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Warnf("pubsub: failed to serialize %s event", topic)
		return
	}

	go func() {
		if err := p.publisher.Publish(topic, string(buf)); err != nil {
			log.WithError(err).Warnf("pubsub: failed to publish topic %s", topic)
			return
		}
		log.Debugf("pubsub: published topic %s", topic)
	}()
}
