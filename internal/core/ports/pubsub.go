package ports

const AnyTopic = "*"

// Topics of the ramp lifecycle events.
const (
	DepositCompletedTopic    = "DEPOSIT_COMPLETED"
	DepositFailedTopic       = "DEPOSIT_FAILED"
	DepositExpiredTopic      = "DEPOSIT_EXPIRED"
	WithdrawalCompletedTopic = "WITHDRAWAL_COMPLETED"
	WithdrawalFailedTopic    = "WITHDRAWAL_FAILED"
	WithdrawalCancelledTopic = "WITHDRAWAL_CANCELLED"
)

// Subscription is a registered endpoint for a topic.
type Subscription interface {
	Topic() string
	Id() string
	IsSecured() bool
	NotifyAt() string
}

// Publisher delivers ramp lifecycle events to the interested subscribers.
type Publisher interface {
	// Subscribe adds a new subscription for the requested topic.
	Subscribe(topic, endpoint, secret string) (string, error)
	// Unsubscribe removes the subscription with the given id.
	Unsubscribe(id string) error
	// ListSubscriptionsForTopic returns the subscriptions of the given topic,
	// including those registered for any topic.
	ListSubscriptionsForTopic(topic string) []Subscription
	// Publish sends the message to every subscriber of the topic.
	Publish(topic, message string) error
}
