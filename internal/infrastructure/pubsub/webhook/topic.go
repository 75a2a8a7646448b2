package webhookpubsub

import "github.com/stellrflow/anchord/internal/core/ports"

var topics = map[string]struct{}{
	ports.DepositCompletedTopic:    {},
	ports.DepositFailedTopic:       {},
	ports.DepositExpiredTopic:      {},
	ports.WithdrawalCompletedTopic: {},
	ports.WithdrawalFailedTopic:    {},
	ports.WithdrawalCancelledTopic: {},
	ports.AnyTopic:                 {},
}

// IsValidTopic returns whether hooks can subscribe to the given topic.
func IsValidTopic(topic string) bool {
	_, ok := topics[topic]
	return ok
}
