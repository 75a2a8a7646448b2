package webhookpubsub

import "errors"

var (
	// ErrInvalidTopic is returned whenever attempting to subscribe or publish
	// to an unknown topic.
	ErrInvalidTopic = errors.New("topic is invalid")
	// ErrInvalidEndpoint is returned if the webhook endpoint is not a valid
	// URI.
	ErrInvalidEndpoint = errors.New("webhook endpoint must be a valid URI")
	// ErrInvalidHookSpec is returned if a webhook configuration string can't
	// be parsed.
	ErrInvalidHookSpec = errors.New(
		"webhook must be specified as <topic>@<endpoint>",
	)
)
