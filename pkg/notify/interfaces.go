package notify

import "context"

// Publisher sends events to a downstream sink (webhook, SQS, SNS, Pub/Sub).
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
