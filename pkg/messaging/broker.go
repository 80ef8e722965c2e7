package messaging

import "context"

// Event is a domain event published after a state change commits.
type Event struct {
	Type    string `json:"type"`
	Payload []byte `json:"payload"`
}

// Broker publishes domain events to interested consumers. Publishing is
// best-effort; callers must not fail the request on a broker error.
type Broker interface {
	Publish(ctx context.Context, topic string, event *Event) error
	Close() error
}
