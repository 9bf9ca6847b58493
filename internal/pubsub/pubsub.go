// Package pubsub carries storefront events between modules. The auth
// handlers announce sign-ins, the favorites store announces toggles and the
// live notifications module turns both into notices for the customer's open
// tabs. Neither side imports the other.
package pubsub

import (
	"context"
)

// Message is one event on the bus.
type Message struct {
	// Topic names the event, such as "favorites.toggled".
	Topic string
	// UserID is the customer the event belongs to. Live notices are routed by it.
	UserID string
	// Payload is the event body as JSON.
	Payload []byte
	// Metadata holds request-scoped values. Trace context travels here too.
	Metadata map[string]string
}

// Handler processes one delivered event. A returned error is logged and the
// event is dropped.
type Handler func(ctx context.Context, msg Message) error

// Publisher is what handlers depend on to announce customer activity.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber is what background consumers depend on.
type Subscriber interface {
	// Subscribe delivers events of topic to handler until ctx ends or the
	// subscriber closes. It does not block.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}
