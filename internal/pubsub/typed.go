package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Event wraps a topic name and provides type-safe publishing and subscribing
// for payloads of type T.
type Event[T any] struct {
	topicName   string
	description string
}

var (
	catalogMu sync.Mutex
	catalog   = map[string]string{}
)

// NewEvent declares a typed event. Events are usually package-level
// variables; declaring the same topic twice panics.
func NewEvent[T any](name, description string) Event[T] {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	if _, dup := catalog[name]; dup {
		panic(fmt.Sprintf("pubsub: event %q declared twice", name))
	}
	catalog[name] = description
	return Event[T]{topicName: name, description: description}
}

// Name returns the topic name.
func (e Event[T]) Name() string {
	return e.topicName
}

// Description returns the human-readable description given at declaration.
func (e Event[T]) Description() string {
	return e.description
}

// Topics lists every declared event topic with its description, sorted by name.
func Topics() [][2]string {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	out := make([][2]string, 0, len(catalog))
	for name, desc := range catalog {
		out = append(out, [2]string{name, desc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// Publish sends a typed event about userID. The compiler ensures 'payload' matches 'T'.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], userID string, payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.Publish(ctx, Message{
		Topic:   event.Name(),
		UserID:  userID,
		Payload: data,
	})
}

// Subscribe decodes every message of event into T before calling handler.
// Undecodable payloads are reported as handler errors.
func Subscribe[T any](ctx context.Context, s Subscriber, event Event[T], handler func(ctx context.Context, userID string, payload T) error) error {
	return s.Subscribe(ctx, event.Name(), func(ctx context.Context, msg Message) error {
		var payload T
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("decode %s: %w", event.Name(), err)
		}
		return handler(ctx, msg.UserID, payload)
	})
}
