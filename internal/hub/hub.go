package hub

import (
	"context"
	"log/slog"
)

const sendBuffer = 16

// Subscriber represents a single client (one open browser tab) that receives
// rendered HTML fragments from the Hub.
type Subscriber struct {
	// UserID is the customer this subscriber belongs to.
	UserID string
	// Send is a buffered channel of outbound messages. The Hub sends messages
	// to this channel, and the client is responsible for reading from it.
	// The Hub closes it on unregistration.
	Send chan []byte
}

// NewSubscriber creates a subscriber for userID with a buffered Send channel.
func NewSubscriber(userID string) *Subscriber {
	return &Subscriber{UserID: userID, Send: make(chan []byte, sendBuffer)}
}

// Direct is a message addressed to every subscriber of one customer.
type Direct struct {
	UserID  string
	Payload []byte
}

// Hub maintains the set of active subscribers, grouped by customer, and fans
// messages out to them. All state is owned by the Run goroutine.
type Hub struct {
	subscribers map[string]map[*Subscriber]struct{}

	// Broadcast delivers a message to every subscriber.
	Broadcast chan []byte

	// Direct delivers a message to the subscribers of one customer.
	Direct chan Direct

	// Register is a channel for new subscribers to register with the hub.
	Register chan *Subscriber

	// Unregister is a channel for subscribers to unregister from the hub.
	Unregister chan *Subscriber

	count chan chan int
}

// NewHub creates and returns a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		Broadcast:   make(chan []byte),
		Direct:      make(chan Direct),
		Register:    make(chan *Subscriber),
		Unregister:  make(chan *Subscriber),
		count:       make(chan chan int),
		subscribers: make(map[string]map[*Subscriber]struct{}),
	}
}

// Run starts the Hub's message processing loop. It must be run in a separate
// goroutine and returns when ctx is cancelled, closing every subscriber.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for _, subs := range h.subscribers {
				for s := range subs {
					close(s.Send)
				}
			}
			h.subscribers = make(map[string]map[*Subscriber]struct{})
			return

		case s := <-h.Register:
			subs, ok := h.subscribers[s.UserID]
			if !ok {
				subs = make(map[*Subscriber]struct{})
				h.subscribers[s.UserID] = subs
			}
			subs[s] = struct{}{}
			slog.Debug("New subscriber registered", "user_id", s.UserID, "user_subscribers", len(subs))

		case s := <-h.Unregister:
			h.remove(s)

		case d := <-h.Direct:
			for s := range h.subscribers[d.UserID] {
				h.send(s, d.Payload)
			}

		case message := <-h.Broadcast:
			for _, subs := range h.subscribers {
				for s := range subs {
					h.send(s, message)
				}
			}

		case reply := <-h.count:
			n := 0
			for _, subs := range h.subscribers {
				n += len(subs)
			}
			reply <- n
		}
	}
}

// send is a non-blocking send. A full buffer means the client is lagging or
// gone, so it is dropped.
func (h *Hub) send(s *Subscriber, message []byte) {
	select {
	case s.Send <- message:
	default:
		slog.Warn("Unregistering slow subscriber", "user_id", s.UserID)
		h.remove(s)
	}
}

func (h *Hub) remove(s *Subscriber) {
	subs, ok := h.subscribers[s.UserID]
	if !ok {
		return
	}
	if _, ok := subs[s]; !ok {
		return
	}
	delete(subs, s)
	close(s.Send)
	if len(subs) == 0 {
		delete(h.subscribers, s.UserID)
	}
	slog.Debug("Subscriber unregistered", "user_id", s.UserID)
}

// SendTo queues payload for every subscriber of userID. It gives up when ctx
// is done, e.g. because the hub has stopped.
func (h *Hub) SendTo(ctx context.Context, userID string, payload []byte) {
	select {
	case h.Direct <- Direct{UserID: userID, Payload: payload}:
	case <-ctx.Done():
	}
}

// Count returns the number of registered subscribers.
func (h *Hub) Count(ctx context.Context) int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-ctx.Done():
		return 0
	}
}
