package realtime

import (
	"context"
	"sync"

	"github.com/hashicorp/go-set/v2"
)

// Broadcaster delivers a named event payload to one subscriber group.
// Transport adapters (SignalR-style gateways, websockets) implement this;
// Hub is the in-process implementation.
type Broadcaster interface {
	Broadcast(ctx context.Context, group, eventName string, payload []byte) error
}

// Message is one delivered event as seen by a subscriber.
type Message struct {
	Group     string
	EventName string
	Payload   []byte
}

// Hub fans broadcasts out to in-process subscribers. Delivery within one
// group follows publish order; a subscriber whose buffer is full loses the
// message rather than stalling the publisher.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*Subscription
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]*Subscription)}
}

// Subscription is one subscriber's registration. Messages arrive on C until
// Close.
type Subscription struct {
	hub    *Hub
	id     int
	groups *set.Set[string]
	ch     chan Message
	once   sync.Once
}

// Subscribe registers a subscriber for the named groups. With no groups the
// subscriber receives every broadcast, which is what the event tail uses.
func (h *Hub) Subscribe(buffer int, groups ...string) *Subscription {
	if buffer < 1 {
		buffer = 1
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		hub:    h,
		id:     h.nextID,
		groups: set.From(groups),
		ch:     make(chan Message, buffer),
	}
	h.subs[sub.id] = sub
	return sub
}

// C returns the subscriber's message channel. It is closed by Close.
func (s *Subscription) C() <-chan Message {
	return s.ch
}

// Close removes the subscription and closes its channel. Safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s.id)
		s.hub.mu.Unlock()
		close(s.ch)
	})
}

// Broadcast delivers the payload to every subscriber of group. It never
// blocks and never fails.
func (h *Hub) Broadcast(_ context.Context, group, eventName string, payload []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	msg := Message{Group: group, EventName: eventName, Payload: payload}
	for _, sub := range h.subs {
		if !sub.groups.Empty() && !sub.groups.Contains(group) {
			continue
		}
		select {
		case sub.ch <- msg:
		default:
		}
	}
	return nil
}

// SubscriberCount reports how many subscribers would currently receive a
// broadcast to group.
func (h *Hub) SubscriberCount(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, sub := range h.subs {
		if sub.groups.Empty() || sub.groups.Contains(group) {
			n++
		}
	}
	return n
}
