// Package broadcast implements the in-process publish/subscribe hub that
// fans reservation lifecycle events out to connected admin observers.
package broadcast

import (
	"sync"

	"go.uber.org/zap"
)

// EventNewBooking is published when a guest creates a booking. Admin-created
// bookings publish nothing, so the dashboard does not notify the admin about
// their own actions.
const EventNewBooking = "new_booking"

// Event is one message delivered to every observer.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Subscriber is one observer handle. C is closed on Unsubscribe and must not
// be closed by the receiver.
type Subscriber struct {
	C chan Event
}

// Hub is an injected pub/sub component owning its observer set. Publish never
// blocks: an observer whose buffer is full has the event dropped and is
// pruned, so a dead SSE connection cannot stall the booking path.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}
	closed      bool
	log         *zap.Logger
}

const subscriberBuffer = 16

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]struct{}),
		log:         log.With(zap.String("component", "broadcast")),
	}
}

// Subscribe registers a new observer and returns its handle.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{C: make(chan Event, subscriberBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(sub.C)
		return sub
	}

	h.subscribers[sub] = struct{}{}
	h.log.Debug("Observer subscribed", zap.Int("observers", len(h.subscribers)))
	return sub
}

// Unsubscribe removes the observer and closes its channel. Safe to call more
// than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[sub]; !ok {
		return
	}

	delete(h.subscribers, sub)
	close(sub.C)
	h.log.Debug("Observer unsubscribed", zap.Int("observers", len(h.subscribers)))
}

// Publish delivers the event to every registered observer, best effort.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	for sub := range h.subscribers {
		select {
		case sub.C <- event:
		default:
			// Observer is not draining its buffer; drop it.
			delete(h.subscribers, sub)
			close(sub.C)
			h.log.Warn("Dropped slow observer",
				zap.String("event_type", event.Type),
				zap.Int("observers", len(h.subscribers)),
			)
		}
	}
}

// Close drains the hub on shutdown. Subsequent Publish calls are no-ops and
// subsequent Subscribe calls return an already-closed handle.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for sub := range h.subscribers {
		delete(h.subscribers, sub)
		close(sub.C)
	}
}
