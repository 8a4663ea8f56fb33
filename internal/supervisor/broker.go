package supervisor

import (
	"sync"

	"github.com/croftbw/watchmux/internal/model"
)

// subscriberBufferSize is the channel buffer for each event subscriber.
// Events are dropped for a subscriber that falls this far behind.
const subscriberBufferSize = 16

// EventBroker fans out expiry events to SSE subscribers.
// It is safe for concurrent use.
type EventBroker struct {
	mu     sync.Mutex
	subs   map[int]chan model.ExpiryEvent
	nextID int
	closed bool
}

// NewEventBroker creates a new event broker.
func NewEventBroker() *EventBroker {
	return &EventBroker{
		subs: make(map[int]chan model.ExpiryEvent),
	}
}

// Subscribe returns a channel that receives expiry events and an
// unsubscribe function. If the broker has already been closed, the returned
// channel is closed immediately.
func (b *EventBroker) Subscribe() (<-chan model.ExpiryEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan model.ExpiryEvent, subscriberBufferSize)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

// Publish delivers an event to all subscribers. Events are dropped for
// subscribers whose buffers are full so that the supervisory loop never
// blocks on a slow client.
func (b *EventBroker) Publish(e model.ExpiryEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Close shuts the broker down. All subscriber channels are closed and
// future Subscribe calls return a closed channel.
func (b *EventBroker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}
