// Package bus is the in-process publish/subscribe layer with per-tenant
// filtering. Filtering happens at publish time against the identity attached
// to each subscription, so an event for one team can never reach another
// team's connection.
package bus

import (
	"sync"

	"taskhub/internal/taskapi/domain"
	"taskhub/internal/taskapi/metrics"
)

// SubscriberContext is the identity a subscription was opened with. It is
// only ever a filter key, never a source of mutation authority.
type SubscriberContext struct {
	UserID string
	TeamID string
}

// Authenticated reports whether the context carries a tenant. A tenant-less
// subscription stays open but never receives any events.
func (sc SubscriberContext) Authenticated() bool {
	return sc.TeamID != ""
}

type subscription struct {
	id    uint64
	topic domain.Topic
	sub   SubscriberContext
	ch    chan domain.Envelope
}

// Bus fans published envelopes out to matching live subscriptions. Delivery
// is in-memory with a bounded buffer per subscription; events published while
// a subscriber's buffer is full are dropped for that subscriber. There is no
// replay: events published while disconnected are lost.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscription
	nextID uint64
	buffer int
}

// DefaultBuffer is the per-subscription channel capacity.
const DefaultBuffer = 16

// New creates a bus. buffer <= 0 selects DefaultBuffer.
func New(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bus{
		subs:   make(map[uint64]*subscription),
		buffer: buffer,
	}
}

// Subscribe registers a subscription for topic under the given identity.
// The returned cancel func deregisters the subscription and closes the
// channel; it is safe to call more than once. Callers must cancel when the
// owning connection closes so no dead subscriber leaks.
func (b *Bus) Subscribe(topic domain.Topic, sc SubscriberContext) (<-chan domain.Envelope, func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	sub := &subscription{
		id:    id,
		topic: topic,
		sub:   sc,
		ch:    make(chan domain.Envelope, b.buffer),
	}
	b.subs[id] = sub
	b.mu.Unlock()

	metrics.ActiveSubscriptions.Inc()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; !ok {
			return
		}
		delete(b.subs, id)
		close(sub.ch)
		metrics.ActiveSubscriptions.Dec()
	}
	return sub.ch, cancel
}

// Publish fans the envelope out to every live subscription whose topic
// matches and whose tenant equals the envelope's tenant. Per-subscriber
// ordering follows publish order. Returns the number of deliveries.
func (b *Bus) Publish(env domain.Envelope) int {
	topic := env.Type.Topic()

	b.mu.RLock()
	delivered, dropped := 0, 0
	for _, sub := range b.subs {
		if sub.topic != topic {
			continue
		}
		if !sub.sub.Authenticated() || sub.sub.TeamID != env.TeamID {
			continue
		}
		select {
		case sub.ch <- env:
			delivered++
		default:
			dropped++
		}
	}
	b.mu.RUnlock()

	metrics.RecordPublish(string(topic), delivered, dropped)
	return delivered
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
