package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/The-synnapse-Project/front-end-sub000/internal/core/events"
)

// Relay fans change events out to connected clients. Delivery is best
// effort: a subscriber that cannot keep up has events dropped rather than
// blocking the publisher, matching the backend push's own guarantees.
type Relay struct {
	mu     sync.RWMutex
	subs   map[int]chan events.BaseEvent
	next   int
	logger *slog.Logger
}

func NewRelay(bus *events.Bus, logger *slog.Logger) *Relay {
	r := &Relay{
		subs:   make(map[int]chan events.BaseEvent),
		logger: logger,
	}

	forward := func(ctx context.Context, ev events.Event) error {
		r.broadcast(ev)
		return nil
	}

	bus.Subscribe(events.EntryChanged, forward)
	bus.Subscribe(events.PersonChanged, forward)
	bus.Subscribe(events.PermissionChanged, forward)

	return r
}

// Subscribe registers a client. The returned cancel func must be called when
// the client disconnects.
func (r *Relay) Subscribe() (<-chan events.BaseEvent, func()) {
	ch := make(chan events.BaseEvent, 16)

	r.mu.Lock()
	id := r.next
	r.next++
	r.subs[id] = ch
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(ch)
		}
		r.mu.Unlock()
	}

	return ch, cancel
}

func (r *Relay) broadcast(ev events.Event) {
	wire := events.BaseEvent{
		ID:        ev.EventID(),
		Type:      ev.EventType(),
		Timestamp: ev.OccurredAt(),
	}
	if data, ok := ev.Payload().(map[string]interface{}); ok {
		wire.Data = data
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, ch := range r.subs {
		select {
		case ch <- wire:
		default:
			r.logger.Debug("dropping change event for slow subscriber",
				"subscriber", id,
				"event_type", wire.Type)
		}
	}
}
