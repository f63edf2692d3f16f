// Package events provides the change feed: committed row changes pushed to
// live subscribers (one open UI tab each). The feed is strictly best-effort;
// correctness of the stores never depends on delivery. Publishers emit events
// only after their transaction has committed.
package events

import (
	"context"
	"sync"

	"github.com/MelvinKr/CutlyAI/pkg/logger"
)

// EventType mirrors the row operation that triggered the event.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event is a single committed row change.
type Event struct {
	Type     EventType `json:"eventType"`
	Table    string    `json:"table"`
	TenantID string    `json:"tenantId"`
	Row      any       `json:"row"`
}

// Publisher is the write side of the feed. Domain services publish through
// this interface and stay agnostic of how changes reach viewers.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// NopPublisher discards all events. Useful in tests and batch tools.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) {}

// subscriber holds one subscription's filter and delivery channel.
type subscriber struct {
	tenantID string
	tables   map[string]bool
	ch       chan Event
}

// Hub is an in-process fan-out of events to subscribers filtered by tenant
// and table. Slow subscribers are skipped, never blocked on.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]*subscriber
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]*subscriber)}
}

// Subscribe registers a subscriber for the given tenant and tables.
// An empty table list means all tables. The returned cancel function must be
// called to release the subscription; it closes the channel.
func (h *Hub) Subscribe(tenantID string, tables ...string) (<-chan Event, func()) {
	tableSet := make(map[string]bool, len(tables))
	for _, t := range tables {
		tableSet[t] = true
	}

	sub := &subscriber{
		tenantID: tenantID,
		tables:   tableSet,
		ch:       make(chan Event, 64),
	}

	h.mu.Lock()
	subID := h.nextID
	h.nextID++
	h.subs[subID] = sub
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if s, ok := h.subs[subID]; ok {
			delete(h.subs, subID)
			close(s.ch)
		}
		h.mu.Unlock()
	}

	return sub.ch, cancel
}

// Publish delivers the event to every matching subscriber without blocking.
// Events for subscribers with a full buffer are dropped.
func (h *Hub) Publish(ctx context.Context, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if sub.tenantID != event.TenantID {
			continue
		}
		if len(sub.tables) > 0 && !sub.tables[event.Table] {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			logger.Debug(ctx, "feed subscriber buffer full, event dropped",
				"table", event.Table,
				"event_type", event.Type,
			)
		}
	}
}

// SubscriberCount returns the number of active subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
