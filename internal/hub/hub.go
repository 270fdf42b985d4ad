// Package hub fans history changes out to live watchers.
// It is transport-agnostic: subscribers register, receive events via Send,
// and the core publishes one event per change to the store.
package hub

import (
	"log/slog"
	"sync"

	"go.klb.dev/clipstream/internal/history"
)

// Kind names what happened to an entry.
type Kind string

const (
	KindAdded     Kind = "added"
	KindRefreshed Kind = "refreshed"
	KindUpdated   Kind = "updated"
	KindPinned    Kind = "pinned"
	KindUnpinned  Kind = "unpinned"
	KindDeleted   Kind = "deleted"
	KindCleanup   Kind = "cleanup"
)

// Event is a history change delivered to a subscriber. Entry is nil for
// deletions and cleanups.
type Event struct {
	Kind    Kind
	ID      int64
	Entry   *history.Entry
	Removed int64
}

// Subscriber is anything that can receive history events from the hub.
type Subscriber interface {
	ID() string
	// Kinds lists the event kinds the subscriber wants. Empty means all.
	Kinds() []Kind
	// Send delivers an event to the subscriber. Must be non-blocking.
	Send(Event)
}

// Hub routes history events to all registered subscribers.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]Subscriber
	latest *Event
}

// New returns an empty Hub.
func New() *Hub {
	return &Hub{subs: make(map[string]Subscriber)}
}

// Register adds a subscriber.
func (h *Hub) Register(s Subscriber) {
	h.mu.Lock()
	h.subs[s.ID()] = s
	total := len(h.subs)
	h.mu.Unlock()

	slog.Info("watcher registered", "watcher", s.ID(), "kinds", s.Kinds(), "total", total)
}

// Unregister removes a subscriber.
func (h *Hub) Unregister(s Subscriber) {
	h.mu.Lock()
	delete(h.subs, s.ID())
	total := len(h.subs)
	h.mu.Unlock()

	slog.Info("watcher unregistered", "watcher", s.ID(), "total", total)
}

// Publish records ev as the latest event and fans it out to every subscriber
// that accepts its kind.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	h.latest = &ev
	var targets []Subscriber
	for _, s := range h.subs {
		if accepts(s.Kinds(), ev.Kind) {
			targets = append(targets, s)
		}
	}
	h.mu.Unlock()

	for _, s := range targets {
		s.Send(ev)
	}
}

// Latest returns the most recently published event.
func (h *Hub) Latest() (Event, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latest == nil {
		return Event{}, false
	}
	return *h.latest, true
}

// Count returns the number of registered subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func accepts(kinds []Kind, k Kind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, want := range kinds {
		if want == k {
			return true
		}
	}
	return false
}

// ParseKinds converts strings to Kinds, skipping unknown names.
func ParseKinds(names []string) []Kind {
	var out []Kind
	for _, n := range names {
		switch k := Kind(n); k {
		case KindAdded, KindRefreshed, KindUpdated, KindPinned, KindUnpinned, KindDeleted, KindCleanup:
			out = append(out, k)
		}
	}
	return out
}
