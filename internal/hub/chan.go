package hub

import "log/slog"

// ChanSubscriber buffers events on a channel for a single watcher stream.
type ChanSubscriber struct {
	id    string
	kinds []Kind
	ch    chan Event
}

// NewChanSubscriber returns a subscriber with a buffer of size events.
func NewChanSubscriber(id string, kinds []Kind, size int) *ChanSubscriber {
	if size <= 0 {
		size = 16
	}
	return &ChanSubscriber{id: id, kinds: kinds, ch: make(chan Event, size)}
}

func (c *ChanSubscriber) ID() string    { return c.id }
func (c *ChanSubscriber) Kinds() []Kind { return c.kinds }

// Events returns the receive side of the buffer.
func (c *ChanSubscriber) Events() <-chan Event { return c.ch }

func (c *ChanSubscriber) Send(ev Event) {
	select {
	case c.ch <- ev:
	default:
		slog.Warn("watcher channel full, dropping event", "watcher", c.id, "kind", ev.Kind, "id", ev.ID)
	}
}
