// Package monitor watches the system clipboard and reports changes.
//
// A Monitor polls its clipboard backend on a fixed interval (the clipboard
// offers no portable change notification), runs each read through a Detector,
// and queues detected changes on a bounded channel. A dispatcher goroutine
// drains the queue and invokes the handler, so a slow handler never stalls
// clipboard polling. When the queue is full the oldest change is dropped.
package monitor

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.klb.dev/clipstream/internal/clip"
	"go.klb.dev/clipstream/internal/content"
	"go.klb.dev/clipstream/internal/probe"
)

const (
	// PollInterval is the fixed delay between clipboard reads.
	PollInterval = 300 * time.Millisecond

	// DefaultQueueSize is the change queue capacity used when none is given.
	DefaultQueueSize = 64
)

// Handler receives detected changes on the monitor's dispatcher goroutine.
type Handler func(Event)

// run is one Start..Stop cycle.
type run struct {
	stop   atomic.Bool
	events chan Event
	done   chan struct{} // closed when the poll loop has exited
}

// Monitor polls a clipboard backend for changes.
type Monitor struct {
	backend   clip.Backend
	prober    probe.Prober
	interval  time.Duration
	queueSize int

	// detector is only touched by the poll goroutine of the active run;
	// Start waits for the previous loop to exit before starting another.
	detector Detector
	dropped  atomic.Uint64

	mu   sync.Mutex
	cur  *run
	last *run
}

// New returns a stopped Monitor. queueSize <= 0 selects DefaultQueueSize.
func New(backend clip.Backend, prober probe.Prober, queueSize int) *Monitor {
	if prober == nil {
		prober = probe.None
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Monitor{
		backend:   backend,
		prober:    prober,
		interval:  PollInterval,
		queueSize: queueSize,
	}
}

// Start begins polling and delivering changes to h. It is a no-op if the
// monitor is already running.
func (m *Monitor) Start(h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur != nil {
		return
	}
	if m.last != nil {
		<-m.last.done
		m.last = nil
	}

	r := &run{
		events: make(chan Event, m.queueSize),
		done:   make(chan struct{}),
	}
	m.cur = r
	go m.poll(r)
	go dispatch(r, h)

	slog.Info("clipboard monitor started",
		"backend", m.backend.Name(),
		"interval", m.interval,
		"queue", m.queueSize,
	)
}

// Stop asks the polling loop to exit. The loop notices at the top of its next
// iteration, so stopping takes up to one poll interval. Changes already queued
// are still delivered.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil {
		return
	}
	m.cur.stop.Store(true)
	m.last = m.cur
	m.cur = nil
	slog.Info("clipboard monitor stopping")
}

// Running reports whether the monitor has been started and not stopped.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur != nil
}

// Dropped returns how many changes were discarded because the queue was full.
func (m *Monitor) Dropped() uint64 { return m.dropped.Load() }

func (m *Monitor) poll(r *run) {
	defer close(r.done)
	defer close(r.events)

	t := time.NewTicker(m.interval)
	defer t.Stop()
	for {
		if r.stop.Load() {
			return
		}
		if ev, ok := m.check(); ok {
			m.enqueue(r, ev)
		}
		<-t.C
	}
}

// check performs one clipboard read. Text wins over an image when the
// platform reports both.
func (m *Monitor) check() (Event, bool) {
	var snap content.Snapshot
	if text, ok := m.backend.ReadText(); ok {
		snap = content.TextSnapshot(text)
	} else if img, ok := m.backend.ReadImage(); ok {
		snap = content.ImageSnapshot(img)
	} else {
		return Event{}, false
	}

	ev, changed := m.detector.Observe(snap)
	if !changed {
		return Event{}, false
	}
	if name, ok := m.prober.ForegroundApp(); ok {
		ev.SourceApp = &name
	}
	return ev, true
}

// enqueue never blocks: when the queue is full the oldest change is evicted.
func (m *Monitor) enqueue(r *run, ev Event) {
	for {
		select {
		case r.events <- ev:
			return
		default:
		}
		select {
		case old := <-r.events:
			m.dropped.Add(1)
			slog.Warn("change queue full, dropping oldest", "image", old.IsImage())
		default:
		}
	}
}

func dispatch(r *run, h Handler) {
	for ev := range r.events {
		h(ev)
	}
}
