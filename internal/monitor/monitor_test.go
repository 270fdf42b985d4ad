package monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipstream/internal/content"
	"go.klb.dev/clipstream/internal/probe"
)

const testInterval = 5 * time.Millisecond

type fakeClipboard struct {
	mu    sync.Mutex
	text  *string
	image *content.Image
	reads int
}

func (f *fakeClipboard) Name() string { return "fake" }

func (f *fakeClipboard) ReadText() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.text == nil {
		return "", false
	}
	return *f.text, true
}

func (f *fakeClipboard) ReadImage() (*content.Image, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.image, f.image != nil
}

func (f *fakeClipboard) WriteText(text string) error {
	f.setText(text)
	return nil
}

func (f *fakeClipboard) WriteImage(img *content.Image) error {
	f.setImage(img)
	return nil
}

func (f *fakeClipboard) setText(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text, f.image = &s, nil
}

func (f *fakeClipboard) setImage(img *content.Image) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text, f.image = nil, img
}

func (f *fakeClipboard) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) handle(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func newTestMonitor(cb *fakeClipboard, p probe.Prober) *Monitor {
	m := New(cb, p, 8)
	m.interval = testInterval
	return m
}

func TestMonitorEmitsOncePerChange(t *testing.T) {
	cb := &fakeClipboard{}
	cb.setText("hello")
	rec := &recorder{}
	m := newTestMonitor(cb, probe.Func(func() (string, bool) { return "Notepad", true }))

	m.Start(rec.handle)
	defer m.Stop()

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, testInterval)
	// Let several more ticks observe the unchanged clipboard.
	start := cb.readCount()
	require.Eventually(t, func() bool { return cb.readCount() >= start+5 }, time.Second, testInterval)

	evs := rec.snapshot()
	require.Len(t, evs, 1)
	assert.Equal(t, "hello", evs[0].Text)
	require.NotNil(t, evs[0].SourceApp)
	assert.Equal(t, "Notepad", *evs[0].SourceApp)

	cb.setText("world")
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, testInterval)
	assert.Equal(t, "world", rec.snapshot()[1].Text)
}

func TestMonitorImageThenText(t *testing.T) {
	cb := &fakeClipboard{}
	cb.setText("same")
	rec := &recorder{}
	m := newTestMonitor(cb, nil)

	m.Start(rec.handle)
	defer m.Stop()
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, testInterval)

	cb.setImage(img(1, 2, 3))
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, testInterval)
	assert.True(t, rec.snapshot()[1].IsImage())
	assert.Nil(t, rec.snapshot()[1].SourceApp, "no probe result means no source app")

	cb.setText("same")
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 3 }, time.Second, testInterval)
	assert.Equal(t, "same", rec.snapshot()[2].Text)
}

func TestMonitorPrefersText(t *testing.T) {
	cb := &fakeClipboard{}
	s := "both"
	cb.text, cb.image = &s, img(1)
	rec := &recorder{}
	m := newTestMonitor(cb, nil)

	m.Start(rec.handle)
	defer m.Stop()
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, testInterval)
	assert.False(t, rec.snapshot()[0].IsImage())
}

func TestMonitorStartIsIdempotent(t *testing.T) {
	cb := &fakeClipboard{}
	cb.setText("x")
	rec := &recorder{}
	m := newTestMonitor(cb, nil)

	m.Start(rec.handle)
	m.Start(rec.handle)
	defer m.Stop()
	assert.True(t, m.Running())

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, testInterval)
	start := cb.readCount()
	require.Eventually(t, func() bool { return cb.readCount() >= start+5 }, time.Second, testInterval)
	assert.Len(t, rec.snapshot(), 1)
}

func TestMonitorStopAndRestart(t *testing.T) {
	cb := &fakeClipboard{}
	cb.setText("one")
	rec := &recorder{}
	m := newTestMonitor(cb, nil)

	m.Start(rec.handle)
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, testInterval)
	m.Stop()
	assert.False(t, m.Running())

	// Wait for the loop to exit, then change the clipboard.
	time.Sleep(4 * testInterval)
	cb.setText("two")
	time.Sleep(4 * testInterval)
	assert.Len(t, rec.snapshot(), 1)

	// The detector survives restarts: "two" is new, "one" is not re-emitted.
	m.Start(rec.handle)
	defer m.Stop()
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, testInterval)
	assert.Equal(t, "two", rec.snapshot()[1].Text)
}

func TestEnqueueDropsOldest(t *testing.T) {
	m := New(&fakeClipboard{}, nil, 2)
	r := &run{events: make(chan Event, 2), done: make(chan struct{})}

	m.enqueue(r, Event{Text: "a"})
	m.enqueue(r, Event{Text: "b"})
	m.enqueue(r, Event{Text: "c"})

	assert.Equal(t, uint64(1), m.Dropped())
	assert.Equal(t, "b", (<-r.events).Text)
	assert.Equal(t, "c", (<-r.events).Text)
}

func TestNewDefaults(t *testing.T) {
	m := New(&fakeClipboard{}, nil, 0)
	assert.Equal(t, DefaultQueueSize, m.queueSize)
	assert.Equal(t, PollInterval, m.interval)
	assert.False(t, m.Running())
}
