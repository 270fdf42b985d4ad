// Package core ties the clipboard monitor to the history store and exposes
// the operations the transports serve.
//
// A Core is constructed once by the daemon and passed to the gRPC and HTTP
// servers; there is no package-level state.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.klb.dev/clipstream/internal/clip"
	"go.klb.dev/clipstream/internal/content"
	"go.klb.dev/clipstream/internal/history"
	"go.klb.dev/clipstream/internal/hub"
	"go.klb.dev/clipstream/internal/monitor"
	"go.klb.dev/clipstream/internal/probe"
)

// DefaultPasteDelay is how long Paste waits after writing the clipboard
// before triggering the keystroke, giving the OS time to publish the write.
const DefaultPasteDelay = 50 * time.Millisecond

// KeystrokeInjector synthesises the platform paste shortcut in the
// foreground application.
type KeystrokeInjector interface {
	InjectPaste(ctx context.Context) error
}

// Options configures New. Store and Backend are required.
type Options struct {
	Store    *history.Store
	Backend  clip.Backend
	Prober   probe.Prober
	Injector KeystrokeInjector
	Hub      *hub.Hub

	// QueueSize bounds the monitor's change queue. Zero selects the default.
	QueueSize int
	// PasteDelay overrides DefaultPasteDelay when positive.
	PasteDelay time.Duration
}

// Core is the clipboard history engine.
type Core struct {
	store    *history.Store
	backend  clip.Backend
	injector KeystrokeInjector
	hub      *hub.Hub
	monitor  *monitor.Monitor

	pasteDelay time.Duration
}

// New returns a Core with a stopped monitor.
func New(opts Options) *Core {
	h := opts.Hub
	if h == nil {
		h = hub.New()
	}
	delay := opts.PasteDelay
	if delay <= 0 {
		delay = DefaultPasteDelay
	}
	return &Core{
		store:      opts.Store,
		backend:    opts.Backend,
		injector:   opts.Injector,
		hub:        h,
		monitor:    monitor.New(opts.Backend, opts.Prober, opts.QueueSize),
		pasteDelay: delay,
	}
}

// Hub returns the event broker watchers subscribe to.
func (c *Core) Hub() *hub.Hub { return c.hub }

// StartMonitor begins recording clipboard changes. It is a no-op when the
// monitor is already running.
func (c *Core) StartMonitor() {
	c.monitor.Start(c.record)
}

// StopMonitor stops recording clipboard changes.
func (c *Core) StopMonitor() {
	c.monitor.Stop()
}

// MonitorRunning reports whether clipboard changes are being recorded.
func (c *Core) MonitorRunning() bool { return c.monitor.Running() }

// record is the monitor handler. Failures are logged and the change dropped.
func (c *Core) record(ev monitor.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := c.InsertObserved(ctx, ev); err != nil {
		slog.Error("record clipboard change", "err", err, "image", ev.IsImage())
	}
}

// InsertObserved stores one detected clipboard change. It returns 0 without
// error when the change came from an ignored application.
func (c *Core) InsertObserved(ctx context.Context, ev monitor.Event) (int64, error) {
	if ev.SourceApp != nil {
		ignored, err := c.isIgnored(ctx, *ev.SourceApp)
		if err != nil {
			return 0, err
		}
		if ignored {
			slog.Debug("skipping change from ignored app", "source", *ev.SourceApp)
			return 0, nil
		}
	}

	text := ev.Text
	var image []byte
	if ev.IsImage() {
		text = content.Placeholder(ev.Image, ev.Fingerprint)
		image = ev.Image.PNG
	}

	id, created, err := c.store.Record(ctx, text, ev.SourceApp, image)
	if err != nil {
		return 0, err
	}
	kind := hub.KindRefreshed
	if created {
		kind = hub.KindAdded
	}
	c.publishEntry(ctx, kind, id)
	return id, nil
}

// isIgnored matches the app against the ignore list by case-insensitive
// substring, reading the list on every call so edits apply immediately.
func (c *Core) isIgnored(ctx context.Context, app string) (bool, error) {
	names, err := c.store.IgnoredApps(ctx)
	if err != nil {
		return false, err
	}
	app = strings.ToLower(app)
	for _, n := range names {
		if strings.Contains(app, strings.ToLower(n)) {
			return true, nil
		}
	}
	return false, nil
}

// Search returns matching entries, pinned first.
func (c *Core) Search(ctx context.Context, query string, limit int) ([]history.Entry, error) {
	return c.store.Search(ctx, query, limit)
}

// Get returns one entry including its image payload.
func (c *Core) Get(ctx context.Context, id int64) (*history.Entry, error) {
	return c.store.Get(ctx, id)
}

// TogglePin flips the pinned flag and returns the new state.
func (c *Core) TogglePin(ctx context.Context, id int64) (bool, error) {
	pinned, err := c.store.TogglePin(ctx, id)
	if err != nil {
		return false, err
	}
	kind := hub.KindUnpinned
	if pinned {
		kind = hub.KindPinned
	}
	c.publishEntry(ctx, kind, id)
	return pinned, nil
}

// Delete removes an entry and reports whether it existed.
func (c *Core) Delete(ctx context.Context, id int64) (bool, error) {
	removed, err := c.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		c.publish(hub.Event{Kind: hub.KindDeleted, ID: id})
	}
	return removed, nil
}

// UpdateContent replaces an entry's text.
func (c *Core) UpdateContent(ctx context.Context, id int64, text string) error {
	if err := c.store.UpdateContent(ctx, id, text); err != nil {
		return err
	}
	c.publishEntry(ctx, hub.KindUpdated, id)
	return nil
}

// Cleanup applies the retention policy and returns the number of entries
// removed.
func (c *Core) Cleanup(ctx context.Context, maxAgeDays, maxEntries int) (int64, error) {
	removed, err := c.store.Cleanup(ctx, maxAgeDays, maxEntries)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		c.publish(hub.Event{Kind: hub.KindCleanup, Removed: removed})
	}
	return removed, nil
}

// Copy writes an entry to the system clipboard, formatted as requested.
// Image entries are written back as images and ignore the format.
func (c *Core) Copy(ctx context.Context, id int64, format TextFormat) error {
	e, err := c.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if e.ContentType == content.KindImage && len(e.Image) > 0 {
		img, err := content.DecodeImage(e.Image)
		if err != nil {
			return fmt.Errorf("entry %d: %w", id, err)
		}
		if err := c.backend.WriteImage(img); err != nil {
			return fmt.Errorf("write clipboard: %w", err)
		}
		return nil
	}
	if err := c.backend.WriteText(Format(e.Content, format)); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

// Paste copies an entry and then asks the keystroke injector to paste it
// into the foreground application. Without an injector it behaves like Copy.
func (c *Core) Paste(ctx context.Context, id int64, format TextFormat) error {
	if err := c.Copy(ctx, id, format); err != nil {
		return err
	}
	if c.injector == nil {
		slog.Debug("no keystroke injector, entry copied only", "id", id)
		return nil
	}

	t := time.NewTimer(c.pasteDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}

	if err := c.injector.InjectPaste(ctx); err != nil {
		return fmt.Errorf("inject paste: %w", err)
	}
	return nil
}

// IgnoredApps lists the ignored application names.
func (c *Core) IgnoredApps(ctx context.Context) ([]string, error) {
	return c.store.IgnoredApps(ctx)
}

// AddIgnoredApp adds an application to the ignore list.
func (c *Core) AddIgnoredApp(ctx context.Context, name string) error {
	return c.store.AddIgnoredApp(ctx, name)
}

// RemoveIgnoredApp removes an application from the ignore list.
func (c *Core) RemoveIgnoredApp(ctx context.Context, name string) (bool, error) {
	return c.store.RemoveIgnoredApp(ctx, name)
}

// Setting returns a stored setting.
func (c *Core) Setting(ctx context.Context, key string) (string, bool, error) {
	return c.store.Setting(ctx, key)
}

// SetSetting stores a setting.
func (c *Core) SetSetting(ctx context.Context, key, value string) error {
	return c.store.SetSetting(ctx, key, value)
}

// Subscribe registers a watcher for history events.
func (c *Core) Subscribe(s hub.Subscriber) { c.hub.Register(s) }

// Unsubscribe removes a watcher.
func (c *Core) Unsubscribe(s hub.Subscriber) { c.hub.Unregister(s) }

// Status is a point-in-time view of the engine.
type Status struct {
	MonitorRunning bool   `json:"monitor_running"`
	Backend        string `json:"backend"`
	Entries        int    `json:"entries"`
	Database       string `json:"database"`
	Dropped        uint64 `json:"dropped_changes"`
	Watchers       int    `json:"watchers"`
	// LastEvent and LastEventID describe the most recent history change
	// since the daemon started. Both are zero before the first one.
	LastEvent   hub.Kind `json:"last_event,omitempty"`
	LastEventID int64    `json:"last_event_id,omitempty"`
}

// Status reports monitor and store state.
func (c *Core) Status(ctx context.Context) (Status, error) {
	n, err := c.store.Count(ctx)
	if err != nil {
		return Status{}, err
	}
	st := Status{
		MonitorRunning: c.monitor.Running(),
		Backend:        c.backend.Name(),
		Entries:        n,
		Database:       c.store.Path(),
		Dropped:        c.monitor.Dropped(),
		Watchers:       c.hub.Count(),
	}
	if ev, ok := c.hub.Latest(); ok {
		st.LastEvent, st.LastEventID = ev.Kind, ev.ID
	}
	return st, nil
}

func (c *Core) publishEntry(ctx context.Context, kind hub.Kind, id int64) {
	e, err := c.store.Get(ctx, id)
	if err != nil {
		slog.Warn("load entry for event", "id", id, "err", err)
		c.publish(hub.Event{Kind: kind, ID: id})
		return
	}
	// Watchers get metadata only; the payload is one Get away.
	e.Image = nil
	c.publish(hub.Event{Kind: kind, ID: id, Entry: e})
}

func (c *Core) publish(ev hub.Event) {
	hub.LogEvent(ev)
	c.hub.Publish(ev)
}
