package core

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipstream/internal/clip"
	"go.klb.dev/clipstream/internal/content"
	"go.klb.dev/clipstream/internal/history"
	"go.klb.dev/clipstream/internal/hub"
	"go.klb.dev/clipstream/internal/monitor"
	"go.klb.dev/clipstream/internal/probe"
)

type fakeInjector struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeInjector) InjectPaste(context.Context) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return nil
}

func (f *fakeInjector) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type testEnv struct {
	core     *Core
	store    *history.Store
	clip     *clip.Memory
	injector *fakeInjector
	events   *hub.ChanSubscriber
}

func newTestCore(t *testing.T, app string) *testEnv {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	var prober probe.Prober = probe.None
	if app != "" {
		prober = probe.Func(func() (string, bool) { return app, true })
	}
	env := &testEnv{
		store:    store,
		clip:     clip.NewMemory(),
		injector: &fakeInjector{},
		events:   hub.NewChanSubscriber("test", nil, 32),
	}
	env.core = New(Options{
		Store:      store,
		Backend:    env.clip,
		Prober:     prober,
		Injector:   env.injector,
		PasteDelay: time.Millisecond,
	})
	env.core.Subscribe(env.events)
	t.Cleanup(env.core.StopMonitor)
	return env
}

func (e *testEnv) nextEvent(t *testing.T) hub.Event {
	t.Helper()
	select {
	case ev := <-e.events.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event published")
		return hub.Event{}
	}
}

func strPtr(s string) *string { return &s }

func testImage(t *testing.T, w, h int) *content.Image {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	img, err := content.DecodeImage(buf.Bytes())
	require.NoError(t, err)
	return img
}

func TestInsertObservedPublishes(t *testing.T) {
	env := newTestCore(t, "")
	ctx := context.Background()

	id, err := env.core.InsertObserved(ctx, monitor.Event{Text: "hello world"})
	require.NoError(t, err)
	ev := env.nextEvent(t)
	assert.Equal(t, hub.KindAdded, ev.Kind)
	require.NotNil(t, ev.Entry)
	assert.Equal(t, "hello world", ev.Entry.Content)

	again, err := env.core.InsertObserved(ctx, monitor.Event{Text: "hello world", SourceApp: strPtr("Notepad")})
	require.NoError(t, err)
	assert.Equal(t, id, again)
	ev = env.nextEvent(t)
	assert.Equal(t, hub.KindRefreshed, ev.Kind)
	require.NotNil(t, ev.Entry.SourceApp)
	assert.Equal(t, "Notepad", *ev.Entry.SourceApp)
}

func TestInsertObservedSkipsIgnoredApps(t *testing.T) {
	env := newTestCore(t, "")
	ctx := context.Background()
	require.NoError(t, env.core.AddIgnoredApp(ctx, "keepass"))

	id, err := env.core.InsertObserved(ctx, monitor.Event{Text: "s3cret", SourceApp: strPtr("KeePassXC.exe")})
	require.NoError(t, err)
	assert.Zero(t, id)

	entries, err := env.core.Search(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Removal applies to the very next change.
	removed, err := env.core.RemoveIgnoredApp(ctx, "KEEPASS")
	require.NoError(t, err)
	assert.True(t, removed)
	id, err = env.core.InsertObserved(ctx, monitor.Event{Text: "s3cret", SourceApp: strPtr("KeePassXC.exe")})
	require.NoError(t, err)
	assert.NotZero(t, id)
}

func TestInsertObservedImage(t *testing.T) {
	env := newTestCore(t, "")
	ctx := context.Background()
	img := testImage(t, 4, 3)

	id, err := env.core.InsertObserved(ctx, monitor.Event{Image: img, Fingerprint: 0xabcdef0012345678})
	require.NoError(t, err)

	e, err := env.core.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "[Image 4x3 #12345678]", e.Content)
	assert.Equal(t, content.KindImage, e.ContentType)
	assert.Equal(t, img.PNG, e.Image)

	ev := env.nextEvent(t)
	assert.Nil(t, ev.Entry.Image)

	require.NoError(t, env.core.Copy(ctx, id, FormatUpper))
	got, ok := env.clip.ReadImage()
	require.True(t, ok)
	assert.Equal(t, img.PNG, got.PNG)
}

func TestCopyFormats(t *testing.T) {
	env := newTestCore(t, "")
	ctx := context.Background()

	id, err := env.core.InsertObserved(ctx, monitor.Event{Text: "hello   wORLD"})
	require.NoError(t, err)

	require.NoError(t, env.core.Copy(ctx, id, FormatTitle))
	text, ok := env.clip.ReadText()
	require.True(t, ok)
	assert.Equal(t, "Hello World", text)

	require.NoError(t, env.core.Copy(ctx, id, FormatPlain))
	text, _ = env.clip.ReadText()
	assert.Equal(t, "hello   wORLD", text)

	assert.ErrorIs(t, env.core.Copy(ctx, 999, FormatPlain), history.ErrNotFound)
}

func TestPasteInjectsAfterCopy(t *testing.T) {
	env := newTestCore(t, "")
	ctx := context.Background()

	id, err := env.core.InsertObserved(ctx, monitor.Event{Text: "paste me"})
	require.NoError(t, err)

	require.NoError(t, env.core.Paste(ctx, id, FormatUpper))
	text, _ := env.clip.ReadText()
	assert.Equal(t, "PASTE ME", text)
	assert.Equal(t, 1, env.injector.Calls())
}

func TestPasteHonoursCancellation(t *testing.T) {
	env := newTestCore(t, "")
	env.core.pasteDelay = time.Hour
	id, err := env.core.InsertObserved(context.Background(), monitor.Event{Text: "late"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, env.core.Paste(ctx, id, FormatPlain), context.DeadlineExceeded)
	assert.Zero(t, env.injector.Calls())
}

func TestPasteWithoutInjectorCopies(t *testing.T) {
	env := newTestCore(t, "")
	env.core.injector = nil
	id, err := env.core.InsertObserved(context.Background(), monitor.Event{Text: "just copy"})
	require.NoError(t, err)

	require.NoError(t, env.core.Paste(context.Background(), id, FormatPlain))
	text, _ := env.clip.ReadText()
	assert.Equal(t, "just copy", text)
}

func TestMutationsPublish(t *testing.T) {
	env := newTestCore(t, "")
	ctx := context.Background()

	id, err := env.core.InsertObserved(ctx, monitor.Event{Text: "draft"})
	require.NoError(t, err)
	env.nextEvent(t)

	pinned, err := env.core.TogglePin(ctx, id)
	require.NoError(t, err)
	assert.True(t, pinned)
	assert.Equal(t, hub.KindPinned, env.nextEvent(t).Kind)

	_, err = env.core.TogglePin(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, hub.KindUnpinned, env.nextEvent(t).Kind)

	require.NoError(t, env.core.UpdateContent(ctx, id, "final"))
	ev := env.nextEvent(t)
	assert.Equal(t, hub.KindUpdated, ev.Kind)
	assert.Equal(t, "final", ev.Entry.Content)

	removed, err := env.core.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, removed)
	ev = env.nextEvent(t)
	assert.Equal(t, hub.KindDeleted, ev.Kind)
	assert.Equal(t, id, ev.ID)

	removed, err = env.core.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Empty(t, env.events.Events())

	_, err = env.core.TogglePin(ctx, id)
	assert.ErrorIs(t, err, history.ErrNotFound)
}

func TestCleanupPublishes(t *testing.T) {
	env := newTestCore(t, "")
	ctx := context.Background()

	_, err := env.core.InsertObserved(ctx, monitor.Event{Text: "a"})
	require.NoError(t, err)
	env.nextEvent(t)

	removed, err := env.core.Cleanup(ctx, -1, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
	ev := env.nextEvent(t)
	assert.Equal(t, hub.KindCleanup, ev.Kind)
	assert.EqualValues(t, 1, ev.Removed)
}

func TestMonitorRecordsClipboard(t *testing.T) {
	env := newTestCore(t, "Terminal")
	ctx := context.Background()
	require.NoError(t, env.clip.WriteText("  from the clipboard  "))

	env.core.StartMonitor()
	assert.True(t, env.core.MonitorRunning())

	require.Eventually(t, func() bool {
		entries, err := env.core.Search(ctx, "clipboard", 10)
		return err == nil && len(entries) == 1
	}, 3*time.Second, 20*time.Millisecond)

	entries, err := env.core.Search(ctx, "clipboard", 10)
	require.NoError(t, err)
	assert.Equal(t, "from the clipboard", entries[0].Content)
	require.NotNil(t, entries[0].SourceApp)
	assert.Equal(t, "Terminal", *entries[0].SourceApp)

	env.core.StopMonitor()
	assert.False(t, env.core.MonitorRunning())
}

func TestStatus(t *testing.T) {
	env := newTestCore(t, "")
	ctx := context.Background()

	st, err := env.core.Status(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.LastEvent)
	assert.Zero(t, st.LastEventID)

	id, err := env.core.InsertObserved(ctx, monitor.Event{Text: "one"})
	require.NoError(t, err)
	_, err = env.core.TogglePin(ctx, id)
	require.NoError(t, err)

	st, err = env.core.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, hub.KindPinned, st.LastEvent)
	assert.Equal(t, id, st.LastEventID)
	assert.False(t, st.MonitorRunning)
	assert.Equal(t, "memory", st.Backend)
	assert.Equal(t, 1, st.Entries)
	assert.Equal(t, env.store.Path(), st.Database)
	assert.Equal(t, 1, st.Watchers)
}

func TestSettings(t *testing.T) {
	env := newTestCore(t, "")
	ctx := context.Background()

	require.NoError(t, env.core.SetSetting(ctx, "hotkey", "ctrl+shift+v"))
	v, ok, err := env.core.Setting(ctx, "hotkey")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ctrl+shift+v", v)
}
