package monitor

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipstream/internal/content"
)

func img(b ...byte) *content.Image {
	return &content.Image{PNG: b, Width: 1, Height: 1}
}

func TestDetectorText(t *testing.T) {
	var d Detector

	ev, ok := d.Observe(content.TextSnapshot("  hello \n"))
	require.True(t, ok)
	assert.Equal(t, "hello", ev.Text)
	assert.False(t, ev.IsImage())

	_, ok = d.Observe(content.TextSnapshot("hello"))
	assert.False(t, ok, "same text after trimming is not a change")

	_, ok = d.Observe(content.TextSnapshot("   "))
	assert.False(t, ok, "blank text is suppressed")

	ev, ok = d.Observe(content.TextSnapshot("world"))
	require.True(t, ok)
	assert.Equal(t, "world", ev.Text)
}

func TestDetectorImage(t *testing.T) {
	var d Detector

	ev, ok := d.Observe(content.ImageSnapshot(img(1, 2, 3)))
	require.True(t, ok)
	assert.True(t, ev.IsImage())
	assert.Equal(t, Fingerprint([]byte{1, 2, 3}), ev.Fingerprint)

	_, ok = d.Observe(content.ImageSnapshot(img(1, 2, 3)))
	assert.False(t, ok)

	_, ok = d.Observe(content.ImageSnapshot(img(1, 2, 4)))
	assert.True(t, ok)
}

func TestDetectorSwitchClearsOtherState(t *testing.T) {
	var d Detector

	_, ok := d.Observe(content.TextSnapshot("hello"))
	require.True(t, ok)
	_, ok = d.Observe(content.ImageSnapshot(img(9)))
	require.True(t, ok)

	// The image cleared the stored text, so the same text is new again.
	_, ok = d.Observe(content.TextSnapshot("hello"))
	assert.True(t, ok)

	// And the text cleared the stored image fingerprint.
	_, ok = d.Observe(content.ImageSnapshot(img(9)))
	assert.True(t, ok)
}

func TestFingerprintBoundedPrefix(t *testing.T) {
	a := bytes.Repeat([]byte{7}, 4096)
	b := bytes.Repeat([]byte{7}, 4096)
	b[len(b)-1] = 8
	assert.Equal(t, Fingerprint(a), Fingerprint(b), "bytes past the prefix are not hashed")

	c := bytes.Repeat([]byte{7}, 4097)
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c), "length participates")

	b[10] = 8
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}
