package clip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/clipstream/internal/content"
)

func TestHeadless(t *testing.T) {
	b := Headless()
	_, ok := b.ReadText()
	assert.False(t, ok)
	_, ok = b.ReadImage()
	assert.False(t, ok)
	assert.ErrorIs(t, b.WriteText("x"), ErrUnavailable)
	assert.ErrorIs(t, b.WriteImage(&content.Image{}), ErrUnavailable)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	_, ok := m.ReadText()
	assert.False(t, ok)

	require.NoError(t, m.WriteText("hello"))
	text, ok := m.ReadText()
	assert.True(t, ok)
	assert.Equal(t, "hello", text)

	img := &content.Image{PNG: []byte{1}, Width: 1, Height: 1}
	require.NoError(t, m.WriteImage(img))
	_, ok = m.ReadText()
	assert.False(t, ok)
	got, ok := m.ReadImage()
	assert.True(t, ok)
	assert.Same(t, img, got)
}
