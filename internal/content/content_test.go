package content

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Kind
	}{
		{"https url", "https://example.com", KindURL},
		{"http url with spaces", "  http://example.com/a?b=c \n", KindURL},
		{"python def", "def foo(): pass", KindCode},
		{"rust fn", "fn main() {}", KindCode},
		{"js const", "const x = 1;", KindCode},
		{"c include", "#include <stdio.h>", KindCode},
		{"plain sentence", "just a sentence", KindText},
		{"url not at start", "see https://example.com", KindText},
		{"marker needs trailing space", "definitely", KindText},
		{"prose false positive", "let me know", KindCode},
		{"empty", "", KindText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in))
		})
	}
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindImage, ParseKind("image"))
	assert.Equal(t, KindURL, ParseKind("url"))
	assert.Equal(t, KindText, ParseKind("bogus"))
	assert.Equal(t, KindText, ParseKind(""))
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeImage(t *testing.T) {
	data := testPNG(t, 12, 7)

	img, err := DecodeImage(data)
	require.NoError(t, err)
	assert.Equal(t, 12, img.Width)
	assert.Equal(t, 7, img.Height)
	assert.Equal(t, data, img.PNG)

	_, err = DecodeImage([]byte("not a png"))
	assert.Error(t, err)
}

func TestPlaceholder(t *testing.T) {
	img := &Image{Width: 640, Height: 480}
	assert.Equal(t, "[Image 640x480 #deadbeef]", Placeholder(img, 0x1234_5678_dead_beef))
	assert.NotEqual(t, Placeholder(img, 1), Placeholder(img, 2))
}

func TestSnapshot(t *testing.T) {
	assert.False(t, TextSnapshot("x").IsImage())
	assert.True(t, ImageSnapshot(&Image{}).IsImage())
}
