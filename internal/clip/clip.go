// Package clip provides a unified interface to the system clipboard across
// platforms. Build constraints select the implementation:
//
//	clip_native.go:   macOS, Windows, Linux via golang.design/x/clipboard
//	clip_other.go:    headless / container stub
//
// Reads never fail loudly: a busy or empty clipboard is reported as "nothing
// there" and the caller retries on its next poll.
package clip

import (
	"errors"

	"go.klb.dev/clipstream/internal/content"
)

// ErrUnavailable is returned by writes when no clipboard is reachable.
var ErrUnavailable = errors.New("clipboard unavailable")

// Backend is the interface that all platform clipboard implementations satisfy.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// ReadText returns the clipboard text, or false if there is none.
	ReadText() (string, bool)

	// ReadImage returns the clipboard image, or false if there is none.
	ReadImage() (*content.Image, bool)

	// WriteText replaces the clipboard contents with text.
	WriteText(text string) error

	// WriteImage replaces the clipboard contents with a PNG image.
	WriteImage(img *content.Image) error
}
