//go:build darwin || windows || linux

package clip

import (
	"fmt"
	"log/slog"
	"runtime"

	"golang.design/x/clipboard"

	"go.klb.dev/clipstream/internal/content"
)

type nativeBackend struct{}

// New returns the platform clipboard backend, or a headless no-op backend if
// the display environment is unavailable (e.g. a headless server without X11
// or Wayland). clipboard.Init is called here rather than in init() so that
// CLI sub-commands that never construct a Backend don't log spurious warnings.
func New() Backend {
	if err := clipboard.Init(); err != nil {
		slog.Warn("clipboard unavailable, running headless", "err", err)
		return Headless()
	}
	return nativeBackend{}
}

func (nativeBackend) Name() string { return runtime.GOOS + " clipboard" }

func (nativeBackend) ReadText() (string, bool) {
	b := clipboard.Read(clipboard.FmtText)
	if len(b) == 0 {
		return "", false
	}
	return string(b), true
}

func (nativeBackend) ReadImage() (*content.Image, bool) {
	b := clipboard.Read(clipboard.FmtImage)
	if len(b) == 0 {
		return nil, false
	}
	img, err := content.DecodeImage(b)
	if err != nil {
		slog.Debug("clipboard image unreadable", "err", err)
		return nil, false
	}
	return img, true
}

func (nativeBackend) WriteText(text string) error {
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

func (nativeBackend) WriteImage(img *content.Image) error {
	if img == nil || len(img.PNG) == 0 {
		return fmt.Errorf("write image: empty payload")
	}
	clipboard.Write(clipboard.FmtImage, img.PNG)
	return nil
}
