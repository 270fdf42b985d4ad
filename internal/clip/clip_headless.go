package clip

import "go.klb.dev/clipstream/internal/content"

// headlessBackend is a no-op clipboard backend for environments without a
// display server (headless Linux servers, containers, etc.).
// It never reports contents and refuses writes.
type headlessBackend struct{}

// Headless returns the no-op backend.
func Headless() Backend { return headlessBackend{} }

func (headlessBackend) Name() string                      { return "headless (no-op)" }
func (headlessBackend) ReadText() (string, bool)          { return "", false }
func (headlessBackend) ReadImage() (*content.Image, bool) { return nil, false }
func (headlessBackend) WriteText(string) error            { return ErrUnavailable }
func (headlessBackend) WriteImage(*content.Image) error   { return ErrUnavailable }
