package clip

import (
	"sync"

	"go.klb.dev/clipstream/internal/content"
)

// Memory is an in-process clipboard. It backs tests and the daemon's
// --clipboard=memory mode, where history is fed only through the API.
type Memory struct {
	mu    sync.Mutex
	text  string
	image *content.Image
}

// NewMemory returns an empty in-process clipboard.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Name() string { return "memory" }

func (m *Memory) ReadText() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, m.image == nil && m.text != ""
}

func (m *Memory) ReadImage() (*content.Image, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.image, m.image != nil
}

func (m *Memory) WriteText(text string) error {
	m.mu.Lock()
	m.text, m.image = text, nil
	m.mu.Unlock()
	return nil
}

func (m *Memory) WriteImage(img *content.Image) error {
	m.mu.Lock()
	m.text, m.image = "", img
	m.mu.Unlock()
	return nil
}
