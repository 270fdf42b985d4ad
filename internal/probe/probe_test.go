package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	name, ok := clean("  firefox\n")
	assert.True(t, ok)
	assert.Equal(t, "firefox", name)

	_, ok = clean(" \n\t")
	assert.False(t, ok)
}

func TestNone(t *testing.T) {
	name, ok := None.ForegroundApp()
	assert.False(t, ok)
	assert.Empty(t, name)
}

func TestFunc(t *testing.T) {
	p := Func(func() (string, bool) { return "Notepad", true })
	name, ok := p.ForegroundApp()
	assert.True(t, ok)
	assert.Equal(t, "Notepad", name)
}
