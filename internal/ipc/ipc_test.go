//go:build !windows

package ipc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shortSocket(t *testing.T) string {
	t.Helper()
	// Unix socket paths are limited to ~100 bytes; t.TempDir can exceed that.
	dir, err := os.MkdirTemp("", "cs")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return filepath.Join(dir, "s.sock")
}

func TestSocketPathOverride(t *testing.T) {
	t.Setenv("CLIPSTREAM_SOCKET", "/tmp/custom.sock")
	assert.Equal(t, "/tmp/custom.sock", SocketPath())
}

func TestSocketPathXDG(t *testing.T) {
	t.Setenv("CLIPSTREAM_SOCKET", "")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, "/run/user/1000/clipstream.sock", SocketPath())
}

func TestListenDial(t *testing.T) {
	path := shortSocket(t)
	assert.False(t, IsRunning(path))

	l, err := Listen(path)
	require.NoError(t, err)
	defer l.Close()

	go func() {
		c, err := l.Accept()
		if err == nil {
			_ = c.Close()
		}
	}()

	c, err := Dial(context.Background(), path)
	require.NoError(t, err)
	_ = c.Close()
}

func TestListenRefusesLiveSocket(t *testing.T) {
	path := shortSocket(t)
	l, err := Listen(path)
	require.NoError(t, err)
	defer l.Close()
	go func() {
		for {
			c, err := l.Accept()
			if err != nil {
				return
			}
			_ = c.Close()
		}
	}()

	_, err = Listen(path)
	var are *AlreadyRunningError
	assert.ErrorAs(t, err, &are)
}

func TestListenRemovesStaleSocket(t *testing.T) {
	path := shortSocket(t)
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	l, err := Listen(path)
	require.NoError(t, err)
	_ = l.Close()
}
