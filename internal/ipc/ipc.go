// Package ipc provides the local channel between clipstream CLI commands and
// a running daemon.
//
// The daemon listens on a Unix domain socket (a named pipe on Windows) and
// serves both gRPC and a small JSON HTTP API on it. CLI sub-commands dial the
// same endpoint and speak gRPC.
package ipc

import (
	"context"
	"net"
	"os"
	"time"
)

// SocketPath returns the platform-appropriate path for the IPC endpoint.
//
//   - Linux / macOS: $XDG_RUNTIME_DIR/clipstream.sock, else $TMPDIR/clipstream.sock
//   - Windows:       \\.\pipe\clipstream
//
// $CLIPSTREAM_SOCKET overrides both.
func SocketPath() string {
	if s := os.Getenv("CLIPSTREAM_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// IsRunning reports whether a clipstream daemon appears to be listening on
// path. It does a cheap dial-and-close; no data is exchanged.
func IsRunning(path string) bool {
	c, err := Dial(context.Background(), path)
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a listener on path. A stale socket left by a crashed daemon
// is removed first, but a live one is refused.
func Listen(path string) (net.Listener, error) {
	if IsRunning(path) {
		return nil, &AlreadyRunningError{Path: path}
	}
	removeStale(path)
	return listenIPC(path)
}

// Dial connects to the daemon at path, giving up after one second or when ctx
// ends.
func Dial(ctx context.Context, path string) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return dialIPC(ctx, path)
}

// AlreadyRunningError is returned by Listen when another daemon owns path.
type AlreadyRunningError struct {
	Path string
}

func (e *AlreadyRunningError) Error() string {
	return "a clipstream daemon is already listening on " + e.Path
}
