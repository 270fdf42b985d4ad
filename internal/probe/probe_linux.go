//go:build linux

package probe

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// xdotoolTimeout bounds each probe so a wedged X server cannot stall polling.
const xdotoolTimeout = 200 * time.Millisecond

type linuxProber struct {
	xdotool string
}

// New returns the Linux foreground application probe. Without xdotool on
// PATH (e.g. pure Wayland sessions) it resolves nothing.
func New() Prober {
	path, err := exec.LookPath("xdotool")
	if err != nil {
		return None
	}
	return linuxProber{xdotool: path}
}

func (p linuxProber) ForegroundApp() (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), xdotoolTimeout)
	defer cancel()

	// Prefer the process name; window titles change with every document.
	if out, err := exec.CommandContext(ctx, p.xdotool, "getactivewindow", "getwindowpid").Output(); err == nil {
		if pid, ok := clean(string(out)); ok {
			if comm, err := os.ReadFile(filepath.Join("/proc", pid, "comm")); err == nil {
				if name, ok := clean(string(comm)); ok {
					return name, true
				}
			}
		}
	}

	out, err := exec.CommandContext(ctx, p.xdotool, "getactivewindow", "getwindowname").Output()
	if err != nil {
		return "", false
	}
	return clean(string(out))
}
