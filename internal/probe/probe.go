// Package probe resolves the name of the application that owns keyboard focus.
// Build constraints select the implementation:
//
//	probe_darwin.go:   NSWorkspace frontmostApplication via cgo
//	probe_windows.go:  GetForegroundWindow + QueryFullProcessImageName
//	probe_linux.go:    xdotool (X11), best effort
//	probe_other.go:    always reports nothing
//
// Every implementation is best effort: failing to resolve a name is reported
// as absence, never as an error.
package probe

import "strings"

// Prober reports the foreground application.
type Prober interface {
	ForegroundApp() (string, bool)
}

// Func adapts a plain function to a Prober.
type Func func() (string, bool)

func (f Func) ForegroundApp() (string, bool) { return f() }

// None is a Prober that never resolves a name.
var None Prober = Func(func() (string, bool) { return "", false })

// clean trims command output and reports whether anything is left.
func clean(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != ""
}
