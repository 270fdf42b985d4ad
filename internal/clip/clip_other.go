//go:build !darwin && !windows && !linux

package clip

// New returns a no-op backend suitable for headless containers.
func New() Backend {
	return Headless()
}
