//go:build windows

package probe

import (
	"path/filepath"

	"golang.org/x/sys/windows"
)

type windowsProber struct{}

// New returns the Windows foreground application probe. It reports the
// executable name of the process owning the foreground window.
func New() Prober { return windowsProber{} }

func (windowsProber) ForegroundApp() (string, bool) {
	hwnd := windows.GetForegroundWindow()
	if hwnd == 0 {
		return "", false
	}
	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil || pid == 0 {
		return "", false
	}
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, pid)
	if err != nil {
		return "", false
	}
	defer windows.CloseHandle(h)

	buf := make([]uint16, windows.MAX_PATH)
	size := uint32(len(buf))
	if err := windows.QueryFullProcessImageName(h, 0, &buf[0], &size); err != nil {
		return "", false
	}
	return clean(filepath.Base(windows.UTF16ToString(buf[:size])))
}
