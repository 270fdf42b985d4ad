//go:build darwin

package probe

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa
// #import <Cocoa/Cocoa.h>
// #include <stdlib.h>
//
// char* clipstream_frontmost_app() {
//     @autoreleasepool {
//         NSRunningApplication *app = [[NSWorkspace sharedWorkspace] frontmostApplication];
//         if (app == nil || app.localizedName == nil) {
//             return NULL;
//         }
//         return strdup([app.localizedName UTF8String]);
//     }
// }
import "C"

import "unsafe"

type darwinProber struct{}

// New returns the macOS foreground application probe.
func New() Prober { return darwinProber{} }

func (darwinProber) ForegroundApp() (string, bool) {
	cstr := C.clipstream_frontmost_app()
	if cstr == nil {
		return "", false
	}
	defer C.free(unsafe.Pointer(cstr))
	return clean(C.GoString(cstr))
}
