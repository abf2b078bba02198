//go:build darwin

package activeapp

/*
#cgo darwin CFLAGS: -x objective-c -fmodules -fobjc-arc
#cgo darwin LDFLAGS: -framework Cocoa
#include <Cocoa/Cocoa.h>
#include <CoreFoundation/CoreFoundation.h>

static CFStringRef copyFrontmostBundle(void) {
	NSRunningApplication *app = [[NSWorkspace sharedWorkspace] frontmostApplication];
	if (app == nil) {
		return NULL;
	}
	NSString *bundleID = app.bundleIdentifier ?: @"";
	return (__bridge_retained CFStringRef)bundleID;
}

static CFStringRef copyFrontmostName(void) {
	NSRunningApplication *app = [[NSWorkspace sharedWorkspace] frontmostApplication];
	if (app == nil) {
		return NULL;
	}
	NSString *name = app.localizedName ?: @"";
	return (__bridge_retained CFStringRef)name;
}
*/
import "C"

import (
	"context"
	"unsafe"
)

type workspaceResolver struct{}

// NewPlatformResolver returns the NSWorkspace-backed resolver.
func NewPlatformResolver() Resolver {
	return workspaceResolver{}
}

func (workspaceResolver) ActiveApp(ctx context.Context) (App, error) {
	if err := ctx.Err(); err != nil {
		return App{}, err
	}
	bundle := cfString(C.copyFrontmostBundle())
	name := cfString(C.copyFrontmostName())
	if bundle == "" && name == "" {
		return App{}, ErrNoActiveApp
	}
	if bundle == "" {
		bundle = name
	}
	return App{Name: name, Identifier: bundle}, nil
}

func cfString(str C.CFStringRef) string {
	if str == 0 {
		return ""
	}
	defer C.CFRelease(C.CFTypeRef(str))
	length := C.CFStringGetLength(str)
	if length == 0 {
		return ""
	}
	size := C.CFIndex(1 + 4*length)
	buf := make([]byte, int(size))
	if C.CFStringGetCString(str, (*C.char)(unsafe.Pointer(&buf[0])), size, C.kCFStringEncodingUTF8) == C.Boolean(0) {
		return ""
	}
	return C.GoString((*C.char)(unsafe.Pointer(&buf[0])))
}
