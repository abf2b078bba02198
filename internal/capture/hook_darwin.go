//go:build darwin

package capture

/*
#cgo darwin LDFLAGS: -framework CoreGraphics -framework ApplicationServices
#include <ApplicationServices/ApplicationServices.h>
#include <CoreFoundation/CoreFoundation.h>
#include <stdint.h>

static Boolean axCheckTrusted(void) {
	const void *keys[] = { kAXTrustedCheckOptionPrompt };
	const void *values[] = { kCFBooleanTrue };
	CFDictionaryRef options = CFDictionaryCreate(kCFAllocatorDefault, keys, values, 1,
	                                             &kCFTypeDictionaryKeyCallBacks,
	                                             &kCFTypeDictionaryValueCallBacks);
	Boolean trusted = AXIsProcessTrustedWithOptions(options);
	CFRelease(options);
	return trusted;
}

extern CGEventRef goHandleKey(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *userInfo);

static CFRunLoopSourceRef startKeyTap(uintptr_t handle, CFMachPortRef *tapOut) {
	CGEventMask mask = ((CGEventMask)1) << kCGEventKeyDown;
	CFMachPortRef tap = CGEventTapCreate(kCGSessionEventTap,
	                                     kCGHeadInsertEventTap,
	                                     kCGEventTapOptionListenOnly,
	                                     mask,
	                                     goHandleKey,
	                                     (void *)handle);
	if (tap == NULL) {
		return NULL;
	}
	CGEventTapEnable(tap, true);
	*tapOut = tap;
	return CFMachPortCreateRunLoopSource(kCFAllocatorDefault, tap, 0);
}

static void addSource(CFRunLoopSourceRef source) {
	CFRunLoopAddSource(CFRunLoopGetCurrent(), source, kCFRunLoopCommonModes);
}

static void runFor(double seconds) {
	CFRunLoopRunInMode(kCFRunLoopDefaultMode, seconds, false);
}

static void enableTap(CFMachPortRef tap) {
	CGEventTapEnable(tap, true);
}

static int64_t eventKeycode(CGEventRef event) {
	return CGEventGetIntegerValueField(event, kCGKeyboardEventKeycode);
}
*/
import "C"

import (
	"errors"
	"runtime/cgo"
	"sync/atomic"
	"unsafe"

	"github.com/hhushhas/fingerpain/internal/keys"
)

var errAccessibility = errors.New("accessibility permission not granted (System Settings > Privacy & Security > Accessibility)")

// runLoopSlice is how long the run loop runs between stop checks, in seconds.
const runLoopSlice = 0.25

type tapState struct {
	tap  C.CFMachPortRef
	emit func(keys.Key)
}

type eventTapHook struct {
	stopping atomic.Bool
}

// NewPlatformHook returns a listen-only CGEventTap hook for key-down events.
func NewPlatformHook() Hook {
	return &eventTapHook{}
}

func (h *eventTapHook) Run(ready func(), emit func(keys.Key)) error {
	h.stopping.Store(false)
	if C.axCheckTrusted() == C.Boolean(0) {
		return errAccessibility
	}

	state := &tapState{emit: emit}
	handle := cgo.NewHandle(state)
	defer handle.Delete()

	var tap C.CFMachPortRef
	source := C.startKeyTap(C.uintptr_t(handle), &tap)
	if source == 0 {
		return errors.New("failed to create CGEvent tap")
	}
	defer C.CFRelease(C.CFTypeRef(source))
	defer C.CFRelease(C.CFTypeRef(tap))
	state.tap = tap

	C.addSource(source)
	ready()
	for !h.stopping.Load() {
		C.runFor(C.double(runLoopSlice))
	}
	return nil
}

func (h *eventTapHook) Stop() {
	h.stopping.Store(true)
}

//export goHandleKey
func goHandleKey(_ C.CGEventTapProxy, eventType C.CGEventType, event C.CGEventRef, userInfo unsafe.Pointer) C.CGEventRef {
	state, ok := cgo.Handle(uintptr(userInfo)).Value().(*tapState)
	if !ok {
		return event
	}
	switch eventType {
	case C.kCGEventTapDisabledByTimeout, C.kCGEventTapDisabledByUserInput:
		C.enableTap(state.tap)
	case C.kCGEventKeyDown:
		state.emit(keys.FromMacKeycode(int(C.eventKeycode(event))))
	}
	return event
}
