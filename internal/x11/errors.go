package x11

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/1broseidon/glport/internal/errstate"
)

// xErrorEvent mirrors Xlib's XErrorEvent on LP64 systems.
type xErrorEvent struct {
	Type        int32
	_           int32
	Display     uintptr
	ResourceID  uintptr
	Serial      uintptr
	ErrorCode   uint8
	RequestCode uint8
	MinorCode   uint8
}

var (
	trapMu      sync.Mutex
	trapped     xErrorEvent
	trapOnce    sync.Once
	trapHandler uintptr
)

func onXError(dpy, ev uintptr) uintptr {
	if trapped.ErrorCode == 0 && ev != 0 {
		trapped = *(*xErrorEvent)(unsafe.Pointer(ev))
	}
	return 0
}

// Trap runs fn with an Xlib error handler that records the first protocol
// error instead of exiting the process, then reports it as an UnknownError
// for op. Without XSetErrorHandler fn runs unguarded.
func (c *Connection) Trap(op string, fn func()) error {
	if c.xlib.XSetErrorHandler == nil {
		fn()
		return nil
	}
	trapOnce.Do(func() {
		trapHandler = purego.NewCallback(onXError)
	})

	trapMu.Lock()
	defer trapMu.Unlock()

	trapped = xErrorEvent{}
	prev := c.xlib.XSetErrorHandler(trapHandler)
	fn()
	c.xlib.XSync(c.Xlib, 0)
	c.xlib.XSetErrorHandler(prev)

	if trapped.ErrorCode != 0 {
		return errstate.Errorf(errstate.UnknownError,
			"%s failed with X error %d (request %d.%d)",
			op, trapped.ErrorCode, trapped.RequestCode, trapped.MinorCode)
	}
	return nil
}
