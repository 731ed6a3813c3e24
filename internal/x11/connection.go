// Package x11 holds the X11 plumbing shared by the GLX and EGL-on-X11
// backends: an Xlib Display* for the GL stacks and an xgb connection for
// window management. Both talk to the same server, so window ids created
// through xgb are valid for GLX and EGL.
package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"

	"github.com/1broseidon/glport/internal/dl"
	"github.com/1broseidon/glport/internal/errstate"
)

// DefaultLibraries are the libX11 names tried by OpenXlib.
var DefaultLibraries = []string{"libX11.so.6", "libX11.so"}

// Xlib is the subset of libX11 the GL stacks need.
type Xlib struct {
	lib *dl.Library

	XOpenDisplay   func(name string) uintptr
	XCloseDisplay  func(dpy uintptr) int32
	XDefaultScreen func(dpy uintptr) int32
	XFree          func(data uintptr) int32
	XSync          func(dpy uintptr, discard int32) int32

	XSetErrorHandler func(handler uintptr) uintptr
}

// OpenXlib loads libX11 from the first of names that opens.
func OpenXlib(names []string) (*Xlib, error) {
	x := &Xlib{}
	lib, err := dl.Load(names, []dl.Symbol{
		{Name: "XOpenDisplay", Fn: &x.XOpenDisplay},
		{Name: "XCloseDisplay", Fn: &x.XCloseDisplay},
		{Name: "XDefaultScreen", Fn: &x.XDefaultScreen},
		{Name: "XFree", Fn: &x.XFree},
		{Name: "XSync", Fn: &x.XSync},
		{Name: "XSetErrorHandler", Fn: &x.XSetErrorHandler, Optional: true},
	})
	if err != nil {
		return nil, err
	}
	x.lib = lib
	return x, nil
}

// Close unloads libX11. Every Connection must be closed first.
func (x *Xlib) Close() error {
	if x == nil {
		return nil
	}
	return x.lib.Close()
}

// Connection pairs the two client connections to one X server.
type Connection struct {
	XUtil  *xgbutil.XUtil
	Root   xproto.Window
	Name   string
	Xlib   uintptr // Display*
	Screen int

	xlib *Xlib
}

// Connect opens name (or $DISPLAY when empty) through both xgb and Xlib.
func Connect(x *Xlib, name string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(name)
	if err != nil {
		return nil, errstate.Errorf(errstate.UnknownError, "failed to connect to X display %q: %v", name, err)
	}

	dpy := x.XOpenDisplay(name)
	if dpy == 0 {
		xu.Conn().Close()
		return nil, errstate.Errorf(errstate.UnknownError, "XOpenDisplay(%q) failed", name)
	}

	return &Connection{
		XUtil:  xu,
		Root:   xu.RootWin(),
		Name:   name,
		Xlib:   dpy,
		Screen: int(x.XDefaultScreen(dpy)),
		xlib:   x,
	}, nil
}

// Free releases memory Xlib handed out (visual infos, config lists).
func (c *Connection) Free(data uintptr) {
	if data != 0 {
		c.xlib.XFree(data)
	}
}

// Close disconnects both connections.
func (c *Connection) Close() error {
	c.XUtil.Conn().Close()
	if c.Xlib == 0 {
		return nil
	}
	dpy := c.Xlib
	c.Xlib = 0
	if rc := c.xlib.XCloseDisplay(dpy); rc != 0 {
		return errstate.Errorf(errstate.UnknownError, "XCloseDisplay failed with %d", rc)
	}
	return nil
}
