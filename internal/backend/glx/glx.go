// Package glx implements the glx platform: desktop OpenGL through libGL's
// GLX entry points on an Xlib display.
package glx

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/glport/internal/dl"
	"github.com/1broseidon/glport/internal/errstate"
	"github.com/1broseidon/glport/internal/platform"
	"github.com/1broseidon/glport/internal/x11"
)

func init() {
	platform.Register(platform.KindGLX, New)
}

// DefaultLibraries are the libGL names tried when no override is set.
var DefaultLibraries = []string{"libGL.so.1", "libGL.so"}

type api struct {
	lib *dl.Library

	ChooseFBConfig        func(dpy uintptr, screen int32, attribs *int32, n *int32) *uintptr
	GetFBConfigAttrib     func(dpy, config uintptr, attr int32, value *int32) int32
	CreateNewContext      func(dpy, config uintptr, renderType int32, share uintptr, direct int32) uintptr
	DestroyContext        func(dpy, ctx uintptr)
	MakeContextCurrent    func(dpy, draw, read, ctx uintptr) int32
	SwapBuffers           func(dpy, drawable uintptr)
	QueryVersion          func(dpy uintptr, major, minor *int32) int32
	QueryExtensionsString func(dpy uintptr, screen int32) string
	GetClientString       func(dpy uintptr, name int32) string
	GetProcAddressARB     func(name string) uintptr
}

const (
	clientVendor  = 1
	clientVersion = 2
)

// Backend is the glx backend table.
type Backend struct {
	gl   *api
	xlib *x11.Xlib
	opts platform.Options
}

type display struct {
	conn   *x11.Connection
	major  int32
	minor  int32
	exts   extensions
	extStr string

	createContextAttribs func(dpy, config, share uintptr, direct int32, attribs *int32) uintptr
}

type config struct {
	dpy    *display
	handle uintptr
	visual xproto.Visualid
	attrs  platform.ConfigAttrs
}

type context struct {
	cfg    *config
	handle uintptr
}

type window struct {
	cfg  *config
	xwin *x11.Window
}

// New loads libGL and libX11.
func New(opts platform.Options) (platform.Backend, error) {
	gl := &api{}
	lib, err := dl.Load(opts.LibraryNames("gl", DefaultLibraries...), []dl.Symbol{
		{Name: "glXChooseFBConfig", Fn: &gl.ChooseFBConfig},
		{Name: "glXGetFBConfigAttrib", Fn: &gl.GetFBConfigAttrib},
		{Name: "glXCreateNewContext", Fn: &gl.CreateNewContext},
		{Name: "glXDestroyContext", Fn: &gl.DestroyContext},
		{Name: "glXMakeContextCurrent", Fn: &gl.MakeContextCurrent},
		{Name: "glXSwapBuffers", Fn: &gl.SwapBuffers},
		{Name: "glXQueryVersion", Fn: &gl.QueryVersion},
		{Name: "glXQueryExtensionsString", Fn: &gl.QueryExtensionsString},
		{Name: "glXGetClientString", Fn: &gl.GetClientString},
		{Name: "glXGetProcAddressARB", Fn: &gl.GetProcAddressARB},
	})
	if err != nil {
		return nil, err
	}
	gl.lib = lib

	xlib, err := x11.OpenXlib(opts.LibraryNames("x11", x11.DefaultLibraries...))
	if err != nil {
		lib.Close()
		return nil, err
	}
	return &Backend{gl: gl, xlib: xlib, opts: opts}, nil
}

func (b *Backend) Kind() platform.Kind {
	return platform.KindGLX
}

func (b *Backend) Teardown() error {
	err := b.gl.lib.Close()
	if xerr := b.xlib.Close(); err == nil {
		err = xerr
	}
	return err
}

func (b *Backend) GetProcAddress(name string) uintptr {
	return b.gl.GetProcAddressARB(name)
}

func (b *Backend) DisplayConnect(name string) (platform.Native, error) {
	conn, err := x11.Connect(b.xlib, name)
	if err != nil {
		return nil, err
	}

	d := &display{conn: conn}
	if b.gl.QueryVersion(conn.Xlib, &d.major, &d.minor) == 0 {
		conn.Close()
		return nil, errstate.Errorf(errstate.UnsupportedOnPlatform, "X display %q has no GLX extension", name)
	}
	if d.major < 1 || (d.major == 1 && d.minor < 3) {
		conn.Close()
		return nil, errstate.Errorf(errstate.UnsupportedOnPlatform,
			"GLX 1.3 is required, display %q has %d.%d", name, d.major, d.minor)
	}

	d.extStr = b.gl.QueryExtensionsString(conn.Xlib, int32(conn.Screen))
	d.exts = parseExtensions(d.extStr)
	if d.exts["GLX_ARB_create_context"] {
		if addr := b.gl.GetProcAddressARB("glXCreateContextAttribsARB"); addr != 0 {
			if err := dl.RegisterFunc(&d.createContextAttribs, addr); err != nil {
				conn.Close()
				return nil, err
			}
		}
	}

	b.opts.Logger.Debug("glx display connected",
		"display", name, "glx_version", fmt.Sprintf("%d.%d", d.major, d.minor), "arb_create_context", d.createContextAttribs != nil)
	return d, nil
}

func (b *Backend) DisplayDisconnect(dpy platform.Native) error {
	d, err := platform.Downcast[*display](dpy)
	if err != nil {
		return err
	}
	return d.conn.Close()
}

func (b *Backend) DisplaySupportsContextAPI(dpy platform.Native, api platform.ContextAPI) bool {
	d, err := platform.Downcast[*display](dpy)
	if err != nil {
		return false
	}
	return d.exts.supports(api)
}

func (b *Backend) DescribeDisplay(dpy platform.Native) (platform.DisplayInfo, error) {
	d, err := platform.Downcast[*display](dpy)
	if err != nil {
		return platform.DisplayInfo{}, err
	}
	info := platform.DisplayInfo{
		Vendor:     b.gl.GetClientString(d.conn.Xlib, clientVendor),
		Version:    "GLX " + b.gl.GetClientString(d.conn.Xlib, clientVersion),
		Extensions: strings.Fields(d.extStr),
	}
	if outs, err := d.conn.Outputs(); err == nil {
		for _, o := range outs {
			info.Outputs = append(info.Outputs, platform.Output(o))
		}
	}
	return info, nil
}

func (b *Backend) ConfigChoose(dpy platform.Native, attrs platform.ConfigAttrs) (platform.Native, error) {
	d, err := platform.Downcast[*display](dpy)
	if err != nil {
		return nil, err
	}
	if !d.exts.supports(attrs.API) {
		return nil, errstate.Errorf(errstate.UnsupportedOnPlatform, "GLX on this display cannot create %v contexts", attrs.API)
	}

	list := configAttribs(attrs)
	var n int32
	configs := b.gl.ChooseFBConfig(d.conn.Xlib, int32(d.conn.Screen), &list[0], &n)
	if configs == nil || n == 0 {
		if configs != nil {
			d.conn.Free(uintptr(unsafe.Pointer(configs)))
		}
		return nil, errstate.Errorf(errstate.UnsupportedOnPlatform, "glXChooseFBConfig found no config matching the requested attributes")
	}
	handle := *configs
	d.conn.Free(uintptr(unsafe.Pointer(configs)))

	var visual int32
	if b.gl.GetFBConfigAttrib(d.conn.Xlib, handle, VISUAL_ID, &visual) != 0 || visual == 0 {
		return nil, errstate.Errorf(errstate.UnsupportedOnPlatform, "GLXFBConfig has no X visual")
	}
	return &config{dpy: d, handle: handle, visual: xproto.Visualid(visual), attrs: attrs}, nil
}

func (b *Backend) ConfigDestroy(cfg platform.Native) error {
	_, err := platform.Downcast[*config](cfg)
	return err
}

func (b *Backend) ContextCreate(cfg platform.Native, share platform.Native) (platform.Native, error) {
	c, err := platform.Downcast[*config](cfg)
	if err != nil {
		return nil, err
	}
	var shareHandle uintptr
	if share != nil {
		s, err := platform.Downcast[*context](share)
		if err != nil {
			return nil, err
		}
		shareHandle = s.handle
	}

	d := c.dpy
	legacy := isLegacy(c.attrs)
	if d.createContextAttribs == nil {
		if !legacy {
			return nil, errstate.Errorf(errstate.UnsupportedOnPlatform,
				"%v %d.%d needs GLX_ARB_create_context", c.attrs.API, c.attrs.MajorVersion, c.attrs.MinorVersion)
		}
		return b.createLegacy(c, shareHandle)
	}

	var handle uintptr
	attempt := func() error {
		list, err := contextAttribs(c.attrs, d.exts)
		if err != nil {
			return err
		}
		err = d.conn.Trap("glXCreateContextAttribsARB", func() {
			handle = d.createContextAttribs(d.conn.Xlib, c.handle, shareHandle, 1, &list[0])
		})
		if err != nil {
			return err
		}
		if handle == 0 {
			return errstate.Errorf(errstate.UnknownError, "glXCreateContextAttribsARB failed")
		}
		return nil
	}

	if legacy {
		var failed bool
		errstate.Disabled(func() { failed = attempt() != nil })
		if failed {
			return b.createLegacy(c, shareHandle)
		}
	} else if err := attempt(); err != nil {
		return nil, err
	}
	return &context{cfg: c, handle: handle}, nil
}

func (b *Backend) createLegacy(c *config, share uintptr) (platform.Native, error) {
	var handle uintptr
	err := c.dpy.conn.Trap("glXCreateNewContext", func() {
		handle = b.gl.CreateNewContext(c.dpy.conn.Xlib, c.handle, RGBA_TYPE, share, 1)
	})
	if err != nil {
		return nil, err
	}
	if handle == 0 {
		return nil, errstate.Errorf(errstate.UnknownError, "glXCreateNewContext failed")
	}
	return &context{cfg: c, handle: handle}, nil
}

func (b *Backend) ContextDestroy(ctx platform.Native) error {
	c, err := platform.Downcast[*context](ctx)
	if err != nil {
		return err
	}
	b.gl.DestroyContext(c.cfg.dpy.conn.Xlib, c.handle)
	return nil
}

func (b *Backend) WindowCreate(cfg platform.Native, width, height int) (platform.Native, error) {
	c, err := platform.Downcast[*config](cfg)
	if err != nil {
		return nil, err
	}
	xwin, err := c.dpy.conn.CreateWindow(c.visual, width, height)
	if err != nil {
		return nil, err
	}
	return &window{cfg: c, xwin: xwin}, nil
}

func (b *Backend) WindowDestroy(win platform.Native) error {
	w, err := platform.Downcast[*window](win)
	if err != nil {
		return err
	}
	return w.xwin.Destroy()
}

func (b *Backend) WindowShow(win platform.Native) error {
	w, err := platform.Downcast[*window](win)
	if err != nil {
		return err
	}
	return w.xwin.Map()
}

func (b *Backend) WindowResize(win platform.Native, width, height int) error {
	w, err := platform.Downcast[*window](win)
	if err != nil {
		return err
	}
	return w.xwin.Resize(width, height)
}

func (b *Backend) WindowSwapBuffers(win platform.Native) error {
	w, err := platform.Downcast[*window](win)
	if err != nil {
		return err
	}
	b.gl.SwapBuffers(w.cfg.dpy.conn.Xlib, uintptr(w.xwin.ID()))
	return nil
}

func (b *Backend) MakeCurrent(dpy, win, ctx platform.Native) error {
	d, err := platform.Downcast[*display](dpy)
	if err != nil {
		return err
	}
	var drawable, handle uintptr
	if win != nil {
		w, err := platform.Downcast[*window](win)
		if err != nil {
			return err
		}
		drawable = uintptr(w.xwin.ID())
	}
	if ctx != nil {
		c, err := platform.Downcast[*context](ctx)
		if err != nil {
			return err
		}
		handle = c.handle
	}
	if b.gl.MakeContextCurrent(d.conn.Xlib, drawable, drawable, handle) == 0 {
		return errstate.Errorf(errstate.UnknownError, "glXMakeContextCurrent failed")
	}
	return nil
}
