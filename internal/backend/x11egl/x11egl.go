// Package x11egl implements the x11_egl platform: EGL on an Xlib display,
// with windows managed through xgb.
package x11egl

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/glport/internal/backend/egl"
	"github.com/1broseidon/glport/internal/platform"
	"github.com/1broseidon/glport/internal/x11"
)

func init() {
	platform.Register(platform.KindX11EGL, New)
}

// Backend is the x11_egl backend table.
type Backend struct {
	*egl.Core
	xlib *x11.Xlib
}

type display struct {
	egl  *egl.Display
	conn *x11.Connection
}

func (d *display) EGL() *egl.Display { return d.egl }

// nativeWindow is the part of *x11.Window the backend uses.
type nativeWindow interface {
	ID() xproto.Window
	Map() error
	Resize(width, height int) error
	Destroy() error
}

// createWindow is replaced in tests.
var createWindow = func(conn *x11.Connection, visual xproto.Visualid, width, height int) (nativeWindow, error) {
	return conn.CreateWindow(visual, width, height)
}

type window struct {
	dpy     *display
	xwin    nativeWindow
	surface uintptr
}

func (w *window) EGLSurface() uintptr { return w.surface }

// New loads libEGL and libX11.
func New(opts platform.Options) (platform.Backend, error) {
	core, err := egl.NewCore(platform.KindX11EGL, opts)
	if err != nil {
		return nil, err
	}
	xlib, err := x11.OpenXlib(opts.LibraryNames("x11", x11.DefaultLibraries...))
	if err != nil {
		core.Teardown()
		return nil, err
	}
	return &Backend{Core: core, xlib: xlib}, nil
}

func (b *Backend) Teardown() error {
	err := b.Core.Teardown()
	if xerr := b.xlib.Close(); err == nil {
		err = xerr
	}
	return err
}

func (b *Backend) DisplayConnect(name string) (platform.Native, error) {
	conn, err := x11.Connect(b.xlib, name)
	if err != nil {
		return nil, err
	}
	d, err := b.OpenDisplay(egl.PLATFORM_X11_KHR, conn.Xlib, true)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &display{egl: d, conn: conn}, nil
}

func (b *Backend) DisplayDisconnect(dpy platform.Native) error {
	d, err := platform.Downcast[*display](dpy)
	if err != nil {
		return err
	}
	err = b.CloseDisplay(d.egl)
	if cerr := d.conn.Close(); err == nil {
		err = cerr
	}
	return err
}

func (b *Backend) DescribeDisplay(dpy platform.Native) (platform.DisplayInfo, error) {
	d, err := platform.Downcast[*display](dpy)
	if err != nil {
		return platform.DisplayInfo{}, err
	}
	info := b.Describe(d.egl)
	info.Outputs = outputs(d.conn)
	return info, nil
}

func (b *Backend) WindowCreate(cfg platform.Native, width, height int) (platform.Native, error) {
	config, err := platform.Downcast[*egl.Config](cfg)
	if err != nil {
		return nil, err
	}
	d, err := platform.Downcast[*display](config.Display)
	if err != nil {
		return nil, err
	}

	xwin, err := createWindow(d.conn, xproto.Visualid(config.VisualID), width, height)
	if err != nil {
		return nil, err
	}
	surface, err := b.CreateWindowSurface(config, uintptr(xwin.ID()))
	if err != nil {
		xwin.Destroy()
		return nil, err
	}
	return &window{dpy: d, xwin: xwin, surface: surface}, nil
}

func (b *Backend) WindowDestroy(win platform.Native) error {
	w, err := platform.Downcast[*window](win)
	if err != nil {
		return err
	}
	err = b.DestroySurface(w.dpy.egl, w.surface)
	if xerr := w.xwin.Destroy(); err == nil {
		err = xerr
	}
	return err
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
	return b.SwapBuffers(w.dpy.egl, w.surface)
}

func outputs(conn *x11.Connection) []platform.Output {
	outs, err := conn.Outputs()
	if err != nil {
		return nil
	}
	res := make([]platform.Output, 0, len(outs))
	for _, o := range outs {
		res = append(res, platform.Output(o))
	}
	return res
}
