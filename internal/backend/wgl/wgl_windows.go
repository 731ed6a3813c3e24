//go:build windows

package wgl

import (
	"github.com/1broseidon/glport/internal/dl"
	"github.com/1broseidon/glport/internal/errstate"
	"github.com/1broseidon/glport/internal/platform"
)

func init() {
	platform.Register(platform.KindWGL, New)
}

type api struct {
	gl   *dl.Library
	gdi  *dl.Library
	user *dl.Library

	GetProcAddress func(name string) uintptr
	MakeCurrent    func(hdc, hglrc uintptr) int32

	ChoosePixelFormat   func(hdc uintptr, pfd *pixelFormatDescriptor) int32
	DescribePixelFormat func(hdc uintptr, format int32, size uint32, pfd *pixelFormatDescriptor) int32

	GetDC     func(hwnd uintptr) uintptr
	ReleaseDC func(hwnd, hdc uintptr) int32
}

// Backend is the wgl backend table.
type Backend struct {
	api  *api
	opts platform.Options
}

type display struct {
	hdc uintptr
}

type config struct {
	dpy    *display
	format int32
	attrs  platform.ConfigAttrs
}

type window struct {
	cfg *config
}

// New loads opengl32.dll, gdi32.dll and user32.dll.
func New(opts platform.Options) (platform.Backend, error) {
	a := &api{}
	gl, err := dl.Load(opts.LibraryNames("gl", "opengl32.dll"), []dl.Symbol{
		{Name: "wglGetProcAddress", Fn: &a.GetProcAddress},
		{Name: "wglMakeCurrent", Fn: &a.MakeCurrent},
	})
	if err != nil {
		return nil, err
	}
	gdi, err := dl.Load([]string{"gdi32.dll"}, []dl.Symbol{
		{Name: "ChoosePixelFormat", Fn: &a.ChoosePixelFormat},
		{Name: "DescribePixelFormat", Fn: &a.DescribePixelFormat},
	})
	if err != nil {
		gl.Close()
		return nil, err
	}
	user, err := dl.Load([]string{"user32.dll"}, []dl.Symbol{
		{Name: "GetDC", Fn: &a.GetDC},
		{Name: "ReleaseDC", Fn: &a.ReleaseDC},
	})
	if err != nil {
		gdi.Close()
		gl.Close()
		return nil, err
	}
	a.gl, a.gdi, a.user = gl, gdi, user
	return &Backend{api: a, opts: opts}, nil
}

func (b *Backend) Kind() platform.Kind {
	return platform.KindWGL
}

func (b *Backend) Teardown() error {
	var first error
	for _, lib := range []*dl.Library{b.api.user, b.api.gdi, b.api.gl} {
		if err := lib.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (b *Backend) GetProcAddress(name string) uintptr {
	return b.api.GetProcAddress(name)
}

// DisplayConnect uses the screen DC; Windows has a single display.
func (b *Backend) DisplayConnect(name string) (platform.Native, error) {
	hdc := b.api.GetDC(0)
	if hdc == 0 {
		return nil, errstate.Errorf(errstate.UnknownError, "GetDC(NULL) failed")
	}
	return &display{hdc: hdc}, nil
}

func (b *Backend) DisplayDisconnect(dpy platform.Native) error {
	d, err := platform.Downcast[*display](dpy)
	if err != nil {
		return err
	}
	if b.api.ReleaseDC(0, d.hdc) == 0 {
		return errstate.Errorf(errstate.UnknownError, "ReleaseDC failed")
	}
	return nil
}

func (b *Backend) DisplaySupportsContextAPI(dpy platform.Native, api platform.ContextAPI) bool {
	return api == platform.OpenGL
}

func (b *Backend) ConfigChoose(dpy platform.Native, attrs platform.ConfigAttrs) (platform.Native, error) {
	d, err := platform.Downcast[*display](dpy)
	if err != nil {
		return nil, err
	}
	if attrs.API != platform.OpenGL {
		return nil, errstate.Errorf(errstate.UnsupportedOnPlatform, "WGL cannot create %v contexts", attrs.API)
	}
	pfd := descriptorFor(attrs)
	format := b.api.ChoosePixelFormat(d.hdc, &pfd)
	if format == 0 {
		return nil, errstate.Errorf(errstate.UnsupportedOnPlatform, "ChoosePixelFormat found no matching pixel format")
	}
	var got pixelFormatDescriptor
	if b.api.DescribePixelFormat(d.hdc, format, uint32(pfd.Size), &got) == 0 {
		return nil, errstate.Errorf(errstate.UnknownError, "DescribePixelFormat(%d) failed", format)
	}
	b.opts.Logger.Debug("wgl pixel format chosen", "format", format, "color_bits", got.ColorBits, "depth_bits", got.DepthBits)
	return &config{dpy: d, format: format, attrs: attrs}, nil
}

func (b *Backend) ConfigDestroy(cfg platform.Native) error {
	_, err := platform.Downcast[*config](cfg)
	return err
}

func (b *Backend) ContextCreate(cfg platform.Native, share platform.Native) (platform.Native, error) {
	return nil, platform.NotImplemented(platform.KindWGL, "context creation")
}

func (b *Backend) ContextDestroy(ctx platform.Native) error {
	return platform.NotImplemented(platform.KindWGL, "context destruction")
}

// WindowCreate records the config only; there is no native window yet.
func (b *Backend) WindowCreate(cfg platform.Native, width, height int) (platform.Native, error) {
	c, err := platform.Downcast[*config](cfg)
	if err != nil {
		return nil, err
	}
	return &window{cfg: c}, nil
}

func (b *Backend) WindowDestroy(win platform.Native) error {
	_, err := platform.Downcast[*window](win)
	return err
}

func (b *Backend) WindowShow(win platform.Native) error {
	return platform.Unsupported(platform.KindWGL, "window show")
}

func (b *Backend) WindowResize(win platform.Native, width, height int) error {
	return platform.Unsupported(platform.KindWGL, "window resize")
}

func (b *Backend) WindowSwapBuffers(win platform.Native) error {
	return platform.Unsupported(platform.KindWGL, "swap buffers")
}

// MakeCurrent can only release, since no context can exist yet.
func (b *Backend) MakeCurrent(dpy, win, ctx platform.Native) error {
	if ctx != nil {
		return platform.NotImplemented(platform.KindWGL, "make current")
	}
	if b.api.MakeCurrent(0, 0) == 0 {
		return errstate.Errorf(errstate.UnknownError, "wglMakeCurrent(NULL, NULL) failed")
	}
	return nil
}
