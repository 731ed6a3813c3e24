// Package surfaceless implements the surfaceless_egl platform on
// EGL_MESA_platform_surfaceless. It renders offscreen only, so every window
// operation is unsupported.
package surfaceless

import (
	"github.com/1broseidon/glport/internal/backend/egl"
	"github.com/1broseidon/glport/internal/platform"
)

func init() {
	platform.Register(platform.KindSurfacelessEGL, New)
}

// Backend is the surfaceless_egl backend table.
type Backend struct {
	*egl.Core
}

type display struct {
	egl *egl.Display
}

func (d *display) EGL() *egl.Display { return d.egl }

// New loads libEGL.
func New(opts platform.Options) (platform.Backend, error) {
	core, err := egl.NewCore(platform.KindSurfacelessEGL, opts)
	if err != nil {
		return nil, err
	}
	core.SurfaceType = 0
	return &Backend{Core: core}, nil
}

// DisplayConnect ignores name; the surfaceless platform has one display.
func (b *Backend) DisplayConnect(name string) (platform.Native, error) {
	d, err := b.OpenDisplay(egl.PLATFORM_SURFACELESS_MESA, 0, false)
	if err != nil {
		return nil, err
	}
	return &display{egl: d}, nil
}

func (b *Backend) DisplayDisconnect(dpy platform.Native) error {
	d, err := platform.Downcast[*display](dpy)
	if err != nil {
		return err
	}
	return b.CloseDisplay(d.egl)
}

func (b *Backend) DescribeDisplay(dpy platform.Native) (platform.DisplayInfo, error) {
	d, err := platform.Downcast[*display](dpy)
	if err != nil {
		return platform.DisplayInfo{}, err
	}
	return b.Describe(d.egl), nil
}

func (b *Backend) WindowCreate(cfg platform.Native, width, height int) (platform.Native, error) {
	return nil, platform.Unsupported(platform.KindSurfacelessEGL, "window creation")
}

func (b *Backend) WindowDestroy(win platform.Native) error {
	return platform.Unsupported(platform.KindSurfacelessEGL, "window destruction")
}

func (b *Backend) WindowShow(win platform.Native) error {
	return platform.Unsupported(platform.KindSurfacelessEGL, "window show")
}

func (b *Backend) WindowResize(win platform.Native, width, height int) error {
	return platform.Unsupported(platform.KindSurfacelessEGL, "window resize")
}

func (b *Backend) WindowSwapBuffers(win platform.Native) error {
	return platform.Unsupported(platform.KindSurfacelessEGL, "swap buffers")
}
