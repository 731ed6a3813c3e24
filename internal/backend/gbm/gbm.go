//go:build linux

package gbm

import (
	"path/filepath"
	"sort"

	"golang.org/x/sys/unix"

	"github.com/1broseidon/glport/internal/backend/egl"
	"github.com/1broseidon/glport/internal/errstate"
	"github.com/1broseidon/glport/internal/platform"
)

func init() {
	platform.Register(platform.KindGBM, New)
}

// renderNodeGlob is replaced in tests.
var renderNodeGlob = "/dev/dri/renderD*"

// Backend is the gbm backend table.
type Backend struct {
	*egl.Core
	gbm  *api
	opts platform.Options
}

type display struct {
	egl  *egl.Display
	path string
	fd   int
	dev  uintptr
}

func (d *display) EGL() *egl.Display { return d.egl }

type window struct {
	dpy     *display
	cfg     *egl.Config
	gbm     uintptr
	surface uintptr
	front   uintptr
}

func (w *window) EGLSurface() uintptr { return w.surface }

// New loads libEGL and libgbm.
func New(opts platform.Options) (platform.Backend, error) {
	core, err := egl.NewCore(platform.KindGBM, opts)
	if err != nil {
		return nil, err
	}
	gbm, err := loadAPI(opts.LibraryNames("gbm", DefaultLibraries...))
	if err != nil {
		core.Teardown()
		return nil, err
	}
	core.VisualMatch = func(attrs platform.ConfigAttrs, visual int32) bool {
		return uint32(visual) == formatFor(attrs.AlphaSize)
	}
	return &Backend{Core: core, gbm: gbm, opts: opts}, nil
}

func (b *Backend) Teardown() error {
	err := b.Core.Teardown()
	if gerr := b.gbm.lib.Close(); err == nil {
		err = gerr
	}
	return err
}

// devicePath resolves which DRM node to open: the display name, then the
// configured device, then the first render node.
func devicePath(name, configured string) (string, error) {
	if name != "" {
		return name, nil
	}
	if configured != "" {
		return configured, nil
	}
	nodes, err := filepath.Glob(renderNodeGlob)
	if err != nil || len(nodes) == 0 {
		return "", errstate.Errorf(errstate.UnsupportedOnPlatform, "no DRM render node matches %s", renderNodeGlob)
	}
	sort.Strings(nodes)
	return nodes[0], nil
}

func (b *Backend) DisplayConnect(name string) (platform.Native, error) {
	path, err := devicePath(name, b.opts.Device)
	if err != nil {
		return nil, err
	}
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errstate.Errorf(errstate.UnknownError, "open %s: %v", path, err)
	}
	dev := b.gbm.CreateDevice(int32(fd))
	if dev == 0 {
		unix.Close(fd)
		return nil, errstate.Errorf(errstate.UnknownError, "gbm_create_device(%s) failed", path)
	}
	d, err := b.OpenDisplay(egl.PLATFORM_GBM_KHR, dev, true)
	if err != nil {
		b.gbm.DeviceDestroy(dev)
		unix.Close(fd)
		return nil, err
	}
	b.opts.Logger.Debug("gbm device opened", "device", path)
	return &display{egl: d, path: path, fd: fd, dev: dev}, nil
}

func (b *Backend) DisplayDisconnect(dpy platform.Native) error {
	d, err := platform.Downcast[*display](dpy)
	if err != nil {
		return err
	}
	err = b.CloseDisplay(d.egl)
	b.gbm.DeviceDestroy(d.dev)
	if cerr := unix.Close(d.fd); cerr != nil && err == nil {
		err = errstate.Errorf(errstate.UnknownError, "close %s: %v", d.path, cerr)
	}
	return err
}

func (b *Backend) DescribeDisplay(dpy platform.Native) (platform.DisplayInfo, error) {
	d, err := platform.Downcast[*display](dpy)
	if err != nil {
		return platform.DisplayInfo{}, err
	}
	info := b.Describe(d.egl)
	info.Device = d.path
	return info, nil
}

// surfaces creates a gbm_surface and its EGLSurface.
func (b *Backend) surfaces(d *display, cfg *egl.Config, width, height int) (uintptr, uintptr, error) {
	format := formatFor(cfg.Attrs.AlphaSize)
	gs := b.gbm.SurfaceCreate(d.dev, uint32(width), uint32(height), format, BO_USE_SCANOUT|BO_USE_RENDERING)
	if gs == 0 {
		return 0, 0, errstate.Errorf(errstate.UnknownError, "gbm_surface_create(%dx%d) failed", width, height)
	}
	surface, err := b.CreateWindowSurface(cfg, gs)
	if err != nil {
		b.gbm.SurfaceDestroy(gs)
		return 0, 0, err
	}
	return gs, surface, nil
}

func (b *Backend) release(w *window) error {
	if w.front != 0 {
		b.gbm.SurfaceReleaseBuffer(w.gbm, w.front)
		w.front = 0
	}
	err := b.DestroySurface(w.dpy.egl, w.surface)
	b.gbm.SurfaceDestroy(w.gbm)
	return err
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
	gs, surface, err := b.surfaces(d, config, width, height)
	if err != nil {
		return nil, err
	}
	return &window{dpy: d, cfg: config, gbm: gs, surface: surface}, nil
}

func (b *Backend) WindowDestroy(win platform.Native) error {
	w, err := platform.Downcast[*window](win)
	if err != nil {
		return err
	}
	return b.release(w)
}

// WindowShow has nothing to map; presenting is up to the caller's KMS code.
func (b *Backend) WindowShow(win platform.Native) error {
	_, err := platform.Downcast[*window](win)
	return err
}

// WindowResize recreates the surfaces. The old ones stay when creation
// fails.
func (b *Backend) WindowResize(win platform.Native, width, height int) error {
	w, err := platform.Downcast[*window](win)
	if err != nil {
		return err
	}
	gs, surface, err := b.surfaces(w.dpy, w.cfg, width, height)
	if err != nil {
		return err
	}
	err = b.release(w)
	w.gbm, w.surface = gs, surface
	return err
}

func (b *Backend) WindowSwapBuffers(win platform.Native) error {
	w, err := platform.Downcast[*window](win)
	if err != nil {
		return err
	}
	if err := b.SwapBuffers(w.dpy.egl, w.surface); err != nil {
		return err
	}
	bo := b.gbm.SurfaceLockFrontBuffer(w.gbm)
	if bo == 0 {
		return errstate.Errorf(errstate.UnknownError, "gbm_surface_lock_front_buffer failed")
	}
	if w.front != 0 {
		b.gbm.SurfaceReleaseBuffer(w.gbm, w.front)
	}
	w.front = bo
	return nil
}
