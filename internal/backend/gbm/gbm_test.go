//go:build linux

package gbm

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/1broseidon/glport/internal/backend/egl"
	"github.com/1broseidon/glport/internal/errstate"
	"github.com/1broseidon/glport/internal/platform"
)

func TestDevicePath(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	errstate.Reset()
	defer errstate.Release()

	dir := t.TempDir()
	for _, name := range []string{"renderD129", "renderD128"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	prev := renderNodeGlob
	renderNodeGlob = filepath.Join(dir, "renderD*")
	t.Cleanup(func() { renderNodeGlob = prev })

	if got, _ := devicePath("/dev/dri/card0", "/dev/dri/renderD130"); got != "/dev/dri/card0" {
		t.Fatalf("display name must win, got %q", got)
	}
	if got, _ := devicePath("", "/dev/dri/renderD130"); got != "/dev/dri/renderD130" {
		t.Fatalf("configured device must win over discovery, got %q", got)
	}
	if got, _ := devicePath("", ""); got != filepath.Join(dir, "renderD128") {
		t.Fatalf("expected first render node, got %q", got)
	}

	renderNodeGlob = filepath.Join(dir, "none*")
	_, err := devicePath("", "")
	if errstate.CodeOf(err) != errstate.UnsupportedOnPlatform {
		t.Fatalf("expected UnsupportedOnPlatform, got %v", err)
	}
}

func TestFormatFor(t *testing.T) {
	if formatFor(0) != FORMAT_XRGB8888 || formatFor(8) != FORMAT_ARGB8888 {
		t.Fatalf("unexpected formats %#x %#x", formatFor(0), formatFor(8))
	}
}

// fakeStack is an in-memory libgbm plus the libEGL calls the backend makes.
// Every create bumps a live counter and every destroy drops it.
type fakeStack struct {
	devices     int
	gbmSurfaces int
	eglSurfaces int
	displays    int

	failDevice     bool
	failEGLDisplay bool
	failGBMSurface bool
	failEGLSurface bool

	lastFd int32
}

func (f *fakeStack) backend() *Backend {
	eglAPI := &egl.API{
		GetDisplay: func(native uintptr) uintptr { return 0 },
		GetPlatformDisplay: func(p uint32, native uintptr, attribs *uintptr) uintptr {
			if f.failEGLDisplay {
				return 0
			}
			f.displays++
			return 0xd0
		},
		Initialize: func(dpy uintptr, major, minor *int32) uint32 {
			*major, *minor = 1, 5
			return 1
		},
		Terminate:   func(dpy uintptr) uint32 { f.displays--; return 1 },
		GetError:    func() int32 { return egl.BAD_ALLOC },
		QueryString: func(dpy uintptr, name int32) string { return "" },
		MakeCurrent: func(dpy, draw, read, ctx uintptr) uint32 { return 1 },
		CreateWindowSurface: func(dpy, config, win uintptr, attribs *int32) uintptr {
			if f.failEGLSurface {
				return 0
			}
			f.eglSurfaces++
			return 0xe0 + win
		},
		DestroySurface: func(dpy, surface uintptr) uint32 { f.eglSurfaces--; return 1 },
		SwapBuffers:    func(dpy, surface uintptr) uint32 { return 1 },
	}
	gbmAPI := &api{
		CreateDevice: func(fd int32) uintptr {
			f.lastFd = fd
			if f.failDevice {
				return 0
			}
			f.devices++
			return 0x60
		},
		DeviceDestroy: func(dev uintptr) { f.devices-- },
		SurfaceCreate: func(dev uintptr, width, height, format, flags uint32) uintptr {
			if f.failGBMSurface {
				return 0
			}
			f.gbmSurfaces++
			return uintptr(width)
		},
		SurfaceDestroy:         func(surface uintptr) { f.gbmSurfaces-- },
		SurfaceLockFrontBuffer: func(surface uintptr) uintptr { return 0xb0 },
		SurfaceReleaseBuffer:   func(surface, bo uintptr) {},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Backend{
		Core: &egl.Core{API: eglAPI, Logger: logger, SurfaceType: egl.WINDOW_BIT},
		gbm:  gbmAPI,
		opts: platform.Options{Logger: logger},
	}
}

func (f *fakeStack) live() [4]int {
	return [4]int{f.devices, f.gbmSurfaces, f.eglSurfaces, f.displays}
}

func pinned(t *testing.T) {
	t.Helper()
	runtime.LockOSThread()
	errstate.Reset()
	t.Cleanup(func() {
		errstate.Release()
		runtime.UnlockOSThread()
	})
}

// fakeNode returns a regular file the backend can open in place of a DRM
// node.
func fakeNode(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "renderD128")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func fdClosed(fd int32) bool {
	_, err := unix.FcntlInt(uintptr(fd), unix.F_GETFD, 0)
	return err == unix.EBADF
}

func TestDisplayConnect_RollsBackOnFailure(t *testing.T) {
	pinned(t)
	node := fakeNode(t)

	f := &fakeStack{failDevice: true}
	_, err := f.backend().DisplayConnect(node)
	if errstate.CodeOf(err) != errstate.UnknownError {
		t.Fatalf("expected UnknownError, got %v", err)
	}
	if !fdClosed(f.lastFd) || f.live() != [4]int{} {
		t.Fatalf("device failure leaked: fd closed %v, live %v", fdClosed(f.lastFd), f.live())
	}

	errstate.Reset()
	f = &fakeStack{failEGLDisplay: true}
	_, err = f.backend().DisplayConnect(node)
	if errstate.CodeOf(err) != errstate.OutOfMemory {
		t.Fatalf("expected OutOfMemory, got %v", err)
	}
	if !fdClosed(f.lastFd) || f.live() != [4]int{} {
		t.Fatalf("EGL failure leaked: fd closed %v, live %v", fdClosed(f.lastFd), f.live())
	}
}

func TestDisplayConnect_DisconnectReleasesEverything(t *testing.T) {
	pinned(t)
	f := &fakeStack{}
	b := f.backend()

	dpy, err := b.DisplayConnect(fakeNode(t))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if f.live() != [4]int{1, 0, 0, 1} {
		t.Fatalf("unexpected live objects %v", f.live())
	}
	if err := b.DisplayDisconnect(dpy); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if !fdClosed(f.lastFd) || f.live() != [4]int{} {
		t.Fatalf("disconnect leaked: fd closed %v, live %v", fdClosed(f.lastFd), f.live())
	}
}

func TestWindowCreate_RollsBackOnFailure(t *testing.T) {
	pinned(t)
	f := &fakeStack{}
	b := f.backend()
	dpy, err := b.DisplayConnect(fakeNode(t))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer b.DisplayDisconnect(dpy)
	cfg := &egl.Config{
		Display: dpy.(*display),
		Handle:  1,
		Attrs:   platform.DefaultConfigAttrs(platform.OpenGLES2),
	}

	f.failGBMSurface = true
	if _, err := b.WindowCreate(cfg, 64, 64); errstate.CodeOf(err) != errstate.UnknownError {
		t.Fatalf("expected UnknownError, got %v", err)
	}
	f.failGBMSurface = false

	errstate.Reset()
	f.failEGLSurface = true
	if _, err := b.WindowCreate(cfg, 64, 64); errstate.CodeOf(err) != errstate.OutOfMemory {
		t.Fatalf("expected OutOfMemory, got %v", err)
	}
	if f.gbmSurfaces != 0 || f.eglSurfaces != 0 {
		t.Fatalf("window failure leaked %d gbm and %d egl surfaces", f.gbmSurfaces, f.eglSurfaces)
	}
}

func TestWindowResize_KeepsOldSurfacesOnFailure(t *testing.T) {
	pinned(t)
	f := &fakeStack{}
	b := f.backend()
	dpy, err := b.DisplayConnect(fakeNode(t))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer b.DisplayDisconnect(dpy)
	cfg := &egl.Config{
		Display: dpy.(*display),
		Handle:  1,
		Attrs:   platform.DefaultConfigAttrs(platform.OpenGLES2),
	}

	win, err := b.WindowCreate(cfg, 64, 64)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	w := win.(*window)

	f.failEGLSurface = true
	if err := b.WindowResize(win, 128, 128); err == nil {
		t.Fatalf("expected resize to fail")
	}
	if w.gbm != 64 || f.gbmSurfaces != 1 || f.eglSurfaces != 1 {
		t.Fatalf("failed resize touched the window: gbm %#x, live %v", w.gbm, f.live())
	}

	f.failEGLSurface = false
	errstate.Reset()
	if err := b.WindowResize(win, 128, 128); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if w.gbm != 128 || f.gbmSurfaces != 1 || f.eglSurfaces != 1 {
		t.Fatalf("resize did not replace the surfaces: gbm %#x, live %v", w.gbm, f.live())
	}

	if err := b.WindowSwapBuffers(win); err != nil || w.front != 0xb0 {
		t.Fatalf("swap: %v (front %#x)", err, w.front)
	}
	if err := b.WindowDestroy(win); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if f.gbmSurfaces != 0 || f.eglSurfaces != 0 {
		t.Fatalf("destroy leaked %d gbm and %d egl surfaces", f.gbmSurfaces, f.eglSurfaces)
	}
}
