package x11egl

import (
	"io"
	"log/slog"
	"runtime"
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/glport/internal/backend/egl"
	"github.com/1broseidon/glport/internal/errstate"
	"github.com/1broseidon/glport/internal/platform"
	"github.com/1broseidon/glport/internal/x11"
)

type fakeWindow struct {
	id        xproto.Window
	destroyed *int
}

func (w *fakeWindow) ID() xproto.Window { return w.id }
func (w *fakeWindow) Map() error { return nil }
func (w *fakeWindow) Resize(int, int) error { return nil }
func (w *fakeWindow) Destroy() error { *w.destroyed++; return nil }

func TestWindowCreate_DestroysXWindowWhenSurfaceFails(t *testing.T) {
	runtime.LockOSThread()
	errstate.Reset()
	t.Cleanup(func() {
		errstate.Release()
		runtime.UnlockOSThread()
	})

	var created, destroyed, surfaces int
	prev := createWindow
	createWindow = func(conn *x11.Connection, visual xproto.Visualid, width, height int) (nativeWindow, error) {
		if visual != 0x21 {
			t.Fatalf("expected the config's visual, got %#x", uint32(visual))
		}
		created++
		return &fakeWindow{id: 0x400001, destroyed: &destroyed}, nil
	}
	t.Cleanup(func() { createWindow = prev })

	failSurface := true
	b := &Backend{Core: &egl.Core{
		API: &egl.API{
			GetError: func() int32 { return egl.BAD_NATIVE_WINDOW },
			CreateWindowSurface: func(dpy, config, win uintptr, attribs *int32) uintptr {
				if failSurface {
					return 0
				}
				surfaces++
				return 0x5
			},
			DestroySurface: func(dpy, surface uintptr) uint32 { surfaces--; return 1 },
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}}
	d := &display{egl: &egl.Display{Handle: 0xd0}}
	cfg := &egl.Config{Display: d, Handle: 1, VisualID: 0x21, Attrs: platform.DefaultConfigAttrs(platform.OpenGL)}

	_, err := b.WindowCreate(cfg, 64, 48)
	if errstate.CodeOf(err) != errstate.UnknownError {
		t.Fatalf("expected UnknownError, got %v", err)
	}
	if created != 1 || destroyed != 1 {
		t.Fatalf("X window leaked: created %d, destroyed %d", created, destroyed)
	}

	errstate.Reset()
	failSurface = false
	win, err := b.WindowCreate(cfg, 64, 48)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := b.WindowDestroy(win); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if created != 2 || destroyed != 2 || surfaces != 0 {
		t.Fatalf("unbalanced objects: created %d, destroyed %d, surfaces %d", created, destroyed, surfaces)
	}
}
