package surfaceless

import (
	"runtime"
	"testing"

	"github.com/1broseidon/glport/internal/errstate"
	"github.com/1broseidon/glport/internal/platform"
)

func TestWindowOpsAreUnsupported(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer errstate.Release()

	b := &Backend{}
	ops := map[string]func() error{
		"create":  func() error { _, err := b.WindowCreate(nil, 1, 1); return err },
		"destroy": func() error { return b.WindowDestroy(nil) },
		"show":    func() error { return b.WindowShow(nil) },
		"resize":  func() error { return b.WindowResize(nil, 2, 2) },
		"swap":    func() error { return b.WindowSwapBuffers(nil) },
	}
	for name, op := range ops {
		for i := 0; i < 2; i++ {
			errstate.Reset()
			err := op()
			if errstate.CodeOf(err) != errstate.UnsupportedOnPlatform {
				t.Fatalf("%s: expected UnsupportedOnPlatform, got %v", name, err)
			}
			if errstate.LastCode() != errstate.UnsupportedOnPlatform {
				t.Fatalf("%s: expected the failure to be reported", name)
			}
		}
	}
}

var _ platform.Backend = (*Backend)(nil)
