package x11

import (
	"runtime"
	"testing"
	"unsafe"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/glport/internal/errstate"
)

func TestDepthForVisual(t *testing.T) {
	screen := &xproto.ScreenInfo{
		RootVisual: 0x21,
		RootDepth:  24,
		AllowedDepths: []xproto.DepthInfo{
			{Depth: 24, Visuals: []xproto.VisualInfo{{VisualId: 0x21}, {VisualId: 0x22}}},
			{Depth: 32, Visuals: []xproto.VisualInfo{{VisualId: 0x5e}}},
		},
	}

	tests := []struct {
		visual xproto.Visualid
		depth  byte
		ok     bool
	}{
		{0x21, 24, true},
		{0x22, 24, true},
		{0x5e, 32, true},
		{0x99, 0, false},
	}
	for _, tt := range tests {
		depth, ok := depthForVisual(screen, tt.visual)
		if depth != tt.depth || ok != tt.ok {
			t.Fatalf("visual 0x%x: expected (%d, %v), got (%d, %v)", tt.visual, tt.depth, tt.ok, depth, ok)
		}
	}

	if _, ok := depthForVisual(nil, 0x21); ok {
		t.Fatalf("expected nil screen to match nothing")
	}
}

func TestOnXError_KeepsFirstError(t *testing.T) {
	trapMu.Lock()
	defer trapMu.Unlock()
	trapped = xErrorEvent{}
	defer func() { trapped = xErrorEvent{} }()

	first := &xErrorEvent{ErrorCode: 8, RequestCode: 152, MinorCode: 3}
	second := &xErrorEvent{ErrorCode: 11}
	onXError(0, uintptr(unsafe.Pointer(first)))
	onXError(0, uintptr(unsafe.Pointer(second)))
	onXError(0, 0)

	if trapped.ErrorCode != 8 || trapped.RequestCode != 152 || trapped.MinorCode != 3 {
		t.Fatalf("expected the first error to stick, got %+v", trapped)
	}
}

func TestCreateWindow_RejectsOversizedWindows(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer errstate.Release()

	c := &Connection{}
	for _, size := range [][2]int{{70000, 100}, {100, 65536}, {0, 10}} {
		errstate.Reset()
		_, err := c.CreateWindow(0x21, size[0], size[1])
		if errstate.CodeOf(err) != errstate.BadParameter {
			t.Fatalf("%dx%d: expected BadParameter, got %v", size[0], size[1], err)
		}
		if errstate.LastCode() != errstate.BadParameter {
			t.Fatalf("%dx%d: error state not set", size[0], size[1])
		}
	}
}
