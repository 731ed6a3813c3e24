// Package platformtest provides an in-memory Backend for exercising the
// object model without native libraries.
package platformtest

import (
	"sort"
	"sync"
	"testing"

	"github.com/1broseidon/glport/internal/errstate"
	"github.com/1broseidon/glport/internal/platform"
)

type display struct{ name string }

type config struct {
	dpy   *display
	attrs platform.ConfigAttrs
}

type context struct{ cfg *config }

type window struct {
	cfg           *config
	width, height int
	shown         bool
	swaps         int
}

// Backend records every call and keeps a count of live native objects per
// kind ("display", "config", "context", "window").
type Backend struct {
	K platform.Kind

	// APIs limits DisplaySupportsContextAPI; nil accepts every API.
	APIs map[platform.ContextAPI]bool
	// NoWindows makes every window operation UnsupportedOnPlatform.
	NoWindows bool
	// Procs answers GetProcAddress.
	Procs map[string]uintptr

	mu       sync.Mutex
	fail     map[string]errstate.Code
	live     map[string]int
	calls    []string
	tornDown int
	curWin   *window
	curCtx   *context
}

// New returns a fake backend for kind.
func New(kind platform.Kind) *Backend {
	return &Backend{
		K:    kind,
		fail: make(map[string]errstate.Code),
		live: make(map[string]int),
	}
}

// Install registers b under its kind for the duration of the test.
func Install(t testing.TB, b *Backend) {
	t.Helper()
	platform.Register(b.K, func(platform.Options) (platform.Backend, error) {
		return b, nil
	})
	t.Cleanup(func() { platform.Unregister(b.K) })
}

// InstallFailing registers a factory for kind that reports code.
func InstallFailing(t testing.TB, kind platform.Kind, code errstate.Code) {
	t.Helper()
	platform.Register(kind, func(platform.Options) (platform.Backend, error) {
		return nil, errstate.Errorf(code, "%v libraries are not available", kind)
	})
	t.Cleanup(func() { platform.Unregister(kind) })
}

// Fail makes op ("DisplayConnect", "ConfigChoose", ...) report code.
func (b *Backend) Fail(op string, code errstate.Code) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail[op] = code
}

// Live returns the number of live native objects of the given kind.
func (b *Backend) Live(kind string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.live[kind]
}

// Leaks lists the kinds that still have live native objects.
func (b *Backend) Leaks() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for k, n := range b.live {
		if n != 0 {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Calls returns the operations invoked so far, in order.
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// TornDown returns how many times Teardown ran.
func (b *Backend) TornDown() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tornDown
}

// Swaps returns the swap count of a window payload.
func Swaps(n platform.Native) int {
	if w, ok := n.(*window); ok {
		return w.swaps
	}
	return -1
}

func (b *Backend) enter(op string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, op)
	if code, ok := b.fail[op]; ok {
		return errstate.Errorf(code, "%s failed", op)
	}
	return nil
}

func (b *Backend) add(kind string, delta int) {
	b.mu.Lock()
	b.live[kind] += delta
	b.mu.Unlock()
}

func (b *Backend) Kind() platform.Kind { return b.K }

func (b *Backend) Teardown() error {
	err := b.enter("Teardown")
	b.mu.Lock()
	b.tornDown++
	b.mu.Unlock()
	return err
}

func (b *Backend) GetProcAddress(name string) uintptr {
	b.enter("GetProcAddress")
	return b.Procs[name]
}

func (b *Backend) DisplayConnect(name string) (platform.Native, error) {
	if err := b.enter("DisplayConnect"); err != nil {
		return nil, err
	}
	b.add("display", 1)
	return &display{name: name}, nil
}

func (b *Backend) DisplayDisconnect(dpy platform.Native) error {
	if _, err := platform.Downcast[*display](dpy); err != nil {
		return err
	}
	b.add("display", -1)
	return b.enter("DisplayDisconnect")
}

func (b *Backend) DisplaySupportsContextAPI(dpy platform.Native, api platform.ContextAPI) bool {
	b.enter("DisplaySupportsContextAPI")
	if b.APIs == nil {
		return true
	}
	return b.APIs[api]
}

func (b *Backend) ConfigChoose(dpy platform.Native, attrs platform.ConfigAttrs) (platform.Native, error) {
	d, err := platform.Downcast[*display](dpy)
	if err != nil {
		return nil, err
	}
	if err := b.enter("ConfigChoose"); err != nil {
		return nil, err
	}
	if b.APIs != nil && !b.APIs[attrs.API] {
		return nil, errstate.Errorf(errstate.UnsupportedOnPlatform, "%v is not supported", attrs.API)
	}
	b.add("config", 1)
	return &config{dpy: d, attrs: attrs}, nil
}

func (b *Backend) ConfigDestroy(cfg platform.Native) error {
	if _, err := platform.Downcast[*config](cfg); err != nil {
		return err
	}
	b.add("config", -1)
	return b.enter("ConfigDestroy")
}

func (b *Backend) ContextCreate(cfg platform.Native, share platform.Native) (platform.Native, error) {
	c, err := platform.Downcast[*config](cfg)
	if err != nil {
		return nil, err
	}
	if share != nil {
		if _, err := platform.Downcast[*context](share); err != nil {
			return nil, err
		}
	}
	if err := b.enter("ContextCreate"); err != nil {
		return nil, err
	}
	b.add("context", 1)
	return &context{cfg: c}, nil
}

func (b *Backend) ContextDestroy(ctx platform.Native) error {
	c, err := platform.Downcast[*context](ctx)
	if err != nil {
		return err
	}
	b.mu.Lock()
	if b.curCtx == c {
		b.curCtx = nil
	}
	b.mu.Unlock()
	b.add("context", -1)
	return b.enter("ContextDestroy")
}

func (b *Backend) WindowCreate(cfg platform.Native, width, height int) (platform.Native, error) {
	c, err := platform.Downcast[*config](cfg)
	if err != nil {
		return nil, err
	}
	if err := b.enter("WindowCreate"); err != nil {
		return nil, err
	}
	if b.NoWindows {
		return nil, platform.Unsupported(b.K, "window creation")
	}
	b.add("window", 1)
	return &window{cfg: c, width: width, height: height}, nil
}

func (b *Backend) window(op string, win platform.Native) (*window, error) {
	w, err := platform.Downcast[*window](win)
	if err != nil {
		return nil, err
	}
	if err := b.enter(op); err != nil {
		return nil, err
	}
	return w, nil
}

func (b *Backend) WindowDestroy(win platform.Native) error {
	w, err := platform.Downcast[*window](win)
	if err != nil {
		return err
	}
	b.mu.Lock()
	if b.curWin == w {
		b.curWin = nil
	}
	b.mu.Unlock()
	b.add("window", -1)
	return b.enter("WindowDestroy")
}

func (b *Backend) WindowShow(win platform.Native) error {
	w, err := b.window("WindowShow", win)
	if err != nil {
		return err
	}
	w.shown = true
	return nil
}

func (b *Backend) WindowResize(win platform.Native, width, height int) error {
	w, err := b.window("WindowResize", win)
	if err != nil {
		return err
	}
	w.width, w.height = width, height
	return nil
}

func (b *Backend) WindowSwapBuffers(win platform.Native) error {
	w, err := b.window("WindowSwapBuffers", win)
	if err != nil {
		return err
	}
	w.swaps++
	return nil
}

func (b *Backend) MakeCurrent(dpy, win, ctx platform.Native) error {
	if err := b.enter("MakeCurrent"); err != nil {
		return err
	}
	w, _ := win.(*window)
	c, _ := ctx.(*context)
	b.mu.Lock()
	b.curWin, b.curCtx = w, c
	b.mu.Unlock()
	return nil
}

// Current reports whether a context and a window are bound.
func (b *Backend) Current() (ctx, win bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.curCtx != nil, b.curWin != nil
}

func (b *Backend) DescribeDisplay(dpy platform.Native) (platform.DisplayInfo, error) {
	d, err := platform.Downcast[*display](dpy)
	if err != nil {
		return platform.DisplayInfo{}, err
	}
	if err := b.enter("DescribeDisplay"); err != nil {
		return platform.DisplayInfo{}, err
	}
	return platform.DisplayInfo{
		Vendor:  "fake",
		Version: "1.0",
		Outputs: []platform.Output{{Name: d.name, Width: 640, Height: 480}},
	}, nil
}
