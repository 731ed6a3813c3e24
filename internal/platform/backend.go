// Package platform is the caller-facing object model of glport: a Platform
// bound to one native backend, and the Display, Config, Context and Window
// handles created under it.
//
// Every handle keeps a back-reference to its Platform, and every operation
// dispatches through that Platform's Backend. Backends attach their own
// payload to each handle and recover it with Downcast.
package platform

import (
	"io"
	"log/slog"
	"runtime"

	"github.com/1broseidon/glport/internal/errstate"
)

// Native is the backend payload attached to a handle.
type Native any

// Backend is the operation table a native stack provides. Operations a
// backend cannot perform return an UnsupportedOnPlatform or NotImplemented
// error; none may be left unimplemented.
//
// Backends report their own failures through errstate before returning
// them.
type Backend interface {
	Kind() Kind

	// Teardown releases the native libraries. It is called once, after
	// every display has been disconnected.
	Teardown() error

	// GetProcAddress resolves a client API entry point, 0 when unknown.
	GetProcAddress(name string) uintptr

	DisplayConnect(name string) (Native, error)
	DisplayDisconnect(dpy Native) error
	DisplaySupportsContextAPI(dpy Native, api ContextAPI) bool

	ConfigChoose(dpy Native, attrs ConfigAttrs) (Native, error)
	ConfigDestroy(cfg Native) error

	// ContextCreate receives a nil share when no sharing was requested.
	ContextCreate(cfg Native, share Native) (Native, error)
	ContextDestroy(ctx Native) error

	WindowCreate(cfg Native, width, height int) (Native, error)
	WindowDestroy(win Native) error
	WindowShow(win Native) error
	WindowResize(win Native, width, height int) error
	WindowSwapBuffers(win Native) error

	// MakeCurrent receives nil win and ctx to release the thread's binding.
	MakeCurrent(dpy, win, ctx Native) error
}

// Options carries settings from the caller layer into a backend factory.
type Options struct {
	Logger *slog.Logger

	// Libraries overrides library search names, keyed by "egl", "gl",
	// "gles1", "gles2", "x11" or "gbm".
	Libraries map[string][]string

	// Device is the DRM node used by the GBM backend.
	Device string
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// LibraryNames returns the override for key, or defaults.
func (o Options) LibraryNames(key string, defaults ...string) []string {
	if names := o.Libraries[key]; len(names) > 0 {
		return names
	}
	return defaults
}

// Downcast recovers a backend payload. A mismatch means a handle reached a
// backend that did not create it, which is reported as an internal error at
// the call site.
func Downcast[T any](n Native) (T, error) {
	v, ok := n.(T)
	if !ok {
		var zero T
		_, file, line, _ := runtime.Caller(1)
		return zero, errstate.InternalAt(file, line, "native payload is %T, expected %T", n, zero)
	}
	return v, nil
}

// Unsupported reports that op is not available on kind.
func Unsupported(kind Kind, op string) error {
	return errstate.Errorf(errstate.UnsupportedOnPlatform, "%s is not supported on %v", op, kind)
}

// NotImplemented reports that op is not implemented for kind yet.
func NotImplemented(kind Kind, op string) error {
	return errstate.Errorf(errstate.NotImplemented, "%s is not implemented for %v", op, kind)
}

// DisplayInfo describes a connected display for diagnostics.
type DisplayInfo struct {
	Vendor     string   `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Version    string   `json:"version,omitempty" yaml:"version,omitempty"`
	ClientAPIs string   `json:"client_apis,omitempty" yaml:"client_apis,omitempty"`
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	Outputs    []Output `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	Device     string   `json:"device,omitempty" yaml:"device,omitempty"`
}

// Output is a monitor attached to a display.
type Output struct {
	Name   string `json:"name" yaml:"name"`
	X      int    `json:"x" yaml:"x"`
	Y      int    `json:"y" yaml:"y"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// Describer is implemented by backends that can report display details.
type Describer interface {
	DescribeDisplay(dpy Native) (DisplayInfo, error)
}
