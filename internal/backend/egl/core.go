package egl

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/1broseidon/glport/internal/errstate"
	"github.com/1broseidon/glport/internal/platform"
)

// Display is an initialized EGLDisplay.
type Display struct {
	Handle     uintptr
	Major      int32
	Minor      int32
	Vendor     string
	ClientAPIs string
	Extensions string

	createContext bool
}

// DisplayHolder is implemented by the display payload of every EGL backend.
type DisplayHolder interface {
	EGL() *Display
}

// SurfaceHolder is implemented by window payloads backed by an EGLSurface.
type SurfaceHolder interface {
	EGLSurface() uintptr
}

// Config is the config payload shared by EGL backends.
type Config struct {
	Display  DisplayHolder
	Handle   uintptr
	Attrs    platform.ConfigAttrs
	VisualID int32
}

// Context is the context payload shared by EGL backends.
type Context struct {
	Config *Config
	Handle uintptr
}

// Core implements the EGL half of platform.Backend. Backends embed it and
// add display connection and window handling.
type Core struct {
	API    *API
	Logger *slog.Logger

	// SurfaceType is requested from eglChooseConfig when non-zero.
	SurfaceType int32
	// VisualMatch filters candidate configs by EGL_NATIVE_VISUAL_ID.
	VisualMatch func(attrs platform.ConfigAttrs, visual int32) bool

	kind platform.Kind
}

// NewCore loads libEGL for kind.
func NewCore(kind platform.Kind, opts platform.Options) (*Core, error) {
	api, err := Load(opts.LibraryNames("egl", DefaultLibraries...))
	if err != nil {
		return nil, err
	}
	return &Core{API: api, Logger: opts.Logger, SurfaceType: WINDOW_BIT, kind: kind}, nil
}

func (c *Core) Kind() platform.Kind {
	return c.kind
}

// Teardown releases the calling thread's EGL state and unloads libEGL.
func (c *Core) Teardown() error {
	if c.API.ReleaseThread != nil {
		c.API.ReleaseThread()
	}
	return c.API.Close()
}

func (c *Core) GetProcAddress(name string) uintptr {
	return c.API.GetProcAddress(name)
}

// OpenDisplay obtains and initializes an EGLDisplay. eglGetPlatformDisplay
// is tried first when platformEnum is set; when it fails the legacy
// eglGetDisplay is used unless fallback is false.
func (c *Core) OpenDisplay(platformEnum uint32, native uintptr, fallback bool) (*Display, error) {
	var handle uintptr
	if platformEnum != 0 && c.API.GetPlatformDisplay != nil {
		errstate.Disabled(func() {
			handle = c.API.GetPlatformDisplay(platformEnum, native, nil)
			if handle == 0 {
				c.API.fail("eglGetPlatformDisplay")
			}
		})
	}
	if handle == 0 {
		if !fallback {
			return nil, errstate.Errorf(errstate.UnsupportedOnPlatform,
				"eglGetPlatformDisplay(0x%x) is unavailable", platformEnum)
		}
		handle = c.API.GetDisplay(native)
		if handle == 0 {
			return nil, c.API.fail("eglGetDisplay")
		}
	}

	d := &Display{Handle: handle}
	if c.API.Initialize(handle, &d.Major, &d.Minor) == 0 {
		return nil, c.API.fail("eglInitialize")
	}
	d.Vendor = c.API.QueryString(handle, VENDOR)
	d.ClientAPIs = c.API.QueryString(handle, CLIENT_APIS)
	d.Extensions = c.API.QueryString(handle, EXTENSIONS)
	d.createContext = hasExtension(d.Extensions, "EGL_KHR_create_context") ||
		d.Major > 1 || (d.Major == 1 && d.Minor >= 5)

	c.Logger.Debug("egl display initialized",
		"platform", c.kind.String(), "version", d.Version(), "vendor", d.Vendor)
	return d, nil
}

// Version formats the EGL version as "major.minor".
func (d *Display) Version() string {
	return fmt.Sprintf("%d.%d", d.Major, d.Minor)
}

// CloseDisplay terminates d.
func (c *Core) CloseDisplay(d *Display) error {
	c.API.MakeCurrent(d.Handle, 0, 0, 0)
	if c.API.Terminate(d.Handle) == 0 {
		return c.API.fail("eglTerminate")
	}
	return nil
}

// Describe summarizes d for diagnostics.
func (c *Core) Describe(d *Display) platform.DisplayInfo {
	return platform.DisplayInfo{
		Vendor:     d.Vendor,
		Version:    "EGL " + d.Version(),
		ClientAPIs: d.ClientAPIs,
		Extensions: strings.Fields(d.Extensions),
	}
}

func (c *Core) DisplaySupportsContextAPI(dpy platform.Native, api platform.ContextAPI) bool {
	holder, err := platform.Downcast[DisplayHolder](dpy)
	if err != nil {
		return false
	}
	return supportsAPI(holder.EGL(), api)
}

func supportsAPI(d *Display, api platform.ContextAPI) bool {
	apis := strings.Fields(d.ClientAPIs)
	has := func(name string) bool {
		for _, a := range apis {
			if a == name {
				return true
			}
		}
		return false
	}
	switch api {
	case platform.OpenGL:
		return has("OpenGL")
	case platform.OpenGLES1, platform.OpenGLES2:
		return has("OpenGL_ES")
	case platform.OpenGLES3:
		return has("OpenGL_ES") &&
			(hasExtension(d.Extensions, "EGL_KHR_create_context") || d.Major > 1 || d.Minor >= 5)
	}
	return false
}

func (c *Core) ConfigChoose(dpy platform.Native, attrs platform.ConfigAttrs) (platform.Native, error) {
	holder, err := platform.Downcast[DisplayHolder](dpy)
	if err != nil {
		return nil, err
	}
	d := holder.EGL()
	if !supportsAPI(d, attrs.API) {
		return nil, errstate.Errorf(errstate.UnsupportedOnPlatform,
			"%v is not supported by this EGL display (client apis %q)", attrs.API, d.ClientAPIs)
	}

	list, err := configAttribs(attrs, c.SurfaceType)
	if err != nil {
		return nil, err
	}
	configs := make([]uintptr, 64)
	var n int32
	if c.API.ChooseConfig(d.Handle, &list[0], &configs[0], int32(len(configs)), &n) == 0 {
		return nil, c.API.fail("eglChooseConfig")
	}

	for _, cfg := range configs[:n] {
		var visual int32
		if c.API.GetConfigAttrib(d.Handle, cfg, NATIVE_VISUAL_ID, &visual) == 0 {
			return nil, c.API.fail("eglGetConfigAttrib")
		}
		if c.VisualMatch != nil && !c.VisualMatch(attrs, visual) {
			continue
		}
		return &Config{Display: holder, Handle: cfg, Attrs: attrs, VisualID: visual}, nil
	}
	return nil, errstate.Errorf(errstate.UnsupportedOnPlatform,
		"eglChooseConfig found no config matching the requested attributes")
}

// EGLConfigs are owned by the display and need no release.
func (c *Core) ConfigDestroy(cfg platform.Native) error {
	_, err := platform.Downcast[*Config](cfg)
	return err
}

func (c *Core) ContextCreate(cfg platform.Native, share platform.Native) (platform.Native, error) {
	config, err := platform.Downcast[*Config](cfg)
	if err != nil {
		return nil, err
	}
	var shareHandle uintptr
	if share != nil {
		s, err := platform.Downcast[*Context](share)
		if err != nil {
			return nil, err
		}
		shareHandle = s.Handle
	}

	d := config.Display.EGL()
	list, err := contextAttribs(config.Attrs, d.createContext)
	if err != nil {
		return nil, err
	}
	if c.API.BindAPI(boundAPI(config.Attrs.API)) == 0 {
		return nil, c.API.fail("eglBindAPI")
	}
	handle := c.API.CreateContext(d.Handle, config.Handle, shareHandle, &list[0])
	if handle == 0 {
		return nil, c.API.fail("eglCreateContext")
	}
	return &Context{Config: config, Handle: handle}, nil
}

func (c *Core) ContextDestroy(ctx platform.Native) error {
	context, err := platform.Downcast[*Context](ctx)
	if err != nil {
		return err
	}
	if c.API.DestroyContext(context.Config.Display.EGL().Handle, context.Handle) == 0 {
		return c.API.fail("eglDestroyContext")
	}
	return nil
}

// CreateWindowSurface wraps a native window for config.
func (c *Core) CreateWindowSurface(config *Config, native uintptr) (uintptr, error) {
	list := surfaceAttribs(config.Attrs)
	surface := c.API.CreateWindowSurface(config.Display.EGL().Handle, config.Handle, native, &list[0])
	if surface == 0 {
		return 0, c.API.fail("eglCreateWindowSurface")
	}
	return surface, nil
}

func (c *Core) DestroySurface(d *Display, surface uintptr) error {
	if c.API.DestroySurface(d.Handle, surface) == 0 {
		return c.API.fail("eglDestroySurface")
	}
	return nil
}

func (c *Core) SwapBuffers(d *Display, surface uintptr) error {
	if c.API.SwapBuffers(d.Handle, surface) == 0 {
		return c.API.fail("eglSwapBuffers")
	}
	return nil
}

func (c *Core) MakeCurrent(dpy, win, ctx platform.Native) error {
	holder, err := platform.Downcast[DisplayHolder](dpy)
	if err != nil {
		return err
	}
	var surface, handle uintptr
	if win != nil {
		s, err := platform.Downcast[SurfaceHolder](win)
		if err != nil {
			return err
		}
		surface = s.EGLSurface()
	}
	if ctx != nil {
		context, err := platform.Downcast[*Context](ctx)
		if err != nil {
			return err
		}
		if c.API.BindAPI(boundAPI(context.Config.Attrs.API)) == 0 {
			return c.API.fail("eglBindAPI")
		}
		handle = context.Handle
	}
	if c.API.MakeCurrent(holder.EGL().Handle, surface, surface, handle) == 0 {
		return c.API.fail("eglMakeCurrent")
	}
	return nil
}
