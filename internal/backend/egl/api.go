// Package egl binds libEGL and implements the parts of the backend table
// that every EGL-based platform shares: display initialization, config
// selection, contexts and MakeCurrent.
package egl

import (
	"github.com/1broseidon/glport/internal/dl"
)

const (
	NONE = 0x3038

	SUCCESS             = 0x3000
	NOT_INITIALIZED     = 0x3001
	BAD_ACCESS          = 0x3002
	BAD_ALLOC           = 0x3003
	BAD_ATTRIBUTE       = 0x3004
	BAD_CONFIG          = 0x3005
	BAD_CONTEXT         = 0x3006
	BAD_CURRENT_SURFACE = 0x3007
	BAD_DISPLAY         = 0x3008
	BAD_MATCH           = 0x3009
	BAD_NATIVE_PIXMAP   = 0x300A
	BAD_NATIVE_WINDOW   = 0x300B
	BAD_PARAMETER       = 0x300C
	BAD_SURFACE         = 0x300D
	CONTEXT_LOST        = 0x300E

	BUFFER_SIZE      = 0x3020
	ALPHA_SIZE       = 0x3021
	BLUE_SIZE        = 0x3022
	GREEN_SIZE       = 0x3023
	RED_SIZE         = 0x3024
	DEPTH_SIZE       = 0x3025
	STENCIL_SIZE     = 0x3026
	NATIVE_VISUAL_ID = 0x302E
	SAMPLES          = 0x3031
	SAMPLE_BUFFERS   = 0x3032
	SURFACE_TYPE     = 0x3033
	RENDERABLE_TYPE  = 0x3040

	PBUFFER_BIT = 0x0001
	WINDOW_BIT  = 0x0004

	OPENGL_ES_BIT      = 0x0001
	OPENGL_ES2_BIT     = 0x0004
	OPENGL_BIT         = 0x0008
	OPENGL_ES3_BIT_KHR = 0x0040

	VENDOR      = 0x3053
	VERSION     = 0x3054
	EXTENSIONS  = 0x3055
	CLIENT_APIS = 0x308D

	RENDER_BUFFER = 0x3086
	BACK_BUFFER   = 0x3084
	SINGLE_BUFFER = 0x3085

	OPENGL_ES_API = 0x30A0
	OPENGL_API    = 0x30A2

	CONTEXT_CLIENT_VERSION            = 0x3098
	CONTEXT_MAJOR_VERSION_KHR         = 0x3098
	CONTEXT_MINOR_VERSION_KHR         = 0x30FB
	CONTEXT_FLAGS_KHR                 = 0x30FC
	CONTEXT_OPENGL_PROFILE_MASK_KHR   = 0x30FD
	CONTEXT_OPENGL_CORE_PROFILE_BIT   = 0x0001
	CONTEXT_OPENGL_COMPAT_PROFILE_BIT = 0x0002
	CONTEXT_OPENGL_DEBUG_BIT_KHR      = 0x0001
	CONTEXT_OPENGL_FORWARD_COMPAT_BIT = 0x0002
	CONTEXT_OPENGL_ROBUST_ACCESS_BIT  = 0x0004

	PLATFORM_X11_KHR          = 0x31D5
	PLATFORM_GBM_KHR          = 0x31D7
	PLATFORM_SURFACELESS_MESA = 0x31DD
)

// DefaultLibraries are the libEGL names tried when no override is set.
var DefaultLibraries = []string{"libEGL.so.1", "libEGL.so", "libEGL.dll"}

// API is the bound libEGL entry point table. Handles are passed as uintptr.
type API struct {
	lib *dl.Library

	GetDisplay          func(native uintptr) uintptr
	GetPlatformDisplay  func(platform uint32, native uintptr, attribs *uintptr) uintptr
	Initialize          func(dpy uintptr, major, minor *int32) uint32
	Terminate           func(dpy uintptr) uint32
	GetError            func() int32
	QueryString         func(dpy uintptr, name int32) string
	BindAPI             func(api uint32) uint32
	ChooseConfig        func(dpy uintptr, attribs *int32, configs *uintptr, size int32, num *int32) uint32
	GetConfigAttrib     func(dpy, config uintptr, attr int32, value *int32) uint32
	CreateContext       func(dpy, config, share uintptr, attribs *int32) uintptr
	DestroyContext      func(dpy, ctx uintptr) uint32
	CreateWindowSurface func(dpy, config, win uintptr, attribs *int32) uintptr
	DestroySurface      func(dpy, surface uintptr) uint32
	MakeCurrent         func(dpy, draw, read, ctx uintptr) uint32
	SwapBuffers         func(dpy, surface uintptr) uint32
	GetProcAddress      func(name string) uintptr
	ReleaseThread       func() uint32
}

// Load opens libEGL and binds the table.
func Load(names []string) (*API, error) {
	a := &API{}
	lib, err := dl.Load(names, []dl.Symbol{
		{Name: "eglGetDisplay", Fn: &a.GetDisplay},
		{Name: "eglGetPlatformDisplay", Fn: &a.GetPlatformDisplay, Optional: true},
		{Name: "eglInitialize", Fn: &a.Initialize},
		{Name: "eglTerminate", Fn: &a.Terminate},
		{Name: "eglGetError", Fn: &a.GetError},
		{Name: "eglQueryString", Fn: &a.QueryString},
		{Name: "eglBindAPI", Fn: &a.BindAPI},
		{Name: "eglChooseConfig", Fn: &a.ChooseConfig},
		{Name: "eglGetConfigAttrib", Fn: &a.GetConfigAttrib},
		{Name: "eglCreateContext", Fn: &a.CreateContext},
		{Name: "eglDestroyContext", Fn: &a.DestroyContext},
		{Name: "eglCreateWindowSurface", Fn: &a.CreateWindowSurface},
		{Name: "eglDestroySurface", Fn: &a.DestroySurface},
		{Name: "eglMakeCurrent", Fn: &a.MakeCurrent},
		{Name: "eglSwapBuffers", Fn: &a.SwapBuffers},
		{Name: "eglGetProcAddress", Fn: &a.GetProcAddress},
		{Name: "eglReleaseThread", Fn: &a.ReleaseThread, Optional: true},
	})
	if err != nil {
		return nil, err
	}
	a.lib = lib

	if err := a.bindPlatformDisplayEXT(); err != nil {
		lib.Close()
		return nil, err
	}
	return a, nil
}

// bindPlatformDisplayEXT fills GetPlatformDisplay from
// eglGetPlatformDisplayEXT, which EGL 1.4 implementations expose through
// EGL_EXT_platform_base. It stays nil when neither entry point exists.
func (a *API) bindPlatformDisplayEXT() error {
	if a.GetPlatformDisplay != nil {
		return nil
	}
	addr := a.GetProcAddress("eglGetPlatformDisplayEXT")
	if addr == 0 {
		return nil
	}
	return dl.RegisterFunc(&a.GetPlatformDisplay, addr)
}

// Close unloads libEGL.
func (a *API) Close() error {
	return a.lib.Close()
}
