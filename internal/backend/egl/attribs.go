package egl

import (
	"strings"

	"github.com/1broseidon/glport/internal/errstate"
	"github.com/1broseidon/glport/internal/platform"
)

func renderableBit(api platform.ContextAPI) int32 {
	switch api {
	case platform.OpenGL:
		return OPENGL_BIT
	case platform.OpenGLES1:
		return OPENGL_ES_BIT
	case platform.OpenGLES2:
		return OPENGL_ES2_BIT
	default:
		return OPENGL_ES3_BIT_KHR
	}
}

func boundAPI(api platform.ContextAPI) uint32 {
	if api == platform.OpenGL {
		return OPENGL_API
	}
	return OPENGL_ES_API
}

// configAttribs builds the eglChooseConfig list. surfaceType of zero leaves
// EGL_SURFACE_TYPE at its default.
func configAttribs(attrs platform.ConfigAttrs, surfaceType int32) ([]int32, error) {
	if attrs.AccumBuffer {
		return nil, errstate.Errorf(errstate.UnsupportedOnPlatform, "EGL has no accumulation buffers")
	}

	list := []int32{RENDERABLE_TYPE, renderableBit(attrs.API)}
	if surfaceType != 0 {
		list = append(list, SURFACE_TYPE, surfaceType)
	}
	for _, s := range []struct {
		attr int32
		size int
	}{
		{RED_SIZE, attrs.RedSize},
		{GREEN_SIZE, attrs.GreenSize},
		{BLUE_SIZE, attrs.BlueSize},
		{ALPHA_SIZE, attrs.AlphaSize},
		{DEPTH_SIZE, attrs.DepthSize},
		{STENCIL_SIZE, attrs.StencilSize},
	} {
		if s.size > 0 {
			list = append(list, s.attr, int32(s.size))
		}
	}
	if attrs.SampleBuffers {
		list = append(list, SAMPLE_BUFFERS, 1, SAMPLES, int32(attrs.Samples))
	}
	return append(list, NONE), nil
}

// surfaceAttribs builds the eglCreateWindowSurface list.
func surfaceAttribs(attrs platform.ConfigAttrs) []int32 {
	buffer := int32(BACK_BUFFER)
	if !attrs.DoubleBuffered {
		buffer = SINGLE_BUFFER
	}
	return []int32{RENDER_BUFFER, buffer, NONE}
}

// contextAttribs builds the eglCreateContext list. Anything beyond a plain
// client version needs EGL_KHR_create_context.
func contextAttribs(attrs platform.ConfigAttrs, createContext bool) ([]int32, error) {
	var list []int32

	needsKHR := attrs.Debug || attrs.Robust || attrs.ForwardCompatible
	switch attrs.API {
	case platform.OpenGL:
		if attrs.MajorVersion != 1 || attrs.MinorVersion != 0 || attrs.Profile != platform.ProfileNone {
			needsKHR = true
		}
	case platform.OpenGLES3:
		if attrs.MinorVersion != 0 {
			needsKHR = true
		}
	}
	if needsKHR && !createContext {
		return nil, errstate.Errorf(errstate.UnsupportedOnPlatform,
			"%v %d.%d with the requested flags needs EGL_KHR_create_context",
			attrs.API, attrs.MajorVersion, attrs.MinorVersion)
	}

	if attrs.API == platform.OpenGL {
		if needsKHR {
			list = append(list,
				CONTEXT_MAJOR_VERSION_KHR, int32(attrs.MajorVersion),
				CONTEXT_MINOR_VERSION_KHR, int32(attrs.MinorVersion))
		}
		switch attrs.Profile {
		case platform.ProfileCore:
			list = append(list, CONTEXT_OPENGL_PROFILE_MASK_KHR, CONTEXT_OPENGL_CORE_PROFILE_BIT)
		case platform.ProfileCompatibility:
			list = append(list, CONTEXT_OPENGL_PROFILE_MASK_KHR, CONTEXT_OPENGL_COMPAT_PROFILE_BIT)
		}
	} else {
		list = append(list, CONTEXT_CLIENT_VERSION, int32(attrs.MajorVersion))
		if attrs.MinorVersion != 0 {
			list = append(list, CONTEXT_MINOR_VERSION_KHR, int32(attrs.MinorVersion))
		}
	}

	var flags int32
	if attrs.Debug {
		flags |= CONTEXT_OPENGL_DEBUG_BIT_KHR
	}
	if attrs.ForwardCompatible {
		flags |= CONTEXT_OPENGL_FORWARD_COMPAT_BIT
	}
	if attrs.Robust {
		flags |= CONTEXT_OPENGL_ROBUST_ACCESS_BIT
	}
	if flags != 0 {
		list = append(list, CONTEXT_FLAGS_KHR, flags)
	}
	return append(list, NONE), nil
}

// hasExtension matches name against a space-separated extension string.
func hasExtension(exts, name string) bool {
	for _, e := range strings.Fields(exts) {
		if e == name {
			return true
		}
	}
	return false
}
