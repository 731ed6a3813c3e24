package glx

import (
	"strings"

	"github.com/1broseidon/glport/internal/errstate"
	"github.com/1broseidon/glport/internal/platform"
)

const (
	None = 0

	USE_GL           = 1
	DOUBLEBUFFER     = 5
	RED_SIZE         = 8
	GREEN_SIZE       = 9
	BLUE_SIZE        = 10
	ALPHA_SIZE       = 11
	DEPTH_SIZE       = 12
	STENCIL_SIZE     = 13
	ACCUM_RED_SIZE   = 14
	ACCUM_GREEN_SIZE = 15
	ACCUM_BLUE_SIZE  = 16
	ACCUM_ALPHA_SIZE = 17

	VISUAL_ID     = 0x800B
	DRAWABLE_TYPE = 0x8010
	RENDER_TYPE   = 0x8011
	X_RENDERABLE  = 0x8012
	RGBA_TYPE     = 0x8014
	WINDOW_BIT    = 0x0001
	RGBA_BIT      = 0x0001

	SAMPLE_BUFFERS = 100000
	SAMPLES        = 100001

	CONTEXT_MAJOR_VERSION_ARB = 0x2091
	CONTEXT_MINOR_VERSION_ARB = 0x2092
	CONTEXT_FLAGS_ARB         = 0x2094
	CONTEXT_PROFILE_MASK_ARB  = 0x9126

	CONTEXT_DEBUG_BIT_ARB              = 0x0001
	CONTEXT_FORWARD_COMPATIBLE_BIT_ARB = 0x0002
	CONTEXT_ROBUST_ACCESS_BIT_ARB      = 0x0004

	CONTEXT_CORE_PROFILE_BIT_ARB          = 0x0001
	CONTEXT_COMPATIBILITY_PROFILE_BIT_ARB = 0x0002
	CONTEXT_ES_PROFILE_BIT_EXT            = 0x0004
)

// extensions is the parsed GLX extension string of a display.
type extensions map[string]bool

func parseExtensions(s string) extensions {
	exts := make(extensions)
	for _, e := range strings.Fields(s) {
		exts[e] = true
	}
	return exts
}

func (e extensions) supports(api platform.ContextAPI) bool {
	switch api {
	case platform.OpenGL:
		return true
	case platform.OpenGLES1, platform.OpenGLES3:
		return e["GLX_ARB_create_context"] && e["GLX_EXT_create_context_es_profile"]
	case platform.OpenGLES2:
		return e["GLX_ARB_create_context"] &&
			(e["GLX_EXT_create_context_es2_profile"] || e["GLX_EXT_create_context_es_profile"])
	}
	return false
}

func boolAttr(v bool) int32 {
	if v {
		return 1
	}
	return 0
}

// configAttribs builds the glXChooseFBConfig list.
func configAttribs(attrs platform.ConfigAttrs) []int32 {
	list := []int32{
		X_RENDERABLE, 1,
		DRAWABLE_TYPE, WINDOW_BIT,
		RENDER_TYPE, RGBA_BIT,
		DOUBLEBUFFER, boolAttr(attrs.DoubleBuffered),
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
	if attrs.AccumBuffer {
		list = append(list,
			ACCUM_RED_SIZE, 1, ACCUM_GREEN_SIZE, 1,
			ACCUM_BLUE_SIZE, 1, ACCUM_ALPHA_SIZE, 1)
	}
	return append(list, None)
}

// isLegacy reports whether attrs can be served by glXCreateNewContext.
func isLegacy(attrs platform.ConfigAttrs) bool {
	return attrs.API == platform.OpenGL &&
		attrs.MajorVersion == 1 && attrs.MinorVersion == 0 &&
		!attrs.Debug && !attrs.Robust && !attrs.ForwardCompatible
}

// contextAttribs builds the glXCreateContextAttribsARB list.
func contextAttribs(attrs platform.ConfigAttrs, exts extensions) ([]int32, error) {
	list := []int32{
		CONTEXT_MAJOR_VERSION_ARB, int32(attrs.MajorVersion),
		CONTEXT_MINOR_VERSION_ARB, int32(attrs.MinorVersion),
	}

	switch {
	case attrs.API.IsES():
		list = append(list, CONTEXT_PROFILE_MASK_ARB, CONTEXT_ES_PROFILE_BIT_EXT)
	case attrs.Profile == platform.ProfileCore:
		list = append(list, CONTEXT_PROFILE_MASK_ARB, CONTEXT_CORE_PROFILE_BIT_ARB)
	case attrs.Profile == platform.ProfileCompatibility:
		if !exts["GLX_ARB_create_context_profile"] {
			return nil, errstate.Errorf(errstate.UnsupportedOnPlatform,
				"compatibility profile needs GLX_ARB_create_context_profile")
		}
		list = append(list, CONTEXT_PROFILE_MASK_ARB, CONTEXT_COMPATIBILITY_PROFILE_BIT_ARB)
	}

	var flags int32
	if attrs.Debug {
		flags |= CONTEXT_DEBUG_BIT_ARB
	}
	if attrs.ForwardCompatible {
		flags |= CONTEXT_FORWARD_COMPATIBLE_BIT_ARB
	}
	if attrs.Robust {
		if !exts["GLX_ARB_create_context_robustness"] {
			return nil, errstate.Errorf(errstate.UnsupportedOnPlatform,
				"robust contexts need GLX_ARB_create_context_robustness")
		}
		flags |= CONTEXT_ROBUST_ACCESS_BIT_ARB
	}
	if flags != 0 {
		list = append(list, CONTEXT_FLAGS_ARB, flags)
	}
	return append(list, None), nil
}
