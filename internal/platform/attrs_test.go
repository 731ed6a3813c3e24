package platform

import (
	"testing"

	"github.com/1broseidon/glport/internal/errstate"
)

func TestNormalize_Defaults(t *testing.T) {
	tests := []struct {
		api          ContextAPI
		major, minor int
	}{
		{OpenGL, 1, 0},
		{OpenGLES1, 1, 0},
		{OpenGLES2, 2, 0},
		{OpenGLES3, 3, 0},
	}
	for _, tt := range tests {
		got, err := DefaultConfigAttrs(tt.api).Normalize()
		if err != nil {
			t.Fatalf("%v: %v", tt.api, err)
		}
		if got.MajorVersion != tt.major || got.MinorVersion != tt.minor {
			t.Fatalf("%v: expected %d.%d, got %d.%d", tt.api, tt.major, tt.minor, got.MajorVersion, got.MinorVersion)
		}
		if !got.DoubleBuffered {
			t.Fatalf("%v: expected double buffering by default", tt.api)
		}
	}
}

func TestNormalize_CoreProfileDefault(t *testing.T) {
	a := ConfigAttrs{API: OpenGL, MajorVersion: 3, MinorVersion: 3}
	got, err := a.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got.Profile != ProfileCore {
		t.Fatalf("expected core profile, got %v", got.Profile)
	}

	a = ConfigAttrs{API: OpenGL, MajorVersion: 3, MinorVersion: 1}
	got, err = a.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got.Profile != ProfileNone {
		t.Fatalf("expected no profile below 3.2, got %v", got.Profile)
	}
}

func TestNormalize_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		attrs ConfigAttrs
		code  errstate.Code
	}{
		{"missing api", ConfigAttrs{}, errstate.BadAttribute},
		{"negative version", ConfigAttrs{API: OpenGL, MajorVersion: -1}, errstate.BadAttribute},
		{"gles1 2.0", ConfigAttrs{API: OpenGLES1, MajorVersion: 2}, errstate.BadAttribute},
		{"gles2 2.1", ConfigAttrs{API: OpenGLES2, MajorVersion: 2, MinorVersion: 1}, errstate.BadAttribute},
		{"gles3 4.0", ConfigAttrs{API: OpenGLES3, MajorVersion: 4}, errstate.BadAttribute},
		{"profile on gl 2.1", ConfigAttrs{API: OpenGL, MajorVersion: 2, MinorVersion: 1, Profile: ProfileCore}, errstate.BadAttribute},
		{"profile on gles", ConfigAttrs{API: OpenGLES2, Profile: ProfileCompatibility}, errstate.BadAttribute},
		{"fwd compat on gl 2.1", ConfigAttrs{API: OpenGL, MajorVersion: 2, MinorVersion: 1, ForwardCompatible: true}, errstate.BadAttribute},
		{"fwd compat on gles", ConfigAttrs{API: OpenGLES3, ForwardCompatible: true}, errstate.BadAttribute},
		{"accum on gles", ConfigAttrs{API: OpenGLES2, AccumBuffer: true}, errstate.IncompatibleAttributes},
		{"samples without buffers", ConfigAttrs{API: OpenGL, Samples: 4}, errstate.IncompatibleAttributes},
		{"negative depth", ConfigAttrs{API: OpenGL, DepthSize: -8}, errstate.BadAttribute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.attrs.Normalize()
			if got := errstate.CodeOf(err); got != tt.code {
				t.Fatalf("expected %v, got %v (%v)", tt.code, got, err)
			}
		})
	}
}

func TestNormalize_AcceptsFullRequest(t *testing.T) {
	a := ConfigAttrs{
		API: OpenGL, MajorVersion: 4, MinorVersion: 5,
		Profile: ProfileCompatibility, ForwardCompatible: true, Debug: true, Robust: true,
		RedSize: 8, GreenSize: 8, BlueSize: 8, AlphaSize: 8, DepthSize: 24, StencilSize: 8,
		SampleBuffers: true, Samples: 4, DoubleBuffered: true, AccumBuffer: true,
	}
	got, err := a.Normalize()
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got != a {
		t.Fatalf("expected request unchanged, got %+v", got)
	}
}

func TestParseHelpers(t *testing.T) {
	if k, err := ParseKind("X11-EGL"); err != nil || k != KindX11EGL {
		t.Fatalf("ParseKind(X11-EGL) = %v, %v", k, err)
	}
	if k, err := ParseKind("surfaceless"); err != nil || k != KindSurfacelessEGL {
		t.Fatalf("ParseKind(surfaceless) = %v, %v", k, err)
	}
	if _, err := ParseKind("cgl"); err == nil {
		t.Fatalf("expected error for unknown platform")
	}
	for _, k := range Kinds() {
		parsed, err := ParseKind(k.String())
		if err != nil || parsed != k {
			t.Fatalf("round trip %v: %v, %v", k, parsed, err)
		}
	}

	if a, err := ParseContextAPI("opengl_es2"); err != nil || a != OpenGLES2 {
		t.Fatalf("ParseContextAPI = %v, %v", a, err)
	}
	if p, err := ParseProfile("compatibility"); err != nil || p != ProfileCompatibility {
		t.Fatalf("ParseProfile = %v, %v", p, err)
	}
	if maj, min, err := ParseVersion("4.6"); err != nil || maj != 4 || min != 6 {
		t.Fatalf("ParseVersion = %d.%d, %v", maj, min, err)
	}
	if _, _, err := ParseVersion("four"); err == nil {
		t.Fatalf("expected error for bad version")
	}
}
