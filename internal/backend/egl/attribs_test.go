package egl

import (
	"testing"

	"github.com/1broseidon/glport/internal/errstate"
	"github.com/1broseidon/glport/internal/platform"
)

func TestConfigAttribs(t *testing.T) {
	attrs := platform.ConfigAttrs{
		API: platform.OpenGLES2, MajorVersion: 2,
		RedSize: 8, GreenSize: 8, BlueSize: 8, DepthSize: 24,
		SampleBuffers: true, Samples: 4,
	}
	got, err := configAttribs(attrs, WINDOW_BIT)
	if err != nil {
		t.Fatalf("configAttribs: %v", err)
	}
	want := []int32{
		RENDERABLE_TYPE, OPENGL_ES2_BIT,
		SURFACE_TYPE, WINDOW_BIT,
		RED_SIZE, 8, GREEN_SIZE, 8, BLUE_SIZE, 8, DEPTH_SIZE, 24,
		SAMPLE_BUFFERS, 1, SAMPLES, 4,
		NONE,
	}
	if !equal(got, want) {
		t.Fatalf("got  %v\nwant %v", got, want)
	}

	got, _ = configAttribs(platform.ConfigAttrs{API: platform.OpenGLES3, MajorVersion: 3}, 0)
	if !equal(got, []int32{RENDERABLE_TYPE, OPENGL_ES3_BIT_KHR, NONE}) {
		t.Fatalf("unexpected surfaceless list %v", got)
	}

	_, err = configAttribs(platform.ConfigAttrs{API: platform.OpenGL, AccumBuffer: true}, WINDOW_BIT)
	if errstate.CodeOf(err) != errstate.UnsupportedOnPlatform {
		t.Fatalf("expected accum buffers to be unsupported, got %v", err)
	}
}

func TestContextAttribs(t *testing.T) {
	tests := []struct {
		name  string
		attrs platform.ConfigAttrs
		khr   bool
		want  []int32
		code  errstate.Code
	}{
		{
			name:  "gles2 plain",
			attrs: platform.ConfigAttrs{API: platform.OpenGLES2, MajorVersion: 2},
			want:  []int32{CONTEXT_CLIENT_VERSION, 2, NONE},
		},
		{
			name:  "gles3.1 needs khr",
			attrs: platform.ConfigAttrs{API: platform.OpenGLES3, MajorVersion: 3, MinorVersion: 1},
			code:  errstate.UnsupportedOnPlatform,
		},
		{
			name:  "gles3.1 robust",
			attrs: platform.ConfigAttrs{API: platform.OpenGLES3, MajorVersion: 3, MinorVersion: 1, Robust: true},
			khr:   true,
			want: []int32{
				CONTEXT_CLIENT_VERSION, 3, CONTEXT_MINOR_VERSION_KHR, 1,
				CONTEXT_FLAGS_KHR, CONTEXT_OPENGL_ROBUST_ACCESS_BIT, NONE,
			},
		},
		{
			name:  "legacy gl",
			attrs: platform.ConfigAttrs{API: platform.OpenGL, MajorVersion: 1},
			want:  []int32{NONE},
		},
		{
			name:  "gl 3.3 compat without khr",
			attrs: platform.ConfigAttrs{API: platform.OpenGL, MajorVersion: 3, MinorVersion: 3, Profile: platform.ProfileCompatibility},
			code:  errstate.UnsupportedOnPlatform,
		},
		{
			name: "gl 3.3 compat fwd",
			attrs: platform.ConfigAttrs{
				API: platform.OpenGL, MajorVersion: 3, MinorVersion: 3,
				Profile: platform.ProfileCompatibility, ForwardCompatible: true,
			},
			khr: true,
			want: []int32{
				CONTEXT_MAJOR_VERSION_KHR, 3, CONTEXT_MINOR_VERSION_KHR, 3,
				CONTEXT_OPENGL_PROFILE_MASK_KHR, CONTEXT_OPENGL_COMPAT_PROFILE_BIT,
				CONTEXT_FLAGS_KHR, CONTEXT_OPENGL_FORWARD_COMPAT_BIT, NONE,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := contextAttribs(tt.attrs, tt.khr)
			if tt.code != errstate.NoError {
				if errstate.CodeOf(err) != tt.code {
					t.Fatalf("expected %v, got %v", tt.code, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !equal(got, tt.want) {
				t.Fatalf("got  %v\nwant %v", got, tt.want)
			}
		})
	}
}

func TestSurfaceAttribs(t *testing.T) {
	if got := surfaceAttribs(platform.ConfigAttrs{DoubleBuffered: true}); got[1] != BACK_BUFFER {
		t.Fatalf("expected back buffer, got %v", got)
	}
	if got := surfaceAttribs(platform.ConfigAttrs{}); got[1] != SINGLE_BUFFER {
		t.Fatalf("expected single buffer, got %v", got)
	}
}

func TestErrorName(t *testing.T) {
	if ErrorName(BAD_MATCH) != "EGL_BAD_MATCH" {
		t.Fatalf("unexpected name %q", ErrorName(BAD_MATCH))
	}
	if ErrorName(0x4242) != "0x4242" {
		t.Fatalf("unexpected name %q", ErrorName(0x4242))
	}
	code, msg := errorFor("eglSwapBuffers", BAD_SURFACE)
	if code != errstate.UnknownError || msg != "eglSwapBuffers failed with EGL_BAD_SURFACE" {
		t.Fatalf("unexpected mapping %v %q", code, msg)
	}
}
