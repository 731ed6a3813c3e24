package platform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/1broseidon/glport/internal/errstate"
)

// ContextAPI is the client API a context is created for.
type ContextAPI int

const (
	OpenGL ContextAPI = iota + 1
	OpenGLES1
	OpenGLES2
	OpenGLES3
)

var apiNames = map[ContextAPI]string{
	OpenGL:    "gl",
	OpenGLES1: "gles1",
	OpenGLES2: "gles2",
	OpenGLES3: "gles3",
}

// ContextAPIs returns every known client API.
func ContextAPIs() []ContextAPI {
	return []ContextAPI{OpenGL, OpenGLES1, OpenGLES2, OpenGLES3}
}

func (a ContextAPI) String() string {
	if name, ok := apiNames[a]; ok {
		return name
	}
	return fmt.Sprintf("ContextAPI(%d)", int(a))
}

func (a ContextAPI) Valid() bool {
	_, ok := apiNames[a]
	return ok
}

// IsES reports whether a is one of the OpenGL ES APIs.
func (a ContextAPI) IsES() bool {
	return a == OpenGLES1 || a == OpenGLES2 || a == OpenGLES3
}

func (a ContextAPI) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *ContextAPI) UnmarshalText(b []byte) error {
	parsed, err := ParseContextAPI(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func ParseContextAPI(s string) (ContextAPI, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	switch norm {
	case "opengl":
		return OpenGL, nil
	case "opengl_es1", "es1":
		return OpenGLES1, nil
	case "opengl_es2", "es2":
		return OpenGLES2, nil
	case "opengl_es3", "es3":
		return OpenGLES3, nil
	}
	for a, name := range apiNames {
		if name == norm {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown context api %q", s)
}

// Profile is the OpenGL context profile.
type Profile int

const (
	ProfileNone Profile = iota
	ProfileCore
	ProfileCompatibility
)

func (p Profile) String() string {
	switch p {
	case ProfileNone:
		return "none"
	case ProfileCore:
		return "core"
	case ProfileCompatibility:
		return "compat"
	default:
		return fmt.Sprintf("Profile(%d)", int(p))
	}
}

func (p Profile) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Profile) UnmarshalText(b []byte) error {
	parsed, err := ParseProfile(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ProfileNone, nil
	case "core":
		return ProfileCore, nil
	case "compat", "compatibility":
		return ProfileCompatibility, nil
	default:
		return 0, fmt.Errorf("unknown profile %q", s)
	}
}

// ParseVersion parses "M" or "M.m".
func ParseVersion(s string) (major, minor int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, nil
	}
	majStr, minStr, hasMinor := strings.Cut(s, ".")
	major, err = strconv.Atoi(majStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid version %q", s)
	}
	if hasMinor {
		minor, err = strconv.Atoi(minStr)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid version %q", s)
		}
	}
	return major, minor, nil
}

// ConfigAttrs is the backend-neutral request handed to ChooseConfig. Sizes
// of zero mean "don't care".
type ConfigAttrs struct {
	API          ContextAPI `json:"api" yaml:"api"`
	MajorVersion int        `json:"major_version" yaml:"major_version"`
	MinorVersion int        `json:"minor_version" yaml:"minor_version"`
	Profile      Profile    `json:"profile" yaml:"profile"`

	ForwardCompatible bool `json:"forward_compatible,omitempty" yaml:"forward_compatible,omitempty"`
	Debug             bool `json:"debug,omitempty" yaml:"debug,omitempty"`
	Robust            bool `json:"robust,omitempty" yaml:"robust,omitempty"`

	RedSize     int `json:"red_size,omitempty" yaml:"red_size,omitempty"`
	GreenSize   int `json:"green_size,omitempty" yaml:"green_size,omitempty"`
	BlueSize    int `json:"blue_size,omitempty" yaml:"blue_size,omitempty"`
	AlphaSize   int `json:"alpha_size,omitempty" yaml:"alpha_size,omitempty"`
	DepthSize   int `json:"depth_size,omitempty" yaml:"depth_size,omitempty"`
	StencilSize int `json:"stencil_size,omitempty" yaml:"stencil_size,omitempty"`

	SampleBuffers  bool `json:"sample_buffers,omitempty" yaml:"sample_buffers,omitempty"`
	Samples        int  `json:"samples,omitempty" yaml:"samples,omitempty"`
	DoubleBuffered bool `json:"double_buffered" yaml:"double_buffered"`
	AccumBuffer    bool `json:"accum_buffer,omitempty" yaml:"accum_buffer,omitempty"`
}

// DefaultConfigAttrs returns a double-buffered request for api.
func DefaultConfigAttrs(api ContextAPI) ConfigAttrs {
	return ConfigAttrs{API: api, DoubleBuffered: true}
}

// VersionAtLeast compares the requested version.
func (a ConfigAttrs) VersionAtLeast(major, minor int) bool {
	return a.MajorVersion > major || (a.MajorVersion == major && a.MinorVersion >= minor)
}

// Normalize fills defaults and checks the combination. Failures are
// reported as BadAttribute or IncompatibleAttributes.
func (a ConfigAttrs) Normalize() (ConfigAttrs, error) {
	if !a.API.Valid() {
		return a, errstate.Errorf(errstate.BadAttribute, "context api is required (got %d)", int(a.API))
	}
	if a.MajorVersion < 0 || a.MinorVersion < 0 {
		return a, errstate.Errorf(errstate.BadAttribute,
			"context version %d.%d is negative", a.MajorVersion, a.MinorVersion)
	}

	if a.MajorVersion == 0 {
		switch a.API {
		case OpenGL, OpenGLES1:
			a.MajorVersion, a.MinorVersion = 1, 0
		case OpenGLES2:
			a.MajorVersion, a.MinorVersion = 2, 0
		case OpenGLES3:
			a.MajorVersion, a.MinorVersion = 3, 0
		}
	}

	switch a.API {
	case OpenGLES1:
		if a.MajorVersion != 1 || a.MinorVersion > 1 {
			return a, errstate.Errorf(errstate.BadAttribute,
				"OpenGL ES1 version must be 1.0 or 1.1, not %d.%d", a.MajorVersion, a.MinorVersion)
		}
	case OpenGLES2:
		if a.MajorVersion != 2 || a.MinorVersion != 0 {
			return a, errstate.Errorf(errstate.BadAttribute,
				"OpenGL ES2 version must be 2.0, not %d.%d", a.MajorVersion, a.MinorVersion)
		}
	case OpenGLES3:
		if a.MajorVersion != 3 {
			return a, errstate.Errorf(errstate.BadAttribute,
				"OpenGL ES3 major version must be 3, not %d", a.MajorVersion)
		}
	}

	if a.API == OpenGL {
		if a.VersionAtLeast(3, 2) {
			if a.Profile == ProfileNone {
				a.Profile = ProfileCore
			}
			if a.Profile != ProfileCore && a.Profile != ProfileCompatibility {
				return a, errstate.Errorf(errstate.BadAttribute, "invalid profile %v", a.Profile)
			}
		} else if a.Profile != ProfileNone {
			return a, errstate.Errorf(errstate.BadAttribute,
				"a profile requires OpenGL 3.2 or later, requested %d.%d", a.MajorVersion, a.MinorVersion)
		}
		if a.ForwardCompatible && !a.VersionAtLeast(3, 0) {
			return a, errstate.Errorf(errstate.BadAttribute,
				"forward-compatible contexts require OpenGL 3.0 or later, requested %d.%d",
				a.MajorVersion, a.MinorVersion)
		}
	} else {
		if a.Profile != ProfileNone {
			return a, errstate.Errorf(errstate.BadAttribute, "%v contexts have no profile", a.API)
		}
		if a.ForwardCompatible {
			return a, errstate.Errorf(errstate.BadAttribute, "%v contexts cannot be forward-compatible", a.API)
		}
		if a.AccumBuffer {
			return a, errstate.Errorf(errstate.IncompatibleAttributes, "%v has no accumulation buffer", a.API)
		}
	}

	for _, size := range []struct {
		name string
		v    int
	}{
		{"red", a.RedSize}, {"green", a.GreenSize}, {"blue", a.BlueSize},
		{"alpha", a.AlphaSize}, {"depth", a.DepthSize}, {"stencil", a.StencilSize},
		{"samples", a.Samples},
	} {
		if size.v < 0 {
			return a, errstate.Errorf(errstate.BadAttribute, "%s size %d is negative", size.name, size.v)
		}
	}
	if a.Samples > 0 && !a.SampleBuffers {
		return a, errstate.Errorf(errstate.IncompatibleAttributes,
			"%d samples requested without sample buffers", a.Samples)
	}
	return a, nil
}
