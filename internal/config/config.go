// Package config loads the glport settings file: which backend to use, how
// to reach the display, where the native libraries live and what context
// and framebuffer to request.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/1broseidon/glport/internal/errstate"
	"github.com/1broseidon/glport/internal/platform"
	"github.com/1broseidon/glport/internal/probe"
)

// PlatformAuto lets FirstAvailable pick the backend.
const PlatformAuto = "auto"

// DefaultPreset is used when the file does not name one.
const DefaultPreset = "gl"

// MaxWindowSize bounds window.width and window.height. X11 carries window
// sizes as 16-bit values.
const MaxWindowSize = 0xffff

// Context selects the client API and context flags.
type Context struct {
	API               string `yaml:"api"`
	Version           string `yaml:"version,omitempty"` // "M" or "M.m", empty for the API default
	Profile           string `yaml:"profile,omitempty"`
	Debug             bool   `yaml:"debug"`
	Robust            bool   `yaml:"robust"`
	ForwardCompatible bool   `yaml:"forward_compatible"`
}

// Framebuffer holds channel sizes in bits. Zero means "don't care".
type Framebuffer struct {
	Red            int  `yaml:"red"`
	Green          int  `yaml:"green"`
	Blue           int  `yaml:"blue"`
	Alpha          int  `yaml:"alpha"`
	Depth          int  `yaml:"depth"`
	Stencil        int  `yaml:"stencil"`
	Samples        int  `yaml:"samples"`
	DoubleBuffered bool `yaml:"double_buffered"`
	AccumBuffer    bool `yaml:"accum_buffer"`
}

// Window configures the window created by probe runs.
type Window struct {
	Enabled bool `yaml:"enabled"`
	Width   int  `yaml:"width"`
	Height  int  `yaml:"height"`
}

// Config is the effective configuration.
type Config struct {
	Platform    string              `yaml:"platform"`
	Display     string              `yaml:"display"`
	GBMDevice   string              `yaml:"gbm_device"`
	LogLevel    string              `yaml:"log_level"`
	Libraries   map[string][]string `yaml:"libraries"`
	Preset      string              `yaml:"preset"`
	Context     Context             `yaml:"context"`
	Framebuffer Framebuffer         `yaml:"framebuffer"`
	Window      Window              `yaml:"window"`
}

// LibraryKeys are the accepted keys of the libraries map.
var LibraryKeys = []string{"egl", "gl", "gles1", "gles2", "x11", "gbm"}

func DefaultConfig() *Config {
	preset := BuiltinPresets()[DefaultPreset]
	return &Config{
		Platform:    PlatformAuto,
		LogLevel:    "info",
		Libraries:   map[string][]string{},
		Preset:      DefaultPreset,
		Context:     preset.Context,
		Framebuffer: preset.Framebuffer,
		Window: Window{
			Enabled: true,
			Width:   320,
			Height:  240,
		},
	}
}

func (c *Config) Validate() error {
	if c.Platform != PlatformAuto {
		if _, err := platform.ParseKind(c.Platform); err != nil {
			return &ValidationError{Path: "platform", Err: fmt.Errorf("platform must be %q or one of: %s", PlatformAuto, kindList())}
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if c.Libraries == nil {
		return &ValidationError{Path: "libraries", Err: fmt.Errorf("libraries must not be null")}
	}
	for key, names := range c.Libraries {
		if !isLibraryKey(key) {
			return &ValidationError{Path: "libraries." + key, Err: fmt.Errorf("library key must be one of: %s", strings.Join(LibraryKeys, ", "))}
		}
		for _, name := range names {
			if strings.TrimSpace(name) == "" {
				return &ValidationError{Path: "libraries." + key, Err: fmt.Errorf("library names must not be empty")}
			}
		}
	}
	if _, ok := BuiltinPresets()[c.Preset]; !ok {
		return &ValidationError{Path: "preset", Err: fmt.Errorf("unknown preset %q (available: %s)", c.Preset, strings.Join(PresetNames(), ", "))}
	}

	if _, err := platform.ParseContextAPI(c.Context.API); err != nil {
		return &ValidationError{Path: "context.api", Err: err}
	}
	if _, _, err := platform.ParseVersion(c.Context.Version); err != nil {
		return &ValidationError{Path: "context.version", Err: err}
	}
	if _, err := platform.ParseProfile(c.Context.Profile); err != nil {
		return &ValidationError{Path: "context.profile", Err: err}
	}

	fb := c.Framebuffer
	for _, size := range []struct {
		key string
		v   int
	}{
		{"red", fb.Red}, {"green", fb.Green}, {"blue", fb.Blue}, {"alpha", fb.Alpha},
		{"depth", fb.Depth}, {"stencil", fb.Stencil}, {"samples", fb.Samples},
	} {
		if size.v < 0 {
			return &ValidationError{Path: "framebuffer." + size.key, Err: fmt.Errorf("%s must be >= 0", size.key)}
		}
	}

	if c.Window.Width <= 0 || c.Window.Width > MaxWindowSize {
		return &ValidationError{Path: "window.width", Err: fmt.Errorf("width must be in 1..%d", MaxWindowSize)}
	}
	if c.Window.Height <= 0 || c.Window.Height > MaxWindowSize {
		return &ValidationError{Path: "window.height", Err: fmt.Errorf("height must be in 1..%d", MaxWindowSize)}
	}

	// Catch combinations the backends would refuse, without leaving a
	// report behind on the loading thread.
	var attrErr error
	errstate.Disabled(func() {
		attrs, err := c.Attrs()
		if err == nil {
			_, err = attrs.Normalize()
		}
		attrErr = err
	})
	if attrErr != nil {
		return &ValidationError{Path: "context", Err: attrErr}
	}
	return nil
}

// Attrs converts the context and framebuffer sections into a config request.
func (c *Config) Attrs() (platform.ConfigAttrs, error) {
	api, err := platform.ParseContextAPI(c.Context.API)
	if err != nil {
		return platform.ConfigAttrs{}, err
	}
	major, minor, err := platform.ParseVersion(c.Context.Version)
	if err != nil {
		return platform.ConfigAttrs{}, err
	}
	profile, err := platform.ParseProfile(c.Context.Profile)
	if err != nil {
		return platform.ConfigAttrs{}, err
	}
	fb := c.Framebuffer
	return platform.ConfigAttrs{
		API:               api,
		MajorVersion:      major,
		MinorVersion:      minor,
		Profile:           profile,
		ForwardCompatible: c.Context.ForwardCompatible,
		Debug:             c.Context.Debug,
		Robust:            c.Context.Robust,
		RedSize:           fb.Red,
		GreenSize:         fb.Green,
		BlueSize:          fb.Blue,
		AlphaSize:         fb.Alpha,
		DepthSize:         fb.Depth,
		StencilSize:       fb.Stencil,
		SampleBuffers:     fb.Samples > 0,
		Samples:           fb.Samples,
		DoubleBuffered:    fb.DoubleBuffered,
		AccumBuffer:       fb.AccumBuffer,
	}, nil
}

// Options builds the backend factory options.
func (c *Config) Options(logger *slog.Logger) platform.Options {
	var libs map[string][]string
	if len(c.Libraries) > 0 {
		libs = make(map[string][]string, len(c.Libraries))
		for key, names := range c.Libraries {
			libs[key] = append([]string(nil), names...)
		}
	}
	return platform.Options{
		Logger:    logger,
		Libraries: libs,
		Device:    c.GBMDevice,
	}
}

// Kinds returns the backends to try, in order. "auto" expands to
// probe.DefaultOrder.
func (c *Config) Kinds() ([]platform.Kind, error) {
	if c.Platform == "" || c.Platform == PlatformAuto {
		return append([]platform.Kind(nil), probe.DefaultOrder...), nil
	}
	kind, err := platform.ParseKind(c.Platform)
	if err != nil {
		return nil, err
	}
	return []platform.Kind{kind}, nil
}

// Request builds a probe request for kind.
func (c *Config) Request(kind platform.Kind, logger *slog.Logger) (probe.Request, error) {
	attrs, err := c.Attrs()
	if err != nil {
		return probe.Request{}, err
	}
	return probe.Request{
		Kind:    kind,
		Display: c.Display,
		Attrs:   attrs,
		Options: c.Options(logger),
		Window:  c.Window.Enabled,
		Width:   c.Window.Width,
		Height:  c.Window.Height,
	}, nil
}

// SlogLevel maps log_level onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func isLibraryKey(key string) bool {
	for _, k := range LibraryKeys {
		if k == key {
			return true
		}
	}
	return false
}

func kindList() string {
	names := make([]string, 0, len(platform.Kinds()))
	for _, k := range platform.Kinds() {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ")
}
