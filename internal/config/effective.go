package config

import (
	"fmt"
	"strings"
)

// ValidationError points at the offending key. Source is filled in by the
// loader when the key came from a file.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Source.Kind == SourceEnv && e.Source.Name != "" {
		return fmt.Sprintf("$%s: %s: %v", e.Source.Name, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw over the defaults. The preset named in
// raw (or the default preset) seeds the context and framebuffer sections
// before raw's own fields are applied.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Platform != nil {
		cfg.Platform = strings.ToLower(strings.TrimSpace(*raw.Platform))
	}
	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.GBMDevice != nil {
		cfg.GBMDevice = *raw.GBMDevice
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}
	for key, names := range raw.Libraries {
		cfg.Libraries[key] = append([]string(nil), names...)
	}

	if raw.Preset != nil {
		name := strings.TrimSpace(*raw.Preset)
		preset, ok := BuiltinPresets()[name]
		if !ok {
			return nil, &ValidationError{Path: "preset", Err: fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))}
		}
		cfg.Preset = name
		cfg.Context = preset.Context
		cfg.Framebuffer = preset.Framebuffer
	}

	if rc := raw.Context; rc != nil {
		if rc.API != nil {
			cfg.Context.API = *rc.API
			// A different API invalidates the preset's version and profile
			// unless the file sets them too.
			if rc.Version == nil {
				cfg.Context.Version = ""
			}
			if rc.Profile == nil {
				cfg.Context.Profile = ""
			}
		}
		if rc.Version != nil {
			cfg.Context.Version = *rc.Version
		}
		if rc.Profile != nil {
			cfg.Context.Profile = *rc.Profile
		}
		if rc.Debug != nil {
			cfg.Context.Debug = *rc.Debug
		}
		if rc.Robust != nil {
			cfg.Context.Robust = *rc.Robust
		}
		if rc.ForwardCompatible != nil {
			cfg.Context.ForwardCompatible = *rc.ForwardCompatible
		}
	}

	if rf := raw.Framebuffer; rf != nil {
		fb := &cfg.Framebuffer
		setInt(&fb.Red, rf.Red)
		setInt(&fb.Green, rf.Green)
		setInt(&fb.Blue, rf.Blue)
		setInt(&fb.Alpha, rf.Alpha)
		setInt(&fb.Depth, rf.Depth)
		setInt(&fb.Stencil, rf.Stencil)
		setInt(&fb.Samples, rf.Samples)
		setBool(&fb.DoubleBuffered, rf.DoubleBuffered)
		setBool(&fb.AccumBuffer, rf.AccumBuffer)
	}

	if rw := raw.Window; rw != nil {
		setBool(&cfg.Window.Enabled, rw.Enabled)
		setInt(&cfg.Window.Width, rw.Width)
		setInt(&cfg.Window.Height, rw.Height)
	}

	return cfg, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
