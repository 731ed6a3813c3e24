package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawContext struct {
	API               *string `yaml:"api"`
	Version           *string `yaml:"version"`
	Profile           *string `yaml:"profile"`
	Debug             *bool   `yaml:"debug"`
	Robust            *bool   `yaml:"robust"`
	ForwardCompatible *bool   `yaml:"forward_compatible"`
}

type RawFramebuffer struct {
	Red            *int  `yaml:"red"`
	Green          *int  `yaml:"green"`
	Blue           *int  `yaml:"blue"`
	Alpha          *int  `yaml:"alpha"`
	Depth          *int  `yaml:"depth"`
	Stencil        *int  `yaml:"stencil"`
	Samples        *int  `yaml:"samples"`
	DoubleBuffered *bool `yaml:"double_buffered"`
	AccumBuffer    *bool `yaml:"accum_buffer"`
}

type RawWindow struct {
	Enabled *bool `yaml:"enabled"`
	Width   *int  `yaml:"width"`
	Height  *int  `yaml:"height"`
}

// RawConfig mirrors the file layout. A nil field was not set by any file.
type RawConfig struct {
	Include     IncludeList         `yaml:"include"`
	Platform    *string             `yaml:"platform"`
	Display     *string             `yaml:"display"`
	GBMDevice   *string             `yaml:"gbm_device"`
	LogLevel    *string             `yaml:"log_level"`
	Libraries   map[string][]string `yaml:"libraries"`
	Preset      *string             `yaml:"preset"`
	Context     *RawContext         `yaml:"context"`
	Framebuffer *RawFramebuffer     `yaml:"framebuffer"`
	Window      *RawWindow          `yaml:"window"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Platform != nil {
		out.Platform = overlay.Platform
	}
	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.GBMDevice != nil {
		out.GBMDevice = overlay.GBMDevice
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.Preset != nil {
		out.Preset = overlay.Preset
	}
	if overlay.Libraries != nil {
		if out.Libraries == nil {
			out.Libraries = make(map[string][]string, len(overlay.Libraries))
		} else {
			merged := make(map[string][]string, len(out.Libraries)+len(overlay.Libraries))
			for k, v := range out.Libraries {
				merged[k] = v
			}
			out.Libraries = merged
		}
		for k, v := range overlay.Libraries {
			out.Libraries[k] = v
		}
	}
	if overlay.Context != nil {
		out.Context = mergeRawContext(out.Context, overlay.Context)
	}
	if overlay.Framebuffer != nil {
		out.Framebuffer = mergeRawFramebuffer(out.Framebuffer, overlay.Framebuffer)
	}
	if overlay.Window != nil {
		out.Window = mergeRawWindow(out.Window, overlay.Window)
	}
	return out
}

func mergeRawContext(base, overlay *RawContext) *RawContext {
	out := RawContext{}
	if base != nil {
		out = *base
	}
	if overlay.API != nil {
		out.API = overlay.API
	}
	if overlay.Version != nil {
		out.Version = overlay.Version
	}
	if overlay.Profile != nil {
		out.Profile = overlay.Profile
	}
	if overlay.Debug != nil {
		out.Debug = overlay.Debug
	}
	if overlay.Robust != nil {
		out.Robust = overlay.Robust
	}
	if overlay.ForwardCompatible != nil {
		out.ForwardCompatible = overlay.ForwardCompatible
	}
	return &out
}

func mergeRawFramebuffer(base, overlay *RawFramebuffer) *RawFramebuffer {
	out := RawFramebuffer{}
	if base != nil {
		out = *base
	}
	if overlay.Red != nil {
		out.Red = overlay.Red
	}
	if overlay.Green != nil {
		out.Green = overlay.Green
	}
	if overlay.Blue != nil {
		out.Blue = overlay.Blue
	}
	if overlay.Alpha != nil {
		out.Alpha = overlay.Alpha
	}
	if overlay.Depth != nil {
		out.Depth = overlay.Depth
	}
	if overlay.Stencil != nil {
		out.Stencil = overlay.Stencil
	}
	if overlay.Samples != nil {
		out.Samples = overlay.Samples
	}
	if overlay.DoubleBuffered != nil {
		out.DoubleBuffered = overlay.DoubleBuffered
	}
	if overlay.AccumBuffer != nil {
		out.AccumBuffer = overlay.AccumBuffer
	}
	return &out
}

func mergeRawWindow(base, overlay *RawWindow) *RawWindow {
	out := RawWindow{}
	if base != nil {
		out = *base
	}
	if overlay.Enabled != nil {
		out.Enabled = overlay.Enabled
	}
	if overlay.Width != nil {
		out.Width = overlay.Width
	}
	if overlay.Height != nil {
		out.Height = overlay.Height
	}
	return &out
}
