package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	platform
//	display
//	gbm_device
//	log_level
//	libraries
//	libraries.<key>
//	preset
//	context, context.api, context.version, ...
//	framebuffer, framebuffer.depth, ...
//	window, window.width, ...
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}

	// Context and framebuffer fields not set by a file come from the preset.
	if strings.HasPrefix(path, "context") || strings.HasPrefix(path, "framebuffer") {
		return value, Source{Kind: SourceBuiltin, Name: res.Config.Preset}, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	leaf := func() error {
		if len(parts) != 1 {
			return fmt.Errorf("%s has no sub-keys", parts[0])
		}
		return nil
	}

	switch parts[0] {
	case "platform":
		return cfg.Platform, leaf()
	case "display":
		return cfg.Display, leaf()
	case "gbm_device":
		return cfg.GBMDevice, leaf()
	case "log_level":
		return cfg.LogLevel, leaf()
	case "preset":
		return cfg.Preset, leaf()
	case "libraries":
		switch len(parts) {
		case 1:
			return cfg.Libraries, nil
		case 2:
			names, ok := cfg.Libraries[parts[1]]
			if !ok {
				return nil, fmt.Errorf("no library override for %q", parts[1])
			}
			return names, nil
		}
	case "context":
		if len(parts) == 1 {
			return cfg.Context, nil
		}
		if len(parts) == 2 {
			c := cfg.Context
			switch parts[1] {
			case "api":
				return c.API, nil
			case "version":
				return c.Version, nil
			case "profile":
				return c.Profile, nil
			case "debug":
				return c.Debug, nil
			case "robust":
				return c.Robust, nil
			case "forward_compatible":
				return c.ForwardCompatible, nil
			}
		}
	case "framebuffer":
		if len(parts) == 1 {
			return cfg.Framebuffer, nil
		}
		if len(parts) == 2 {
			fb := cfg.Framebuffer
			switch parts[1] {
			case "red":
				return fb.Red, nil
			case "green":
				return fb.Green, nil
			case "blue":
				return fb.Blue, nil
			case "alpha":
				return fb.Alpha, nil
			case "depth":
				return fb.Depth, nil
			case "stencil":
				return fb.Stencil, nil
			case "samples":
				return fb.Samples, nil
			case "double_buffered":
				return fb.DoubleBuffered, nil
			case "accum_buffer":
				return fb.AccumBuffer, nil
			}
		}
	case "window":
		if len(parts) == 1 {
			return cfg.Window, nil
		}
		if len(parts) == 2 {
			switch parts[1] {
			case "enabled":
				return cfg.Window.Enabled, nil
			case "width":
				return cfg.Window.Width, nil
			case "height":
				return cfg.Window.Height, nil
			}
		}
	}
	return nil, fmt.Errorf("unknown config path %q", path)
}
