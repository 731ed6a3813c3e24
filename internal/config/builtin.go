package config

import "sort"

// Preset is a named context and framebuffer request.
type Preset struct {
	Context     Context     `yaml:"context"`
	Framebuffer Framebuffer `yaml:"framebuffer"`
}

var rgb888 = Framebuffer{Red: 8, Green: 8, Blue: 8, DoubleBuffered: true}

// BuiltinPresets returns the built-in preset library.
//
// The file picks one with `preset:` and may override any of its fields in
// the context and framebuffer sections.
func BuiltinPresets() map[string]Preset {
	return map[string]Preset{
		"gl": {
			Context:     Context{API: "gl"},
			Framebuffer: rgb888,
		},
		"gl-core": {
			Context:     Context{API: "gl", Version: "3.3", Profile: "core"},
			Framebuffer: withDepth(rgb888, 24),
		},
		"gl-compat": {
			Context:     Context{API: "gl", Version: "3.2", Profile: "compat"},
			Framebuffer: withDepth(rgb888, 24),
		},
		"gles1": {
			Context:     Context{API: "gles1"},
			Framebuffer: rgb888,
		},
		"gles2": {
			Context:     Context{API: "gles2"},
			Framebuffer: rgb888,
		},
		"gles3": {
			Context:     Context{API: "gles3"},
			Framebuffer: withDepth(rgb888, 24),
		},
	}
}

// PresetNames lists the built-in presets alphabetically.
func PresetNames() []string {
	presets := BuiltinPresets()
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func withDepth(fb Framebuffer, depth int) Framebuffer {
	fb.Depth = depth
	return fb
}
