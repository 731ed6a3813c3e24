package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/glport/internal/config"
	"github.com/1broseidon/glport/internal/errstate"
	"github.com/1broseidon/glport/internal/platform"
	"github.com/1broseidon/glport/internal/probe"
)

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		requested string
		tty       bool
		want      string
		wantErr   bool
	}{
		{"", true, formatText, false},
		{"", false, formatJSON, false},
		{"JSON", true, formatJSON, false},
		{"yml", true, formatYAML, false},
		{"text", false, formatText, false},
		{"xml", true, "", true},
	}
	for _, tt := range tests {
		got, err := resolveFormat(tt.requested, tt.tty)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("resolveFormat(%q, %v) = %q, %v; want %q (err %v)", tt.requested, tt.tty, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestEncode(t *testing.T) {
	info := errstate.Info{Code: errstate.BadParameter, Message: "nope"}

	var buf bytes.Buffer
	if err := encode(&buf, formatJSON, info); err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(buf.String(), `"code": "BAD_PARAMETER"`) {
		t.Fatalf("unexpected json %s", buf.String())
	}

	buf.Reset()
	if err := encode(&buf, formatYAML, info); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if !strings.Contains(buf.String(), "code: BAD_PARAMETER") {
		t.Fatalf("unexpected yaml %s", buf.String())
	}

	if err := encode(&buf, formatText, info); err == nil {
		t.Fatalf("expected text encoding to be refused")
	}
}

func TestWriteReportText(t *testing.T) {
	fail := errstate.Info{Code: errstate.UnsupportedOnPlatform, Message: "no GLX"}
	r := probe.Report{
		Platform:  "glx",
		Display:   &platform.DisplayInfo{Vendor: "Mesa", Version: "1.4"},
		APIs:      map[string]bool{"gl": true, "gles2": false},
		Libraries: map[string]bool{"gl": true},
		Steps: []probe.Step{
			{Name: "create_platform", OK: true},
			{Name: "connect_display", Error: &fail},
			{Name: "destroy_platform", OK: true},
		},
		Error: &fail,
	}

	var buf bytes.Buffer
	writeReportText(&buf, r)
	out := buf.String()
	for _, want := range []string{
		"platform: glx  FAILED (UNSUPPORTED_ON_PLATFORM: no GLX)",
		"vendor:  Mesa 1.4",
		"apis:    gl yes  gles2 no",
		"ok    create_platform",
		"FAIL  connect_display",
		"UNSUPPORTED_ON_PLATFORM: no GLX",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestApplyProbeFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	err := applyProbeFlags(cfg, probeFlags{
		Platform: "X11-EGL",
		Preset:   "gles2",
		Window:   "false",
	})
	if err != nil {
		t.Fatalf("applyProbeFlags: %v", err)
	}
	if cfg.Platform != "x11-egl" || cfg.Window.Enabled || cfg.Context.API != "gles2" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	kinds, err := cfg.Kinds()
	if err != nil || len(kinds) != 1 || kinds[0] != platform.KindX11EGL {
		t.Fatalf("unexpected kinds %v (%v)", kinds, err)
	}

	for _, f := range []probeFlags{
		{Preset: "vulkan"},
		{Window: "maybe"},
		{API: "gles1", Version: "2.0"},
		{Platform: "metal"},
	} {
		if err := applyProbeFlags(config.DefaultConfig(), f); err == nil {
			t.Errorf("expected %+v to fail", f)
		}
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 5}, "file:/c.yaml:3:5"},
		{config.Source{Kind: config.SourceEnv, Name: "GLPORT_DISPLAY"}, "env:GLPORT_DISPLAY"},
		{config.Source{Kind: config.SourceBuiltin, Name: "gl-core"}, "preset:gl-core"},
		{config.Source{Kind: config.SourceDefault, Name: "defaults"}, "default:defaults"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Errorf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestInfoText(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Platform = "gbm"
	info := collectInfo(cfg)
	if len(info.Backends) != len(platform.Kinds()) {
		t.Fatalf("expected every kind, got %+v", info.Backends)
	}
	for _, b := range info.Backends {
		if b.Selected != (b.Name == "gbm") {
			t.Errorf("%s selected = %v", b.Name, b.Selected)
		}
	}

	var buf bytes.Buffer
	writeInfoText(&buf, info)
	if !strings.HasPrefix(buf.String(), "platform: gbm (") {
		t.Fatalf("unexpected text %q", buf.String())
	}
}

func TestPrintedConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("preset: gles2\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	canon, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("eval symlinks: %v", err)
	}

	if _, _, err := printedConfig(path, true, true); !errors.Is(err, errPrintFlags) {
		t.Fatalf("expected errPrintFlags, got %v", err)
	}

	cfg, files, err := printedConfig(path, true, false)
	if err != nil || len(files) != 0 || cfg.Preset != config.DefaultPreset {
		t.Fatalf("defaults: %+v %v %v", cfg, files, err)
	}

	for _, effective := range []bool{true, false} {
		cfg, files, err = printedConfig(path, false, effective)
		if err != nil {
			t.Fatalf("effective=%v: %v", effective, err)
		}
		if cfg.Preset != "gles2" || len(files) != 1 || files[0] != canon {
			t.Fatalf("effective=%v: preset %q files %v", effective, cfg.Preset, files)
		}
	}
}
