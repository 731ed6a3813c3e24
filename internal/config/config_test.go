package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/1broseidon/glport/internal/errstate"
	"github.com/1broseidon/glport/internal/platform"
	"github.com/1broseidon/glport/internal/probe"
)

func withEnv(t *testing.T, env map[string]string) {
	t.Helper()
	orig := lookupEnv
	lookupEnv = func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}
	t.Cleanup(func() { lookupEnv = orig })
}

func writeConfig(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Preset != DefaultPreset {
		t.Fatalf("expected preset %q, got %q", DefaultPreset, cfg.Preset)
	}
	for _, name := range PresetNames() {
		c := DefaultConfig()
		p := BuiltinPresets()[name]
		c.Preset, c.Context, c.Framebuffer = name, p.Context, p.Framebuffer
		if err := c.Validate(); err != nil {
			t.Fatalf("preset %q does not validate: %v", name, err)
		}
	}
}

func TestValidate_WindowSizeBounds(t *testing.T) {
	tests := []struct {
		width, height int
		path          string
	}{
		{70000, 240, "window.width"},
		{320, 65536, "window.height"},
		{-1, 240, "window.width"},
		{MaxWindowSize, MaxWindowSize, ""},
	}
	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Window.Width, cfg.Window.Height = tt.width, tt.height
		err := cfg.Validate()
		if tt.path == "" {
			if err != nil {
				t.Errorf("%dx%d: unexpected error %v", tt.width, tt.height, err)
			}
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Path != tt.path {
			t.Errorf("%dx%d: expected error at %s, got %v", tt.width, tt.height, tt.path, err)
		}
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	withEnv(t, nil)
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Platform != PlatformAuto {
		t.Fatalf("expected platform %q, got %q", PlatformAuto, res.Config.Platform)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	withEnv(t, nil)
	path := writeConfig(t, t.TempDir(), "config.yaml", "# empty\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.LogLevel != "info" {
		t.Fatalf("expected log_level info, got %q", res.Config.LogLevel)
	}
	if len(res.Files) != 1 {
		t.Fatalf("expected one loaded file, got %v", res.Files)
	}
}

func TestLoadFromPath_PresetAndOverrides(t *testing.T) {
	withEnv(t, nil)
	data := strings.Join([]string{
		"platform: GLX",
		"display: \":1\"",
		"preset: gl-core",
		"framebuffer:",
		"  stencil: 8",
		"context:",
		"  debug: true",
		"",
	}, "\n")
	res, err := LoadFromPath(writeConfig(t, t.TempDir(), "config.yaml", data))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Platform != "glx" {
		t.Fatalf("expected platform glx, got %q", cfg.Platform)
	}
	attrs, err := cfg.Attrs()
	if err != nil {
		t.Fatalf("attrs: %v", err)
	}
	if attrs.API != platform.OpenGL || attrs.MajorVersion != 3 || attrs.MinorVersion != 3 {
		t.Fatalf("unexpected api/version: %+v", attrs)
	}
	if attrs.Profile != platform.ProfileCore || !attrs.Debug {
		t.Fatalf("unexpected profile/debug: %+v", attrs)
	}
	if attrs.DepthSize != 24 || attrs.StencilSize != 8 || attrs.RedSize != 8 {
		t.Fatalf("unexpected sizes: %+v", attrs)
	}
}

func TestLoadFromPath_NewAPIDropsPresetVersion(t *testing.T) {
	withEnv(t, nil)
	data := "preset: gl-core\ncontext:\n  api: gles2\n"
	res, err := LoadFromPath(writeConfig(t, t.TempDir(), "config.yaml", data))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Context.Version != "" || res.Config.Context.Profile != "" {
		t.Fatalf("expected preset version/profile cleared, got %+v", res.Config.Context)
	}
}

func TestLoadFromPath_UnknownKeyFails(t *testing.T) {
	withEnv(t, nil)
	path := writeConfig(t, t.TempDir(), "config.yaml", "hotkey: Mod4-t\n")
	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected unknown key to fail")
	}
}

func TestLoadFromPath_ValidationErrorHasPosition(t *testing.T) {
	withEnv(t, nil)
	path := writeConfig(t, t.TempDir(), "config.yaml", "window:\n  width: 0\n")
	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Path != "window.width" {
		t.Fatalf("expected path window.width, got %q", verr.Path)
	}
	if verr.Source.Line != 2 || verr.Source.Column != 10 {
		t.Fatalf("expected 2:10, got %d:%d", verr.Source.Line, verr.Source.Column)
	}
	if !strings.Contains(err.Error(), ":2:10: window.width:") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestLoadFromPath_UnknownPreset(t *testing.T) {
	withEnv(t, nil)
	path := writeConfig(t, t.TempDir(), "config.yaml", "preset: vulkan\n")
	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path != "preset" {
		t.Fatalf("expected preset validation error, got %v", err)
	}
}

func TestLoadFromPath_IncompatibleAttributesLeaveNoReport(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer errstate.Release()
	withEnv(t, nil)

	errstate.Reset()
	data := "context:\n  api: gles2\nframebuffer:\n  accum_buffer: true\n"
	_, err := LoadFromPath(writeConfig(t, t.TempDir(), "config.yaml", data))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path != "context" {
		t.Fatalf("expected context validation error, got %v", err)
	}
	if errstate.CodeOf(verr.Err) != errstate.IncompatibleAttributes {
		t.Fatalf("expected IncompatibleAttributes, got %v", errstate.CodeOf(verr.Err))
	}
	if got := errstate.LastCode(); got != errstate.NoError {
		t.Fatalf("expected no error reported on the thread, got %v", got)
	}
}

func TestLoadFromPath_LibrariesValidated(t *testing.T) {
	withEnv(t, nil)
	dir := t.TempDir()

	ok := "libraries:\n  egl: [libEGL_mesa.so.0]\n"
	res, err := LoadFromPath(writeConfig(t, dir, "ok.yaml", ok))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	opts := res.Config.Options(nil)
	if got := opts.LibraryNames("egl", "libEGL.so.1"); len(got) != 1 || got[0] != "libEGL_mesa.so.0" {
		t.Fatalf("unexpected egl override %v", got)
	}

	bad := "libraries:\n  vulkan: [libvulkan.so.1]\n"
	_, err = LoadFromPath(writeConfig(t, dir, "bad.yaml", bad))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path != "libraries.vulkan" {
		t.Fatalf("expected libraries.vulkan error, got %v", err)
	}
}

func TestLoadFromPath_EnvOverrides(t *testing.T) {
	withEnv(t, map[string]string{
		"GLPORT_PLATFORM":   "gbm",
		"GLPORT_GBM_DEVICE": "/dev/dri/renderD129",
	})
	path := writeConfig(t, t.TempDir(), "config.yaml", "platform: glx\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Platform != "gbm" {
		t.Fatalf("expected env to win, got %q", res.Config.Platform)
	}
	if res.Config.Options(nil).Device != "/dev/dri/renderD129" {
		t.Fatalf("expected device from env")
	}
	_, src, err := Explain(res, "platform")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceEnv || src.Name != "GLPORT_PLATFORM" {
		t.Fatalf("unexpected source %+v", src)
	}
}

func TestLoadFromPath_EnvValidationNamesVariable(t *testing.T) {
	withEnv(t, map[string]string{"GLPORT_PLATFORM": "metal"})
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "$GLPORT_PLATFORM") {
		t.Fatalf("expected error naming the variable, got %v", err)
	}
}

func TestLoadFromPath_Includes(t *testing.T) {
	withEnv(t, nil)
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "conf.d"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, filepath.Join(dir, "conf.d"), "10-display.yaml", "display: \":2\"\nlog_level: debug\n")
	writeConfig(t, filepath.Join(dir, "conf.d"), "20-window.yaml", "window:\n  width: 640\n")
	writeConfig(t, filepath.Join(dir, "conf.d"), "README", "not yaml")
	path := writeConfig(t, dir, "config.yaml", "include: conf.d\nlog_level: warn\n")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Display != ":2" || res.Config.Window.Width != 640 {
		t.Fatalf("expected included values, got %+v", res.Config)
	}
	if res.Config.LogLevel != "warn" {
		t.Fatalf("expected including file to win, got %q", res.Config.LogLevel)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 files, got %v", res.Files)
	}
}

func TestLoadFromPath_IncludeCycle(t *testing.T) {
	withEnv(t, nil)
	dir := t.TempDir()
	writeConfig(t, dir, "b.yaml", "include: a.yaml\n")
	path := writeConfig(t, dir, "a.yaml", "include: b.yaml\n")
	_, err := LoadFromPath(path)
	if err == nil || !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected include cycle error, got %v", err)
	}
}

func TestLoadFromPath_MissingIncludeReportsEntryPosition(t *testing.T) {
	withEnv(t, nil)
	dir := t.TempDir()
	writeConfig(t, dir, "a.yaml", "log_level: debug\n")
	path := writeConfig(t, dir, "config.yaml", "include:\n  - a.yaml\n  - missing.yaml\n")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for missing include")
	}
	if !strings.Contains(err.Error(), `:3:5: include "missing.yaml"`) {
		t.Fatalf("expected position of the missing entry, got %v", err)
	}
}

func TestExplain_Sources(t *testing.T) {
	withEnv(t, nil)
	path := writeConfig(t, t.TempDir(), "config.yaml", "preset: gles3\nwindow:\n  height: 100\n")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	val, src, err := Explain(res, "window.height")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != 100 || src.Kind != SourceFile || src.Line != 3 {
		t.Fatalf("unexpected %v %+v", val, src)
	}

	val, src, err = Explain(res, "context.api")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if val != "gles3" || src.Kind != SourceBuiltin || src.Name != "gles3" {
		t.Fatalf("unexpected %v %+v", val, src)
	}

	_, src, err = Explain(res, "log_level")
	if err != nil || src.Kind != SourceDefault {
		t.Fatalf("expected default source, got %+v (%v)", src, err)
	}

	if _, _, err := Explain(res, "window.depth"); err == nil {
		t.Fatalf("expected unknown path error")
	}
	if _, _, err := Explain(res, "display.name"); err == nil {
		t.Fatalf("expected leaf path error")
	}
}

func TestConfig_KindsAndRequest(t *testing.T) {
	cfg := DefaultConfig()
	kinds, err := cfg.Kinds()
	if err != nil {
		t.Fatalf("kinds: %v", err)
	}
	if len(kinds) != len(probe.DefaultOrder) {
		t.Fatalf("expected auto to expand to the default order, got %v", kinds)
	}

	cfg.Platform = "surfaceless"
	kinds, err = cfg.Kinds()
	if err != nil || len(kinds) != 1 || kinds[0] != platform.KindSurfacelessEGL {
		t.Fatalf("unexpected kinds %v (%v)", kinds, err)
	}

	cfg.Display = ":3"
	cfg.Window = Window{Enabled: true, Width: 64, Height: 32}
	req, err := cfg.Request(kinds[0], slog.Default())
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if req.Display != ":3" || !req.Window || req.Width != 64 || req.Height != 32 {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.Attrs.API != platform.OpenGL || !req.Attrs.DoubleBuffered {
		t.Fatalf("unexpected attrs %+v", req.Attrs)
	}
}

func TestConfig_SamplesImplySampleBuffers(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Framebuffer.Samples = 4
	attrs, err := cfg.Attrs()
	if err != nil {
		t.Fatalf("attrs: %v", err)
	}
	if !attrs.SampleBuffers || attrs.Samples != 4 {
		t.Fatalf("unexpected attrs %+v", attrs)
	}
}

func TestConfig_SlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, want := range cases {
		cfg := DefaultConfig()
		cfg.LogLevel = name
		if got := cfg.SlogLevel(); got != want {
			t.Fatalf("%s: got %v want %v", name, got, want)
		}
	}
}
