package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/1broseidon/glport/internal/config"
	"github.com/1broseidon/glport/internal/platform"
	"github.com/1broseidon/glport/internal/probe"
)

func runProbe(args []string) int {
	fs := flag.NewFlagSet("probe", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/glport/config.yaml)")
	plat := fs.String("platform", "", "Backend: glx, x11_egl, gbm, surfaceless_egl, wgl or auto (default: from config)")
	display := fs.String("display", "", "X display name or DRM device path (default: from config)")
	preset := fs.String("preset", "", "Context preset: "+strings.Join(config.PresetNames(), ", "))
	api := fs.String("api", "", "Client API override: gl, gles1, gles2, gles3")
	version := fs.String("gl-version", "", "Context version override, M or M.m")
	window := fs.String("window", "", "Create a window too: true or false (default: from config)")
	all := fs.Bool("all", false, "Probe every linked-in backend")
	format := fs.String("format", "", "Output format: text, json or yaml (default: text on a terminal, json otherwise)")
	verbose := fs.Bool("v", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCode(err)
	}
	cfg := *res.Config
	if err := applyProbeFlags(&cfg, probeFlags{
		Platform: *plat,
		Display:  *display,
		Preset:   *preset,
		API:      *api,
		Version:  *version,
		Window:   *window,
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	out, err := resolveFormat(*format, stdoutIsTerminal())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger := newLogger(&cfg, *verbose)

	var kinds []platform.Kind
	switch {
	case *all:
		kinds = platform.Registered()
	case cfg.Platform == config.PlatformAuto:
		kind, err := probe.FirstAvailable(probe.DefaultOrder, cfg.Options(logger), cfg.Display)
		if err != nil {
			logger.Error("no usable platform", "error", err)
			return 1
		}
		logger.Debug("selected platform", "platform", kind.String())
		kinds = []platform.Kind{kind}
	default:
		kinds, err = cfg.Kinds()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}

	var reports []probe.Report
	failed := false
	for _, kind := range kinds {
		req, err := cfg.Request(kind, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		report := probe.Run(req)
		if !report.OK {
			failed = true
		}
		reports = append(reports, report)
	}

	if out == formatText {
		for i, r := range reports {
			if i > 0 {
				fmt.Println()
			}
			writeReportText(os.Stdout, r)
		}
	} else if err := encode(os.Stdout, out, reports); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if failed {
		return 1
	}
	return 0
}

type probeFlags struct {
	Platform string
	Display  string
	Preset   string
	API      string
	Version  string
	Window   string
}

// applyProbeFlags layers command-line overrides over the loaded config and
// revalidates it.
func applyProbeFlags(cfg *config.Config, f probeFlags) error {
	if f.Platform != "" {
		cfg.Platform = strings.ToLower(strings.TrimSpace(f.Platform))
	}
	if f.Display != "" {
		cfg.Display = f.Display
	}
	if f.Preset != "" {
		p, ok := config.BuiltinPresets()[f.Preset]
		if !ok {
			return fmt.Errorf("unknown preset %q (available: %s)", f.Preset, strings.Join(config.PresetNames(), ", "))
		}
		cfg.Preset = f.Preset
		cfg.Context = p.Context
		cfg.Framebuffer = p.Framebuffer
	}
	if f.API != "" {
		cfg.Context.API = f.API
		cfg.Context.Version = ""
		cfg.Context.Profile = ""
	}
	if f.Version != "" {
		cfg.Context.Version = f.Version
	}
	switch strings.ToLower(f.Window) {
	case "":
	case "true", "yes", "1":
		cfg.Window.Enabled = true
	case "false", "no", "0":
		cfg.Window.Enabled = false
	default:
		return fmt.Errorf("invalid -window value %q", f.Window)
	}
	return cfg.Validate()
}
