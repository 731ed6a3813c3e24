package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/glport/internal/config"
	"github.com/1broseidon/glport/internal/errstate"
	"github.com/1broseidon/glport/internal/platform"
	"github.com/1broseidon/glport/internal/probe"
)

func (s *Server) handleListPlatforms(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListPlatformsInput) (*mcpsdk.CallToolResult, ListPlatformsOutput, error) {
	order := make(map[platform.Kind]int, len(probe.DefaultOrder))
	for i, k := range probe.DefaultOrder {
		order[k] = i
	}

	out := ListPlatformsOutput{
		Platforms:  make([]PlatformInfo, 0, len(platform.Kinds())),
		Configured: s.config.Platform,
	}
	for _, kind := range platform.Kinds() {
		pos, ok := order[kind]
		if !ok {
			pos = -1
		}
		out.Platforms = append(out.Platforms, PlatformInfo{
			Name:       kind.String(),
			Registered: platform.IsRegistered(kind),
			Order:      pos,
		})
	}
	return nil, out, nil
}

func (s *Server) handleProbePlatform(_ context.Context, _ *mcpsdk.CallToolRequest, args ProbePlatformInput) (*mcpsdk.CallToolResult, ProbePlatformOutput, error) {
	cfg, err := s.requestConfig(args)
	if err != nil {
		return nil, ProbePlatformOutput{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Tool calls arrive on short-lived goroutines.
	defer errstate.Release()

	var kinds []platform.Kind
	switch {
	case args.All:
		kinds = platform.Registered()
		if len(kinds) == 0 {
			return nil, ProbePlatformOutput{}, fmt.Errorf("no backends are linked into this binary")
		}
	case cfg.Platform == config.PlatformAuto:
		kind, err := s.firstAvailable(cfg)
		if err != nil {
			return nil, ProbePlatformOutput{}, err
		}
		kinds = []platform.Kind{kind}
	default:
		kinds, err = cfg.Kinds()
		if err != nil {
			return nil, ProbePlatformOutput{}, err
		}
	}

	out := ProbePlatformOutput{Reports: make([]ReportOutput, 0, len(kinds))}
	for _, kind := range kinds {
		req, err := cfg.Request(kind, s.logger)
		if err != nil {
			return nil, ProbePlatformOutput{}, err
		}
		req.Display = resolveDisplay(kind, cfg.Display)
		s.logger.Debug("probing", "platform", kind.String(), "display", req.Display, "window", req.Window)

		report := s.runFn(req)
		if !report.OK {
			s.logger.Info("probe failed", "platform", kind.String(), "error", report.Error)
		}
		out.Reports = append(out.Reports, reportOutput(report, req.Display))
	}
	return nil, out, nil
}

// firstAvailable walks the default order one kind at a time so each backend
// is tried with the display it would be probed with.
func (s *Server) firstAvailable(cfg *config.Config) (platform.Kind, error) {
	opts := cfg.Options(s.logger)
	var lastErr error
	for _, kind := range probe.DefaultOrder {
		got, err := s.firstFn([]platform.Kind{kind}, opts, resolveDisplay(kind, cfg.Display))
		if err == nil {
			return got, nil
		}
		lastErr = err
	}
	return 0, lastErr
}

// requestConfig applies the tool arguments over a copy of the server's
// configuration.
func (s *Server) requestConfig(args ProbePlatformInput) (*config.Config, error) {
	cfg := *s.config

	if p := strings.TrimSpace(args.Platform); p != "" {
		cfg.Platform = strings.ToLower(p)
	}
	if args.Display != "" {
		cfg.Display = args.Display
	}
	if args.Preset != "" {
		preset, ok := config.BuiltinPresets()[args.Preset]
		if !ok {
			return nil, fmt.Errorf("unknown preset %q; available: %s", args.Preset, strings.Join(config.PresetNames(), ", "))
		}
		cfg.Preset = args.Preset
		cfg.Context = preset.Context
		cfg.Framebuffer = preset.Framebuffer
	}
	if args.API != "" {
		cfg.Context.API = args.API
		cfg.Context.Version = ""
		cfg.Context.Profile = ""
	}
	if args.Version != "" {
		cfg.Context.Version = args.Version
	}
	if args.Window != nil {
		cfg.Window.Enabled = *args.Window
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Server) handleErrorCodes(_ context.Context, _ *mcpsdk.CallToolRequest, _ ErrorCodesInput) (*mcpsdk.CallToolResult, ErrorCodesOutput, error) {
	codes := errstate.Codes()
	out := ErrorCodesOutput{Codes: make([]ErrorCode, 0, len(codes))}
	for _, c := range codes {
		out.Codes = append(out.Codes, ErrorCode{Code: int(c), Name: c.String()})
	}
	return nil, out, nil
}

func reportOutput(r probe.Report, display string) ReportOutput {
	out := ReportOutput{
		Platform:  r.Platform,
		OK:        r.OK,
		Display:   display,
		APIs:      r.APIs,
		Libraries: r.Libraries,
		Steps:     make([]StepOutput, 0, len(r.Steps)),
	}
	if r.Display != nil {
		out.Vendor = r.Display.Vendor
		out.Version = r.Display.Version
		out.ClientAPIs = r.Display.ClientAPIs
		out.Device = r.Display.Device
		for _, o := range r.Display.Outputs {
			out.Outputs = append(out.Outputs, fmt.Sprintf("%s %dx%d+%d+%d", o.Name, o.Width, o.Height, o.X, o.Y))
		}
	}
	for _, step := range r.Steps {
		so := StepOutput{Name: step.Name, OK: step.OK}
		if step.Error != nil {
			so.Code = step.Error.Code.String()
			so.Error = step.Error.Message
		}
		out.Steps = append(out.Steps, so)
	}
	if r.Error != nil {
		out.Code = r.Error.Code.String()
		out.Error = r.Error.Message
	}
	return out
}
