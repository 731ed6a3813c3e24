// Package probe drives a full platform lifecycle for diagnostics and picks
// a working backend when the caller did not name one.
package probe

import (
	"runtime"

	"github.com/1broseidon/glport/internal/errstate"
	"github.com/1broseidon/glport/internal/platform"
)

// DefaultOrder is the preference used by FirstAvailable.
var DefaultOrder = []platform.Kind{
	platform.KindX11EGL,
	platform.KindGLX,
	platform.KindWGL,
	platform.KindGBM,
	platform.KindSurfacelessEGL,
}

// Request describes one probe run.
type Request struct {
	Kind    platform.Kind
	Display string
	Attrs   platform.ConfigAttrs
	Options platform.Options

	// Window also creates, shows and swaps a Width x Height window.
	Window bool
	Width  int
	Height int
}

// Step is one lifecycle operation and its outcome.
type Step struct {
	Name  string         `json:"name" yaml:"name"`
	OK    bool           `json:"ok" yaml:"ok"`
	Error *errstate.Info `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report is the result of Run.
type Report struct {
	Platform  string                `json:"platform" yaml:"platform"`
	OK        bool                  `json:"ok" yaml:"ok"`
	Display   *platform.DisplayInfo `json:"display,omitempty" yaml:"display,omitempty"`
	APIs      map[string]bool       `json:"apis,omitempty" yaml:"apis,omitempty"`
	Libraries map[string]bool       `json:"libraries,omitempty" yaml:"libraries,omitempty"`
	Config    *platform.ConfigAttrs `json:"config,omitempty" yaml:"config,omitempty"`
	Steps     []Step                `json:"steps" yaml:"steps"`
	Error     *errstate.Info        `json:"error,omitempty" yaml:"error,omitempty"`
}

type run struct {
	report *Report
	names  []string
	undo   []func() error
}

// do runs one step, recording the error the step reported.
func (r *run) do(name string, fn func() error) bool {
	errstate.Reset()
	err := fn()
	step := Step{Name: name, OK: err == nil}
	if err != nil {
		info := errstate.LastInfo()
		if info.Code == errstate.NoError {
			info = errstate.Info{Code: errstate.CodeOf(err), Message: err.Error()}
		}
		step.Error = &info
		if r.report.Error == nil {
			r.report.Error = &info
		}
	}
	r.report.Steps = append(r.report.Steps, step)
	return err == nil
}

// onExit queues a release step, run in reverse order when Run returns.
func (r *run) onExit(name string, fn func() error) {
	r.names = append(r.names, name)
	r.undo = append(r.undo, fn)
}

// Run creates the platform, a display, a config and a context (plus a
// window when asked), makes them current and tears everything down in
// reverse order. It pins the calling goroutine to its thread for the
// duration.
func Run(req Request) (report Report) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if req.Width <= 0 {
		req.Width = 320
	}
	if req.Height <= 0 {
		req.Height = 240
	}

	report = Report{Platform: req.Kind.String()}
	r := &run{report: &report}
	defer func() {
		for i := len(r.undo) - 1; i >= 0; i-- {
			r.do(r.names[i], r.undo[i])
		}
		report.OK = report.Error == nil
		errstate.Reset()
	}()

	var (
		p   *platform.Platform
		d   *platform.Display
		cfg *platform.Config
		ctx *platform.Context
		win *platform.Window
		err error
	)

	if !r.do("create_platform", func() error {
		p, err = platform.Create(req.Kind, req.Options)
		return err
	}) {
		return report
	}
	r.onExit("destroy_platform", func() error { return p.Destroy() })

	if !r.do("connect_display", func() error {
		d, err = p.ConnectDisplay(req.Display)
		return err
	}) {
		return report
	}
	r.onExit("disconnect_display", func() error { return d.Disconnect() })

	r.do("describe_display", func() error {
		info, err := d.Describe()
		if err == nil {
			report.Display = &info
		}
		return err
	})

	report.APIs = make(map[string]bool)
	report.Libraries = make(map[string]bool)
	for _, api := range platform.ContextAPIs() {
		ok, _ := d.SupportsContextAPI(api)
		report.APIs[api.String()] = ok
		report.Libraries[api.String()] = p.DLCanOpen(api)
	}

	if !r.do("choose_config", func() error {
		cfg, err = p.ChooseConfig(d, req.Attrs)
		return err
	}) {
		return report
	}
	r.onExit("destroy_config", func() error { return cfg.Destroy() })
	attrs := cfg.Attrs()
	report.Config = &attrs

	if !r.do("create_context", func() error {
		ctx, err = p.CreateContext(cfg, nil)
		return err
	}) {
		return report
	}
	r.onExit("destroy_context", func() error { return ctx.Destroy() })

	switch {
	case req.Window:
		if !r.do("create_window", func() error {
			win, err = p.CreateWindow(cfg, req.Width, req.Height)
			return err
		}) {
			return report
		}
		r.onExit("destroy_window", func() error { return win.Destroy() })
		if !r.do("show_window", win.Show) {
			return report
		}
		if !r.do("make_current", func() error { return p.MakeCurrent(d, win, ctx) }) {
			return report
		}
		r.onExit("release_current", func() error { return p.MakeCurrent(d, nil, nil) })
		r.do("swap_buffers", win.SwapBuffers)
	case req.Kind == platform.KindSurfacelessEGL:
		if !r.do("make_current", func() error { return p.MakeCurrent(d, nil, ctx) }) {
			return report
		}
		r.onExit("release_current", func() error { return p.MakeCurrent(d, nil, nil) })
	}

	r.do("get_proc_address", func() error {
		addr, err := p.GetProcAddress("glGetString")
		if err == nil && addr == 0 {
			err = errstate.Errorf(errstate.UnknownError, "glGetString did not resolve")
		}
		return err
	})
	return report
}

// All probes every registered backend with req, overriding req.Kind.
func All(req Request) []Report {
	var reports []Report
	for _, kind := range platform.Registered() {
		req.Kind = kind
		reports = append(reports, Run(req))
	}
	return reports
}

// FirstAvailable returns the first kind in order whose platform can be
// created and whose default display connects. Failed attempts do not
// touch the caller's error state.
func FirstAvailable(order []platform.Kind, opts platform.Options, display string) (platform.Kind, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for _, kind := range order {
		if !platform.IsRegistered(kind) {
			continue
		}
		var ok bool
		errstate.Disabled(func() {
			p, err := platform.Create(kind, opts)
			if err != nil {
				return
			}
			defer p.Destroy()
			d, err := p.ConnectDisplay(display)
			if err != nil {
				return
			}
			d.Disconnect()
			ok = true
		})
		if ok {
			return kind, nil
		}
	}
	return 0, errstate.Errorf(errstate.UnsupportedOnPlatform, "no usable platform among %v", order)
}
