package mcp

// ListPlatformsInput is the input for the list_platforms tool.
type ListPlatformsInput struct{}

// PlatformInfo describes one backend kind.
type PlatformInfo struct {
	Name       string `json:"name"`
	Registered bool   `json:"registered"`
	// Order is the position in the auto-selection order, -1 when the kind
	// is never picked automatically.
	Order int `json:"order"`
}

// ListPlatformsOutput is the output for the list_platforms tool.
type ListPlatformsOutput struct {
	Platforms  []PlatformInfo `json:"platforms"`
	Configured string         `json:"configured"`
}

// ProbePlatformInput is the input for the probe_platform tool.
type ProbePlatformInput struct {
	Platform string `json:"platform,omitempty" jsonschema:"Backend to probe: glx, x11_egl, gbm, surfaceless_egl, wgl or auto (default: the configured platform)"`
	Display  string `json:"display,omitempty" jsonschema:"X display name or DRM device path (default: configured display, then $DISPLAY)"`
	Preset   string `json:"preset,omitempty" jsonschema:"Built-in context preset: gl, gl-core, gl-compat, gles1, gles2, gles3"`
	API      string `json:"api,omitempty" jsonschema:"Client API override: gl, gles1, gles2, gles3"`
	Version  string `json:"version,omitempty" jsonschema:"Context version override, M or M.m"`
	Window   *bool  `json:"window,omitempty" jsonschema:"When true, also create, show and swap a window (default: configured window.enabled)"`
	All      bool   `json:"all,omitempty" jsonschema:"Probe every backend linked into this binary instead of one"`
}

// StepOutput is one lifecycle step of a probe.
type StepOutput struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

// ReportOutput is the outcome of probing one backend.
type ReportOutput struct {
	Platform   string          `json:"platform"`
	OK         bool            `json:"ok"`
	Display    string          `json:"display,omitempty"`
	Vendor     string          `json:"vendor,omitempty"`
	Version    string          `json:"version,omitempty"`
	ClientAPIs string          `json:"client_apis,omitempty"`
	Device     string          `json:"device,omitempty"`
	Outputs    []string        `json:"outputs,omitempty"`
	APIs       map[string]bool `json:"apis,omitempty"`
	Libraries  map[string]bool `json:"libraries,omitempty"`
	Steps      []StepOutput    `json:"steps"`
	Code       string          `json:"code,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// ProbePlatformOutput is the output for the probe_platform tool.
type ProbePlatformOutput struct {
	Reports []ReportOutput `json:"reports"`
}

// ErrorCodesInput is the input for the error_codes tool.
type ErrorCodesInput struct{}

// ErrorCode pairs a numeric error code with its name.
type ErrorCode struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

// ErrorCodesOutput is the output for the error_codes tool.
type ErrorCodesOutput struct {
	Codes []ErrorCode `json:"codes"`
}
