package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/glport/internal/probe"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// resolveFormat picks the output format. Without an explicit choice,
// terminals get text and pipes get JSON.
func resolveFormat(requested string, tty bool) (string, error) {
	switch strings.ToLower(strings.TrimSpace(requested)) {
	case "":
		if tty {
			return formatText, nil
		}
		return formatJSON, nil
	case formatText:
		return formatText, nil
	case formatJSON:
		return formatJSON, nil
	case formatYAML, "yml":
		return formatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (use text, json or yaml)", requested)
	}
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("cannot encode %s", format)
	}
}

func writeReportText(w io.Writer, r probe.Report) {
	status := "ok"
	if !r.OK {
		status = "FAILED"
		if r.Error != nil {
			status = fmt.Sprintf("FAILED (%s: %s)", r.Error.Code, r.Error.Message)
		}
	}
	fmt.Fprintf(w, "platform: %s  %s\n", r.Platform, status)

	if d := r.Display; d != nil {
		if d.Vendor != "" || d.Version != "" {
			fmt.Fprintf(w, "  vendor:  %s %s\n", d.Vendor, d.Version)
		}
		if d.Device != "" {
			fmt.Fprintf(w, "  device:  %s\n", d.Device)
		}
		if d.ClientAPIs != "" {
			fmt.Fprintf(w, "  client:  %s\n", d.ClientAPIs)
		}
		for _, o := range d.Outputs {
			fmt.Fprintf(w, "  output:  %s %dx%d+%d+%d\n", o.Name, o.Width, o.Height, o.X, o.Y)
		}
	}
	if len(r.APIs) > 0 {
		fmt.Fprintf(w, "  apis:    %s\n", yesNo(r.APIs))
	}
	if len(r.Libraries) > 0 {
		fmt.Fprintf(w, "  libs:    %s\n", yesNo(r.Libraries))
	}
	if c := r.Config; c != nil {
		fmt.Fprintf(w, "  config:  %s %d.%d", c.API, c.MajorVersion, c.MinorVersion)
		if c.Profile != 0 {
			fmt.Fprintf(w, " %s", c.Profile)
		}
		fmt.Fprintln(w)
	}

	for _, s := range r.Steps {
		if s.OK {
			fmt.Fprintf(w, "  ok    %s\n", s.Name)
			continue
		}
		msg := ""
		if s.Error != nil {
			msg = s.Error.Code.String()
			if s.Error.Message != "" {
				msg += ": " + s.Error.Message
			}
		}
		fmt.Fprintf(w, "  FAIL  %-18s %s\n", s.Name, msg)
	}
}

// yesNo renders a flag map as "a yes  b no" in key order.
func yesNo(m map[string]bool) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := "no"
		if m[k] {
			v = "yes"
		}
		parts = append(parts, k+" "+v)
	}
	return strings.Join(parts, "  ")
}
