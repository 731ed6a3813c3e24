package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	_ "github.com/1broseidon/glport/internal/backend/all"
	"github.com/1broseidon/glport/internal/config"
	"github.com/1broseidon/glport/internal/errstate"
	"github.com/1broseidon/glport/internal/platform"
)

func init() {
	// Native GL stacks bind contexts and error state to the OS thread.
	runtime.LockOSThread()
}

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "info":
		os.Exit(runInfo(os.Args[2:]))
	case "probe":
		os.Exit(runProbe(os.Args[2:]))
	case "errors":
		os.Exit(runErrors(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: glport <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  info                List backends and which are linked in")
	fmt.Fprintln(w, "  probe               Run a full context lifecycle on a backend")
	fmt.Fprintln(w, "  errors              List error codes")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'glport <command> --help' for command-specific options.")
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func newLogger(cfg *config.Config, verbose bool) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func runInfo(args []string) int {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/glport/config.yaml)")
	format := fs.String("format", "", "Output format: text, json or yaml (default: text on a terminal, json otherwise)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	out, err := resolveFormat(*format, stdoutIsTerminal())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	info := collectInfo(res.Config)
	if out == formatText {
		writeInfoText(os.Stdout, info)
		return 0
	}
	if err := encode(os.Stdout, out, info); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runErrors(args []string) int {
	fs := flag.NewFlagSet("errors", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	format := fs.String("format", "", "Output format: text, json or yaml")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	out, err := resolveFormat(*format, stdoutIsTerminal())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	type codeEntry struct {
		Code int    `json:"code" yaml:"code"`
		Name string `json:"name" yaml:"name"`
	}
	var codes []codeEntry
	for _, c := range errstate.Codes() {
		codes = append(codes, codeEntry{Code: int(c), Name: c.String()})
	}
	if out == formatText {
		for _, c := range codes {
			fmt.Printf("%3d  %s\n", c.Code, c.Name)
		}
		return 0
	}
	if err := encode(os.Stdout, out, codes); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  glport config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  glport config print [--path PATH] [--effective|--defaults]")
		fmt.Fprintln(os.Stderr, "  glport config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/glport/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/glport/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		printEffective := fs.Bool("effective", false, "Print effective config (default)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg, files, err := printedConfig(*path, *printDefaults, *printEffective)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			if errors.Is(err, errPrintFlags) {
				return 2
			}
			return 1
		}
		for _, f := range files {
			fmt.Printf("# loaded: %s\n", f)
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/glport/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

var errPrintFlags = errors.New("--defaults and --effective are mutually exclusive")

// printedConfig returns what `config print` shows: the built-in defaults, or
// the effective configuration and the files it was loaded from.
func printedConfig(path string, defaults, effective bool) (*config.Config, []string, error) {
	switch {
	case defaults && effective:
		return nil, nil, errPrintFlags
	case defaults:
		return config.DefaultConfig(), nil, nil
	}
	res, err := loadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	return res.Config, res.Files, nil
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceEnv:
		return "env:" + src.Name
	case config.SourceBuiltin:
		if src.Name != "" {
			return "preset:" + src.Name
		}
		return "preset"
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}

// backendInfo is one row of `glport info`.
type backendInfo struct {
	Name       string `json:"name" yaml:"name"`
	Registered bool   `json:"registered" yaml:"registered"`
	Selected   bool   `json:"selected" yaml:"selected"`
}

type infoOutput struct {
	Platform string        `json:"platform" yaml:"platform"`
	OS       string        `json:"os" yaml:"os"`
	Backends []backendInfo `json:"backends" yaml:"backends"`
}

func collectInfo(cfg *config.Config) infoOutput {
	selected := map[platform.Kind]bool{}
	if kinds, err := cfg.Kinds(); err == nil {
		for _, k := range kinds {
			selected[k] = true
		}
	}
	out := infoOutput{Platform: cfg.Platform, OS: runtime.GOOS}
	for _, k := range platform.Kinds() {
		out.Backends = append(out.Backends, backendInfo{
			Name:       k.String(),
			Registered: platform.IsRegistered(k),
			Selected:   selected[k],
		})
	}
	return out
}

func writeInfoText(w io.Writer, info infoOutput) {
	fmt.Fprintf(w, "platform: %s (%s)\n", info.Platform, info.OS)
	for _, b := range info.Backends {
		state := "not built"
		if b.Registered {
			state = "available"
		}
		mark := " "
		if b.Selected && b.Registered {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %-16s %s\n", mark, b.Name, state)
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var verr *config.ValidationError
	if errors.As(err, &verr) {
		return 2
	}
	return 1
}
