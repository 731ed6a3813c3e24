package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceKind says where an effective value came from.
type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceBuiltin SourceKind = "builtin"
	SourceFile    SourceKind = "file"
	SourceEnv     SourceKind = "env"
)

// Source locates the last writer of a config key.
type Source struct {
	Kind   SourceKind
	Name   string // preset name, env variable or "defaults"
	File   string
	Line   int
	Column int
}

// LoadResult is the effective configuration plus where each key was set.
type LoadResult struct {
	Config  *Config
	Sources map[string]Source // dotted key -> last file or env writer
	Files   []string          // every file read, includes first
}

// Environment overrides, applied after every file.
var envOverrides = []struct {
	Name string
	Path string
	Set  func(raw *RawConfig, v string)
}{
	{"GLPORT_PLATFORM", "platform", func(raw *RawConfig, v string) { raw.Platform = &v }},
	{"GLPORT_DISPLAY", "display", func(raw *RawConfig, v string) { raw.Display = &v }},
	{"GLPORT_GBM_DEVICE", "gbm_device", func(raw *RawConfig, v string) { raw.GBMDevice = &v }},
	{"GLPORT_LOG_LEVEL", "log_level", func(raw *RawConfig, v string) { raw.LogLevel = &v }},
}

// lookupEnv is replaced in tests.
var lookupEnv = os.LookupEnv

// DefaultConfigPath is ~/.config/glport/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "glport", "config.yaml"), nil
}

// LoadWithSources loads DefaultConfigPath.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath layers path (and its includes) and the GLPORT_* variables
// over the defaults, then validates the result. A missing file is not an
// error.
func LoadFromPath(path string) (*LoadResult, error) {
	var raw RawConfig
	sources := map[string]Source{}

	l := &fileLoader{seen: map[string]bool{}}
	if _, err := os.Stat(path); err == nil {
		if raw, err = l.load(path, sources); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	for _, env := range envOverrides {
		v, ok := lookupEnv(env.Name)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		env.Set(&raw, v)
		sources[env.Path] = Source{Kind: SourceEnv, Name: env.Name}
	}

	cfg, err := BuildEffectiveConfig(raw)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, attachSourceContext(err, sources)
	}
	return &LoadResult{Config: cfg, Sources: sources, Files: l.files}, nil
}

// fileLoader reads a config file after the files it includes, depth first.
// A file reached twice is read once; a file that includes itself, directly
// or not, is an error.
type fileLoader struct {
	seen  map[string]bool
	stack []string
	files []string
}

// load returns the merged raw config of path and its includes, recording
// the position of every key it sets in sources.
func (l *fileLoader) load(path string, sources map[string]Source) (RawConfig, error) {
	file, err := filepath.Abs(path)
	if err != nil {
		return RawConfig{}, fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(file); err == nil {
		file = real
	}
	for _, open := range l.stack {
		if open == file {
			return RawConfig{}, fmt.Errorf("include cycle detected: %s -> %s", strings.Join(l.stack, " -> "), file)
		}
	}
	if l.seen[file] {
		return RawConfig{}, nil
	}
	l.seen[file] = true

	data, err := os.ReadFile(file)
	if err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to read: %w", file, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to parse yaml: %w", file, err)
	}
	var own RawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&own); err != nil && !errors.Is(err, io.EOF) {
		return RawConfig{}, fmt.Errorf("%s: %w", file, err)
	}
	positions := map[string]Source{}
	recordPositions(&doc, file, "", positions)

	var merged RawConfig
	l.stack = append(l.stack, file)
	for i, inc := range own.Include {
		paths, err := includedFiles(file, inc)
		if err != nil {
			at := includeAt(&doc, i)
			return RawConfig{}, fmt.Errorf("%s:%d:%d: include %q: %w", file, at.Line, at.Column, inc, err)
		}
		for _, p := range paths {
			incRaw, err := l.load(p, sources)
			if err != nil {
				return RawConfig{}, err
			}
			merged = merged.merge(incRaw)
		}
	}
	l.stack = l.stack[:len(l.stack)-1]

	// A file overrides what it includes.
	for key, src := range positions {
		sources[key] = src
	}
	l.files = append(l.files, file)
	return merged.merge(own), nil
}

// includedFiles resolves an include entry relative to the including file.
// A directory contributes its *.yaml and *.yml files in name order.
func includedFiles(from, inc string) ([]string, error) {
	if inc == "" {
		return nil, fmt.Errorf("path is empty")
	}
	if inc == "~" || strings.HasPrefix(inc, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		inc = filepath.Join(home, strings.TrimPrefix(inc, "~"))
	}
	if !filepath.IsAbs(inc) {
		inc = filepath.Join(filepath.Dir(from), inc)
	}

	info, err := os.Stat(inc)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{inc}, nil
	}
	entries, err := os.ReadDir(inc)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		switch strings.ToLower(filepath.Ext(ent.Name())) {
		case ".yaml", ".yml":
			if !ent.IsDir() {
				files = append(files, filepath.Join(inc, ent.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// recordPositions maps every dotted key under node to the position of its
// value.
func recordPositions(node *yaml.Node, file, prefix string, out map[string]Source) {
	if node.Kind == yaml.DocumentNode {
		for _, child := range node.Content {
			recordPositions(child, file, prefix, out)
		}
		return
	}
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		if prefix != "" {
			key = prefix + "." + key
		}
		out[key] = Source{Kind: SourceFile, File: file, Line: val.Line, Column: val.Column}
		recordPositions(val, file, key, out)
	}
}

// includeAt returns the node of the i-th include entry, which is the
// include value itself when it is a single path.
func includeAt(doc *yaml.Node, i int) *yaml.Node {
	node := doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	for k := 0; k+1 < len(node.Content) && node.Kind == yaml.MappingNode; k += 2 {
		if node.Content[k].Value != "include" {
			continue
		}
		val := node.Content[k+1]
		if val.Kind == yaml.SequenceNode && i < len(val.Content) {
			return val.Content[i]
		}
		return val
	}
	return node
}

// attachSourceContext points a ValidationError at the file position (or
// environment variable) that set the offending key. Keys without their own
// entry inherit their parent section's position.
func attachSourceContext(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	for path := verr.Path; path != ""; {
		if src, ok := sources[path]; ok {
			verr.Source = src
			break
		}
		i := strings.LastIndex(path, ".")
		if i < 0 {
			break
		}
		path = path[:i]
	}
	return verr
}
