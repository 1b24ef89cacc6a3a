// Package config loads the compiler's Options: a `.hqlrc.yaml` file merged
// with `HQL_*` environment overrides, the way the rest of the corpus layers
// environment configuration over a base file/flag default.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// SourceMapMode mirrors emitter.SourceMapMode without importing it, keeping
// config dependency-free of the emission stage it configures.
type SourceMapMode string

const (
	SourceMapInline   SourceMapMode = "inline"
	SourceMapExternal SourceMapMode = "external"
	SourceMapNone     SourceMapMode = "none"
)

// Options are the compilation entry point's options, per spec.md §6.
type Options struct {
	Verbose          bool          `yaml:"verbose"`
	SourceMap        SourceMapMode `yaml:"sourceMap"`
	EmitHelperPrefix bool          `yaml:"emitHelperPrefix"`
	Target           string        `yaml:"target"`
	BaseDir          string        `yaml:"baseDir"`
	CurrentFile      string        `yaml:"-"` // set per compilation, not persisted
	OutFile          string        `yaml:"-"` // set per compilation; defaults to CurrentFile with a .js extension
}

// Defaults returns the documented option defaults.
func Defaults() Options {
	return Options{
		Verbose:          false,
		SourceMap:        SourceMapInline,
		EmitHelperPrefix: true,
		Target:           "es2020",
		BaseDir:          ".",
	}
}

const rcFileName = ".hqlrc.yaml"

// Load builds Options by starting from Defaults, overlaying `.hqlrc.yaml`
// found in dir (or any of its parents) when present, then overlaying
// HQL_* environment variables — loading a sibling `.env` file first via
// godotenv, the way the rest of the corpus wires environment configuration.
func Load(dir string) (Options, error) {
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	opts := Defaults()

	if path, ok := findRCFile(dir); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return Options{}, err
		}
		if err := yaml.Unmarshal(data, &opts); err != nil {
			return Options{}, err
		}
	}

	applyEnvOverrides(&opts)
	return opts, nil
}

// findRCFile walks from dir up to the filesystem root looking for
// .hqlrc.yaml, the way a project-local config file is conventionally
// discovered from a subdirectory.
func findRCFile(dir string) (string, bool) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	for {
		candidate := filepath.Join(abs, rcFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", false
		}
		abs = parent
	}
}

func applyEnvOverrides(opts *Options) {
	if v, ok := os.LookupEnv("HQL_VERBOSE"); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			opts.Verbose = b
		}
	}
	if v, ok := os.LookupEnv("HQL_SOURCE_MAP"); ok {
		switch SourceMapMode(strings.TrimSpace(v)) {
		case SourceMapInline, SourceMapExternal, SourceMapNone:
			opts.SourceMap = SourceMapMode(strings.TrimSpace(v))
		}
	}
	if v, ok := os.LookupEnv("HQL_EMIT_HELPER_PREFIX"); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			opts.EmitHelperPrefix = b
		}
	}
	if v, ok := os.LookupEnv("HQL_TARGET"); ok && strings.TrimSpace(v) != "" {
		opts.Target = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv("HQL_BASE_DIR"); ok && strings.TrimSpace(v) != "" {
		opts.BaseDir = strings.TrimSpace(v)
	}
}
