package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsMatchDocumentedValues(t *testing.T) {
	d := Defaults()
	if d.SourceMap != SourceMapInline || !d.EmitHelperPrefix || d.Target != "es2020" {
		t.Fatalf("unexpected defaults: %#v", d)
	}
}

func TestLoadOverlaysRCFile(t *testing.T) {
	dir := t.TempDir()
	rc := "verbose: true\ntarget: es2022\nsourceMap: external\n"
	if err := os.WriteFile(filepath.Join(dir, ".hqlrc.yaml"), []byte(rc), 0o644); err != nil {
		t.Fatalf("write rc: %v", err)
	}

	opts, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !opts.Verbose || opts.Target != "es2022" || opts.SourceMap != SourceMapExternal {
		t.Fatalf("expected rc file values to override defaults, got %#v", opts)
	}
}

func TestEnvOverridesWinOverRCFile(t *testing.T) {
	dir := t.TempDir()
	rc := "target: es2022\n"
	if err := os.WriteFile(filepath.Join(dir, ".hqlrc.yaml"), []byte(rc), 0o644); err != nil {
		t.Fatalf("write rc: %v", err)
	}
	t.Setenv("HQL_TARGET", "es2017")

	opts, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if opts.Target != "es2017" {
		t.Fatalf("expected env override to win, got %q", opts.Target)
	}
}

func TestLoadWithNoRCFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	opts, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if opts.Target != "es2020" {
		t.Fatalf("expected defaults with no rc file, got %#v", opts)
	}
}
