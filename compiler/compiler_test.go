package compiler

import (
	"strings"
	"testing"

	"github.com/hqllang/hql/config"
	"github.com/hqllang/hql/herrors"
)

func TestCompileProducesJavaScript(t *testing.T) {
	res, err := Compile(`(def x (+ 1 2))`, "in.hql", config.Options{SourceMap: config.SourceMapNone})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.Contains(res.JS, "let x = 1 + 2;") {
		t.Fatalf("unexpected output: %q", res.JS)
	}
	if res.Map != "" {
		t.Fatalf("expected no map with SourceMapNone, got %q", res.Map)
	}
}

func TestCompileInlineSourceMap(t *testing.T) {
	res, err := Compile(`(def x 1)`, "in.hql", config.Options{SourceMap: config.SourceMapInline})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.Contains(res.JS, "sourceMappingURL=data:application/json;base64,") {
		t.Fatalf("expected an inline map comment, got %q", res.JS)
	}
}

func TestCompileExternalSourceMapNamesSiblingFile(t *testing.T) {
	res, err := Compile(`(def x 1)`, "src/in.hql", config.Options{SourceMap: config.SourceMapExternal})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if res.MapFile != "src/in.js.map" {
		t.Fatalf("expected sibling map file src/in.js.map, got %q", res.MapFile)
	}
}

func TestCompileParseErrorIsHErrorsError(t *testing.T) {
	_, err := Compile(`(def x`, "in.hql", config.Options{SourceMap: config.SourceMapNone})
	if err == nil {
		t.Fatal("expected an unbalanced-paren parse error")
	}
	if _, ok := err.(*herrors.Error); !ok {
		t.Fatalf("expected a *herrors.Error, got %T", err)
	}
}

func TestCompilePrependsHelperForDynamicAccessor(t *testing.T) {
	res, err := Compile(`(def x (js-get obj (str "a" "b")))`, "in.hql", config.Options{SourceMap: config.SourceMapNone, EmitHelperPrefix: true})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !strings.HasPrefix(res.JS, "function get(obj, key)") {
		t.Fatalf("expected helper prelude prepended, got %q", res.JS)
	}
}
