package emitter

import (
	"strings"
	"testing"

	"github.com/hqllang/hql/env"
	"github.com/hqllang/hql/expander"
	"github.com/hqllang/hql/ir"
	"github.com/hqllang/hql/reader"
)

func buildSource(t *testing.T, src string) *ir.Program {
	t.Helper()
	forms, err := reader.ReadAllSource(src, "test.hql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	frame := env.NewRoot()
	if err := expander.RegisterBuiltins(frame); err != nil {
		t.Fatalf("register builtins: %v", err)
	}
	expanded, err := expander.New().Expand(forms, frame)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	prog, err := ir.NewBuilder().Build(expanded)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return prog
}

func TestEmitArithmeticProducesBareOperators(t *testing.T) {
	prog := buildSource(t, `(+ 1 (* 2 3))`)
	res, err := Emit(prog, Options{SourceMap: MapNone})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if !strings.Contains(res.JS, "1 + (2 * 3)") {
		t.Fatalf("expected bare arithmetic operators in output, got %q", res.JS)
	}
}

func TestEmitIfStatementProducesBraces(t *testing.T) {
	prog := buildSource(t, `(if true (print 1) (print 2))`)
	res, err := Emit(prog, Options{SourceMap: MapNone})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if !strings.Contains(res.JS, "if (true) {") || !strings.Contains(res.JS, "} else {") {
		t.Fatalf("expected an if/else block shape, got %q", res.JS)
	}
}

func TestEmitLoopRecurProducesWhileContinue(t *testing.T) {
	prog := buildSource(t, `(loop [i 0] (recur (+ i 1)))`)
	res, err := Emit(prog, Options{SourceMap: MapNone})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if !strings.Contains(res.JS, "while (true) {") || !strings.Contains(res.JS, "continue;") {
		t.Fatalf("expected a while(true)/continue trampoline, got %q", res.JS)
	}
}

func TestEmitInlineSourceMapIsAppendedAsDataURI(t *testing.T) {
	prog := buildSource(t, `(def x 1)`)
	res, err := Emit(prog, Options{SourceMap: MapInline, OutFile: "out.js", SourceFile: "in.hql", SourceText: "(def x 1)"})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if !strings.Contains(res.JS, "//# sourceMappingURL=data:application/json;base64,") {
		t.Fatalf("expected an inline source map comment, got %q", res.JS)
	}
	if res.Map == "" {
		t.Fatal("expected a non-empty encoded map")
	}
}

func TestEmitExternalSourceMapNamesASiblingFile(t *testing.T) {
	prog := buildSource(t, `(def x 1)`)
	res, err := Emit(prog, Options{SourceMap: MapExternal, OutFile: "out.js", SourceFile: "in.hql"})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if res.MapFile != "out.js.map" {
		t.Fatalf("expected sibling map file out.js.map, got %q", res.MapFile)
	}
	if !strings.Contains(res.JS, "//# sourceMappingURL=out.js.map") {
		t.Fatalf("expected a sourceMappingURL comment referencing the sibling file, got %q", res.JS)
	}
}

func TestPrependHeaderShiftsSubsequentLines(t *testing.T) {
	prog := buildSource(t, `(def x 1)`)
	res, err := Emit(prog, Options{SourceMap: MapExternal, OutFile: "out.js", SourceFile: "in.hql"})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	before := res.JS
	res.PrependHeader("// generated\n")
	if !strings.HasPrefix(res.JS, "// generated\n") || !strings.HasSuffix(res.JS, before) {
		t.Fatalf("expected header prepended ahead of existing output, got %q", res.JS)
	}
}
