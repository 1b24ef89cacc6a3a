package expander

import (
	"testing"

	"github.com/hqllang/hql/ast"
	"github.com/hqllang/hql/env"
	"github.com/hqllang/hql/reader"
)

func expandSource(t *testing.T, src string) []ast.Node {
	t.Helper()
	forms, err := reader.ReadAllSource(src, "test.hql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	frame := env.NewRoot()
	if err := RegisterBuiltins(frame); err != nil {
		t.Fatalf("register builtins: %v", err)
	}
	out, err := New().Expand(forms, frame)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	return out
}

func TestThreadFirstMacro(t *testing.T) {
	out := expandSource(t, `(-> 5 inc (* 2) (+ 3))`)
	if len(out) != 1 {
		t.Fatalf("expected 1 form, got %d", len(out))
	}
	got := out[0].String()
	want := "(+ (* (+ 5 1) 2) 3)"
	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestWhenMacroExpandsToIfDo(t *testing.T) {
	out := expandSource(t, `(when true (print 1) (print 2))`)
	if len(out) != 1 {
		t.Fatalf("expected 1 form, got %d", len(out))
	}
	list, ok := out[0].(*ast.List)
	if !ok || list.HeadName() != "if" {
		t.Fatalf("expected top-level if, got %s", out[0].String())
	}
}

func TestUserMacroGensymIsHygienic(t *testing.T) {
	out := expandSource(t, `
(macro twice [x] ` + "`" + `(let [tmp# ~x] (+ tmp# tmp#)))
(twice 1)
(twice 1)
`)
	if len(out) != 2 {
		t.Fatalf("expected 2 forms, got %d", len(out))
	}
	first, second := out[0].String(), out[1].String()
	if first == second {
		t.Fatalf("expected distinct gensym names across expansions, got identical: %s", first)
	}
}

func TestMatchVectorDestructureWithRest(t *testing.T) {
	out := expandSource(t, `(match xs (case [a b & rest] (str a b)) (default "no-match"))`)
	if len(out) != 1 {
		t.Fatalf("expected 1 form, got %d", len(out))
	}
	if _, ok := out[0].(*ast.List); !ok {
		t.Fatalf("expected a list expansion, got %T", out[0])
	}
}

func TestMatchRejectsClauseWithoutCaseOrDefaultHead(t *testing.T) {
	_, err := expandTop(t, `(match x (0 "zero"))`)
	if err == nil {
		t.Fatal("expected an error for a match clause not headed by case/default")
	}
}

func TestCircularMacroTerminatesWithError(t *testing.T) {
	_, err := expandTop(t, `
(macro loopy [x] ` + "`" + `(loopy ~x))
(loopy 1)
`)
	if err == nil {
		t.Fatal("expected a depth-limit error for a non-terminating macro, got nil")
	}
}

func expandTop(t *testing.T, src string) ([]ast.Node, error) {
	t.Helper()
	forms, err := reader.ReadAllSource(src, "test.hql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	frame := env.NewRoot()
	if err := RegisterBuiltins(frame); err != nil {
		t.Fatalf("register builtins: %v", err)
	}
	return New().Expand(forms, frame)
}
