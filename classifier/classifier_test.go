package classifier

import (
	"testing"

	"github.com/hqllang/hql/ast"
	"github.com/hqllang/hql/env"
	"github.com/hqllang/hql/herrors"
)

func sym(name string) *ast.Symbol {
	return &ast.Symbol{Name: name}
}

func TestClassifyNonListIsApplication(t *testing.T) {
	if got := Classify(ast.IntLiteral(herrors.Span{}, 1), env.NewRoot()); got != Application {
		t.Fatalf("got %v, want Application", got)
	}
}

func TestClassifyEmptyListIsApplication(t *testing.T) {
	list := &ast.List{Children: nil}
	if got := Classify(list, env.NewRoot()); got != Application {
		t.Fatalf("got %v, want Application", got)
	}
}

func TestClassifyKernelFormIsSpecial(t *testing.T) {
	for _, head := range []string{"if", "do", "let", "fn", "def", "try"} {
		list := &ast.List{Children: []ast.Node{sym(head)}}
		if got := Classify(list, env.NewRoot()); got != Special {
			t.Errorf("%s: got %v, want Special", head, got)
		}
	}
}

func TestClassifyConstructorHeadIsConstructor(t *testing.T) {
	for _, head := range []string{ast.HeadVector, ast.HeadHashMap, ast.HeadHashSet} {
		list := &ast.List{Children: []ast.Node{sym(head)}}
		if got := Classify(list, env.NewRoot()); got != Constructor {
			t.Errorf("%s: got %v, want Constructor", head, got)
		}
	}
}

func TestClassifyMacroReferenceIsMacro(t *testing.T) {
	frame := env.NewRoot()
	frame.DefineGlobal("double", env.Entry{Kind: env.EntryMacro, Macro: &env.MacroDef{}})
	list := &ast.List{Children: []ast.Node{sym("double")}}
	if got := Classify(list, frame); got != Macro {
		t.Fatalf("got %v, want Macro", got)
	}
}

func TestClassifyPlainCallIsApplication(t *testing.T) {
	list := &ast.List{Children: []ast.Node{sym("my-func")}}
	if got := Classify(list, env.NewRoot()); got != Application {
		t.Fatalf("got %v, want Application", got)
	}
}
