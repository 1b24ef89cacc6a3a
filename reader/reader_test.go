package reader

import (
	"testing"

	"github.com/hqllang/hql/ast"
)

// ReadAllSource normalises every form, so container literals read back as
// List-headed builder calls rather than their surface Vector/MapLit shape.
func TestReadAllSourceNormalisesForms(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"(+ 1 2)", "(+ 1 2)"},
		{"[1 2 3]", "(vector 1 2 3)"},
		{"{:a 1}", "(hash-map :a 1)"},
		{"'x", "(quote x)"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			forms, err := ReadAllSource(tt.input, "test.hql")
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if len(forms) != 1 {
				t.Fatalf("expected 1 form, got %d", len(forms))
			}
			if got := forms[0].String(); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

// Both rest-parameter spellings ("&" and "...") must read as the same
// symbol, since the expander and IR builder only ever check for "&" by name.
func TestAmpAndEllipsisReadAsRestMarkerSymbol(t *testing.T) {
	for _, input := range []string{"[x y & rest]", "[x y ...rest]"} {
		t.Run(input, func(t *testing.T) {
			forms, err := ReadAllSource(input, "test.hql")
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			list, ok := forms[0].(*ast.List)
			if !ok || list.HeadName() != ast.HeadVector {
				t.Fatalf("expected a normalised vector, got %s", forms[0].String())
			}
			args := list.Args()
			if len(args) != 4 {
				t.Fatalf("expected 4 elements, got %d", len(args))
			}
			marker, ok := args[2].(*ast.Symbol)
			if !ok || marker.Name != "&" {
				t.Fatalf("expected rest marker symbol '&', got %v", args[2])
			}
			rest, ok := args[3].(*ast.Symbol)
			if !ok || rest.Name != "rest" {
				t.Fatalf("expected rest-binding symbol 'rest', got %v", args[3])
			}
		})
	}
}

// "=" is lexed as its own token kind rather than folded into a longer
// symbol, but it still has to read back as the plain symbol "=" so
// (= a b) reaches the IR builder's binaryOperators table as a List headed
// by that name.
func TestEqReadsAsEqualitySymbol(t *testing.T) {
	forms, err := ReadAllSource("(= a b)", "test.hql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	list, ok := forms[0].(*ast.List)
	if !ok || list.HeadName() != "=" {
		t.Fatalf("expected a List headed by \"=\", got %s", forms[0].String())
	}
}

func TestReadAllSourceReportsUnmatchedParen(t *testing.T) {
	if _, err := ReadAllSource("(+ 1 2", "test.hql"); err == nil {
		t.Fatal("expected an error for an unclosed form")
	}
}
