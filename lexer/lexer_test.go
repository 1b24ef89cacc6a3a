package lexer

import (
	"testing"

	"github.com/hqllang/hql/token"
)

func TestNextTokenRecognisesEachKind(t *testing.T) {
	tests := []struct {
		input string
		kind  token.Kind
		lit   string
	}{
		{"(", token.LPAREN, "("},
		{")", token.RPAREN, ")"},
		{"[", token.LBRACKET, "["},
		{"]", token.RBRACKET, "]"},
		{"{", token.LBRACE, "{"},
		{"}", token.RBRACE, "}"},
		{"#{", token.SETOPEN, "#{"},
		{"'", token.QUOTE, "'"},
		{"`", token.BACKQUOTE, "`"},
		{"~", token.TILDE, "~"},
		{"~@", token.TILDE_AT, "~@"},
		{"&", token.AMP, "&"},
		{"...", token.ELLIPSIS, "..."},
		{"=", token.EQ, "="},
		{":", token.COLON, ":"},
		{":foo", token.KEYWORD, "foo"},
		{"foo", token.IDENT, "foo"},
		{"true", token.BOOL, "true"},
		{"false", token.BOOL, "false"},
		{"nil", token.NIL, "nil"},
		{"null", token.NIL, "null"},
		{"42", token.INT, "42"},
		{"-42", token.INT, "-42"},
		{"3.14", token.FLOAT, "3.14"},
		{"1e10", token.FLOAT, "1e10"},
		{`"hi"`, token.STRING, "hi"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := New(tt.input, "test.hql")
			got := l.NextToken()
			if got.Kind != tt.kind {
				t.Fatalf("kind: got %s, want %s", got.Kind, tt.kind)
			}
			if got.Literal != tt.lit {
				t.Fatalf("literal: got %q, want %q", got.Literal, tt.lit)
			}
		})
	}
}

func TestNextTokenSequenceForAList(t *testing.T) {
	l := New("(+ 1 2)", "test.hql")
	want := []token.Kind{token.LPAREN, token.IDENT, token.INT, token.INT, token.RPAREN, token.EOF}
	for i, k := range want {
		got := l.NextToken()
		if got.Kind != k {
			t.Fatalf("token %d: got %s, want %s", i, got.Kind, k)
		}
	}
}

func TestNextTokenSkipsLineAndBlockComments(t *testing.T) {
	l := New("; a comment\n#| block |# 1", "test.hql")
	got := l.NextToken()
	if got.Kind != token.INT || got.Literal != "1" {
		t.Fatalf("expected the 1 past both comments, got %s(%s)", got.Kind, got.Literal)
	}
	if len(l.Trivia) != 2 {
		t.Fatalf("expected 2 recorded comments, got %d", len(l.Trivia))
	}
}

func TestNextTokenTracksLineAndColumn(t *testing.T) {
	l := New("(+\n  1)", "test.hql")
	l.NextToken() // (
	l.NextToken() // +
	tok := l.NextToken()
	if tok.Kind != token.INT {
		t.Fatalf("expected INT, got %s", tok.Kind)
	}
	if tok.Pos.Line != 2 {
		t.Fatalf("expected line 2, got %d", tok.Pos.Line)
	}
}

func TestNextTokenRejectsUnterminatedString(t *testing.T) {
	l := New(`"unterminated`, "test.hql")
	tok := l.NextToken()
	if tok.Kind != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL for an unterminated string, got %s", tok.Kind)
	}
}

func TestNextTokenOnTwoDotsReadsRestParamSymbolWithLeadingDots(t *testing.T) {
	// ".." never completes "...", so it must fall through to the generic
	// symbol scan intact rather than dropping the leading dot (".rest").
	l := New("..rest", "test.hql")
	tok := l.NextToken()
	if tok.Kind != token.IDENT || tok.Literal != "..rest" {
		t.Fatalf("expected IDENT \"..rest\", got %s(%q)", tok.Kind, tok.Literal)
	}
}

func TestNextTokenOnLoneDotReadsSymbol(t *testing.T) {
	l := New(".", "test.hql")
	tok := l.NextToken()
	if tok.Kind != token.IDENT || tok.Literal != "." {
		t.Fatalf("expected IDENT \".\", got %s(%q)", tok.Kind, tok.Literal)
	}
}

func TestNextTokenRejectsStrayHash(t *testing.T) {
	l := New("#x", "test.hql")
	tok := l.NextToken()
	if tok.Kind != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL for '#' not followed by '{', got %s", tok.Kind)
	}
}
