// Package reader folds a token stream into HQL's S-expression AST: one
// List/Vector/Map/Set/Symbol/Keyword/Literal tree per top-level form, each
// carrying a source span from its opening to its closing delimiter.
package reader

import (
	"github.com/hqllang/hql/ast"
	"github.com/hqllang/hql/herrors"
	"github.com/hqllang/hql/lexer"
	"github.com/hqllang/hql/token"
)

// Reader consumes tokens from a Lexer and builds AST nodes via standard
// recursive descent: one read* method per opening delimiter, symmetric with
// the matching close.
type Reader struct {
	l      *lexer.Lexer
	file   string
	source string

	cur  token.Token
	peek token.Token
}

// New constructs a Reader over source text already tokenised by l.
// source is kept only to attach to error context lines.
func New(l *lexer.Lexer, source string) *Reader {
	r := &Reader{l: l, file: l.File(), source: source}
	r.advance()
	r.advance()
	return r
}

func (r *Reader) advance() {
	r.cur = r.peek
	r.peek = r.l.NextToken()
}

func (r *Reader) pos(t token.Token) herrors.Position {
	return herrors.Position{Line: t.Pos.Line, Column: t.Pos.Column}
}

func (r *Reader) errf(t token.Token, kind herrors.Kind, format string, args ...any) *herrors.Error {
	p := r.pos(t)
	return herrors.New(kind, herrors.Span{File: r.file, Start: p, End: p}, r.source, format, args...)
}

// ReadAll reads every top-level form in the stream and normalises each one.
func (r *Reader) ReadAll() ([]ast.Node, error) {
	var forms []ast.Node
	for r.cur.Kind != token.EOF {
		n, err := r.readForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, ast.Normalize(n))
		r.advance()
	}
	return forms, nil
}

// ReadAllSource is a convenience wrapper: lex then read.
func ReadAllSource(source, file string) ([]ast.Node, error) {
	l := lexer.New(source, file)
	r := New(l, source)
	return r.ReadAll()
}

func (r *Reader) readForm() (ast.Node, error) {
	switch r.cur.Kind {
	case token.LPAREN:
		return r.readSeq(token.RPAREN, func(sp herrors.Span, children []ast.Node) ast.Node {
			return &ast.List{Sp: sp, Children: children}
		})
	case token.LBRACKET:
		return r.readSeq(token.RBRACKET, func(sp herrors.Span, children []ast.Node) ast.Node {
			return &ast.Vector{Sp: sp, Children: children}
		})
	case token.SETOPEN:
		return r.readSeq(token.RBRACE, func(sp herrors.Span, children []ast.Node) ast.Node {
			return &ast.SetLit{Sp: sp, Children: children}
		})
	case token.LBRACE:
		return r.readMap()
	case token.QUOTE:
		return r.readQuote(ast.QQuote)
	case token.BACKQUOTE:
		return r.readQuote(ast.QQuasiquote)
	case token.TILDE:
		return r.readQuote(ast.QUnquote)
	case token.TILDE_AT:
		return r.readQuote(ast.QUnquoteSplice)
	case token.KEYWORD:
		t := r.cur
		return &ast.Keyword{Sp: r.span1(t), Name: t.Literal}, nil
	case token.INT:
		return r.readInt()
	case token.FLOAT:
		return r.readFloat()
	case token.STRING:
		t := r.cur
		return ast.StringLiteral(r.span1(t), t.Literal), nil
	case token.BOOL:
		t := r.cur
		return ast.BoolLiteral(r.span1(t), t.Literal == "true"), nil
	case token.NIL:
		t := r.cur
		return ast.NullLiteral(r.span1(t)), nil
	case token.IDENT:
		t := r.cur
		return ast.NewSymbol(r.span1(t), t.Literal), nil
	case token.AMP, token.ELLIPSIS:
		// Both spellings of the rest-parameter marker read as a plain
		// symbol; the expander and IR builder recognise "&" by name
		// wherever a param/binding list allows a rest capture.
		t := r.cur
		return ast.NewSymbol(r.span1(t), "&"), nil
	case token.EQ:
		// A token that starts with "=" gets its own kind (lexed as that single
		// character; "<=" and "!==" still lex as symbols) but reads as the plain symbol the
		// IR builder's binaryOperators table already expects as a List head.
		t := r.cur
		return ast.NewSymbol(r.span1(t), "="), nil
	case token.RPAREN, token.RBRACKET, token.RBRACE:
		return nil, r.errf(r.cur, herrors.KindParse, "unmatched %q", r.cur.Literal)
	case token.ILLEGAL:
		return nil, r.errf(r.cur, herrors.KindParse, "unterminated or illegal token %q", r.cur.Literal)
	default:
		return nil, r.errf(r.cur, herrors.KindParse, "unexpected token %s", r.cur.Kind)
	}
}

func (r *Reader) span1(t token.Token) herrors.Span {
	p := r.pos(t)
	end := herrors.Position{Line: p.Line, Column: p.Column + len([]rune(t.Literal))}
	return herrors.Span{File: r.file, Start: p, End: end}
}

func (r *Reader) readInt() (ast.Node, error) {
	t := r.cur
	v, err := parseInt(t.Literal)
	if err != nil {
		return nil, r.errf(t, herrors.KindParse, "invalid integer literal %q", t.Literal)
	}
	return ast.IntLiteral(r.span1(t), v), nil
}

func (r *Reader) readFloat() (ast.Node, error) {
	t := r.cur
	v, err := parseFloat(t.Literal)
	if err != nil {
		return nil, r.errf(t, herrors.KindParse, "invalid float literal %q", t.Literal)
	}
	return ast.FloatLiteral(r.span1(t), v), nil
}

// readSeq reads children until the matching close delimiter, producing the
// span from the open token to the close token.
func (r *Reader) readSeq(close token.Kind, build func(herrors.Span, []ast.Node) ast.Node) (ast.Node, error) {
	open := r.cur
	var children []ast.Node
	r.advance()
	for r.cur.Kind != close {
		if r.cur.Kind == token.EOF {
			return nil, r.errf(open, herrors.KindParse, "unterminated %q", open.Literal)
		}
		child, err := r.readForm()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
		r.advance()
	}
	sp := herrors.Span{File: r.file, Start: r.pos(open), End: r.pos(r.cur)}
	return build(sp, children), nil
}

func (r *Reader) readMap() (ast.Node, error) {
	open := r.cur
	var keys, vals []ast.Node
	r.advance()
	for r.cur.Kind != token.RBRACE {
		if r.cur.Kind == token.EOF {
			return nil, r.errf(open, herrors.KindParse, "unterminated %q", open.Literal)
		}
		k, err := r.readForm()
		if err != nil {
			return nil, err
		}
		r.advance()
		if r.cur.Kind == token.RBRACE || r.cur.Kind == token.EOF {
			return nil, r.errf(open, herrors.KindValidation, "map literal must have an even number of children")
		}
		v, err := r.readForm()
		if err != nil {
			return nil, err
		}
		for _, existing := range keys {
			if ast.Equal(existing, k) {
				return nil, r.errf(open, herrors.KindValidation, "duplicate map key %s", k.String())
			}
		}
		keys = append(keys, k)
		vals = append(vals, v)
		r.advance()
	}
	sp := herrors.Span{File: r.file, Start: r.pos(open), End: r.pos(r.cur)}
	return &ast.MapLit{Sp: sp, Keys: keys, Vals: vals}, nil
}

func (r *Reader) readQuote(kind ast.QuoteKind) (ast.Node, error) {
	markerTok := r.cur
	r.advance()
	child, err := r.readForm()
	if err != nil {
		return nil, err
	}
	sp := herrors.Span{File: r.file, Start: r.pos(markerTok), End: child.Span().End}
	head := &ast.Symbol{Sp: sp, Name: kind.HeadSymbol()}
	return &ast.List{Sp: sp, Children: []ast.Node{head, child}}, nil
}
