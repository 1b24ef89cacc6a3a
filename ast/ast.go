// Package ast defines the S-expression AST HQL's reader produces: the
// universal surface-syntax representation consumed by the syntax
// classifier, the macro expander, and the IR builder.
//
// Every node is a tagged variant (Go struct implementing Node) carrying a
// Span. Container literals (List/Vector/Map/Set) are the only nodes with
// children; after reader normalisation (see Normalize) Vector/Map/Set are
// rewritten to Lists headed by a reserved builder symbol, so every later
// pass only has to switch on Symbol/Keyword/Literal/List.
package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hqllang/hql/herrors"
)

// Node is the common interface for every AST value.
type Node interface {
	Span() herrors.Span
	String() string
}

// Reserved head symbols introduced by container-literal normalisation.
const (
	HeadVector  = "vector"
	HeadHashMap = "hash-map"
	HeadHashSet = "hash-set"
)

// Symbol is a bare identifier, optionally namespace-qualified
// ("ns/name" — the qualifier is split into NS and the bare name kept in
// Name; String rejoins them for re-emission).
type Symbol struct {
	Sp   herrors.Span
	Name string
	NS   string // empty when unqualified
}

func (s *Symbol) Span() herrors.Span { return s.Sp }
func (s *Symbol) String() string {
	if s.NS != "" {
		return s.NS + "/" + s.Name
	}
	return s.Name
}

// Qualified reports whether the symbol carries a namespace prefix.
func (s *Symbol) Qualified() bool { return s.NS != "" }

// NewSymbol splits "ns/name" into its namespace and bare name.
func NewSymbol(sp herrors.Span, text string) *Symbol {
	if i := strings.IndexByte(text, '/'); i > 0 && i < len(text)-1 {
		return &Symbol{Sp: sp, NS: text[:i], Name: text[i+1:]}
	}
	return &Symbol{Sp: sp, Name: text}
}

// Keyword is a symbol-like literal starting with ":" — self-evaluating, used
// as map keys, enum-ish tags, and macro-interpreter comparisons.
type Keyword struct {
	Sp   herrors.Span
	Name string
}

func (k *Keyword) Span() herrors.Span { return k.Sp }
func (k *Keyword) String() string     { return ":" + k.Name }

// LiteralKind distinguishes the five atomic literal shapes.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitBool
	LitNull
)

// Literal is an atomic value: integer, float, string, boolean, or null.
type Literal struct {
	Sp   herrors.Span
	Kind LiteralKind
	// Raw text as it appeared (or was constructed) in source; Value holds
	// the decoded Go value (int64, float64, string, or bool; nil for null).
	Raw   string
	Value any
}

func (l *Literal) Span() herrors.Span { return l.Sp }
func (l *Literal) String() string {
	switch l.Kind {
	case LitString:
		return strconv.Quote(l.Value.(string))
	case LitNull:
		return "nil"
	default:
		return l.Raw
	}
}

func IntLiteral(sp herrors.Span, v int64) *Literal {
	return &Literal{Sp: sp, Kind: LitInt, Raw: strconv.FormatInt(v, 10), Value: v}
}

func FloatLiteral(sp herrors.Span, v float64) *Literal {
	return &Literal{Sp: sp, Kind: LitFloat, Raw: strconv.FormatFloat(v, 'g', -1, 64), Value: v}
}

func StringLiteral(sp herrors.Span, v string) *Literal {
	return &Literal{Sp: sp, Kind: LitString, Raw: v, Value: v}
}

func BoolLiteral(sp herrors.Span, v bool) *Literal {
	lit := "false"
	if v {
		lit = "true"
	}
	return &Literal{Sp: sp, Kind: LitBool, Raw: lit, Value: v}
}

func NullLiteral(sp herrors.Span) *Literal {
	return &Literal{Sp: sp, Kind: LitNull, Raw: "nil", Value: nil}
}

// QuoteKind distinguishes the four quasiquote-family forms the reader
// recognises as sugar.
type QuoteKind int

const (
	QQuote QuoteKind = iota
	QQuasiquote
	QUnquote
	QUnquoteSplice
)

func (k QuoteKind) HeadSymbol() string {
	switch k {
	case QQuote:
		return "quote"
	case QQuasiquote:
		return "quasiquote"
	case QUnquote:
		return "unquote"
	case QUnquoteSplice:
		return "unquote-splice"
	}
	return "quote"
}

// List is an ordered sequence of forms: the single shape every pass beyond
// the reader traverses. Head is Children[0] when len(Children) > 0; an
// empty List (no children) is the reserved empty-sequence literal, not an
// invalid form.
type List struct {
	Sp       herrors.Span
	Children []Node
}

func (l *List) Span() herrors.Span { return l.Sp }
func (l *List) String() string {
	parts := make([]string, len(l.Children))
	for i, c := range l.Children {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// HeadName returns the head symbol's name, or "" if the list is empty or
// its head is not a Symbol.
func (l *List) HeadName() string {
	if len(l.Children) == 0 {
		return ""
	}
	if sym, ok := l.Children[0].(*Symbol); ok {
		return sym.Name
	}
	return ""
}

// Args returns the list's children after the head.
func (l *List) Args() []Node {
	if len(l.Children) == 0 {
		return nil
	}
	return l.Children[1:]
}

// NewList builds a List, optionally with a synthetic head symbol — the
// shape the reader uses to desugar Vector/Map/Set into List-of-builder.
func NewList(sp herrors.Span, children ...Node) *List {
	return &List{Sp: sp, Children: children}
}

// Vector is reader-level sugar for "(vector ...)"; Normalize rewrites it.
type Vector struct {
	Sp       herrors.Span
	Children []Node
}

func (v *Vector) Span() herrors.Span { return v.Sp }
func (v *Vector) String() string {
	parts := make([]string, len(v.Children))
	for i, c := range v.Children {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// MapLit is reader-level sugar for "(hash-map k v ...)".
type MapLit struct {
	Sp   herrors.Span
	Keys []Node
	Vals []Node
}

func (m *MapLit) Span() herrors.Span { return m.Sp }
func (m *MapLit) String() string {
	parts := make([]string, len(m.Keys))
	for i := range m.Keys {
		parts[i] = fmt.Sprintf("%s %s", m.Keys[i].String(), m.Vals[i].String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// SetLit is reader-level sugar for "(hash-set ...)".
type SetLit struct {
	Sp       herrors.Span
	Children []Node
}

func (s *SetLit) Span() herrors.Span { return s.Sp }
func (s *SetLit) String() string {
	parts := make([]string, len(s.Children))
	for i, c := range s.Children {
		parts[i] = c.String()
	}
	return "#{" + strings.Join(parts, " ") + "}"
}

// Normalize rewrites a just-read node (and everything beneath it) into the
// single List-headed shape later passes traverse: Vector -> (vector ...),
// MapLit -> (hash-map k v ...), SetLit -> (hash-set ...). Quote sugar is
// normalised by the reader itself at construction time (see Reader.readQuote),
// so Normalize only has container literals left to handle.
func Normalize(n Node) Node {
	switch v := n.(type) {
	case *Vector:
		children := make([]Node, 0, len(v.Children)+1)
		children = append(children, &Symbol{Sp: v.Sp, Name: HeadVector})
		for _, c := range v.Children {
			children = append(children, Normalize(c))
		}
		return &List{Sp: v.Sp, Children: children}
	case *MapLit:
		children := make([]Node, 0, len(v.Keys)*2+1)
		children = append(children, &Symbol{Sp: v.Sp, Name: HeadHashMap})
		for i := range v.Keys {
			children = append(children, Normalize(v.Keys[i]), Normalize(v.Vals[i]))
		}
		return &List{Sp: v.Sp, Children: children}
	case *SetLit:
		children := make([]Node, 0, len(v.Children)+1)
		children = append(children, &Symbol{Sp: v.Sp, Name: HeadHashSet})
		for _, c := range v.Children {
			children = append(children, Normalize(c))
		}
		return &List{Sp: v.Sp, Children: children}
	case *List:
		children := make([]Node, len(v.Children))
		for i, c := range v.Children {
			children[i] = Normalize(c)
		}
		return &List{Sp: v.Sp, Children: children}
	default:
		return n
	}
}

// Equal performs a structural comparison ignoring spans, used by the
// macro-expansion fixed-point property test and by the macro interpreter's
// literal equality.
func Equal(a, b Node) bool {
	switch av := a.(type) {
	case *Symbol:
		bv, ok := b.(*Symbol)
		return ok && av.NS == bv.NS && av.Name == bv.Name
	case *Keyword:
		bv, ok := b.(*Keyword)
		return ok && av.Name == bv.Name
	case *Literal:
		bv, ok := b.(*Literal)
		return ok && av.Kind == bv.Kind && av.Value == bv.Value
	case *List:
		bv, ok := b.(*List)
		if !ok || len(av.Children) != len(bv.Children) {
			return false
		}
		for i := range av.Children {
			if !Equal(av.Children[i], bv.Children[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
