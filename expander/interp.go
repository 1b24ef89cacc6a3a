package expander

import (
	"fmt"

	"github.com/hqllang/hql/ast"
	"github.com/hqllang/hql/herrors"
)

// Value is whatever the macro interpreter's expressions evaluate to: an AST
// fragment, a Go native scalar (bool/int64/float64/string/nil) used for
// compile-time arithmetic and comparisons, or a *closure produced by `fn`.
//
// This mirrors the way a tree-walking evaluator for the compiled language
// itself would represent values (see e.g. an object.Object-style sum type)
// except there is no heap: every macro-interpreter value is either data the
// expander already had (an AST node) or a value derived from it.
type Value any

// closure is a `fn` value created while evaluating a macro body.
type closure struct {
	name   string
	params []*ast.Symbol
	rest   *ast.Symbol
	body   []ast.Node
	scope  *scope
}

// scope is the macro interpreter's own variable environment, independent of
// the compiler-wide env.Frame (which tracks macro/special bindings, not
// interpreter values). Store/outer chain, exactly the shape a Lisp-family
// interpreter's environment takes.
type scope struct {
	vars  map[string]Value
	outer *scope
}

func newScope(outer *scope) *scope {
	return &scope{vars: make(map[string]Value), outer: outer}
}

func (s *scope) get(name string) (Value, bool) {
	for cur := s; cur != nil; cur = cur.outer {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (s *scope) set(name string, v Value) { s.vars[name] = v }

// interp is one macro expansion's interpreter state: it owns the gensym
// table for that expansion so `NAME#` symbols are consistent within one
// quasiquote but fresh across separate macro calls.
type interp struct {
	gensym *gensymTable
	span   herrors.Span // macro call site, attributed to every error raised
}

func (ip *interp) errf(kind herrors.Kind, format string, args ...any) error {
	return herrors.New(kind, ip.span, "", format, args...)
}

// evalBody evaluates a sequence of forms in sc, `do`-style, and returns the
// value of the last one (nil for an empty body).
func (ip *interp) evalBody(body []ast.Node, sc *scope) (Value, error) {
	var result Value
	for _, form := range body {
		v, err := ip.eval(form, sc)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

func (ip *interp) eval(n ast.Node, sc *scope) (Value, error) {
	switch v := n.(type) {
	case *ast.Literal:
		return v.Value, nil
	case *ast.Keyword:
		return v, nil
	case *ast.Symbol:
		if val, ok := sc.get(v.String()); ok {
			return val, nil
		}
		return nil, ip.errf(herrors.KindMacro, "reference to undefined symbol %q in macro body", v.String())
	case *ast.List:
		return ip.evalList(v, sc)
	default:
		return n, nil
	}
}

func (ip *interp) evalList(l *ast.List, sc *scope) (Value, error) {
	if len(l.Children) == 0 {
		return l, nil // the empty-sequence literal evaluates to itself
	}
	head, isSym := l.Children[0].(*ast.Symbol)
	name := ""
	if isSym {
		name = head.Name
	}

	switch name {
	case "quote":
		return l.Args()[0], nil
	case "quasiquote":
		return ip.quasi(l.Args()[0], sc)
	case "if":
		args := l.Args()
		cond, err := ip.eval(args[0], sc)
		if err != nil {
			return nil, err
		}
		if truthy(cond) {
			return ip.eval(args[1], sc)
		}
		if len(args) > 2 {
			return ip.eval(args[2], sc)
		}
		return nil, nil
	case "cond":
		return ip.evalCond(l.Args(), sc)
	case "do":
		return ip.evalBody(l.Args(), sc)
	case "let":
		return ip.evalLet(l, sc)
	case "fn":
		return ip.evalFn(l, sc)
	default:
		return ip.apply(l, sc)
	}
}

func (ip *interp) evalCond(clauses []ast.Node, sc *scope) (Value, error) {
	for i := 0; i+1 < len(clauses); i += 2 {
		test, err := ip.eval(clauses[i], sc)
		if err != nil {
			return nil, err
		}
		if truthy(test) {
			return ip.eval(clauses[i+1], sc)
		}
	}
	return nil, nil
}

func (ip *interp) evalLet(l *ast.List, sc *scope) (Value, error) {
	args := l.Args()
	if len(args) == 0 {
		return nil, ip.errf(herrors.KindMacro, "let requires a binding list")
	}
	bindings, ok := args[0].(*ast.List)
	if !ok || bindings.HeadName() != ast.HeadVector {
		return nil, ip.errf(herrors.KindMacro, "let bindings must be a [name value ...] vector")
	}
	pairs := bindings.Args()
	if len(pairs)%2 != 0 {
		return nil, ip.errf(herrors.KindMacro, "let bindings must be an even-length list")
	}
	inner := newScope(sc)
	for i := 0; i+1 < len(pairs); i += 2 {
		nameSym, ok := pairs[i].(*ast.Symbol)
		if !ok {
			return nil, ip.errf(herrors.KindMacro, "let binding name must be a symbol")
		}
		val, err := ip.eval(pairs[i+1], inner)
		if err != nil {
			return nil, err
		}
		inner.set(nameSym.Name, val)
	}
	return ip.evalBody(args[1:], inner)
}

func (ip *interp) evalFn(l *ast.List, sc *scope) (Value, error) {
	args := l.Args()
	i := 0
	name := ""
	if len(args) > 0 {
		if sym, ok := args[0].(*ast.Symbol); ok {
			name = sym.Name
			i = 1
		}
	}
	if i >= len(args) {
		return nil, ip.errf(herrors.KindMacro, "fn requires a parameter list")
	}
	paramList, ok := args[i].(*ast.List)
	if !ok || paramList.HeadName() != ast.HeadVector {
		return nil, ip.errf(herrors.KindMacro, "fn parameters must be a [params...] vector")
	}
	params, rest := splitParams(paramList.Args())
	cl := &closure{name: name, params: params, rest: rest, body: args[i+1:], scope: sc}
	if name != "" {
		// Bind the name in a wrapper scope so the closure can recurse.
		self := newScope(sc)
		self.set(name, cl)
		cl.scope = self
	}
	return cl, nil
}

func splitParams(nodes []ast.Node) (params []*ast.Symbol, rest *ast.Symbol) {
	for i := 0; i < len(nodes); i++ {
		sym, ok := nodes[i].(*ast.Symbol)
		if !ok {
			continue
		}
		if sym.Name == "&" && i+1 < len(nodes) {
			if r, ok := nodes[i+1].(*ast.Symbol); ok {
				rest = r
			}
			break
		}
		params = append(params, sym)
	}
	return params, rest
}

func (ip *interp) apply(l *ast.List, sc *scope) (Value, error) {
	// A head symbol that is unbound in scope but names a builtin is applied
	// as that builtin; any other head is evaluated as a value.
	var headVal Value
	builtin, isBuiltin := builtinFunc(nil), false
	if sym, ok := l.Children[0].(*ast.Symbol); ok {
		if _, bound := sc.get(sym.String()); !bound {
			builtin, isBuiltin = builtinFuncs[sym.Name]
		}
	}
	if !isBuiltin {
		v, err := ip.eval(l.Children[0], sc)
		if err != nil {
			return nil, err
		}
		headVal = v
	}
	argNodes := l.Args()
	args := make([]Value, len(argNodes))
	for i, a := range argNodes {
		v, err := ip.eval(a, sc)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	if cl, ok := headVal.(*closure); ok {
		return ip.applyClosure(cl, args)
	}
	if isBuiltin {
		return builtin(ip, args)
	}
	return nil, ip.errf(herrors.KindMacro, "not a function: %v", headVal)
}

func (ip *interp) applyClosure(cl *closure, args []Value) (Value, error) {
	inner := newScope(cl.scope)
	for i, p := range cl.params {
		if i < len(args) {
			inner.set(p.Name, args[i])
		} else {
			inner.set(p.Name, nil)
		}
	}
	if cl.rest != nil {
		var extra []Value
		if len(args) > len(cl.params) {
			extra = args[len(cl.params):]
		}
		inner.set(cl.rest.Name, extra)
	}
	return ip.evalBody(cl.body, inner)
}

func truthy(v Value) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	default:
		return true
	}
}

// toNode converts an interpreter Value back into an AST fragment, the shape
// a macro expansion result (or an unquoted value) must take.
func toNode(v Value, fallback herrors.Span) ast.Node {
	switch t := v.(type) {
	case ast.Node:
		return t
	case bool:
		return ast.BoolLiteral(fallback, t)
	case int64:
		return ast.IntLiteral(fallback, t)
	case float64:
		return ast.FloatLiteral(fallback, t)
	case string:
		return ast.StringLiteral(fallback, t)
	case nil:
		return ast.NullLiteral(fallback)
	case []Value:
		children := make([]ast.Node, len(t))
		for i, e := range t {
			children[i] = toNode(e, fallback)
		}
		return &ast.List{Sp: fallback, Children: children}
	default:
		return ast.NullLiteral(fallback)
	}
}

func nodeString(v Value) string {
	switch t := v.(type) {
	case string:
		return t
	case ast.Node:
		if sym, ok := t.(*ast.Symbol); ok {
			return sym.String()
		}
		if kw, ok := t.(*ast.Keyword); ok {
			return kw.Name
		}
		if lit, ok := t.(*ast.Literal); ok && lit.Kind == ast.LitString {
			return lit.Value.(string)
		}
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
