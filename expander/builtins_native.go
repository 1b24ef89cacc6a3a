package expander

import (
	"github.com/hqllang/hql/ast"
	"github.com/hqllang/hql/env"
	"github.com/hqllang/hql/herrors"
)

// nativeMacros lists the built-ins whose shape — variadic clause lists,
// structural destructuring — doesn't fit the tiny interpreter's evaluation
// model cleanly, so they are implemented as host Go functions instead of
// HQL source. See builtins_source.go for the rest of the built-in set.
var nativeMacros = map[string]func(args []ast.Node, span herrors.Span) (ast.Node, error){
	"and":        andTransform,
	"or":         orTransform,
	"cond":       condTransform,
	"->":         threadFirstTransform,
	"->>":        threadLastTransform,
	"as->":       asThreadTransform,
	"if-let":     ifLetTransform,
	"when-let":   whenLetTransform,
	"match":      matchTransform,
	"hash-map":   hashMapTransform,
	"empty-map":  emptyMapTransform,
	"empty-set":  emptySetTransform,
	"contains?":  containsTransform,
	"isArray":    isArrayTransform,
}

func registerNativeMacros(frame *env.Frame) {
	for name, fn := range nativeMacros {
		frame.DefineGlobal(name, env.Entry{Kind: env.EntryMacro, Macro: &env.MacroDef{Native: fn}})
	}
}

func sym(name string, sp herrors.Span) *ast.Symbol { return &ast.Symbol{Sp: sp, Name: name} }

func lst(sp herrors.Span, children ...ast.Node) *ast.List {
	return &ast.List{Sp: sp, Children: children}
}

func vecOf(sp herrors.Span, elems ...ast.Node) *ast.List {
	return &ast.List{Sp: sp, Children: append([]ast.Node{sym(ast.HeadVector, sp)}, elems...)}
}

func andTransform(args []ast.Node, sp herrors.Span) (ast.Node, error) {
	if len(args) == 0 {
		return ast.BoolLiteral(sp, true), nil
	}
	chain := args[len(args)-1]
	for i := len(args) - 2; i >= 0; i-- {
		chain = lst(sp, sym("if", sp), args[i], chain, ast.BoolLiteral(sp, false))
	}
	return chain, nil
}

func orTransform(args []ast.Node, sp herrors.Span) (ast.Node, error) {
	if len(args) == 0 {
		return ast.BoolLiteral(sp, false), nil
	}
	chain := args[len(args)-1]
	for i := len(args) - 2; i >= 0; i-- {
		chain = lst(sp, sym("if", sp), args[i], args[i], chain)
	}
	return chain, nil
}

func condTransform(args []ast.Node, sp herrors.Span) (ast.Node, error) {
	if len(args) == 0 {
		return ast.NullLiteral(sp), nil
	}
	def := ast.Node(ast.NullLiteral(sp))
	pairs := args
	if len(pairs)%2 == 1 {
		def = pairs[len(pairs)-1]
		pairs = pairs[:len(pairs)-1]
	}
	return condBuild(pairs, def, sp), nil
}

func condBuild(pairs []ast.Node, def ast.Node, sp herrors.Span) ast.Node {
	if len(pairs) == 0 {
		return def
	}
	test, expr := pairs[0], pairs[1]
	return lst(sp, sym("if", sp), test, expr, condBuild(pairs[2:], def, sp))
}

func threadFirstTransform(args []ast.Node, sp herrors.Span) (ast.Node, error) {
	if len(args) == 0 {
		return nil, herrors.New(herrors.KindValidation, sp, "", "-> requires at least one argument")
	}
	acc := args[0]
	for _, step := range args[1:] {
		acc = insertArg(step, acc, true)
	}
	return acc, nil
}

func threadLastTransform(args []ast.Node, sp herrors.Span) (ast.Node, error) {
	if len(args) == 0 {
		return nil, herrors.New(herrors.KindValidation, sp, "", "->> requires at least one argument")
	}
	acc := args[0]
	for _, step := range args[1:] {
		acc = insertArg(step, acc, false)
	}
	return acc, nil
}

func insertArg(step, x ast.Node, first bool) ast.Node {
	l, ok := step.(*ast.List)
	if !ok {
		return lst(step.Span(), step, x)
	}
	if first {
		children := append([]ast.Node{l.Children[0], x}, l.Args()...)
		return &ast.List{Sp: l.Sp, Children: children}
	}
	children := append(append([]ast.Node{}, l.Children...), x)
	return &ast.List{Sp: l.Sp, Children: children}
}

func asThreadTransform(args []ast.Node, sp herrors.Span) (ast.Node, error) {
	if len(args) < 2 {
		return nil, herrors.New(herrors.KindValidation, sp, "", "as-> requires an expression and a binding name")
	}
	x, name, steps := args[0], args[1], args[2:]
	if len(steps) == 0 {
		return x, nil
	}
	body := steps[len(steps)-1]
	for i := len(steps) - 2; i >= 0; i-- {
		body = lst(sp, sym("let", sp), vecOf(sp, name, steps[i]), body)
	}
	return lst(sp, sym("let", sp), vecOf(sp, name, x), body), nil
}

func ifLetTransform(args []ast.Node, sp herrors.Span) (ast.Node, error) {
	if len(args) < 2 {
		return nil, herrors.New(herrors.KindValidation, sp, "", "if-let requires a binding and a then-branch")
	}
	bindings, ok := args[0].(*ast.List)
	if !ok || bindings.HeadName() != ast.HeadVector || len(bindings.Args()) != 2 {
		return nil, herrors.New(herrors.KindValidation, args[0].Span(), "", "if-let binding must be [name test]")
	}
	pairs := bindings.Args()
	name, test := pairs[0], pairs[1]
	elseExpr := ast.Node(ast.NullLiteral(sp))
	if len(args) > 2 {
		elseExpr = args[2]
	}
	return lst(sp, sym("let", sp), vecOf(sp, name, test),
		lst(sp, sym("if", sp), name, args[1], elseExpr)), nil
}

func whenLetTransform(args []ast.Node, sp herrors.Span) (ast.Node, error) {
	if len(args) < 1 {
		return nil, herrors.New(herrors.KindValidation, sp, "", "when-let requires a binding")
	}
	bindings, ok := args[0].(*ast.List)
	if !ok || bindings.HeadName() != ast.HeadVector || len(bindings.Args()) != 2 {
		return nil, herrors.New(herrors.KindValidation, args[0].Span(), "", "when-let binding must be [name test]")
	}
	pairs := bindings.Args()
	name, test := pairs[0], pairs[1]
	doForm := lst(sp, append([]ast.Node{sym("do", sp)}, args[1:]...)...)
	return lst(sp, sym("let", sp), vecOf(sp, name, test),
		lst(sp, sym("if", sp), name, doForm, ast.NullLiteral(sp))), nil
}

func hashMapTransform(args []ast.Node, sp herrors.Span) (ast.Node, error) {
	if len(args)%2 != 0 {
		return nil, herrors.New(herrors.KindValidation, sp, "", "hash-map requires an even number of key/value arguments")
	}
	entries := make([]ast.Node, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		entries = append(entries, vecOf(sp, args[i], args[i+1]))
	}
	return lst(sp, sym("new", sp), sym("Map", sp), vecOf(sp, entries...)), nil
}

func emptyMapTransform(args []ast.Node, sp herrors.Span) (ast.Node, error) {
	return lst(sp, sym("new", sp), sym("Map", sp)), nil
}

func emptySetTransform(args []ast.Node, sp herrors.Span) (ast.Node, error) {
	return lst(sp, sym("new", sp), sym("Set", sp)), nil
}

func containsTransform(args []ast.Node, sp herrors.Span) (ast.Node, error) {
	if len(args) != 2 {
		return nil, herrors.New(herrors.KindValidation, sp, "", "contains? requires a collection and a key")
	}
	return lst(sp, sym("js-call", sp), args[0], ast.StringLiteral(sp, "includes"), args[1]), nil
}

func isArrayTransform(args []ast.Node, sp herrors.Span) (ast.Node, error) {
	if len(args) != 1 {
		return nil, herrors.New(herrors.KindValidation, sp, "", "isArray requires exactly one argument")
	}
	return lst(sp, sym("js-call", sp), sym("Array", sp), ast.StringLiteral(sp, "isArray"), args[0]), nil
}

// matchTransform compiles (match subject (case pattern result) ... (default
// result)) into a chain of nested if/let forms. Supported patterns: "_"
// (wildcard), any other symbol (binds the subject), a literal (equality
// test), and a [a b & rest] vector (fixed-arity array destructure with an
// optional rest capture) — one level deep, not nested vector-in-vector. A
// [a b] pattern whose arity doesn't match the subject's length fails its
// test and falls through to the next clause, and finally to default.
func matchTransform(args []ast.Node, sp herrors.Span) (ast.Node, error) {
	if len(args) < 1 {
		return nil, herrors.New(herrors.KindValidation, sp, "", "match requires a subject expression")
	}
	subject := args[0]
	subjSym := sym("__match_subject__", sp)

	def := ast.Node(ast.NullLiteral(sp))
	var cases []*ast.List
	for _, c := range args[1:] {
		clause, ok := c.(*ast.List)
		if !ok {
			return nil, herrors.New(herrors.KindValidation, c.Span(), "", "match clause must be a (case pattern result) or (default result) form")
		}
		switch clause.HeadName() {
		case "case":
			if len(clause.Args()) != 2 {
				return nil, herrors.New(herrors.KindValidation, clause.Span(), "", "case requires exactly a pattern and a result")
			}
			cases = append(cases, clause)
		case "default":
			if len(clause.Args()) != 1 {
				return nil, herrors.New(herrors.KindValidation, clause.Span(), "", "default requires exactly one result expression")
			}
			def = clause.Args()[0]
		default:
			return nil, herrors.New(herrors.KindValidation, clause.Span(), "", "match clause must start with case or default, got %q", clause.HeadName())
		}
	}

	chain := def
	for i := len(cases) - 1; i >= 0; i-- {
		clauseArgs := cases[i].Args()
		pattern, result := clauseArgs[0], clauseArgs[1]
		test, binds := buildPattern(pattern, subjSym, sp)
		body := result
		if len(binds) > 0 {
			body = lst(sp, sym("let", sp), vecOf(sp, binds...), result)
		}
		chain = lst(sp, sym("if", sp), test, body, chain)
	}
	return lst(sp, sym("let", sp), vecOf(sp, subjSym, subject), chain), nil
}

func buildPattern(pat, subj ast.Node, sp herrors.Span) (ast.Node, []ast.Node) {
	switch p := pat.(type) {
	case *ast.Symbol:
		if p.Name == "_" {
			return ast.BoolLiteral(sp, true), nil
		}
		return ast.BoolLiteral(sp, true), []ast.Node{p, subj}
	case *ast.List:
		if p.HeadName() == ast.HeadVector {
			return buildVectorPattern(p.Args(), subj, sp)
		}
	}
	return lst(sp, sym("=", sp), subj, pat), nil
}

func buildVectorPattern(elems []ast.Node, subj ast.Node, sp herrors.Span) (ast.Node, []ast.Node) {
	var fixed []ast.Node
	var rest *ast.Symbol
	for i := 0; i < len(elems); i++ {
		if s, ok := elems[i].(*ast.Symbol); ok && s.Name == "&" && i+1 < len(elems) {
			if r, ok := elems[i+1].(*ast.Symbol); ok {
				rest = r
			}
			break
		}
		fixed = append(fixed, elems[i])
	}

	countExpr := lst(sp, sym("js-get", sp), subj, ast.StringLiteral(sp, "length"))
	cmpOp := "="
	if rest != nil {
		cmpOp = ">="
	}
	tests := []ast.Node{lst(sp, sym(cmpOp, sp), countExpr, ast.IntLiteral(sp, int64(len(fixed))))}
	var binds []ast.Node
	for i, el := range fixed {
		idxExpr := lst(sp, sym("js-get", sp), subj, ast.IntLiteral(sp, int64(i)))
		t, b := buildPattern(el, idxExpr, sp)
		tests = append(tests, t)
		binds = append(binds, b...)
	}
	if rest != nil {
		sliceExpr := lst(sp, sym("js-call", sp), subj, ast.StringLiteral(sp, "slice"), ast.IntLiteral(sp, int64(len(fixed))))
		binds = append(binds, rest, sliceExpr)
	}
	return foldAnd(tests, sp), binds
}

func foldAnd(tests []ast.Node, sp herrors.Span) ast.Node {
	if len(tests) == 0 {
		return ast.BoolLiteral(sp, true)
	}
	acc := tests[0]
	for _, t := range tests[1:] {
		acc = lst(sp, sym("and", sp), acc, t)
	}
	return acc
}
