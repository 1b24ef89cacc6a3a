// Package ir also hosts the builder: the pass that walks a fully
// macro-expanded AST and produces the JS-shaped IR tree the emitter prints.
// By the time code reaches here, every Macro-labeled form has already been
// rewritten away (see package expander) — buildExpr/buildStmt only ever see
// kernel primitives, constructors, and ordinary applications.
package ir

import (
	"strconv"

	"github.com/hqllang/hql/ast"
	"github.com/hqllang/hql/herrors"
)

// operators maps a head symbol used in application position to the JS
// operator it compiles to directly, bypassing a Call — without this, `+`
// and `*` would both sanitise to the same identifier and collide (see
// Sanitizer), and HQL has no way to call "the function named *" anyway:
// arithmetic and comparison are recognised structurally, not resolved
// through the environment.
var binaryOperators = map[string]string{
	"+": "+", "-": "-", "*": "*", "/": "/", "mod": "%",
	"=": "===", "!==": "!==", "<": "<", ">": ">", "<=": "<=", ">=": ">=",
}

// Builder compiles one compilation unit's expanded forms into IR, tracking
// sanitised names and the enclosing loop's rebind targets for `recur`.
type Builder struct {
	san       *Sanitizer
	loopStack [][]string
}

func NewBuilder() *Builder {
	return &Builder{san: NewSanitizer()}
}

// Build compiles a full, already macro-expanded program.
func (b *Builder) Build(forms []ast.Node) (*Program, error) {
	sp := herrors.Span{}
	if len(forms) > 0 {
		sp = forms[0].Span()
	}
	body, err := b.buildStmts(forms, false)
	if err != nil {
		return nil, err
	}
	return &Program{base: base{sp}, Body: body}, nil
}

// buildStmts compiles a sequence of forms to statements; when forceReturn is
// true the last form is compiled as a `return` of its value (function and
// IIFE bodies), otherwise every form is an expression statement (top level,
// `do` in statement position).
func (b *Builder) buildStmts(forms []ast.Node, forceReturn bool) ([]Stmt, error) {
	out := make([]Stmt, 0, len(forms))
	for i, f := range forms {
		last := i == len(forms)-1
		if forceReturn && last {
			expr, err := b.buildExpr(f)
			if err != nil {
				return nil, err
			}
			out = append(out, &ReturnStmt{base: base{f.Span()}, Value: expr})
			continue
		}
		s, err := b.buildStmt(f)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func name(n ast.Node) string {
	if sym, ok := n.(*ast.Symbol); ok {
		return sym.Name
	}
	return ""
}

func vectorArgs(n ast.Node) ([]ast.Node, bool) {
	l, ok := n.(*ast.List)
	if !ok || l.HeadName() != ast.HeadVector {
		return nil, false
	}
	return l.Args(), true
}

// buildStmt compiles n in statement position.
func (b *Builder) buildStmt(n ast.Node) (Stmt, error) {
	list, ok := n.(*ast.List)
	if !ok {
		expr, err := b.buildExpr(n)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{base: base{n.Span()}, X: expr}, nil
	}
	sp := list.Sp
	args := list.Args()

	switch list.HeadName() {
	case "def", "var":
		return b.buildVarDecl(list, "let")
	case "defn":
		return b.buildDefn(list)
	case "set!":
		target, err := b.buildExpr(args[0])
		if err != nil {
			return nil, err
		}
		value, err := b.buildExpr(args[1])
		if err != nil {
			return nil, err
		}
		return &ExprStmt{base: base{sp}, X: &AssignExpr{base: base{sp}, Target: target, Value: value}}, nil
	case "throw":
		v, err := b.buildExpr(args[0])
		if err != nil {
			return nil, err
		}
		return &ThrowStmt{base: base{sp}, Value: v}, nil
	case "do":
		body, err := b.buildStmts(args, false)
		if err != nil {
			return nil, err
		}
		return &BlockStmt{base: base{sp}, Body: body}, nil
	case "if":
		return b.buildIfStmt(list)
	case "let":
		return b.buildLetStmt(list)
	case "try":
		return b.buildTry(list)
	case "for-of":
		return b.buildForOf(list)
	case "while":
		return b.buildWhile(list)
	case "loop":
		return b.buildLoop(list)
	case "recur":
		return b.buildRecur(list)
	case "break":
		label := ""
		if len(args) > 0 {
			label = name(args[0])
		}
		return &BreakStmt{base: base{sp}, Label: label}, nil
	case "continue":
		label := ""
		if len(args) > 0 {
			label = name(args[0])
		}
		return &ContinueStmt{base: base{sp}, Label: label}, nil
	case "label":
		inner, err := b.buildStmt(args[1])
		if err != nil {
			return nil, err
		}
		return &LabeledStmt{base: base{sp}, Label: name(args[0]), Body: inner}, nil
	case "import":
		return b.buildImport(list)
	case "export":
		return b.buildExport(list)
	case "class":
		return b.buildClass(list)
	default:
		expr, err := b.buildExpr(n)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{base: base{sp}, X: expr}, nil
	}
}

func (b *Builder) buildVarDecl(list *ast.List, kind string) (Stmt, error) {
	args := list.Args()
	sp := list.Sp
	jsName, err := b.san.Sanitize(name(args[0]), args[0].Span())
	if err != nil {
		return nil, err
	}
	var init Expr
	if len(args) > 1 {
		init, err = b.buildExpr(args[1])
		if err != nil {
			return nil, err
		}
	}
	return &VarDecl{base: base{sp}, Kind: kind, Name: jsName, Init: init}, nil
}

func (b *Builder) buildDefn(list *ast.List) (Stmt, error) {
	args := list.Args()
	sp := list.Sp
	jsName, err := b.san.Sanitize(name(args[0]), args[0].Span())
	if err != nil {
		return nil, err
	}
	fn, err := b.buildFunction(args[1], args[2:], "")
	if err != nil {
		return nil, err
	}
	return &VarDecl{base: base{sp}, Kind: "const", Name: jsName, Init: fn}, nil
}

func (b *Builder) buildFunction(paramForm ast.Node, bodyForms []ast.Node, jsName string) (*FunctionExpr, error) {
	paramNodes, ok := vectorArgs(paramForm)
	if !ok {
		return nil, herrors.New(herrors.KindCodeGen, paramForm.Span(), "", "function parameters must be a [params...] vector")
	}
	var params []Pattern
	rest := ""
	for i := 0; i < len(paramNodes); i++ {
		if name(paramNodes[i]) == "&" && i+1 < len(paramNodes) {
			jsRest, err := b.san.Sanitize(name(paramNodes[i+1]), paramNodes[i+1].Span())
			if err != nil {
				return nil, err
			}
			rest = jsRest
			break
		}
		jsParam, err := b.san.Sanitize(name(paramNodes[i]), paramNodes[i].Span())
		if err != nil {
			return nil, err
		}
		params = append(params, Pattern{Name: jsParam})
	}
	body, err := b.buildStmts(bodyForms, true)
	if err != nil {
		return nil, err
	}
	return &FunctionExpr{base: base{paramForm.Span()}, Name: jsName, Params: params, Rest: rest, Body: body}, nil
}

func (b *Builder) buildIfStmt(list *ast.List) (Stmt, error) {
	args := list.Args()
	test, err := b.buildExpr(args[0])
	if err != nil {
		return nil, err
	}
	cons, err := b.buildStmts([]ast.Node{args[1]}, false)
	if err != nil {
		return nil, err
	}
	var alt []Stmt
	if len(args) > 2 {
		alt, err = b.buildStmts([]ast.Node{args[2]}, false)
		if err != nil {
			return nil, err
		}
	}
	return &IfStmt{base: base{list.Sp}, Test: test, Cons: cons, Alt: alt}, nil
}

func (b *Builder) buildLetStmt(list *ast.List) (Stmt, error) {
	args := list.Args()
	pairs, ok := vectorArgs(args[0])
	if !ok {
		return nil, herrors.New(herrors.KindCodeGen, args[0].Span(), "", "let bindings must be a [name value ...] vector")
	}
	var decls []Stmt
	for i := 0; i+1 < len(pairs); i += 2 {
		jsName, err := b.san.Sanitize(name(pairs[i]), pairs[i].Span())
		if err != nil {
			return nil, err
		}
		init, err := b.buildExpr(pairs[i+1])
		if err != nil {
			return nil, err
		}
		decls = append(decls, &VarDecl{base: base{pairs[i].Span()}, Kind: "let", Name: jsName, Init: init})
	}
	body, err := b.buildStmts(args[1:], false)
	if err != nil {
		return nil, err
	}
	return &BlockStmt{base: base{list.Sp}, Body: append(decls, body...)}, nil
}

// buildTry compiles `(try body… (catch e handler…) (finally f…))`: every
// leading form up to the first catch/finally clause is the protected block.
func (b *Builder) buildTry(list *ast.List) (Stmt, error) {
	sp := list.Sp
	args := list.Args()
	tryStmt := &TryStmt{base: base{sp}}

	split := len(args)
	for i, a := range args {
		if cl, ok := a.(*ast.List); ok && (cl.HeadName() == "catch" || cl.HeadName() == "finally") {
			split = i
			break
		}
	}
	blockBody, err := b.buildStmts(args[:split], false)
	if err != nil {
		return nil, err
	}
	tryStmt.Block = blockBody

	for _, clause := range args[split:] {
		cl, ok := clause.(*ast.List)
		if !ok {
			continue
		}
		switch cl.HeadName() {
		case "catch":
			cargs := cl.Args()
			if len(cargs) > 0 {
				jsParam, err := b.san.Sanitize(name(cargs[0]), cargs[0].Span())
				if err != nil {
					return nil, err
				}
				tryStmt.CatchParam = jsParam
			}
			body, err := b.buildStmts(cargs[1:], false)
			if err != nil {
				return nil, err
			}
			tryStmt.CatchBody = body
		case "finally":
			body, err := b.buildStmts(cl.Args(), false)
			if err != nil {
				return nil, err
			}
			tryStmt.Finally = body
		}
	}
	return tryStmt, nil
}

// buildForOf compiles `(for-of [item coll] body…)`.
func (b *Builder) buildForOf(list *ast.List) (Stmt, error) {
	args := list.Args()
	binding, ok := vectorArgs(args[0])
	if !ok || len(binding) != 2 {
		return nil, herrors.New(herrors.KindCodeGen, args[0].Span(), "", "for-of binding must be a [item coll] vector")
	}
	jsName, err := b.san.Sanitize(name(binding[0]), binding[0].Span())
	if err != nil {
		return nil, err
	}
	iterable, err := b.buildExpr(binding[1])
	if err != nil {
		return nil, err
	}
	body, err := b.buildStmts(args[1:], false)
	if err != nil {
		return nil, err
	}
	return &ForOfStmt{base: base{list.Sp}, DeclKind: "const", Name: jsName, Iterable: iterable, Body: body}, nil
}

func (b *Builder) buildWhile(list *ast.List) (Stmt, error) {
	args := list.Args()
	test, err := b.buildExpr(args[0])
	if err != nil {
		return nil, err
	}
	body, err := b.buildStmts(args[1:], false)
	if err != nil {
		return nil, err
	}
	return &WhileStmt{base: base{list.Sp}, Test: test, Body: body}, nil
}

// buildLoop compiles `(loop [name init ...] body...)` into the loop
// variables' initial declarations followed by a `while (true)` whose body
// re-enters on `recur` via plain reassignment + continue.
func (b *Builder) buildLoop(list *ast.List) (Stmt, error) {
	args := list.Args()
	pairs, ok := vectorArgs(args[0])
	if !ok {
		return nil, herrors.New(herrors.KindCodeGen, args[0].Span(), "", "loop bindings must be a [name init ...] vector")
	}
	var decls []Stmt
	var names []string
	for i := 0; i+1 < len(pairs); i += 2 {
		jsName, err := b.san.Sanitize(name(pairs[i]), pairs[i].Span())
		if err != nil {
			return nil, err
		}
		init, err := b.buildExpr(pairs[i+1])
		if err != nil {
			return nil, err
		}
		decls = append(decls, &VarDecl{base: base{pairs[i].Span()}, Kind: "let", Name: jsName, Init: init})
		names = append(names, jsName)
	}
	b.loopStack = append(b.loopStack, names)
	body, err := b.buildStmts(args[1:], false)
	b.loopStack = b.loopStack[:len(b.loopStack)-1]
	if err != nil {
		return nil, err
	}
	loop := &WhileStmt{base: base{list.Sp}, Test: &Literal{base: base{list.Sp}, Raw: "true"}, Body: body}
	return &BlockStmt{base: base{list.Sp}, Body: append(decls, loop)}, nil
}

// buildRecur compiles `(recur v1 v2 ...)` into a reassignment of the
// enclosing loop's variables followed by `continue`, the trampoline step
// that takes the place of an actual tail call.
func (b *Builder) buildRecur(list *ast.List) (Stmt, error) {
	if len(b.loopStack) == 0 {
		return nil, herrors.New(herrors.KindCodeGen, list.Sp, "", "recur used outside of a loop")
	}
	names := b.loopStack[len(b.loopStack)-1]
	args := list.Args()
	if len(args) != len(names) {
		return nil, herrors.New(herrors.KindCodeGen, list.Sp, "",
			"recur expects %d argument(s) to match the loop bindings, got %d", len(names), len(args))
	}
	var stmts []Stmt
	for i, a := range args {
		v, err := b.buildExpr(a)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, &ExprStmt{base: base{a.Span()}, X: &AssignExpr{
			base: base{a.Span()}, Target: &Identifier{base: base{a.Span()}, Name: names[i]}, Value: v,
		}})
	}
	stmts = append(stmts, &ContinueStmt{base: base{list.Sp}})
	return &BlockStmt{base: base{list.Sp}, Body: stmts}, nil
}

// buildImport compiles the three import source forms: `(import name from
// "path")` (default), `(import [n1 n2 as alias] from "path")` (named, with
// optional per-name `as` renames), and `(import * as name from "path")`
// (namespace).
func (b *Builder) buildImport(list *ast.List) (Stmt, error) {
	args := list.Args()
	sp := list.Sp
	fromIdx := -1
	for i, a := range args {
		if name(a) == "from" {
			fromIdx = i
			break
		}
	}
	if fromIdx < 0 || fromIdx+1 >= len(args) {
		return nil, herrors.New(herrors.KindImport, sp, "", "import is missing a `from \"path\"` clause")
	}
	lit, ok := args[fromIdx+1].(*ast.Literal)
	if !ok || lit.Kind != ast.LitString {
		return nil, herrors.New(herrors.KindImport, args[fromIdx+1].Span(), "", "import source must be a string literal")
	}
	spec := args[:fromIdx]
	if len(spec) == 0 {
		return nil, herrors.New(herrors.KindImport, sp, "", "import has no binding form before `from`")
	}

	var specs []ImportSpec
	switch {
	case name(spec[0]) == "*":
		if len(spec) != 3 || name(spec[1]) != "as" {
			return nil, herrors.New(herrors.KindImport, sp, "", "namespace import must be `* as name`")
		}
		jsAlias, err := b.san.Sanitize(name(spec[2]), spec[2].Span())
		if err != nil {
			return nil, err
		}
		specs = []ImportSpec{{Local: jsAlias, Imported: "*"}}
	default:
		if names, ok := vectorArgs(spec[0]); ok {
			for i := 0; i < len(names); i++ {
				imported := name(names[i])
				local := imported
				if i+2 < len(names) && name(names[i+1]) == "as" {
					local = name(names[i+2])
					i += 2
				}
				jsLocal, err := b.san.Sanitize(local, names[i].Span())
				if err != nil {
					return nil, err
				}
				specs = append(specs, ImportSpec{Local: jsLocal, Imported: imported})
			}
		} else {
			jsLocal, err := b.san.Sanitize(name(spec[0]), spec[0].Span())
			if err != nil {
				return nil, err
			}
			specs = []ImportSpec{{Local: jsLocal}}
		}
	}
	return &ImportDecl{base: base{sp}, Specifiers: specs, Source: lit.Value.(string)}, nil
}

// buildExport compiles `(export default expr)` and `(export [n1 n2 …])`, the
// latter re-exporting already-bound top-level names.
func (b *Builder) buildExport(list *ast.List) (Stmt, error) {
	args := list.Args()
	sp := list.Sp
	if name(args[0]) == "default" {
		value, err := b.buildExpr(args[1])
		if err != nil {
			return nil, err
		}
		return &ExportDecl{base: base{sp}, Default: true, Value: value}, nil
	}
	names, ok := vectorArgs(args[0])
	if !ok {
		return nil, herrors.New(herrors.KindImport, args[0].Span(), "", "export expects `default expr` or a [name ...] vector")
	}
	stmts := make([]Stmt, 0, len(names))
	for _, n := range names {
		jsName, err := b.san.Sanitize(name(n), n.Span())
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, &ExportDecl{base: base{n.Span()}, Name: jsName, Value: &Identifier{base: base{n.Span()}, Name: jsName}})
	}
	if len(stmts) == 1 {
		return stmts[0], nil
	}
	return &BlockStmt{base: base{sp}, Body: stmts}, nil
}

func (b *Builder) buildClass(list *ast.List) (Stmt, error) {
	args := list.Args()
	sp := list.Sp
	decl := &ClassDecl{base: base{sp}, Name: name(args[0])}
	rest := args[1:]
	if len(rest) > 0 {
		if extends, ok := rest[0].(*ast.List); ok && extends.HeadName() == "extends" {
			superExpr, err := b.buildExpr(extends.Args()[0])
			if err != nil {
				return nil, err
			}
			decl.Extends = superExpr
			rest = rest[1:]
		}
	}
	for _, m := range rest {
		member, ok := m.(*ast.List)
		if !ok {
			continue
		}
		kind := member.HeadName()
		margs := member.Args()
		var memberName string
		var paramForm ast.Node
		var bodyForms []ast.Node
		switch kind {
		case "constructor":
			memberName = "constructor"
			paramForm = margs[0]
			bodyForms = margs[1:]
		case "method":
			memberName = name(margs[0])
			paramForm = margs[1]
			bodyForms = margs[2:]
		default:
			continue
		}
		fn, err := b.buildFunction(paramForm, bodyForms, "")
		if err != nil {
			return nil, err
		}
		decl.Members = append(decl.Members, ClassMember{
			Name: memberName, Kind: kind, Params: fn.Params, Rest: fn.Rest, Body: fn.Body,
		})
	}
	return decl, nil
}

// buildExpr compiles n in expression position.
func (b *Builder) buildExpr(n ast.Node) (Expr, error) {
	switch v := n.(type) {
	case *ast.Symbol:
		jsName, err := b.san.Sanitize(v.Name, v.Sp)
		if err != nil {
			return nil, err
		}
		return &Identifier{base: base{v.Sp}, Name: jsName}, nil
	case *ast.Keyword:
		return &Literal{base: base{v.Sp}, Raw: strconv.Quote(v.Name)}, nil
	case *ast.Literal:
		return b.buildLiteral(v), nil
	case *ast.List:
		return b.buildListExpr(v)
	}
	return nil, herrors.New(herrors.KindCodeGen, n.Span(), "", "cannot compile %T in expression position", n)
}

func (b *Builder) buildLiteral(l *ast.Literal) Expr {
	switch l.Kind {
	case ast.LitString:
		return &Literal{base: base{l.Sp}, Raw: strconv.Quote(l.Value.(string))}
	case ast.LitNull:
		return &Literal{base: base{l.Sp}, Raw: "null"}
	default:
		return &Literal{base: base{l.Sp}, Raw: l.Raw}
	}
}

func (b *Builder) buildListExpr(list *ast.List) (Expr, error) {
	sp := list.Sp
	head := list.HeadName()
	args := list.Args()

	if op, ok := binaryOperators[head]; ok && len(args) >= 1 {
		return b.buildOperatorChain(op, args, sp)
	}

	switch head {
	case "quote":
		return b.quoteToExpr(args[0]), nil
	case ast.HeadVector:
		return b.buildArrayLit(args, sp)
	case ast.HeadHashSet:
		elems, err := b.buildExprList(args)
		if err != nil {
			return nil, err
		}
		arr := &ArrayLit{base: base{sp}, Elements: elems}
		return &NewExpr{base: base{sp}, Callee: &Identifier{base: base{sp}, Name: "Set"}, Args: []Expr{arr}}, nil
	case ast.HeadHashMap:
		pairs := make([]Expr, 0, len(args)/2)
		for i := 0; i+1 < len(args); i += 2 {
			k, err := b.buildExpr(args[i])
			if err != nil {
				return nil, err
			}
			v, err := b.buildExpr(args[i+1])
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, &ArrayLit{base: base{sp}, Elements: []Expr{k, v}})
		}
		arr := &ArrayLit{base: base{sp}, Elements: pairs}
		return &NewExpr{base: base{sp}, Callee: &Identifier{base: base{sp}, Name: "Map"}, Args: []Expr{arr}}, nil
	case "if":
		return b.buildIfExpr(list)
	case "do":
		return b.buildDoExpr(list)
	case "let":
		return b.buildLetExpr(list)
	case "fn":
		return b.buildFnExpr(list)
	case "js-get":
		return b.buildJSGet(args, sp)
	case "js-set":
		return b.buildJSSet(args, sp)
	case "js-call":
		return b.buildJSCall(args, sp)
	case "new":
		callee, err := b.buildExpr(args[0])
		if err != nil {
			return nil, err
		}
		rest, err := b.buildExprList(args[1:])
		if err != nil {
			return nil, err
		}
		return &NewExpr{base: base{sp}, Callee: callee, Args: rest}, nil
	case "async":
		fnList := ast.NewList(sp, append([]ast.Node{ast.NewSymbol(sp, "fn")}, args...)...)
		fn, err := b.buildFnExpr(fnList)
		if err != nil {
			return nil, err
		}
		if fe, ok := fn.(*FunctionExpr); ok {
			fe.IsAsync = true
		}
		return fn, nil
	case "await":
		arg, err := b.buildExpr(args[0])
		if err != nil {
			return nil, err
		}
		return &AwaitExpr{base: base{sp}, Arg: arg}, nil
	case "throw", "try", "for-of", "while", "loop", "recur", "set!", "def", "var", "defn",
		"break", "continue", "label", "import", "export", "class":
		// Statement-shaped kernel forms reached in expression position: wrap
		// the single statement in an IIFE so they still yield a value (used
		// by scenarios where `do`-sequencing forces a statement into an
		// expression slot).
		stmt, err := b.buildStmt(list)
		if err != nil {
			return nil, err
		}
		return IIFE(sp, []Stmt{stmt}), nil
	default:
		return b.buildCall(list)
	}
}

func (b *Builder) buildOperatorChain(op string, args []ast.Node, sp herrors.Span) (Expr, error) {
	exprs, err := b.buildExprList(args)
	if err != nil {
		return nil, err
	}
	if len(exprs) == 1 {
		if op == "-" {
			return &UnaryExpr{base: base{sp}, Op: "-", Arg: exprs[0], Prefix: true}, nil
		}
		return exprs[0], nil
	}
	acc := exprs[0]
	for _, e := range exprs[1:] {
		acc = &BinaryExpr{base: base{sp}, Op: op, Left: acc, Right: e}
	}
	return acc, nil
}

func (b *Builder) buildExprList(nodes []ast.Node) ([]Expr, error) {
	out := make([]Expr, len(nodes))
	for i, n := range nodes {
		e, err := b.buildExpr(n)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (b *Builder) buildArrayLit(args []ast.Node, sp herrors.Span) (Expr, error) {
	elems, err := b.buildExprList(args)
	if err != nil {
		return nil, err
	}
	return &ArrayLit{base: base{sp}, Elements: elems}, nil
}

func (b *Builder) buildIfExpr(list *ast.List) (Expr, error) {
	args := list.Args()
	test, err := b.buildExpr(args[0])
	if err != nil {
		return nil, err
	}
	cons, err := b.buildExpr(args[1])
	if err != nil {
		return nil, err
	}
	var alt Expr = &Literal{base: base{list.Sp}, Raw: "undefined"}
	if len(args) > 2 {
		alt, err = b.buildExpr(args[2])
		if err != nil {
			return nil, err
		}
	}
	return &ConditionalExpr{base: base{list.Sp}, Test: test, Cons: cons, Alt: alt}, nil
}

func (b *Builder) buildDoExpr(list *ast.List) (Expr, error) {
	body, err := b.buildStmts(list.Args(), true)
	if err != nil {
		return nil, err
	}
	return IIFE(list.Sp, body), nil
}

func (b *Builder) buildLetExpr(list *ast.List) (Expr, error) {
	args := list.Args()
	pairs, ok := vectorArgs(args[0])
	if !ok {
		return nil, herrors.New(herrors.KindCodeGen, args[0].Span(), "", "let bindings must be a [name value ...] vector")
	}
	var decls []Stmt
	for i := 0; i+1 < len(pairs); i += 2 {
		jsName, err := b.san.Sanitize(name(pairs[i]), pairs[i].Span())
		if err != nil {
			return nil, err
		}
		init, err := b.buildExpr(pairs[i+1])
		if err != nil {
			return nil, err
		}
		decls = append(decls, &VarDecl{base: base{pairs[i].Span()}, Kind: "let", Name: jsName, Init: init})
	}
	body, err := b.buildStmts(args[1:], true)
	if err != nil {
		return nil, err
	}
	return IIFE(list.Sp, append(decls, body...)), nil
}

func (b *Builder) buildFnExpr(list *ast.List) (Expr, error) {
	args := list.Args()
	i := 0
	fnName := ""
	if _, isVec := vectorArgs(args[0]); !isVec {
		fnName = name(args[0])
		i = 1
	}
	fn, err := b.buildFunction(args[i], args[i+1:], fnName)
	if err != nil {
		return nil, err
	}
	return fn, nil
}

// propertyName recognises a plain string/symbol property name (rendered as
// `.name`); anything else (e.g. a dynamic expression) is a computed access
// rendered as `[expr]`.
func propertyName(n ast.Node) (string, bool) {
	if lit, ok := n.(*ast.Literal); ok && lit.Kind == ast.LitString {
		return lit.Value.(string), false
	}
	if sym, ok := n.(*ast.Symbol); ok {
		return sym.Name, false
	}
	return "", true
}

func (b *Builder) buildJSGet(args []ast.Node, sp herrors.Span) (Expr, error) {
	obj, err := b.buildExpr(args[0])
	if err != nil {
		return nil, err
	}
	for _, propNode := range args[1:] {
		propName, computed := propertyName(propNode)
		if computed {
			propExpr, err := b.buildExpr(propNode)
			if err != nil {
				return nil, err
			}
			obj = &MemberExpr{base: base{sp}, Object: obj, Computed: true, PropExpr: propExpr}
			continue
		}
		obj = &MemberExpr{base: base{sp}, Object: obj, Property: propName}
	}
	return obj, nil
}

func (b *Builder) buildJSSet(args []ast.Node, sp herrors.Span) (Expr, error) {
	target, err := b.buildJSGet(args[:len(args)-1], sp)
	if err != nil {
		return nil, err
	}
	value, err := b.buildExpr(args[len(args)-1])
	if err != nil {
		return nil, err
	}
	return &AssignExpr{base: base{sp}, Target: target, Value: value}, nil
}

func (b *Builder) buildJSCall(args []ast.Node, sp herrors.Span) (Expr, error) {
	obj, err := b.buildExpr(args[0])
	if err != nil {
		return nil, err
	}
	propName, computed := propertyName(args[1])
	var callee Expr
	if computed {
		propExpr, err := b.buildExpr(args[1])
		if err != nil {
			return nil, err
		}
		callee = &MemberExpr{base: base{sp}, Object: obj, Computed: true, PropExpr: propExpr}
	} else {
		callee = &MemberExpr{base: base{sp}, Object: obj, Property: propName}
	}
	rest, err := b.buildExprList(args[2:])
	if err != nil {
		return nil, err
	}
	return &CallExpr{base: base{sp}, Callee: callee, Args: rest}, nil
}

func (b *Builder) buildCall(list *ast.List) (Expr, error) {
	callee, err := b.buildExpr(list.Children[0])
	if err != nil {
		return nil, err
	}
	args, err := b.buildExprList(list.Args())
	if err != nil {
		return nil, err
	}
	return &CallExpr{base: base{list.Sp}, Callee: callee, Args: args}, nil
}

// quoteToExpr renders a quoted data literal as the equivalent JS value:
// numbers/strings/bools/null pass through, symbols and keywords become
// strings, and lists become array literals — the same shape (quote ...) in
// already-expanded code is expected to produce at runtime.
func (b *Builder) quoteToExpr(n ast.Node) Expr {
	switch v := n.(type) {
	case *ast.Literal:
		return b.buildLiteral(v)
	case *ast.Symbol:
		return &Literal{base: base{v.Sp}, Raw: strconv.Quote(v.String())}
	case *ast.Keyword:
		return &Literal{base: base{v.Sp}, Raw: strconv.Quote(v.Name)}
	case *ast.List:
		elems := make([]Expr, len(v.Children))
		for i, c := range v.Children {
			elems[i] = b.quoteToExpr(c)
		}
		return &ArrayLit{base: base{v.Sp}, Elements: elems}
	default:
		return &Literal{base: base{n.Span()}, Raw: "null"}
	}
}
