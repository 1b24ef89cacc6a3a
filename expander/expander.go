// Package expander implements HQL's macro expansion pass: a depth-first,
// pre-order rewrite of the AST to a fixed point, backed by a tiny
// tree-walking interpreter for macro bodies (see interp.go and quasi.go).
package expander

import (
	"github.com/hqllang/hql/ast"
	"github.com/hqllang/hql/classifier"
	"github.com/hqllang/hql/env"
	"github.com/hqllang/hql/herrors"
)

// maxExpansionDepth bounds the expansion depth of one top-level form (each
// macro rewrite and each descent into a nested form adds one level) before
// the expander gives up and reports a MacroError, the
// anti-divergence guard spec.md requires for recursive/cyclic macros.
const maxExpansionDepth = 256

// Expander owns the gensym counter for one compilation: every macro call
// within a single Expand draws from the same monotonic counter so fresh
// names never collide, while two independent Expand calls (two separate
// compiles) never share state.
type Expander struct {
	gensymCounter int
}

// New creates an Expander ready to process one compilation unit.
func New() *Expander {
	return &Expander{}
}

// Expand registers every top-level (macro ...) definition into frame, then
// rewrites the remaining forms to a fixed point. frame should already carry
// the built-in macro set (see RegisterBuiltins).
func (ex *Expander) Expand(forms []ast.Node, frame *env.Frame) ([]ast.Node, error) {
	var rest []ast.Node
	for _, f := range forms {
		if list, ok := f.(*ast.List); ok && list.HeadName() == "macro" {
			name, def, err := parseMacroDef(list)
			if err != nil {
				return nil, err
			}
			frame.DefineGlobal(name, env.Entry{Kind: env.EntryMacro, Macro: def})
			continue
		}
		rest = append(rest, f)
	}

	out := make([]ast.Node, 0, len(rest))
	for _, f := range rest {
		expanded, err := ex.expandNode(f, frame, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded)
	}
	return out, nil
}

func (ex *Expander) expandNode(n ast.Node, frame *env.Frame, depth int) (ast.Node, error) {
	if depth > maxExpansionDepth {
		return nil, herrors.New(herrors.KindMacro, n.Span(), "",
			"macro expansion exceeded depth limit %d (possible non-terminating macro)", maxExpansionDepth)
	}

	label := classifier.Classify(n, frame)
	list, isList := n.(*ast.List)

	switch label {
	case classifier.Macro:
		def, _ := frame.IsMacro(list.HeadName())
		expanded, err := ex.expandMacroCall(list, def, frame)
		if err != nil {
			if herr, ok := err.(*herrors.Error); ok {
				return nil, herrors.Wrap(herr, "in expansion of macro %q", list.HeadName())
			}
			return nil, err
		}
		return ex.expandNode(expanded, frame, depth+1)

	case classifier.Special:
		return ex.expandSpecial(list, frame, depth)

	case classifier.Application, classifier.Constructor:
		if !isList {
			return n, nil
		}
		children := make([]ast.Node, len(list.Children))
		for i, c := range list.Children {
			ec, err := ex.expandNode(c, frame, depth+1)
			if err != nil {
				return nil, err
			}
			children[i] = ec
		}
		return &ast.List{Sp: list.Sp, Children: children}, nil

	default:
		return n, nil
	}
}

func (ex *Expander) expandChildren(children []ast.Node, frame *env.Frame, depth int) ([]ast.Node, error) {
	out := make([]ast.Node, len(children))
	for i, c := range children {
		ec, err := ex.expandNode(c, frame, depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = ec
	}
	return out, nil
}

// expandSpecial recurses into a kernel-primitive form's children, pushing a
// child frame with shadow bindings for let/fn/defn parameter names so a
// local binding that happens to share a macro's name is never expanded
// inside that binding's scope.
func (ex *Expander) expandSpecial(list *ast.List, frame *env.Frame, depth int) (ast.Node, error) {
	head := list.HeadName()
	args := list.Args()

	switch head {
	case "let":
		if len(args) == 0 {
			break
		}
		bindings, ok := args[0].(*ast.List)
		if !ok || bindings.HeadName() != ast.HeadVector {
			break
		}
		pairs := bindings.Args()
		inner := frame.Push()
		newPairs := make([]ast.Node, len(pairs))
		for i := 0; i+1 < len(pairs); i += 2 {
			nameSym, ok := pairs[i].(*ast.Symbol)
			if !ok {
				newPairs[i], newPairs[i+1] = pairs[i], pairs[i+1]
				continue
			}
			ev, err := ex.expandNode(pairs[i+1], inner, depth+1)
			if err != nil {
				return nil, err
			}
			newPairs[i] = pairs[i]
			newPairs[i+1] = ev
			inner.DefineLocal(nameSym.Name, env.Entry{Kind: env.EntryShadow})
		}
		newBindings := &ast.List{Sp: bindings.Sp, Children: append([]ast.Node{bindings.Children[0]}, newPairs...)}
		body, err := ex.expandChildren(args[1:], inner, depth)
		if err != nil {
			return nil, err
		}
		newChildren := append([]ast.Node{list.Children[0], newBindings}, body...)
		return &ast.List{Sp: list.Sp, Children: newChildren}, nil

	case "fn", "defn":
		return ex.expandFnLike(list, head, frame, depth)

	case "for-of":
		return ex.expandForOf(list, frame, depth)

	case "loop":
		return ex.expandLoop(list, frame, depth)
	}

	children, err := ex.expandChildren(list.Children, frame, depth)
	if err != nil {
		return nil, err
	}
	return &ast.List{Sp: list.Sp, Children: children}, nil
}

// expandForOf shadows the loop variable from `(for-of [item coll] body…)` in
// a pushed frame so a same-named macro is never expanded inside the loop
// body, matching fn/defn/let's treatment of locally bound names.
func (ex *Expander) expandForOf(list *ast.List, frame *env.Frame, depth int) (ast.Node, error) {
	args := list.Args()
	if len(args) == 0 {
		return list, nil
	}
	binding, ok := args[0].(*ast.List)
	if !ok || binding.HeadName() != ast.HeadVector {
		return list, nil
	}
	bindArgs := binding.Args()
	inner := frame.Push()
	if len(bindArgs) > 0 {
		if sym, ok := bindArgs[0].(*ast.Symbol); ok {
			inner.DefineLocal(sym.Name, env.Entry{Kind: env.EntryShadow})
		}
	}
	var coll ast.Node
	if len(bindArgs) > 1 {
		var err error
		coll, err = ex.expandNode(bindArgs[1], frame, depth+1)
		if err != nil {
			return nil, err
		}
	}
	newBinding := binding
	if coll != nil {
		newBinding = &ast.List{Sp: binding.Sp, Children: []ast.Node{binding.Children[0], bindArgs[0], coll}}
	}
	body, err := ex.expandChildren(args[1:], inner, depth)
	if err != nil {
		return nil, err
	}
	newChildren := append([]ast.Node{list.Children[0], newBinding}, body...)
	return &ast.List{Sp: list.Sp, Children: newChildren}, nil
}

// expandLoop shadows every `loop` binding name, the same way `let` does,
// since `recur` targets are ordinary locals from the expander's perspective.
func (ex *Expander) expandLoop(list *ast.List, frame *env.Frame, depth int) (ast.Node, error) {
	args := list.Args()
	if len(args) == 0 {
		return list, nil
	}
	bindings, ok := args[0].(*ast.List)
	if !ok || bindings.HeadName() != ast.HeadVector {
		return list, nil
	}
	pairs := bindings.Args()
	inner := frame.Push()
	newPairs := make([]ast.Node, len(pairs))
	for i := 0; i+1 < len(pairs); i += 2 {
		ev, err := ex.expandNode(pairs[i+1], frame, depth+1)
		if err != nil {
			return nil, err
		}
		newPairs[i] = pairs[i]
		newPairs[i+1] = ev
		if sym, ok := pairs[i].(*ast.Symbol); ok {
			inner.DefineLocal(sym.Name, env.Entry{Kind: env.EntryShadow})
		}
	}
	newBindings := &ast.List{Sp: bindings.Sp, Children: append([]ast.Node{bindings.Children[0]}, newPairs...)}
	body, err := ex.expandChildren(args[1:], inner, depth)
	if err != nil {
		return nil, err
	}
	newChildren := append([]ast.Node{list.Children[0], newBindings}, body...)
	return &ast.List{Sp: list.Sp, Children: newChildren}, nil
}

func (ex *Expander) expandFnLike(list *ast.List, head string, frame *env.Frame, depth int) (ast.Node, error) {
	args := list.Args()
	i := 0
	inner := frame.Push()
	if head == "defn" {
		if len(args) == 0 {
			return list, nil
		}
		if nameSym, ok := args[0].(*ast.Symbol); ok {
			frame.DefineGlobal(nameSym.Name, env.Entry{Kind: env.EntryShadow})
			inner.DefineLocal(nameSym.Name, env.Entry{Kind: env.EntryShadow})
		}
		i = 1
	} else if len(args) > 0 {
		if nameSym, ok := args[0].(*ast.Symbol); ok {
			inner.DefineLocal(nameSym.Name, env.Entry{Kind: env.EntryShadow})
			i = 1
		}
	}
	if i >= len(args) {
		return list, nil
	}
	paramList, ok := args[i].(*ast.List)
	if !ok || paramList.HeadName() != ast.HeadVector {
		return list, nil
	}
	for _, p := range paramList.Args() {
		if sym, ok := p.(*ast.Symbol); ok && sym.Name != "&" {
			inner.DefineLocal(sym.Name, env.Entry{Kind: env.EntryShadow})
		}
	}
	body, err := ex.expandChildren(args[i+1:], inner, depth)
	if err != nil {
		return nil, err
	}
	newChildren := append(append([]ast.Node{}, list.Children[:i+1]...), body...)
	return &ast.List{Sp: list.Sp, Children: newChildren}, nil
}

// expandMacroCall binds the macro's parameters to the raw argument ASTs and
// evaluates its body with the tree-walking interpreter; the body's result
// (an AST fragment, possibly a bare scalar) becomes the rewritten form.
func (ex *Expander) expandMacroCall(call *ast.List, def *env.MacroDef, frame *env.Frame) (ast.Node, error) {
	span := call.Sp
	if def.Native != nil {
		return def.Native(call.Args(), span)
	}

	args := call.Args()
	if def.Rest == nil && len(args) != len(def.Params) {
		return nil, herrors.New(herrors.KindMacro, span, "",
			"macro %q expects %d argument(s), got %d", call.HeadName(), len(def.Params), len(args))
	}
	if def.Rest != nil && len(args) < len(def.Params) {
		return nil, herrors.New(herrors.KindMacro, span, "",
			"macro %q expects at least %d argument(s), got %d", call.HeadName(), len(def.Params), len(args))
	}

	sc := newScope(nil)
	for i, p := range def.Params {
		sc.set(p.Name, args[i])
	}
	if def.Rest != nil {
		rest := make([]Value, 0, len(args)-len(def.Params))
		for _, a := range args[len(def.Params):] {
			rest = append(rest, Value(a))
		}
		sc.set(def.Rest.Name, rest)
	}

	ip := &interp{gensym: newGensymTable(&ex.gensymCounter), span: span}
	result, err := ip.evalBody(def.Body, sc)
	if err != nil {
		return nil, err
	}
	return toNode(result, span), nil
}

func parseMacroDef(list *ast.List) (string, *env.MacroDef, error) {
	args := list.Args()
	if len(args) < 2 {
		return "", nil, herrors.New(herrors.KindValidation, list.Sp, "",
			"macro definition requires a name and a parameter list")
	}
	nameSym, ok := args[0].(*ast.Symbol)
	if !ok {
		return "", nil, herrors.New(herrors.KindValidation, args[0].Span(), "",
			"macro name must be a symbol")
	}
	paramList, ok := args[1].(*ast.List)
	if !ok || paramList.HeadName() != ast.HeadVector {
		return "", nil, herrors.New(herrors.KindValidation, args[1].Span(), "",
			"macro parameters must be a [params...] vector")
	}
	params, rest := splitParams(paramList.Args())
	return nameSym.Name, &env.MacroDef{Params: params, Rest: rest, Body: args[2:]}, nil
}
