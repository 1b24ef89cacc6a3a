package expander

import (
	"github.com/hqllang/hql/ast"
	"github.com/hqllang/hql/herrors"
)

// quasi expands a quasiquoted template into a concrete AST fragment: plain
// nodes are carried through verbatim (inheriting their own span), `unquote`
// substitutes an evaluated value, `unquote-splice` splices an evaluated
// sequence into the enclosing list, and any symbol ending in "#" is
// consistently renamed via the expansion's gensym table.
//
// Nested quasiquote is not depth-tracked: an inner `quasiquote` is just
// another List to recurse into, so `~`/`~@` always refer to the nearest
// enclosing quasiquote rather than threading through nesting levels. HQL
// macros that need genuinely nested templating should build the inner
// template with an explicit (quote ...) instead.
func (ip *interp) quasi(n ast.Node, sc *scope) (Value, error) {
	switch v := n.(type) {
	case *ast.Symbol:
		if isGensymSymbol(v.Name) {
			fresh := ip.gensym.rename(v.Name[:len(v.Name)-1])
			return &ast.Symbol{Sp: v.Sp, Name: fresh}, nil
		}
		return v, nil
	case *ast.Keyword, *ast.Literal:
		return v, nil
	case *ast.List:
		if len(v.Children) == 2 {
			if head, ok := v.Children[0].(*ast.Symbol); ok && head.Name == "unquote" {
				val, err := ip.eval(v.Children[1], sc)
				if err != nil {
					return nil, err
				}
				return toNode(val, v.Sp), nil
			}
		}
		if len(v.Children) == 0 {
			return v, nil
		}
		if head, ok := v.Children[0].(*ast.Symbol); ok && head.Name == "unquote-splice" {
			return nil, ip.errf(herrors.KindMacro, "unquote-splice used outside of a list position")
		}

		children := make([]ast.Node, 0, len(v.Children))
		for _, c := range v.Children {
			if spliced, ok, err := ip.trySplice(c, sc); err != nil {
				return nil, err
			} else if ok {
				children = append(children, spliced...)
				continue
			}
			qv, err := ip.quasi(c, sc)
			if err != nil {
				return nil, err
			}
			children = append(children, toNode(qv, c.Span()))
		}
		return &ast.List{Sp: v.Sp, Children: children}, nil
	default:
		return n, nil
	}
}

// trySplice reports whether c is an (unquote-splice expr) form; if so it
// evaluates expr and returns its elements for the caller to inline.
func (ip *interp) trySplice(c ast.Node, sc *scope) ([]ast.Node, bool, error) {
	list, ok := c.(*ast.List)
	if !ok || len(list.Children) != 2 {
		return nil, false, nil
	}
	head, ok := list.Children[0].(*ast.Symbol)
	if !ok || head.Name != "unquote-splice" {
		return nil, false, nil
	}
	val, err := ip.eval(list.Children[1], sc)
	if err != nil {
		return nil, true, err
	}
	switch t := val.(type) {
	case *ast.List:
		return t.Children, true, nil
	case []Value:
		nodes := make([]ast.Node, len(t))
		for i, e := range t {
			nodes[i] = toNode(e, c.Span())
		}
		return nodes, true, nil
	case nil:
		return nil, true, nil
	default:
		return nil, true, ip.errf(herrors.KindMacro, "unquote-splice value is not a sequence")
	}
}
