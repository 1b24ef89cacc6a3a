package expander

import (
	"github.com/hqllang/hql/ast"
	"github.com/hqllang/hql/herrors"
)

// builtinFunc is a host function reachable from inside a macro body by
// plain application (not a kernel special form and not bound in scope).
type builtinFunc func(ip *interp, args []Value) (Value, error)

func listChildren(v Value) ([]ast.Node, bool) {
	switch t := v.(type) {
	case *ast.List:
		return t.Children, true
	case *ast.Vector:
		return t.Children, true
	case []Value:
		nodes := make([]ast.Node, len(t))
		for i, e := range t {
			nodes[i] = toNode(e, herrors.Span{})
		}
		return nodes, true
	}
	return nil, false
}

func asNumber(v Value) (float64, bool) {
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}

var builtinFuncs = map[string]builtinFunc{
	"count": func(ip *interp, args []Value) (Value, error) {
		children, ok := listChildren(args[0])
		if !ok {
			return nil, ip.errf(herrors.KindMacro, "count expects a sequence")
		}
		return int64(len(children)), nil
	},
	"first": func(ip *interp, args []Value) (Value, error) {
		children, ok := listChildren(args[0])
		if !ok || len(children) == 0 {
			return nil, nil
		}
		return children[0], nil
	},
	"second": func(ip *interp, args []Value) (Value, error) {
		children, ok := listChildren(args[0])
		if !ok || len(children) < 2 {
			return nil, nil
		}
		return children[1], nil
	},
	"last": func(ip *interp, args []Value) (Value, error) {
		children, ok := listChildren(args[0])
		if !ok || len(children) == 0 {
			return nil, nil
		}
		return children[len(children)-1], nil
	},
	"rest": func(ip *interp, args []Value) (Value, error) {
		children, ok := listChildren(args[0])
		if !ok || len(children) <= 1 {
			return &ast.List{}, nil
		}
		return &ast.List{Children: children[1:]}, nil
	},
	"nth": func(ip *interp, args []Value) (Value, error) {
		children, ok := listChildren(args[0])
		idx, numOk := asNumber(args[1])
		if !ok || !numOk || int(idx) < 0 || int(idx) >= len(children) {
			return nil, nil
		}
		return children[int(idx)], nil
	},
	"empty?": func(ip *interp, args []Value) (Value, error) {
		children, ok := listChildren(args[0])
		return !ok || len(children) == 0, nil
	},
	"list?": func(ip *interp, args []Value) (Value, error) {
		_, ok := args[0].(*ast.List)
		return ok, nil
	},
	"symbol?": func(ip *interp, args []Value) (Value, error) {
		_, ok := args[0].(*ast.Symbol)
		return ok, nil
	},
	"name": func(ip *interp, args []Value) (Value, error) {
		if sym, ok := args[0].(*ast.Symbol); ok {
			return sym.Name, nil
		}
		if kw, ok := args[0].(*ast.Keyword); ok {
			return kw.Name, nil
		}
		return nodeString(args[0]), nil
	},
	"str": func(ip *interp, args []Value) (Value, error) {
		out := ""
		for _, a := range args {
			out += nodeString(a)
		}
		return out, nil
	},
	"not": func(ip *interp, args []Value) (Value, error) {
		return !truthy(args[0]), nil
	},
	"=": func(ip *interp, args []Value) (Value, error) { return valueEqual(args[0], args[1]), nil },
	"!==": func(ip *interp, args []Value) (Value, error) {
		return !valueEqual(args[0], args[1]), nil
	},
	"+": arith(func(a, b float64) float64 { return a + b }),
	"-": arith(func(a, b float64) float64 { return a - b }),
	"*": arith(func(a, b float64) float64 { return a * b }),
	"/": arith(func(a, b float64) float64 { return a / b }),
	"mod": arith(func(a, b float64) float64 {
		r := int64(a) % int64(b)
		return float64(r)
	}),
	"<":  cmp(func(a, b float64) bool { return a < b }),
	">":  cmp(func(a, b float64) bool { return a > b }),
	"<=": cmp(func(a, b float64) bool { return a <= b }),
	">=": cmp(func(a, b float64) bool { return a >= b }),
}

func arith(op func(a, b float64) float64) builtinFunc {
	return func(ip *interp, args []Value) (Value, error) {
		if len(args) == 0 {
			return int64(0), nil
		}
		acc, ok := asNumber(args[0])
		if !ok {
			return nil, ip.errf(herrors.KindMacro, "arithmetic expects numbers")
		}
		allInt := isInt(args[0])
		for _, a := range args[1:] {
			n, ok := asNumber(a)
			if !ok {
				return nil, ip.errf(herrors.KindMacro, "arithmetic expects numbers")
			}
			allInt = allInt && isInt(a)
			acc = op(acc, n)
		}
		if allInt {
			return int64(acc), nil
		}
		return acc, nil
	}
}

func cmp(op func(a, b float64) bool) builtinFunc {
	return func(ip *interp, args []Value) (Value, error) {
		a, aok := asNumber(args[0])
		b, bok := asNumber(args[1])
		if !aok || !bok {
			return nil, ip.errf(herrors.KindMacro, "comparison expects numbers")
		}
		return op(a, b), nil
	}
}

func isInt(v Value) bool {
	_, ok := v.(int64)
	return ok
}

func valueEqual(a, b Value) bool {
	an, aIsNode := a.(ast.Node)
	bn, bIsNode := b.(ast.Node)
	if aIsNode || bIsNode {
		if aIsNode && bIsNode {
			return ast.Equal(an, bn)
		}
		return false
	}
	return a == b
}
