package emitter

import (
	"fmt"
	"strconv"

	"github.com/hqllang/hql/ir"
)

// expr writes e's JS text directly into the output, recording a mapping at
// its start position first.
func (p *printer) expr(e ir.Expr) error {
	p.mark(e.Span())
	switch n := e.(type) {
	case *ir.Identifier:
		p.write(n.Name)
	case *ir.Literal:
		p.write(n.Raw)
	case *ir.TemplateLiteral:
		return p.templateLiteral(n)
	case *ir.FunctionExpr:
		return p.functionExpr(n)
	case *ir.CallExpr:
		return p.callExpr(n)
	case *ir.NewExpr:
		p.write("new ")
		if err := p.exprParen(n.Callee); err != nil {
			return err
		}
		return p.args(n.Args)
	case *ir.MemberExpr:
		return p.memberExpr(n)
	case *ir.BinaryExpr:
		if err := p.exprParen(n.Left); err != nil {
			return err
		}
		p.fmtf(" %s ", n.Op)
		return p.exprParen(n.Right)
	case *ir.LogicalExpr:
		if err := p.exprParen(n.Left); err != nil {
			return err
		}
		p.fmtf(" %s ", n.Op)
		return p.exprParen(n.Right)
	case *ir.UnaryExpr:
		if n.Prefix {
			p.write(n.Op)
			return p.exprParen(n.Arg)
		}
		if err := p.exprParen(n.Arg); err != nil {
			return err
		}
		p.write(n.Op)
	case *ir.AssignExpr:
		if err := p.expr(n.Target); err != nil {
			return err
		}
		p.write(" = ")
		return p.expr(n.Value)
	case *ir.ConditionalExpr:
		if err := p.exprParen(n.Test); err != nil {
			return err
		}
		p.write(" ? ")
		if err := p.expr(n.Cons); err != nil {
			return err
		}
		p.write(" : ")
		return p.expr(n.Alt)
	case *ir.ArrayLit:
		p.write("[")
		for i, el := range n.Elements {
			if i > 0 {
				p.write(", ")
			}
			if err := p.expr(el); err != nil {
				return err
			}
		}
		p.write("]")
	case *ir.ObjectLit:
		return p.objectLit(n)
	case *ir.AwaitExpr:
		p.write("await ")
		return p.exprParen(n.Arg)
	default:
		return fmt.Errorf("emitter: unhandled expression type %T", e)
	}
	return nil
}

// exprParen wraps e in parens when it is a kind low-precedence enough that
// embedding it bare inside a binary/unary/conditional/new callee could
// change meaning. A conservative, not precedence-table-exact, rule: wrap
// anything that isn't a clear atom.
func (p *printer) exprParen(e ir.Expr) error {
	switch e.(type) {
	case *ir.Identifier, *ir.Literal, *ir.MemberExpr, *ir.CallExpr, *ir.NewExpr, *ir.ArrayLit, *ir.ObjectLit, *ir.TemplateLiteral:
		return p.expr(e)
	default:
		p.write("(")
		if err := p.expr(e); err != nil {
			return err
		}
		p.write(")")
		return nil
	}
}

func (p *printer) args(args []ir.Expr) error {
	p.write("(")
	for i, a := range args {
		if i > 0 {
			p.write(", ")
		}
		if err := p.expr(a); err != nil {
			return err
		}
	}
	p.write(")")
	return nil
}

func (p *printer) callExpr(n *ir.CallExpr) error {
	if err := p.exprParen(n.Callee); err != nil {
		return err
	}
	return p.args(n.Args)
}

func (p *printer) memberExpr(n *ir.MemberExpr) error {
	if err := p.exprParen(n.Object); err != nil {
		return err
	}
	if n.Computed {
		p.write("[")
		if err := p.expr(n.PropExpr); err != nil {
			return err
		}
		p.write("]")
		return nil
	}
	p.fmtf(".%s", n.Property)
	return nil
}

func (p *printer) templateLiteral(n *ir.TemplateLiteral) error {
	p.write("`")
	for i, q := range n.Quasis {
		p.write(q)
		if i < len(n.Exprs) {
			p.write("${")
			if err := p.expr(n.Exprs[i]); err != nil {
				return err
			}
			p.write("}")
		}
	}
	p.write("`")
	return nil
}

func (p *printer) functionExpr(n *ir.FunctionExpr) error {
	if n.IsAsync {
		p.write("async ")
	}
	p.write("function")
	if n.Name != "" {
		p.fmtf(" %s", n.Name)
	}
	p.fmtf("(%s) ", paramList(n.Params, n.Rest))
	return p.block(n.Body)
}

func (p *printer) objectLit(n *ir.ObjectLit) error {
	p.write("{")
	for i, prop := range n.Props {
		if i > 0 {
			p.write(",")
		}
		p.write(" ")
		if prop.Computed {
			p.write("[")
			if err := p.expr(prop.KeyExpr); err != nil {
				return err
			}
			p.write("]")
		} else {
			p.write(propKey(prop.Key))
		}
		p.write(": ")
		if err := p.expr(prop.Value); err != nil {
			return err
		}
	}
	if len(n.Props) > 0 {
		p.write(" ")
	}
	p.write("}")
	return nil
}

// propKey quotes an object key unless it is already a valid bare identifier.
func propKey(key string) string {
	if key == "" {
		return strconv.Quote(key)
	}
	for i, r := range key {
		if r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		return strconv.Quote(key)
	}
	return key
}
