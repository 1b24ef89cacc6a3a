package emitter

import (
	"fmt"

	"github.com/hqllang/hql/ir"
)

func (p *printer) stmts(body []ir.Stmt) error {
	for _, s := range body {
		if err := p.stmt(s); err != nil {
			return err
		}
	}
	return nil
}

// block prints body as a brace-delimited, indented statement list.
func (p *printer) block(body []ir.Stmt) error {
	p.write("{")
	p.nl()
	p.indent++
	if err := p.stmts(body); err != nil {
		return err
	}
	p.indent--
	p.writeIndent()
	p.write("}")
	return nil
}

func (p *printer) stmt(s ir.Stmt) error {
	p.writeIndent()
	p.mark(s.Span())
	switch n := s.(type) {
	case *ir.VarDecl:
		return p.varDecl(n)
	case *ir.ExprStmt:
		if err := p.expr(n.X); err != nil {
			return err
		}
		p.write(";")
		p.nl()
	case *ir.ReturnStmt:
		if n.Value == nil {
			p.write("return;")
			p.nl()
			return nil
		}
		p.write("return ")
		if err := p.expr(n.Value); err != nil {
			return err
		}
		p.write(";")
		p.nl()
	case *ir.ThrowStmt:
		p.write("throw ")
		if err := p.expr(n.Value); err != nil {
			return err
		}
		p.write(";")
		p.nl()
	case *ir.BlockStmt:
		if err := p.block(n.Body); err != nil {
			return err
		}
		p.nl()
	case *ir.IfStmt:
		return p.ifStmt(n)
	case *ir.TryStmt:
		return p.tryStmt(n)
	case *ir.ForOfStmt:
		return p.forOfStmt(n)
	case *ir.WhileStmt:
		return p.whileStmt(n)
	case *ir.BreakStmt:
		if n.Label == "" {
			p.write("break;")
		} else {
			p.fmtf("break %s;", n.Label)
		}
		p.nl()
	case *ir.ContinueStmt:
		if n.Label == "" {
			p.write("continue;")
		} else {
			p.fmtf("continue %s;", n.Label)
		}
		p.nl()
	case *ir.LabeledStmt:
		p.fmtf("%s: ", n.Label)
		p.indent--
		if err := p.stmt(n.Body); err != nil {
			return err
		}
		p.indent++
	case *ir.ImportDecl:
		return p.importDecl(n)
	case *ir.ExportDecl:
		return p.exportDecl(n)
	case *ir.ClassDecl:
		return p.classDecl(n)
	default:
		return fmt.Errorf("emitter: unhandled statement type %T", s)
	}
	return nil
}

func (p *printer) varDecl(n *ir.VarDecl) error {
	if n.Init == nil {
		p.fmtf("%s %s;", n.Kind, n.Name)
		p.nl()
		return nil
	}
	p.fmtf("%s %s = ", n.Kind, n.Name)
	if err := p.expr(n.Init); err != nil {
		return err
	}
	p.write(";")
	p.nl()
	return nil
}

func (p *printer) ifStmt(n *ir.IfStmt) error {
	p.write("if (")
	if err := p.expr(n.Test); err != nil {
		return err
	}
	p.write(") ")
	if err := p.block(n.Cons); err != nil {
		return err
	}
	if n.Alt != nil {
		p.write(" else ")
		if err := p.block(n.Alt); err != nil {
			return err
		}
	}
	p.nl()
	return nil
}

func (p *printer) tryStmt(n *ir.TryStmt) error {
	p.write("try ")
	if err := p.block(n.Block); err != nil {
		return err
	}
	if n.CatchBody != nil {
		if n.CatchParam != "" {
			p.fmtf(" catch (%s) ", n.CatchParam)
		} else {
			p.write(" catch ")
		}
		if err := p.block(n.CatchBody); err != nil {
			return err
		}
	}
	if n.Finally != nil {
		p.write(" finally ")
		if err := p.block(n.Finally); err != nil {
			return err
		}
	}
	p.nl()
	return nil
}

func (p *printer) forOfStmt(n *ir.ForOfStmt) error {
	p.fmtf("for (%s %s of ", n.DeclKind, n.Name)
	if err := p.expr(n.Iterable); err != nil {
		return err
	}
	p.write(") ")
	if err := p.block(n.Body); err != nil {
		return err
	}
	p.nl()
	return nil
}

func (p *printer) whileStmt(n *ir.WhileStmt) error {
	p.write("while (")
	if err := p.expr(n.Test); err != nil {
		return err
	}
	p.write(") ")
	if err := p.block(n.Body); err != nil {
		return err
	}
	p.nl()
	return nil
}

func (p *printer) importDecl(n *ir.ImportDecl) error {
	if len(n.Specifiers) == 1 && n.Specifiers[0].Imported == "" {
		p.fmtf("import %s from %q;", n.Specifiers[0].Local, n.Source)
		p.nl()
		return nil
	}
	if len(n.Specifiers) == 1 && n.Specifiers[0].Imported == "*" {
		p.fmtf("import * as %s from %q;", n.Specifiers[0].Local, n.Source)
		p.nl()
		return nil
	}
	p.write("import { ")
	for i, spec := range n.Specifiers {
		if i > 0 {
			p.write(", ")
		}
		if spec.Local != "" && spec.Local != spec.Imported {
			p.fmtf("%s as %s", spec.Imported, spec.Local)
		} else {
			p.write(spec.Imported)
		}
	}
	p.fmtf(" } from %q;", n.Source)
	p.nl()
	return nil
}

func (p *printer) exportDecl(n *ir.ExportDecl) error {
	if n.Default {
		p.write("export default ")
		if err := p.expr(n.Value); err != nil {
			return err
		}
		p.write(";")
		p.nl()
		return nil
	}
	p.fmtf("export { %s };", n.Name)
	p.nl()
	return nil
}

func (p *printer) classDecl(n *ir.ClassDecl) error {
	p.fmtf("class %s", n.Name)
	if n.Extends != nil {
		p.write(" extends ")
		if err := p.expr(n.Extends); err != nil {
			return err
		}
	}
	p.write(" {")
	p.nl()
	p.indent++
	for _, m := range n.Members {
		if err := p.classMember(m); err != nil {
			return err
		}
	}
	p.indent--
	p.writeIndent()
	p.write("}")
	p.nl()
	return nil
}

func (p *printer) classMember(m ir.ClassMember) error {
	p.writeIndent()
	if m.IsStatic {
		p.write("static ")
	}
	name := m.Name
	if m.Kind == "constructor" {
		name = "constructor"
	}
	p.fmtf("%s(%s) ", name, paramList(m.Params, m.Rest))
	if err := p.block(m.Body); err != nil {
		return err
	}
	p.nl()
	return nil
}

func paramList(params []ir.Pattern, rest string) string {
	out := ""
	for i, pr := range params {
		if i > 0 {
			out += ", "
		}
		out += pr.Name
	}
	if rest != "" {
		if len(params) > 0 {
			out += ", "
		}
		out += "..." + rest
	}
	return out
}
