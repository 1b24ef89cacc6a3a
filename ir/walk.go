package ir

// Visit is called once per node during Walk; returning false prunes that
// node's children (Walk itself never stops early — callers track their own
// "found it" state and ignore further calls, the same pattern the IIFE
// trampoline forgoes an early-exit signal for).
type Visit func(n Node) bool

// Walk visits every node reachable from prog, depth-first, in the order
// each node's fields are declared. It exists for small whole-program
// queries (e.g. "does this program use a computed member access anywhere")
// that don't warrant their own bespoke switch over the closed node set.
func Walk(prog *Program, visit Visit) {
	if prog == nil {
		return
	}
	walkStmts(prog.Body, visit)
}

func walkStmts(body []Stmt, visit Visit) {
	for _, s := range body {
		walkStmt(s, visit)
	}
}

func walkStmt(s Stmt, visit Visit) {
	if s == nil || !visit(s) {
		return
	}
	switch n := s.(type) {
	case *VarDecl:
		walkExpr(n.Init, visit)
	case *ExprStmt:
		walkExpr(n.X, visit)
	case *ReturnStmt:
		walkExpr(n.Value, visit)
	case *ThrowStmt:
		walkExpr(n.Value, visit)
	case *BlockStmt:
		walkStmts(n.Body, visit)
	case *IfStmt:
		walkExpr(n.Test, visit)
		walkStmts(n.Cons, visit)
		walkStmts(n.Alt, visit)
	case *TryStmt:
		walkStmts(n.Block, visit)
		walkStmts(n.CatchBody, visit)
		walkStmts(n.Finally, visit)
	case *ForOfStmt:
		walkExpr(n.Iterable, visit)
		walkStmts(n.Body, visit)
	case *WhileStmt:
		walkExpr(n.Test, visit)
		walkStmts(n.Body, visit)
	case *LabeledStmt:
		walkStmt(n.Body, visit)
	case *ExportDecl:
		walkExpr(n.Value, visit)
	case *ClassDecl:
		walkExpr(n.Extends, visit)
		for _, m := range n.Members {
			walkStmts(m.Body, visit)
		}
	case *BreakStmt, *ContinueStmt, *ImportDecl:
		// no child nodes
	}
}

func walkExpr(e Expr, visit Visit) {
	if e == nil || !visit(e) {
		return
	}
	switch n := e.(type) {
	case *TemplateLiteral:
		for _, x := range n.Exprs {
			walkExpr(x, visit)
		}
	case *FunctionExpr:
		walkStmts(n.Body, visit)
	case *CallExpr:
		walkExpr(n.Callee, visit)
		for _, a := range n.Args {
			walkExpr(a, visit)
		}
	case *NewExpr:
		walkExpr(n.Callee, visit)
		for _, a := range n.Args {
			walkExpr(a, visit)
		}
	case *MemberExpr:
		walkExpr(n.Object, visit)
		walkExpr(n.PropExpr, visit)
	case *BinaryExpr:
		walkExpr(n.Left, visit)
		walkExpr(n.Right, visit)
	case *LogicalExpr:
		walkExpr(n.Left, visit)
		walkExpr(n.Right, visit)
	case *UnaryExpr:
		walkExpr(n.Arg, visit)
	case *AssignExpr:
		walkExpr(n.Target, visit)
		walkExpr(n.Value, visit)
	case *ConditionalExpr:
		walkExpr(n.Test, visit)
		walkExpr(n.Cons, visit)
		walkExpr(n.Alt, visit)
	case *ArrayLit:
		for _, el := range n.Elements {
			walkExpr(el, visit)
		}
	case *ObjectLit:
		for _, prop := range n.Props {
			walkExpr(prop.KeyExpr, visit)
			walkExpr(prop.Value, visit)
		}
	case *AwaitExpr:
		walkExpr(n.Arg, visit)
	case *Identifier, *Literal:
		// no child nodes
	}
}
