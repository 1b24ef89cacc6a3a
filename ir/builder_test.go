package ir

import (
	"testing"

	"github.com/hqllang/hql/env"
	"github.com/hqllang/hql/expander"
	"github.com/hqllang/hql/reader"
)

func buildSource(t *testing.T, src string) *Program {
	t.Helper()
	forms, err := reader.ReadAllSource(src, "test.hql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	frame := env.NewRoot()
	if err := expander.RegisterBuiltins(frame); err != nil {
		t.Fatalf("register builtins: %v", err)
	}
	expanded, err := expander.New().Expand(forms, frame)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	prog, err := NewBuilder().Build(expanded)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return prog
}

func TestArithmeticOperatorsAvoidSanitizerCollision(t *testing.T) {
	prog := buildSource(t, `(+ 1 (* 2 3))`)
	if len(prog.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Body))
	}
	exprStmt, ok := prog.Body[0].(*ExprStmt)
	if !ok {
		t.Fatalf("expected ExprStmt, got %T", prog.Body[0])
	}
	bin, ok := exprStmt.X.(*BinaryExpr)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected top-level + BinaryExpr, got %#v", exprStmt.X)
	}
	rhs, ok := bin.Right.(*BinaryExpr)
	if !ok || rhs.Op != "*" {
		t.Fatalf("expected nested * BinaryExpr, got %#v", bin.Right)
	}
}

func TestDoInExpressionPositionBecomesIIFE(t *testing.T) {
	prog := buildSource(t, `(def x (do (print 1) 2))`)
	decl, ok := prog.Body[0].(*VarDecl)
	if !ok {
		t.Fatalf("expected VarDecl, got %T", prog.Body[0])
	}
	call, ok := decl.Init.(*CallExpr)
	if !ok {
		t.Fatalf("expected do to compile to an IIFE CallExpr, got %T", decl.Init)
	}
	fn, ok := call.Callee.(*FunctionExpr)
	if !ok || len(fn.Body) != 2 {
		t.Fatalf("expected a 2-statement function body in the IIFE, got %#v", call.Callee)
	}
	if _, ok := fn.Body[1].(*ReturnStmt); !ok {
		t.Fatalf("expected the do's last form to compile to a return, got %T", fn.Body[1])
	}
}

func TestIfStatementPositionStaysAStatement(t *testing.T) {
	prog := buildSource(t, `(if true (print 1) (print 2))`)
	if _, ok := prog.Body[0].(*IfStmt); !ok {
		t.Fatalf("expected a bare IfStmt at statement position, got %T", prog.Body[0])
	}
}

func TestVectorHashMapHashSetConstructors(t *testing.T) {
	prog := buildSource(t, `(def v [1 2 3])`)
	decl := prog.Body[0].(*VarDecl)
	if _, ok := decl.Init.(*ArrayLit); !ok {
		t.Fatalf("expected vector to compile to ArrayLit, got %T", decl.Init)
	}

	prog = buildSource(t, `(def m (hash-map "a" 1))`)
	decl = prog.Body[0].(*VarDecl)
	newExpr, ok := decl.Init.(*NewExpr)
	if !ok {
		t.Fatalf("expected hash-map to compile to NewExpr, got %T", decl.Init)
	}
	if id, ok := newExpr.Callee.(*Identifier); !ok || id.Name != "Map" {
		t.Fatalf("expected `new Map(...)`, got %#v", newExpr.Callee)
	}
}

func TestThreadingMacroCompilesThroughOperatorTable(t *testing.T) {
	prog := buildSource(t, `(def r (-> 5 inc (* 2)))`)
	decl := prog.Body[0].(*VarDecl)
	if _, ok := decl.Init.(*BinaryExpr); !ok {
		t.Fatalf("expected threaded arithmetic to compile to a BinaryExpr, got %T", decl.Init)
	}
}

func TestSanitizerCollisionIsCodeGenError(t *testing.T) {
	forms, err := reader.ReadAllSource(`(def a-b 1) (def a_b 2)`, "test.hql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	_, err = NewBuilder().Build(forms)
	if err == nil {
		t.Fatal("expected a sanitizer collision error for a-b/a_b, got nil")
	}
}

func TestRecurOutsideLoopIsCodeGenError(t *testing.T) {
	forms, err := reader.ReadAllSource(`(recur 1)`, "test.hql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	_, err = NewBuilder().Build(forms)
	if err == nil {
		t.Fatal("expected an error for recur outside a loop, got nil")
	}
}

func TestLoopRecurCompilesToWhileContinue(t *testing.T) {
	forms, err := reader.ReadAllSource(`(loop [i 0] (recur (+ i 1)))`, "test.hql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	prog, err := NewBuilder().Build(forms)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	block, ok := prog.Body[0].(*BlockStmt)
	if !ok || len(block.Body) != 2 {
		t.Fatalf("expected a 2-statement block (init decl + while), got %#v", prog.Body[0])
	}
	if _, ok := block.Body[0].(*VarDecl); !ok {
		t.Fatalf("expected the loop variable's declaration first, got %T", block.Body[0])
	}
	loop, ok := block.Body[1].(*WhileStmt)
	if !ok {
		t.Fatalf("expected a while(true) loop, got %T", block.Body[1])
	}
	recurBlock, ok := loop.Body[0].(*BlockStmt)
	if !ok {
		t.Fatalf("expected recur to compile to a reassignment block, got %T", loop.Body[0])
	}
	if _, ok := recurBlock.Body[len(recurBlock.Body)-1].(*ContinueStmt); !ok {
		t.Fatalf("expected recur's block to end in continue, got %T", recurBlock.Body[len(recurBlock.Body)-1])
	}
}

func TestImportFormsCompile(t *testing.T) {
	forms, err := reader.ReadAllSource(`(import fs from "fs")`, "test.hql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	prog, err := NewBuilder().Build(forms)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	imp, ok := prog.Body[0].(*ImportDecl)
	if !ok || imp.Source != "fs" || len(imp.Specifiers) != 1 {
		t.Fatalf("unexpected default import compilation: %#v", prog.Body[0])
	}

	forms, err = reader.ReadAllSource(`(import [readFile writeFile as wf] from "fs")`, "test.hql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	prog, err = NewBuilder().Build(forms)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	imp = prog.Body[0].(*ImportDecl)
	if len(imp.Specifiers) != 2 || imp.Specifiers[1].Local != "wf" || imp.Specifiers[1].Imported != "writeFile" {
		t.Fatalf("unexpected named-import compilation: %#v", imp.Specifiers)
	}
}

func TestExportDefaultAndNamed(t *testing.T) {
	forms, err := reader.ReadAllSource(`(export default 42)`, "test.hql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	prog, err := NewBuilder().Build(forms)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	exp, ok := prog.Body[0].(*ExportDecl)
	if !ok || !exp.Default {
		t.Fatalf("expected a default export, got %#v", prog.Body[0])
	}

	forms, err = reader.ReadAllSource(`(def a 1) (def b 2) (export [a b])`, "test.hql")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	prog, err = NewBuilder().Build(forms)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	block, ok := prog.Body[2].(*BlockStmt)
	if !ok || len(block.Body) != 2 {
		t.Fatalf("expected a 2-export block for named export, got %#v", prog.Body[2])
	}
}
