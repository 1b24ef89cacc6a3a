// Package classifier labels each List node in an AST by its head symbol,
// consulting the compile-time environment. Classification is a read-only,
// idempotent pass: it never mutates the environment or the AST.
package classifier

import (
	"github.com/hqllang/hql/ast"
	"github.com/hqllang/hql/env"
)

// Label is the classification result for a List node.
type Label int

const (
	// Special marks a kernel primitive — a form the expander must recurse
	// into without rewriting the head.
	Special Label = iota
	// Macro marks a reference to a user or built-in macro.
	Macro
	// Application marks an ordinary function call.
	Application
	// Constructor marks one of the reserved container-literal builders
	// introduced by ast.Normalize (vector, hash-map, hash-set).
	Constructor
)

// Kernel is the fixed set of irreducible forms the macro expander must
// never rewrite, per spec.md §4.3.
var Kernel = map[string]bool{
	"quote": true, "quasiquote": true, "unquote": true, "unquote-splice": true,
	"if": true, "do": true, "let": true, "var": true, "fn": true, "defn": true,
	"def": true, "set!": true, "new": true, "throw": true, "try": true,
	"loop": true, "recur": true, "for-of": true, "while": true, "break": true,
	"continue": true, "label": true, "js-get": true, "js-set": true, "js-call": true,
	"import": true, "export": true, "class": true, "method": true,
	"constructor": true, "async": true, "await": true,
}

var constructors = map[string]bool{
	ast.HeadVector: true, ast.HeadHashMap: true, ast.HeadHashSet: true,
}

// Classify labels a single List node. A non-List node, or a List with an
// empty-sequence head, is always Application (it carries no further
// recursion obligations for the expander).
func Classify(n ast.Node, e *env.Frame) Label {
	list, ok := n.(*ast.List)
	if !ok || len(list.Children) == 0 {
		return Application
	}
	head := list.HeadName()
	if head == "" {
		return Application
	}
	if Kernel[head] {
		return Special
	}
	if constructors[head] {
		return Constructor
	}
	if _, ok := e.IsMacro(head); ok {
		return Macro
	}
	return Application
}
