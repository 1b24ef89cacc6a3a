package expander

import (
	"fmt"

	"github.com/hqllang/hql/ast"
	"github.com/hqllang/hql/env"
	"github.com/hqllang/hql/reader"
)

// builtinSource holds the built-in macros expressible as plain HQL macro
// definitions, interpreted by the same tree-walking evaluator a user macro
// goes through (interp.go) — the expander treats them no differently.
const builtinSource = `
(macro not [x] ` + "`" + `(if ~x false true))
(macro when [test & body] ` + "`" + `(if ~test (do ~@body) nil))
(macro unless [test & body] ` + "`" + `(if ~test nil (do ~@body)))
(macro inc [x] ` + "`" + `(+ ~x 1))
(macro dec [x] ` + "`" + `(- ~x 1))
(macro nil? [x] ` + "`" + `(= ~x nil))
(macro isNil [x] ` + "`" + `(= ~x nil))
(macro isNull [x] ` + "`" + `(= ~x nil))
(macro empty? [x] ` + "`" + `(= (js-get ~x "length") 0))
(macro isUndefined [x] ` + "`" + `(= (typeof ~x) "undefined"))
(macro isDefined [x] ` + "`" + `(!== (typeof ~x) "undefined"))
(macro isString [x] ` + "`" + `(= (typeof ~x) "string"))
(macro isNumber [x] ` + "`" + `(= (typeof ~x) "number"))
(macro isBoolean [x] ` + "`" + `(= (typeof ~x) "boolean"))
(macro isFunction [x] ` + "`" + `(= (typeof ~x) "function"))
(macro isSymbol [x] ` + "`" + `(= (typeof ~x) "symbol"))
(macro isObject [x] ` + "`" + `(and (= (typeof ~x) "object") (not (= ~x nil))))
(macro print [& args] ` + "`" + `(js-call console "log" ~@args))
(macro method-call [obj name & args] ` + "`" + `(js-call ~obj ~name ~@args))
(macro str [& args] ` + "`" + `(js-call (vector ~@args) "join" ""))
`

func registerSourceMacros(frame *env.Frame) error {
	forms, err := reader.ReadAllSource(builtinSource, "<builtins>")
	if err != nil {
		return fmt.Errorf("expander: built-in macro source failed to parse: %w", err)
	}
	for _, f := range forms {
		list, ok := f.(*ast.List)
		if !ok || list.HeadName() != "macro" {
			continue
		}
		name, def, err := parseMacroDef(list)
		if err != nil {
			return fmt.Errorf("expander: built-in macro %s: %w", name, err)
		}
		frame.DefineGlobal(name, env.Entry{Kind: env.EntryMacro, Macro: def})
	}
	return nil
}
