// Package compiler orchestrates the full pipeline: lexer (inside the
// reader) -> reader -> expander -> IR builder -> emitter. It is the single
// entry point spec.md §6 calls "the compilation entry point".
package compiler

import (
	"fmt"
	"os"

	"github.com/hqllang/hql/config"
	"github.com/hqllang/hql/emitter"
	"github.com/hqllang/hql/env"
	"github.com/hqllang/hql/expander"
	"github.com/hqllang/hql/herrors"
	"github.com/hqllang/hql/ir"
	"github.com/hqllang/hql/reader"
)

// Result is the compilation entry point's output: JavaScript text plus an
// optional map text (empty when Options.SourceMap is "none").
type Result struct {
	JS      string
	Map     string
	MapFile string // non-empty only when Options.SourceMap is "external"
}

// Compile runs source (from file) through the full pipeline under opts,
// returning JavaScript text and, depending on opts.SourceMap, a source map.
// Failures are always a *herrors.Error naming one of the seven error kinds.
func Compile(source, file string, opts config.Options) (*Result, error) {
	currentFile := opts.CurrentFile
	if currentFile == "" {
		currentFile = file
	}

	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "hql: reading %s\n", currentFile)
	}
	forms, err := reader.ReadAllSource(source, currentFile)
	if err != nil {
		return nil, err
	}

	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "hql: expanding macros in %s\n", currentFile)
	}
	frame := env.NewRoot()
	if err := expander.RegisterBuiltins(frame); err != nil {
		return nil, err
	}
	expanded, err := expander.New().Expand(forms, frame)
	if err != nil {
		return nil, err
	}

	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "hql: building IR for %s\n", currentFile)
	}
	prog, err := ir.NewBuilder().Build(expanded)
	if err != nil {
		return nil, err
	}

	if opts.Verbose {
		fmt.Fprintf(os.Stderr, "hql: emitting %s\n", currentFile)
	}
	outFile := opts.OutFile
	if outFile == "" {
		outFile = outFileFor(currentFile)
	}
	emitOpts := emitter.Options{
		SourceMap:  mapMode(opts.SourceMap),
		OutFile:    outFile,
		SourceFile: currentFile,
		SourceText: source,
	}
	res, err := emitter.Emit(prog, emitOpts)
	if err != nil {
		return nil, toCodeGenError(err, currentFile, source)
	}

	if opts.EmitHelperPrefix && usesDynamicAccessor(prog) {
		res.PrependHeader(helperPrelude)
	}

	return &Result{JS: res.JS, Map: res.Map, MapFile: res.MapFile}, nil
}

func mapMode(m config.SourceMapMode) emitter.SourceMapMode {
	switch m {
	case config.SourceMapExternal:
		return emitter.MapExternal
	case config.SourceMapNone:
		return emitter.MapNone
	default:
		return emitter.MapInline
	}
}

func outFileFor(hqlFile string) string {
	if hqlFile == "" {
		return "out.js"
	}
	for i := len(hqlFile) - 1; i >= 0; i-- {
		if hqlFile[i] == '.' {
			return hqlFile[:i] + ".js"
		}
		if hqlFile[i] == '/' {
			break
		}
	}
	return hqlFile + ".js"
}

// toCodeGenError wraps a non-herrors emitter failure (one the printer
// returns for an IR shape it doesn't recognise) into the compiler's shared
// error model, so every Compile failure is a *herrors.Error.
func toCodeGenError(err error, file, source string) error {
	if _, ok := err.(*herrors.Error); ok {
		return err
	}
	return herrors.New(herrors.KindCodeGen, herrors.Span{File: file}, source, "%s", err.Error())
}

// helperPrelude is prepended when dynamic property access is detected and
// EmitHelperPrefix is set: a minimal `get(obj, key)` accessor matching the
// shape spec.md's EmitHelperPrefix option describes, kept intentionally
// tiny since the runtime standard library itself is out of scope.
const helperPrelude = "function get(obj, key) { return obj == null ? undefined : obj[key]; }\n"

// usesDynamicAccessor reports whether prog contains a computed MemberExpr,
// the `js-get`/`[]`-style access the helper prelude exists for.
func usesDynamicAccessor(prog *ir.Program) bool {
	found := false
	ir.Walk(prog, func(n ir.Node) bool {
		if found {
			return false
		}
		if m, ok := n.(*ir.MemberExpr); ok && m.Computed {
			found = true
			return false
		}
		return true
	})
	return found
}
