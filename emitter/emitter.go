// Package emitter renders IR to JavaScript text, recording a V3 source map
// alongside it. Modeled on the teacher's pkg/printer (a recursive Print over
// a closed node set, configured through an Options value) generalised to a
// second, simultaneous output: the mapping builder.
package emitter

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/hqllang/hql/herrors"
	"github.com/hqllang/hql/ir"
	"github.com/hqllang/hql/sourcemap"
)

// SourceMapMode selects how (or whether) the source map is attached to the
// emitted JavaScript text.
type SourceMapMode string

const (
	MapInline   SourceMapMode = "inline"
	MapExternal SourceMapMode = "external"
	MapNone     SourceMapMode = "none"
)

// Options configures one Emit call.
type Options struct {
	IndentWidth int // spaces per nesting level, default 2
	SourceMap   SourceMapMode
	OutFile     string // used for the map's "file" field and the external .map comment
	SourceFile  string // HQL source file identifier, recorded in the map's sources list
	SourceText  string // embedded as sourcesContent when non-empty
}

// Result is what one Emit call produces.
type Result struct {
	JS      string
	Map     string // V3 JSON text; empty when Options.SourceMap == MapNone
	MapFile string // suggested sibling .map file name, set when SourceMap == MapExternal
}

type printer struct {
	opts    Options
	sb      strings.Builder
	mb      *sourcemap.Builder
	source  int
	genLine int
	genCol  int
	indent  int
}

// Emit renders prog to JavaScript, returning the text and (depending on
// Options.SourceMap) its source map.
func Emit(prog *ir.Program, opts Options) (*Result, error) {
	if opts.IndentWidth == 0 {
		opts.IndentWidth = 2
	}
	mb := sourcemap.NewBuilder()
	p := &printer{opts: opts, mb: mb, source: mb.AddSource(opts.SourceFile, opts.SourceText)}
	for _, s := range prog.Body {
		if err := p.stmt(s); err != nil {
			return nil, err
		}
	}

	res := &Result{JS: p.sb.String()}
	if opts.SourceMap == MapNone {
		return res, nil
	}
	mapJSON, err := mb.Encode(opts.OutFile)
	if err != nil {
		return nil, err
	}
	switch opts.SourceMap {
	case MapInline:
		encoded := base64.StdEncoding.EncodeToString([]byte(mapJSON))
		res.JS += "\n//# sourceMappingURL=data:application/json;base64," + encoded + "\n"
	case MapExternal:
		name := opts.OutFile + ".map"
		res.JS += "\n//# sourceMappingURL=" + name + "\n"
		res.MapFile = name
	}
	res.Map = mapJSON
	return res, nil
}

// PrependHeader writes raw text (an import line, a runtime helper) ahead of
// everything already emitted, shifting every recorded mapping down by the
// number of lines the header adds — the "one `;` per prepended line"
// adjustment law.
// When the map is inlined, the data-URI comment is rewritten to match.
func (r *Result) PrependHeader(header string) {
	r.JS = header + r.JS
	n := strings.Count(header, "\n")
	if n == 0 || r.Map == "" {
		return
	}
	const key = `"mappings":"`
	shifted := strings.Replace(r.Map, key, key+strings.Repeat(";", n), 1)
	oldInline := base64.StdEncoding.EncodeToString([]byte(r.Map))
	r.JS = strings.Replace(r.JS, oldInline, base64.StdEncoding.EncodeToString([]byte(shifted)), 1)
	r.Map = shifted
}

func (p *printer) write(s string) {
	for _, line := range splitKeepEnd(s) {
		p.sb.WriteString(line)
		if strings.HasSuffix(line, "\n") {
			p.genLine++
			p.genCol = 0
		} else {
			p.genCol += len(line)
		}
	}
}

// splitKeepEnd splits s into lines, each retaining its trailing "\n" (the
// last line doesn't have one) so write() can track line/column as it goes.
func splitKeepEnd(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func (p *printer) mark(sp herrors.Span) {
	if sp.File == "" {
		return
	}
	p.mb.Add(p.genLine, p.genCol, p.source, sp.Start.Line, sp.Start.Column, -1)
}

func (p *printer) writeIndent() {
	p.write(strings.Repeat(" ", p.indent*p.opts.IndentWidth))
}

func (p *printer) nl() { p.write("\n") }

func (p *printer) fmtf(format string, args ...any) {
	p.write(fmt.Sprintf(format, args...))
}
