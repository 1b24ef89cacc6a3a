package runtimemap

import (
	"fmt"
	"strings"
)

// Frame is one engine stack-trace entry, before or after mapping.
type Frame struct {
	FunctionName string
	Position
	Mapped bool // true once Resolve has rewritten Position in place
}

// StackHook rewrites engine stack frames through a Mapper, suppressing
// frames from denylisted files (engine internals, compiler internals,
// generated helper files) unless Verbose is set.
type StackHook struct {
	mapper *Mapper
}

// InstallStackHook wraps mapper as the function an engine's stack-trace
// preparer should call per frame. The returned function is the hook itself:
// call it with the raw frames an engine captured, get back the frames to
// render (denylisted ones dropped, resolvable ones rewritten to their HQL
// origin, unresolved ones passed through unchanged).
func InstallStackHook(mapper *Mapper) func(frames []Frame) []Frame {
	h := &StackHook{mapper: mapper}
	return h.Prepare
}

// Prepare is the per-trace entry point: apply denylist suppression, then
// resolve every surviving frame.
func (h *StackHook) Prepare(frames []Frame) []Frame {
	out := make([]Frame, 0, len(frames))
	for _, f := range frames {
		if h.suppressed(f) {
			continue
		}
		out = append(out, h.resolve(f))
	}
	return out
}

func (h *StackHook) suppressed(f Frame) bool {
	if h.mapper.Verbose {
		return false
	}
	for _, deny := range h.mapper.DenyList {
		if strings.Contains(f.File, deny) {
			return true
		}
	}
	return false
}

func (h *StackHook) resolve(f Frame) Frame {
	hql, ok := h.mapper.Resolve(f.Position)
	if !ok {
		return f
	}
	f.Position = hql
	f.Mapped = true
	return f
}

// FormatFrame renders one frame the way a stack trace line reads: the
// function name, then `(file:line:column)`, or the bare location when the
// frame has no function name. The text is the same whether or not the frame
// was mapped back to HQL source (see Frame.Mapped).
func FormatFrame(f Frame) string {
	loc := fmt.Sprintf("%s:%d:%d", f.File, f.Line, f.Column)
	if f.FunctionName == "" {
		return loc
	}
	return fmt.Sprintf("%s (%s)", f.FunctionName, loc)
}
