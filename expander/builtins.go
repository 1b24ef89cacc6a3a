package expander

import "github.com/hqllang/hql/env"

// RegisterBuiltins installs every built-in macro (§6 of the macro set) into
// frame, which should be the root frame of a fresh compile. Call once before
// Expand.
func RegisterBuiltins(frame *env.Frame) error {
	registerNativeMacros(frame)
	return registerSourceMacros(frame)
}
