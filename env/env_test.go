package env

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupWalksOutwardThroughParents(t *testing.T) {
	root := NewRoot()
	root.DefineGlobal("x", Entry{Kind: EntryShadow})
	child := root.Push()
	grandchild := child.Push()

	_, ok := grandchild.Lookup("x")
	require.True(t, ok, "expected x to resolve through two enclosing frames")

	_, ok = grandchild.Lookup("nope")
	require.False(t, ok, "expected an unbound name to fail to resolve")
}

func TestDefineLocalShadowsOuterBinding(t *testing.T) {
	root := NewRoot()
	root.DefineLocal("x", Entry{Kind: EntryShadow})
	child := root.Push()
	child.DefineLocal("x", Entry{Kind: EntryMacro, Macro: &MacroDef{}})

	e, ok := child.Lookup("x")
	require.True(t, ok)
	require.Equal(t, EntryMacro, e.Kind, "expected the inner binding to shadow the outer one")

	outer, ok := root.Lookup("x")
	require.True(t, ok)
	require.Equal(t, EntryShadow, outer.Kind, "expected the outer frame's own binding to be untouched")
}

func TestDefineGlobalReachesRootFromAnyDepth(t *testing.T) {
	root := NewRoot()
	child := root.Push().Push()
	child.DefineGlobal("g", Entry{Kind: EntryShadow})

	_, ok := root.Lookup("g")
	require.True(t, ok, "expected DefineGlobal from a nested frame to bind in the root")
}

func TestIsMacroAndIsSpecial(t *testing.T) {
	root := NewRoot()
	root.DefineGlobal("mymacro", Entry{Kind: EntryMacro, Macro: &MacroDef{}})
	root.DefineGlobal("if", Entry{Kind: EntrySpecial})
	root.DefineGlobal("plain", Entry{Kind: EntryShadow})

	_, ok := root.IsMacro("mymacro")
	require.True(t, ok, "expected mymacro to be recognised as a macro")

	_, ok = root.IsMacro("plain")
	require.False(t, ok, "expected a non-macro binding to not be recognised as a macro")

	require.True(t, root.IsSpecial("if"))
	require.False(t, root.IsSpecial("mymacro"), "expected a macro binding to not be recognised as special")
}

func TestParentReturnsNilAtRoot(t *testing.T) {
	root := NewRoot()
	require.Nil(t, root.Parent())
	require.Same(t, root, root.Push().Parent(), "expected Push to link back to its caller")
}
