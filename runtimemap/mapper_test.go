package runtimemap

import (
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/hqllang/hql/sourcemap"
)

// fakeFS serves file contents from an in-memory map, so tests never touch
// disk.
type fakeFS map[string][]byte

func (f fakeFS) ReadFile(name string) ([]byte, error) {
	data, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("fakeFS: no file %q", name)
	}
	return data, nil
}

func buildMap(t *testing.T) string {
	t.Helper()
	b := sourcemap.NewBuilder()
	src := b.AddSource("in.hql", "(let (x 10) (x.nope))")
	b.Add(0, 0, src, 1, 0, -1)
	b.Add(2, 4, src, 1, 13, -1)
	data, err := b.Encode("out.js")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return data
}

func newMapperWithFS(fs FS) *Mapper {
	m := New(8)
	m.fs = fs
	return m
}

func TestResolveExternalMap(t *testing.T) {
	mapData := buildMap(t)
	fs := fakeFS{
		"out.js":     []byte("function f() {}\n//# sourceMappingURL=out.js.map\n"),
		"out.js.map": []byte(mapData),
	}
	m := newMapperWithFS(fs)

	hql, ok := m.Resolve(Position{File: "out.js", Line: 2, Column: 4})
	if !ok {
		t.Fatal("expected a resolved mapping")
	}
	if hql.File != "in.hql" || hql.Line != 1 || hql.Column != 13 {
		t.Fatalf("unexpected resolved position: %#v", hql)
	}
}

func TestResolveInlineDataURI(t *testing.T) {
	mapData := buildMap(t)
	encoded := base64.StdEncoding.EncodeToString([]byte(mapData))
	fs := fakeFS{
		"out.js": []byte("function f() {}\n//# sourceMappingURL=data:application/json;base64," + encoded + "\n"),
	}
	m := newMapperWithFS(fs)

	hql, ok := m.Resolve(Position{File: "out.js", Line: 0, Column: 0})
	if !ok {
		t.Fatal("expected a resolved mapping")
	}
	if hql.File != "in.hql" || hql.Line != 1 {
		t.Fatalf("unexpected resolved position: %#v", hql)
	}
}

func TestResolveGreatestLowerBoundFallsBackToLeastUpperBound(t *testing.T) {
	b := sourcemap.NewBuilder()
	src := b.AddSource("in.hql", "")
	b.Add(1, 0, src, 5, 0, -1) // first mapping starts at generated line 1
	b.Add(3, 0, src, 9, 0, -1)
	mapData, err := b.Encode("out.js")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	fs := fakeFS{
		"out.js.map": []byte(mapData),
		"out.js":     []byte("x\n"),
	}
	m := newMapperWithFS(fs)

	// Position before the first recorded mapping (generated line 0): no
	// glb exists, so the lookup must fall back to the least-upper-bound.
	hql, ok := m.Resolve(Position{File: "out.js", Line: 0, Column: 0})
	if !ok {
		t.Fatal("expected a fallback resolution")
	}
	if hql.Line != 5 {
		t.Fatalf("expected fallback to the first mapping, got %#v", hql)
	}
}

func TestResolveUnmappedFileReturnsNotOK(t *testing.T) {
	m := newMapperWithFS(fakeFS{})
	_, ok := m.Resolve(Position{File: "missing.js", Line: 1, Column: 0})
	if ok {
		t.Fatal("expected no mapping for a file with no map")
	}
}

func TestInvalidateForcesReload(t *testing.T) {
	mapData := buildMap(t)
	fs := fakeFS{
		"out.js.map": []byte(mapData),
		"out.js":     []byte("x\n"),
	}
	m := newMapperWithFS(fs)

	if _, ok := m.Resolve(Position{File: "out.js", Line: 0, Column: 0}); !ok {
		t.Fatal("expected initial resolution to succeed")
	}
	m.Invalidate("out.js")
	delete(fs, "out.js.map")
	delete(fs, "out.js")
	if _, ok := m.Resolve(Position{File: "out.js", Line: 0, Column: 0}); ok {
		t.Fatal("expected resolution to fail after invalidation removed the backing files")
	}
}

func TestStackHookSuppressesDenylistedFramesUnlessVerbose(t *testing.T) {
	m := newMapperWithFS(fakeFS{})
	m.DenyList = []string{"internal/runtime"}
	hook := InstallStackHook(m)

	frames := []Frame{
		{FunctionName: "main", Position: Position{File: "out.js", Line: 1, Column: 0}},
		{FunctionName: "gc", Position: Position{File: "internal/runtime/engine.js", Line: 1, Column: 0}},
	}
	out := hook(frames)
	if len(out) != 1 || out[0].FunctionName != "main" {
		t.Fatalf("expected the denylisted frame suppressed, got %#v", out)
	}

	m.Verbose = true
	out = hook(frames)
	if len(out) != 2 {
		t.Fatalf("expected both frames under verbose, got %#v", out)
	}
}
