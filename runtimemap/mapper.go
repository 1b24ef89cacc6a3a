// Package runtimemap inverts a V3 source map at runtime: given a
// JavaScript-level stack frame position, it resolves the HQL-level
// position that produced it. This is the only component in the pipeline
// permitted to do I/O (loading `.map` files on demand).
package runtimemap

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hqllang/hql/sourcemap"
)

// Position is a JS- or HQL-level (file, line, column) triple. Column is
// 0-based. An HQL-level Line is 1-based, matching herrors' convention; a
// JS-level Line passed to Resolve is the source map's 0-based generated line.
type Position struct {
	File   string
	Line   int
	Column int
}

// loadedMap is one parsed source map plus its mappings sorted for lookup.
type loadedMap struct {
	decoded []sourcemap.Decoded
}

var inlineMapPattern = regexp.MustCompile(`//[#@]\s*sourceMappingURL=data:application/json(?:;charset=[^;]+)?;base64,([A-Za-z0-9+/=]+)`)
var externalMapPattern = regexp.MustCompile(`//[#@]\s*sourceMappingURL=(\S+)`)

// FS abstracts the filesystem the mapper reads from, so tests can substitute
// an in-memory one without touching disk.
type FS interface {
	ReadFile(name string) ([]byte, error)
}

// osFS adapts the real filesystem to FS.
type osFS struct{}

func (osFS) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

// Mapper resolves runtime JS positions back to HQL positions, caching
// parsed source maps by normalised absolute path.
type Mapper struct {
	fs    FS
	cache *lru.Cache[string, *loadedMap]
	mu    sync.Mutex
	// DenyList names files (by suffix match) whose frames are suppressed by
	// InstallStackHook unless Verbose is set — engine internals, compiler
	// internals, generated helper files.
	DenyList []string
	Verbose  bool
}

// New creates a Mapper with an LRU cache of the given size (0 selects a
// sensible default).
func New(cacheSize int) *Mapper {
	if cacheSize <= 0 {
		cacheSize = 64
	}
	c, _ := lru.New[string, *loadedMap](cacheSize)
	return &Mapper{fs: osFS{}, cache: c}
}

// Invalidate drops any cached map for jsFile, forcing the next Resolve to
// reload it from disk.
func (m *Mapper) Invalidate(jsFile string) {
	key := normalizePath(jsFile)
	m.cache.Remove(key)
}

// Resolve maps a JavaScript-level position back to its HQL origin. ok is
// false when no source map could be loaded or no mapping covers pos
// ("no mapping", per the contract).
func (m *Mapper) Resolve(pos Position) (hql Position, ok bool) {
	lm, err := m.load(pos.File)
	if err != nil || lm == nil {
		return Position{}, false
	}
	d, found := lookup(lm.decoded, pos.Line, pos.Column)
	if !found {
		return Position{}, false
	}
	resolved := Position{File: d.Source, Line: d.SrcLine, Column: d.SrcCol}

	// Chained compilation: if the resolved source file itself carries a
	// source map (e.g. a later bundler pass), resolve one more hop through
	// it using the line/column just obtained.
	if chained, err := m.load(resolved.File); err == nil && chained != nil {
		if d2, found2 := lookup(chained.decoded, resolved.Line, resolved.Column); found2 {
			return Position{File: d2.Source, Line: d2.SrcLine, Column: d2.SrcCol}, true
		}
	}
	return resolved, true
}

// lookup applies a greatest-lower-bound search first, falling back to a
// least-upper-bound search when nothing at or before the position exists
// (the case at emitter-inserted positions that precede every real mapping).
func lookup(decoded []sourcemap.Decoded, line, col int) (sourcemap.Decoded, bool) {
	less := func(i int) bool {
		d := decoded[i]
		return d.GenLine > line || (d.GenLine == line && d.GenCol > col)
	}
	idx := sort.Search(len(decoded), less)
	if idx > 0 {
		return decoded[idx-1], true
	}
	if len(decoded) > 0 {
		return decoded[0], true
	}
	return sourcemap.Decoded{}, false
}

// load fetches the parsed, sorted map for jsFile, from cache or disk.
func (m *Mapper) load(jsFile string) (*loadedMap, error) {
	if jsFile == "" {
		return nil, fmt.Errorf("runtimemap: empty file")
	}
	key := normalizePath(jsFile)
	if lm, ok := m.cache.Get(key); ok {
		return lm, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if lm, ok := m.cache.Get(key); ok {
		return lm, nil
	}

	data, err := m.readMapFor(jsFile)
	if err != nil {
		return nil, err
	}
	decoded, err := sourcemap.Decode(data)
	if err != nil {
		return nil, err
	}
	sort.Slice(decoded, func(i, j int) bool {
		if decoded[i].GenLine != decoded[j].GenLine {
			return decoded[i].GenLine < decoded[j].GenLine
		}
		return decoded[i].GenCol < decoded[j].GenCol
	})
	lm := &loadedMap{decoded: decoded}
	m.cache.Add(key, lm)
	return lm, nil
}

// readMapFor tries an external `.map` file first — named by the emitted
// `sourceMappingURL` comment when present, else the `<jsFile>.map`
// convention — then falls back to scanning jsFile's own text for an inline
// base64 data URI.
func (m *Mapper) readMapFor(jsFile string) ([]byte, error) {
	js, err := m.fs.ReadFile(jsFile)
	if err != nil {
		return nil, err
	}

	if match := externalMapPattern.FindSubmatch(js); match != nil {
		name := string(match[1])
		if !strings.HasPrefix(name, "data:") {
			if data, err := m.fs.ReadFile(resolveSibling(jsFile, name)); err == nil {
				return data, nil
			}
		}
	}
	if data, err := m.fs.ReadFile(jsFile + ".map"); err == nil {
		return data, nil
	}
	if match := inlineMapPattern.FindSubmatch(js); match != nil {
		return base64.StdEncoding.DecodeString(string(match[1]))
	}
	return nil, fmt.Errorf("runtimemap: no source map found for %s", jsFile)
}

// resolveSibling resolves a (possibly relative) map file name against the
// directory of jsFile.
func resolveSibling(jsFile, name string) string {
	if strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return name
	}
	if idx := strings.LastIndexAny(jsFile, "/\\"); idx >= 0 {
		return jsFile[:idx+1] + name
	}
	return name
}

func normalizePath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return strings.TrimPrefix(strings.ReplaceAll(p, "\\", "/"), "./")
}
