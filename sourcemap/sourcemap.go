package sourcemap

import (
	"encoding/json"
	"strings"
)

// Mapping is one generated-position -> original-position association.
// GenLine/GenCol are 0-based, matching the V3 spec; SrcLine/SrcCol are the
// herrors convention (1-based line, 0-based column) and are translated to
// the V3 0-based scheme at encode time.
type Mapping struct {
	GenLine int
	GenCol  int
	Source  int // index into Builder.sources
	SrcLine int // 1-based
	SrcCol  int // 0-based
	Name    int // index into Builder.names, or -1 for no name
}

// Builder accumulates mappings for one output file and renders the V3
// `mappings` string plus the surrounding JSON envelope.
type Builder struct {
	sources        []string
	sourcesContent []string
	names          []string
	nameIndex      map[string]int
	sourceIndex    map[string]int
	mappings       []Mapping
}

func NewBuilder() *Builder {
	return &Builder{nameIndex: make(map[string]int), sourceIndex: make(map[string]int)}
}

// AddSource registers a source file (with its content, for an embedded
// sourcesContent entry) and returns its index, reusing an existing entry for
// a repeated file path.
func (b *Builder) AddSource(file, content string) int {
	if idx, ok := b.sourceIndex[file]; ok {
		return idx
	}
	idx := len(b.sources)
	b.sources = append(b.sources, file)
	b.sourcesContent = append(b.sourcesContent, content)
	b.sourceIndex[file] = idx
	return idx
}

// AddName registers an optional mapped identifier name and returns its
// index, reusing an existing entry for a repeated name.
func (b *Builder) AddName(name string) int {
	if idx, ok := b.nameIndex[name]; ok {
		return idx
	}
	idx := len(b.names)
	b.names = append(b.names, name)
	b.nameIndex[name] = idx
	return idx
}

// Add records one mapping; name < 0 means "no identifier name".
func (b *Builder) Add(genLine, genCol, source, srcLine, srcCol, name int) {
	b.mappings = append(b.mappings, Mapping{
		GenLine: genLine, GenCol: genCol, Source: source, SrcLine: srcLine, SrcCol: srcCol, Name: name,
	})
}

// PrependLines shifts every recorded mapping down by n generated lines, for
// header text (an import, a runtime helper) placed ahead of the mapped
// output before Encode, so prior mappings stay aligned with their original
// generated line. emitter.Result.PrependHeader applies the same shift to a
// map that has already been encoded.
func (b *Builder) PrependLines(n int) {
	for i := range b.mappings {
		b.mappings[i].GenLine += n
	}
}

// file is the JSON shape of a V3 source map.
type file struct {
	Version        int      `json:"version"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
	File           string   `json:"file,omitempty"`
}

// Encode renders the accumulated mappings into the V3 JSON text. outFile,
// when non-empty, is recorded as the map's "file" field.
func (b *Builder) Encode(outFile string) (string, error) {
	f := file{
		Version:        3,
		Sources:        orEmpty(b.sources),
		SourcesContent: b.sourcesContent,
		Names:          orEmpty(b.names),
		Mappings:       b.encodeMappings(),
		File:           outFile,
	}
	data, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// encodeMappings renders the segments grouped by generated line, each
// segment's five fields delta-encoded against the previous segment on the
// same line (field 1) or the previous mapping overall (fields 2-4), per the
// V3 spec.
func (b *Builder) encodeMappings() string {
	if len(b.mappings) == 0 {
		return ""
	}
	var sb strings.Builder
	prevGenCol, prevSource, prevSrcLine, prevSrcCol, prevName := 0, 0, 0, 0, 0
	line := 0
	firstOnLine := true
	for _, m := range b.mappings {
		for line < m.GenLine {
			sb.WriteByte(';')
			line++
			prevGenCol = 0
			firstOnLine = true
		}
		if !firstOnLine {
			sb.WriteByte(',')
		}
		firstOnLine = false

		encodeVLQ(&sb, m.GenCol-prevGenCol)
		prevGenCol = m.GenCol

		encodeVLQ(&sb, m.Source-prevSource)
		prevSource = m.Source

		encodeVLQ(&sb, (m.SrcLine-1)-prevSrcLine)
		prevSrcLine = m.SrcLine - 1

		encodeVLQ(&sb, m.SrcCol-prevSrcCol)
		prevSrcCol = m.SrcCol

		if m.Name >= 0 {
			encodeVLQ(&sb, m.Name-prevName)
			prevName = m.Name
		}
	}
	return sb.String()
}

// Decoded is a fully-parsed, absolute-position mapping (no more deltas),
// sorted by generated position — the shape the runtime-error mapper binary
// searches over.
type Decoded struct {
	GenLine, GenCol int
	Source          string
	SrcLine, SrcCol int    // SrcLine 1-based
	Name            string // "" when unnamed
}

// Decode parses a V3 source map's JSON text into a sorted Decoded slice.
func Decode(data []byte) ([]Decoded, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	var out []Decoded
	line := 0
	genCol, source, srcLine, srcCol, name := 0, 0, 0, 0, 0
	for _, groupStr := range strings.Split(f.Mappings, ";") {
		if groupStr == "" {
			line++
			genCol = 0
			continue
		}
		for _, seg := range strings.Split(groupStr, ",") {
			if seg == "" {
				continue
			}
			pos := 0
			var dGenCol, dSource, dSrcLine, dSrcCol, dName int
			var ok bool
			dGenCol, pos, ok = decodeVLQSegment(seg, pos)
			if !ok {
				continue
			}
			genCol += dGenCol
			d := Decoded{GenLine: line, GenCol: genCol}
			if pos < len(seg) {
				dSource, pos, ok = decodeVLQSegment(seg, pos)
				if ok {
					source += dSource
					dSrcLine, pos, ok = decodeVLQSegment(seg, pos)
					if ok {
						srcLine += dSrcLine
						dSrcCol, pos, ok = decodeVLQSegment(seg, pos)
						if ok {
							srcCol += dSrcCol
						}
					}
				}
			}
			if source >= 0 && source < len(f.Sources) {
				d.Source = f.Sources[source]
			}
			d.SrcLine = srcLine + 1
			d.SrcCol = srcCol
			if pos < len(seg) {
				dName, _, ok = decodeVLQSegment(seg, pos)
				if ok {
					name += dName
					if name >= 0 && name < len(f.Names) {
						d.Name = f.Names[name]
					}
				}
			}
			out = append(out, d)
		}
		line++
		genCol = 0
	}
	return out, nil
}
