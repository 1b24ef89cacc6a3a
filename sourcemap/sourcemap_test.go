package sourcemap

import (
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b := NewBuilder()
	src := b.AddSource("in.hql", "(+ 1 2)")
	b.Add(0, 0, src, 1, 0, -1)
	b.Add(0, 4, src, 1, 3, -1)
	b.Add(1, 0, src, 2, 0, -1)

	data, err := b.Encode("out.js")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 3 {
		t.Fatalf("expected 3 decoded mappings, got %d", len(decoded))
	}
	if decoded[0].GenLine != 0 || decoded[0].GenCol != 0 || decoded[0].SrcLine != 1 || decoded[0].SrcCol != 0 {
		t.Fatalf("unexpected first mapping: %#v", decoded[0])
	}
	if decoded[2].GenLine != 1 || decoded[2].SrcLine != 2 {
		t.Fatalf("unexpected third mapping: %#v", decoded[2])
	}
	if decoded[0].Source != "in.hql" {
		t.Fatalf("expected source file in.hql, got %q", decoded[0].Source)
	}
}

func TestPrependLinesShiftsMappings(t *testing.T) {
	b := NewBuilder()
	src := b.AddSource("in.hql", "")
	b.Add(0, 0, src, 1, 0, -1)
	b.PrependLines(2)
	if b.mappings[0].GenLine != 2 {
		t.Fatalf("expected mapping shifted to line 2, got %d", b.mappings[0].GenLine)
	}
}

func TestVLQRoundTripNegativeAndLarge(t *testing.T) {
	for _, v := range []int{0, 1, -1, 31, -31, 32, -32, 123456, -123456} {
		var sb strings.Builder
		encodeVLQ(&sb, v)
		got, _, ok := decodeVLQSegment(sb.String(), 0)
		if !ok || got != v {
			t.Fatalf("round trip failed for %d: got %d ok=%v", v, got, ok)
		}
	}
}
