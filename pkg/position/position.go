package position

import (
	"fmt"
	"sort"
)

// Place is a zero-based row/column location. Parsed trees use byte columns;
// editors and the CLI speak in characters (see LineIndex.BytePlace).
type Place struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

func (p Place) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

// Compare returns -1, 0 or 1 depending on whether p is before, equal to or after o.
func (p Place) Compare(o Place) int {
	switch {
	case p.Line < o.Line:
		return -1
	case p.Line > o.Line:
		return 1
	case p.Character < o.Character:
		return -1
	case p.Character > o.Character:
		return 1
	}
	return 0
}

func (p Place) Before(o Place) bool {
	return p.Compare(o) < 0
}

type Range struct {
	Start Place `json:"start"`
	End   Place `json:"end"`
}

// Contains reports whether p falls inside the range, end inclusive so a cursor
// sitting right after the last character still hits the node.
func (r Range) Contains(p Place) bool {
	return r.Start.Compare(p) <= 0 && p.Compare(r.End) <= 0
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}

// RawPosition represents a position in the source text
type RawPosition struct {
	// Offset is the byte offset in the source text
	Offset int
	// Text is the actual text at this position
	Text string
}

func (p RawPosition) Length() int {
	return len(p.Text)
}

// GetRange calculates the row/column range covered by the position.
func (p RawPosition) GetRange(idx *LineIndex) Range {
	return Range{
		Start: idx.PlaceOf(p.Offset),
		End:   idx.PlaceOf(p.Offset + p.Length()),
	}
}

// LineIndex maps byte offsets to places and back.
type LineIndex struct {
	starts []int
	size   int
}

func NewLineIndex(src []byte) *LineIndex {
	starts := []int{0}
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{starts: starts, size: len(src)}
}

// PlaceOf converts a byte offset to a place. Offsets past the end clamp to the end.
func (me *LineIndex) PlaceOf(offset int) Place {
	if offset < 0 {
		offset = 0
	}
	if offset > me.size {
		offset = me.size
	}
	line := sort.Search(len(me.starts), func(i int) bool { return me.starts[i] > offset }) - 1
	return Place{Line: line, Character: offset - me.starts[line]}
}

// OffsetOf converts a place to a byte offset, clamping columns to the line length.
func (me *LineIndex) OffsetOf(p Place) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= len(me.starts) {
		return me.size
	}
	end := me.size
	if p.Line+1 < len(me.starts) {
		end = me.starts[p.Line+1] - 1
	}
	if p.Character < 0 {
		return me.starts[p.Line]
	}
	if p.Character > end-me.starts[p.Line] {
		return end
	}
	return me.starts[p.Line] + p.Character
}

// LineCount is the number of lines, not counting the empty remainder after a
// trailing newline.
func (me *LineIndex) LineCount() int {
	if me.size == 0 {
		return 0
	}
	if me.starts[len(me.starts)-1] == me.size {
		return len(me.starts) - 1
	}
	return len(me.starts)
}

// Line returns the bytes of a line without its newline.
func (me *LineIndex) Line(src []byte, line int) []byte {
	if line < 0 || line >= len(me.starts) {
		return nil
	}
	end := me.size
	if line+1 < len(me.starts) {
		end = me.starts[line+1] - 1
	}
	return src[me.starts[line]:end]
}
