package position

import (
	"bufio"
	"bytes"

	"github.com/apparentlymart/go-textseg/v13/textseg"
)

// ByteColumn converts a user-facing character column (grapheme clusters) on a
// line into a byte column. Columns past the end of the line clamp to its length.
func ByteColumn(line []byte, character int) int {
	if character <= 0 {
		return 0
	}
	sc := bufio.NewScanner(bytes.NewReader(line))
	sc.Buffer(make([]byte, 0, len(line)+1), len(line)+1)
	sc.Split(textseg.ScanGraphemeClusters)
	col, n := 0, 0
	for sc.Scan() {
		if n == character {
			return col
		}
		col += len(sc.Bytes())
		n++
	}
	return col
}

// CharacterColumn is the inverse of ByteColumn.
func CharacterColumn(line []byte, byteCol int) int {
	if byteCol <= 0 {
		return 0
	}
	if byteCol > len(line) {
		byteCol = len(line)
	}
	n, err := textseg.TokenCount(line[:byteCol], textseg.ScanGraphemeClusters)
	if err != nil {
		return byteCol
	}
	return n
}

// BytePlace converts a place with a character column into the byte column of
// the same line of src.
func (me *LineIndex) BytePlace(src []byte, p Place) Place {
	return Place{Line: p.Line, Character: ByteColumn(me.Line(src, p.Line), p.Character)}
}

// CharacterRange converts a byte column range of src into character columns.
func (me *LineIndex) CharacterRange(src []byte, r Range) Range {
	return Range{
		Start: Place{Line: r.Start.Line, Character: CharacterColumn(me.Line(src, r.Start.Line), r.Start.Character)},
		End:   Place{Line: r.End.Line, Character: CharacterColumn(me.Line(src, r.End.Line), r.End.Character)},
	}
}
