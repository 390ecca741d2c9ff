package position_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walteh/liquidscope/pkg/position"
)

func TestLineIndexPlaceOf(t *testing.T) {
	src := []byte("Hello\nWorld\nTest zzz")
	idx := position.NewLineIndex(src)

	tests := []struct {
		name   string
		offset int
		want   position.Place
	}{
		{name: "start", offset: 0, want: position.Place{Line: 0, Character: 0}},
		{name: "first line", offset: 3, want: position.Place{Line: 0, Character: 3}},
		{name: "newline belongs to its line", offset: 5, want: position.Place{Line: 0, Character: 5}},
		{name: "second line", offset: 8, want: position.Place{Line: 1, Character: 2}},
		{name: "third line", offset: 14, want: position.Place{Line: 2, Character: 2}},
		{name: "past the end clamps", offset: 500, want: position.Place{Line: 2, Character: 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.PlaceOf(tt.offset)
			assert.Equal(t, tt.want, got)
			if tt.offset <= len(src) {
				assert.Equal(t, tt.offset, idx.OffsetOf(got))
			}
		})
	}
}

func TestLineIndexLineCount(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{name: "empty", src: "", want: 0},
		{name: "single line", src: "abc", want: 1},
		{name: "trailing newline", src: "a\nb\n", want: 2},
		{name: "no trailing newline", src: "a\nb", want: 2},
		{name: "blank lines", src: "\n\n", want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, position.NewLineIndex([]byte(tt.src)).LineCount())
		})
	}
}

func TestOffsetOfClampsColumns(t *testing.T) {
	idx := position.NewLineIndex([]byte("ab\ncdef"))
	assert.Equal(t, 2, idx.OffsetOf(position.Place{Line: 0, Character: 99}))
	assert.Equal(t, 7, idx.OffsetOf(position.Place{Line: 1, Character: 99}))
	assert.Equal(t, 3, idx.OffsetOf(position.Place{Line: 1, Character: -1}))
	assert.Equal(t, 7, idx.OffsetOf(position.Place{Line: 9}))
}

func TestRangeContains(t *testing.T) {
	r := position.Range{
		Start: position.Place{Line: 1, Character: 4},
		End:   position.Place{Line: 1, Character: 9},
	}

	assert.True(t, r.Contains(position.Place{Line: 1, Character: 4}))
	assert.True(t, r.Contains(position.Place{Line: 1, Character: 9}))
	assert.False(t, r.Contains(position.Place{Line: 1, Character: 10}))
	assert.False(t, r.Contains(position.Place{Line: 0, Character: 5}))
}

func TestGraphemeColumns(t *testing.T) {
	line := []byte("é = \"ünï\"")

	assert.Equal(t, 0, position.ByteColumn(line, 0))
	assert.Equal(t, 2, position.ByteColumn(line, 1))
	assert.Equal(t, len(line), position.ByteColumn(line, 100))

	assert.Equal(t, 1, position.CharacterColumn(line, 2))
	assert.Equal(t, 4, position.CharacterColumn(line, 5))
}

func TestRawPositionGetRange(t *testing.T) {
	src := []byte("{% assign x = 1 %}\n{{ x }}")
	idx := position.NewLineIndex(src)

	pos := position.RawPosition{Offset: 22, Text: "x"}
	assert.Equal(t, position.Range{
		Start: position.Place{Line: 1, Character: 3},
		End:   position.Place{Line: 1, Character: 4},
	}, pos.GetRange(idx))
	assert.Equal(t, 1, pos.Length())
}

func TestLineIndexColumnConversion(t *testing.T) {
	src := []byte("{% assign x = 1 %}\n{{ \"€\" }} {{ x }}")
	idx := position.NewLineIndex(src)

	// x is character 13 but byte 15 on the second line
	assert.Equal(t, position.Place{Line: 1, Character: 15}, idx.BytePlace(src, position.Place{Line: 1, Character: 13}))
	assert.Equal(t, position.Place{Line: 0, Character: 10}, idx.BytePlace(src, position.Place{Line: 0, Character: 10}))

	got := idx.CharacterRange(src, position.Range{
		Start: position.Place{Line: 1, Character: 15},
		End:   position.Place{Line: 1, Character: 16},
	})
	assert.Equal(t, position.Range{
		Start: position.Place{Line: 1, Character: 13},
		End:   position.Place{Line: 1, Character: 14},
	}, got)
}
