package position

import (
	"strings"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
)

func pt(row, col uint32) sitter.Point {
	return sitter.Point{Row: row, Column: col}
}

func TestContains_SingleLineSpan(t *testing.T) {
	start, end := pt(0, 14), pt(0, 20)

	for col := start.Column; col <= end.Column; col++ {
		assert.True(t, Contains(pt(0, col), start, end), "col %d", col)
	}

	// The start-line and end-line rules make every column of the span's own
	// line count as contained.
	assert.True(t, Contains(pt(0, start.Column-1), start, end))
	assert.True(t, Contains(pt(0, end.Column+1), start, end))

	assert.False(t, Contains(pt(1, 15), start, end))
}

func TestContains_OtherLines(t *testing.T) {
	start, end := pt(2, 4), pt(2, 9)
	assert.False(t, Contains(pt(1, 4), start, end))
	assert.False(t, Contains(pt(3, 4), start, end))
	assert.False(t, Contains(pt(1, 0), pt(2, 0), pt(5, 0)))
}

func TestContains_MultiLineSpan(t *testing.T) {
	start, end := pt(1, 10), pt(4, 3)

	assert.True(t, Contains(pt(2, 0), start, end), "strictly inside rows")
	assert.True(t, Contains(pt(3, 99), start, end), "strictly inside rows, any column")
	assert.True(t, Contains(pt(1, 10), start, end), "start line at start column")
	assert.True(t, Contains(pt(1, 50), start, end), "start line after start column")
	assert.False(t, Contains(pt(1, 9), start, end), "start line before start column")
	assert.True(t, Contains(pt(4, 0), start, end), "end line before end column")
	assert.True(t, Contains(pt(4, 3), start, end), "end line at end column")
	assert.False(t, Contains(pt(4, 4), start, end), "end line after end column")
	assert.False(t, Contains(pt(0, 12), start, end))
	assert.False(t, Contains(pt(5, 0), start, end))
}

func TestEnvelops(t *testing.T) {
	start, end := pt(0, 21), pt(0, 26)

	assert.True(t, Envelops(pt(0, 21), start, end))
	assert.True(t, Envelops(pt(0, 23), start, end))
	assert.True(t, Envelops(pt(0, 26), start, end))
	assert.False(t, Envelops(pt(0, 20), start, end))
	assert.False(t, Envelops(pt(0, 27), start, end))
	assert.False(t, Envelops(pt(1, 23), start, end))

	// Multi-line spans never envelop, even where Contains would accept.
	assert.False(t, Envelops(pt(0, 5), pt(0, 0), pt(1, 2)))
	assert.True(t, Contains(pt(0, 5), pt(0, 0), pt(1, 2)))
}

func TestBeforeAfter(t *testing.T) {
	p := pt(3, 7)

	tests := []struct {
		name   string
		cursor sitter.Point
		before bool
		after  bool
	}{
		{"earlier row", pt(2, 50), true, false},
		{"same row earlier column", pt(3, 6), true, false},
		{"same point", pt(3, 7), false, false},
		{"same row later column", pt(3, 8), false, true},
		{"later row", pt(4, 0), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.before, Before(tt.cursor, p))
			assert.Equal(t, tt.after, After(tt.cursor, p))
		})
	}
}

func TestLines(t *testing.T) {
	assert.Nil(t, Lines(""))
	assert.Equal(t, []string{"SELECT *"}, Lines("SELECT *"))
	assert.Equal(t, []string{"SELECT *"}, Lines("SELECT *\n"))
	assert.Equal(t, []string{"SELECT *", "FROM x"}, Lines("SELECT *\r\nFROM x\r\n"))
	assert.Equal(t, []string{"a", "", "b"}, Lines("a\n\nb"))
}

func TestFlatten_SingleLineIsIdentity(t *testing.T) {
	text := "SELECT * FROM person "
	flat, cur := Flatten(text, pt(0, 21))
	assert.Equal(t, text, flat)
	assert.Equal(t, pt(0, 21), cur)

	flat, cur = Flatten("SELECT\n", pt(0, 3))
	assert.Equal(t, "SELECT\n", flat)
	assert.Equal(t, pt(0, 3), cur)
}

func TestFlatten_RemapsToTrueOffset(t *testing.T) {
	text := "SELECT *\nFROM person\nWHERE age > 3"
	tests := []struct {
		cursor sitter.Point
		marker string
	}{
		{pt(0, 0), "SELECT"},
		{pt(0, 7), "*"},
		{pt(1, 0), "FROM"},
		{pt(1, 5), "person"},
		{pt(2, 0), "WHERE"},
		{pt(2, 10), ">"},
	}

	for _, tt := range tests {
		flat, cur := Flatten(text, tt.cursor)
		assert.Equal(t, "SELECT * FROM person WHERE age > 3\n", flat)
		assert.Equal(t, uint32(0), cur.Row)
		assert.True(t, strings.HasPrefix(flat[cur.Column:], tt.marker),
			"cursor %v mapped to %d (%q)", tt.cursor, cur.Column, flat[cur.Column:])
	}
}

func TestFlatten_CursorPastLastLine(t *testing.T) {
	flat, cur := Flatten("SELECT *\nFROM x\n", pt(2, 0))
	assert.Equal(t, "SELECT * FROM x\n", flat)
	assert.Equal(t, pt(0, 16), cur)
}
