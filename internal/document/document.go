package document

import (
	"fmt"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

// Position is an LSP position: 0-based line and 0-based UTF-16 character.
type Position struct {
	Line      uint32
	Character uint32
}

// Range is an LSP range between two positions.
type Range struct {
	Start Position
	End   Position
}

// Change describes one content change. A nil Range means the Text is the full
// new content of the document.
type Change struct {
	Range *Range
	Text  string
}

// Document is the single text buffer tracked by a session.
type Document struct {
	URI        string
	LanguageID string
	Version    int32

	text       string
	lineStarts []int // byte offset of the first byte of every line
}

// New creates a document holding text.
func New(uri, languageID string, version int32, text string) *Document {
	d := &Document{URI: uri, LanguageID: languageID, Version: version}
	d.setText(text)
	return d
}

// Text returns the current content.
func (d *Document) Text() string {
	return d.text
}

func (d *Document) setText(text string) {
	d.text = text
	d.lineStarts = d.lineStarts[:0]
	d.lineStarts = append(d.lineStarts, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			d.lineStarts = append(d.lineStarts, i+1)
		}
	}
}

// lineBounds returns the byte range of line, excluding its terminator.
func (d *Document) lineBounds(line int) (int, int) {
	start := d.lineStarts[line]
	end := len(d.text)
	if line+1 < len(d.lineStarts) {
		end = d.lineStarts[line+1] - 1 // drop '\n'
		if end > start && d.text[end-1] == '\r' {
			end--
		}
	}
	return start, end
}

// OffsetAt converts an LSP position to a byte offset. Characters past the end
// of a line clamp to the line end; lines past the end of the document clamp to
// the document length.
func (d *Document) OffsetAt(pos Position) int {
	line := int(pos.Line)
	if line >= len(d.lineStarts) {
		return len(d.text)
	}
	start, end := d.lineBounds(line)

	// Walk runes counting UTF-16 code units until we reach the requested character
	units := uint32(0)
	offset := start
	for offset < end && units < pos.Character {
		r, size := utf8.DecodeRuneInString(d.text[offset:end])
		width := uint32(1)
		if r > 0xFFFF {
			width = 2 // surrogate pair
		}
		if units+width > pos.Character {
			break // position falls inside a surrogate pair
		}
		units += width
		offset += size
	}
	return offset
}

// PositionAt converts a byte offset to an LSP position.
func (d *Document) PositionAt(offset int) Position {
	offset = d.clamp(offset)
	line := d.lineOf(offset)

	units := uint32(0)
	for i := d.lineStarts[line]; i < offset; {
		r, size := utf8.DecodeRuneInString(d.text[i:])
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		i += size
	}
	return Position{Line: uint32(line), Character: units}
}

// PointAt converts a byte offset to a tree-sitter point (byte column).
func (d *Document) PointAt(offset int) sitter.Point {
	offset = d.clamp(offset)
	line := d.lineOf(offset)
	return sitter.Point{Row: uint32(line), Column: uint32(offset - d.lineStarts[line])}
}

// PointFor converts an LSP position straight to a tree-sitter point.
func (d *Document) PointFor(pos Position) sitter.Point {
	return d.PointAt(d.OffsetAt(pos))
}

func (d *Document) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(d.text) {
		return len(d.text)
	}
	return offset
}

// lineOf finds the line containing offset with a binary search over lineStarts.
func (d *Document) lineOf(offset int) int {
	lo, hi := 0, len(d.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if d.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// Apply applies one change. Range-less changes replace the whole content.
func (d *Document) Apply(change Change) error {
	if change.Range == nil {
		d.setText(change.Text)
		return nil
	}
	start := d.OffsetAt(change.Range.Start)
	end := d.OffsetAt(change.Range.End)
	if start > end {
		return fmt.Errorf("apply change: start offset %d after end offset %d", start, end)
	}
	d.setText(d.text[:start] + change.Text + d.text[end:])
	return nil
}
