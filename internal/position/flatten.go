package position

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Lines splits text into lines without their terminators. A trailing "\r" is
// stripped and the empty line after a final newline is not reported.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Flatten collapses a multi-line document onto a single line and remaps the
// cursor onto it. Lines are joined with one space and the result is newline
// terminated; the new cursor column is the byte offset of the old cursor in the
// joined text. Single-line documents come back untouched, so callers can
// compare the result with the input to detect the no-op case.
func Flatten(text string, cursor sitter.Point) (string, sitter.Point) {
	lines := Lines(text)
	if len(lines) <= 1 {
		return text, cursor
	}

	column := cursor.Column
	for i := 0; i < int(cursor.Row) && i < len(lines); i++ {
		column += uint32(len(lines[i])) + 1 // +1 for the joining space
	}

	return strings.Join(lines, " ") + "\n", sitter.Point{Row: 0, Column: column}
}
