package position

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Contains reports whether the cursor falls inside, or loosely on the edge of,
// the span [start, end]. The test is deliberately permissive: a cursor anywhere
// after the start column on the start line, or anywhere before the end column
// on the end line, counts as contained. This keeps completion available while
// the user is typing through whitespace or half-written tokens.
func Contains(cursor, start, end sitter.Point) bool {
	// Span covers the cursor line entirely
	if start.Row < cursor.Row && end.Row > cursor.Row {
		return true
	}

	// Single-line span, check both columns
	if cursor.Row == start.Row && cursor.Row == end.Row &&
		start.Column <= cursor.Column && end.Column >= cursor.Column {
		return true
	}

	// Cursor on the start line at or after the start column
	if cursor.Row == start.Row && start.Column <= cursor.Column {
		return true
	}

	// Cursor on the end line at or before the end column
	if cursor.Row == end.Row && end.Column >= cursor.Column {
		return true
	}

	return false
}

// Envelops is the strict single-line version of Contains used for hover:
// the span must sit on the cursor line and include the cursor column.
func Envelops(cursor, start, end sitter.Point) bool {
	return start.Row == cursor.Row &&
		end.Row == cursor.Row &&
		start.Column <= cursor.Column &&
		end.Column >= cursor.Column
}

// Before reports whether the cursor is strictly before p.
func Before(cursor, p sitter.Point) bool {
	return cursor.Row < p.Row || (cursor.Row == p.Row && cursor.Column < p.Column)
}

// After reports whether the cursor is strictly after p.
func After(cursor, p sitter.Point) bool {
	return cursor.Row > p.Row || (cursor.Row == p.Row && cursor.Column > p.Column)
}
