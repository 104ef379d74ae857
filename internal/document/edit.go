package document

import (
	"errors"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrInvalidEditRange is returned when a change has no range and therefore
// cannot be expressed as an incremental tree edit.
var ErrInvalidEditRange = errors.New("invalid edit range")

// TranslateEdit converts a content change into the edit tree-sitter expects
// before an incremental re-parse. doc must be the document as it was before the
// change is applied.
func TranslateEdit(change Change, doc *Document) (sitter.EditInput, error) {
	if change.Range == nil {
		return sitter.EditInput{}, fmt.Errorf("translate edit: %w", ErrInvalidEditRange)
	}

	startByte := doc.OffsetAt(change.Range.Start)
	oldEndByte := doc.OffsetAt(change.Range.End)
	if oldEndByte < startByte {
		return sitter.EditInput{}, fmt.Errorf("translate edit: end %d before start %d: %w", oldEndByte, startByte, ErrInvalidEditRange)
	}
	newEndByte := startByte + len(change.Text)

	startPoint := doc.PointAt(startByte)
	return sitter.EditInput{
		StartIndex:  uint32(startByte),
		OldEndIndex: uint32(oldEndByte),
		NewEndIndex: uint32(newEndByte),
		StartPoint:  startPoint,
		OldEndPoint: doc.PointAt(oldEndByte),
		NewEndPoint: advance(startPoint, change.Text),
	}, nil
}

// advance returns the point reached after inserting text at p.
func advance(p sitter.Point, text string) sitter.Point {
	nl := strings.Count(text, "\n")
	if nl == 0 {
		return sitter.Point{Row: p.Row, Column: p.Column + uint32(len(text))}
	}
	last := strings.LastIndexByte(text, '\n')
	return sitter.Point{Row: p.Row + uint32(nl), Column: uint32(len(text) - last - 1)}
}
