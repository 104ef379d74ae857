package server

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/FrancescoCarrabino/sqlhopper/internal/document"
	"github.com/FrancescoCarrabino/sqlhopper/internal/session"
)

func toPosition(p protocol.Position) document.Position {
	return document.Position{Line: p.Line, Character: p.Character}
}

func toRange(r *protocol.Range) *document.Range {
	if r == nil {
		return nil
	}
	return &document.Range{Start: toPosition(r.Start), End: toPosition(r.End)}
}

// toChanges converts didChange content changes. Whole-document events carry
// no range, which the session reports as a bad edit before applying them.
func toChanges(events []any) []document.Change {
	changes := make([]document.Change, 0, len(events))
	for _, ev := range events {
		switch e := ev.(type) {
		case protocol.TextDocumentContentChangeEvent:
			changes = append(changes, document.Change{Range: toRange(e.Range), Text: e.Text})
		case *protocol.TextDocumentContentChangeEvent:
			changes = append(changes, document.Change{Range: toRange(e.Range), Text: e.Text})
		case protocol.TextDocumentContentChangeEventWhole:
			changes = append(changes, document.Change{Text: e.Text})
		case *protocol.TextDocumentContentChangeEventWhole:
			changes = append(changes, document.Change{Text: e.Text})
		}
	}
	return changes
}

func toCompletionList(opts []session.Option) protocol.CompletionList {
	kind := protocol.CompletionItemKindKeyword
	items := make([]protocol.CompletionItem, 0, len(opts))
	for _, o := range opts {
		item := protocol.CompletionItem{Label: o.Label, Kind: &kind}
		if o.Documentation != "" {
			item.Documentation = protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: o.Documentation,
			}
		}
		items = append(items, item)
	}
	return protocol.CompletionList{IsIncomplete: true, Items: items}
}
