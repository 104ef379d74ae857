package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/FrancescoCarrabino/sqlhopper/internal/document"
	"github.com/FrancescoCarrabino/sqlhopper/internal/session"
)

var (
	flagLine      uint32
	flagCharacter uint32
)

func addPositionFlags(cmd *cobra.Command) {
	cmd.Flags().Uint32Var(&flagLine, "line", 0, "zero-based line")
	cmd.Flags().Uint32Var(&flagCharacter, "character", 0, "zero-based UTF-16 character offset")
}

type hoverResult struct {
	Found    bool   `json:"found"`
	Keyword  string `json:"keyword,omitempty"`
	Markdown string `json:"markdown,omitempty"`
}

type completionItem struct {
	Label         string `json:"label"`
	Documentation string `json:"documentation,omitempty"`
}

type completionResult struct {
	Found bool             `json:"found"`
	Items []completionItem `json:"items"`
}

func newHoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hover <file>",
		Short: "Print documentation for the keyword at a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFile(args[0], func(ctx context.Context, s *session.Session, pos document.Position) error {
				h, ok, err := s.Hover(ctx, pos)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), hoverResult{Found: ok, Keyword: h.Keyword, Markdown: h.Markdown})
			})
		},
	}
	addPositionFlags(cmd)
	return cmd
}

func newCompleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete <file>",
		Short: "Print the completion options at a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFile(args[0], func(ctx context.Context, s *session.Session, pos document.Position) error {
				opts, ok, err := s.Completion(ctx, pos)
				if err != nil {
					return err
				}
				res := completionResult{Found: ok, Items: []completionItem{}}
				for _, o := range opts {
					res.Items = append(res.Items, completionItem{Label: o.Label, Documentation: o.Documentation})
				}
				return writeJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	addPositionFlags(cmd)
	return cmd
}

func newKeywordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keywords",
		Short: "List the documented keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.Close()
			for _, k := range rt.docs.Keywords() {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}

// withFile opens path in a fresh session and runs fn at the flagged position.
func withFile(path string, fn func(context.Context, *session.Session, document.Position) error) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := rt.session.Open(ctx, "file://"+filepath.ToSlash(abs), "sql", 1, string(text)); err != nil {
		return err
	}
	return fn(ctx, rt.session, document.Position{Line: flagLine, Character: flagCharacter})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
