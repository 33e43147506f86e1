package cli

import (
	"fmt"
	"strconv"
	"strings"

	"musicalist/internal/format"
	"musicalist/internal/mutate"
	"musicalist/internal/publish"
	"musicalist/internal/tui"

	"github.com/spf13/cobra"
)

type itemOut struct {
	Position     int    `json:"position"`
	ID           uint64 `json:"id"`
	CatalogID    uint64 `json:"catalogId"`
	Name         string `json:"name"`
	ReferenceURL string `json:"referenceUrl,omitempty"`
	Viewed       bool   `json:"viewed"`
	Rating       int    `json:"rating"`
}

type listOut struct {
	Author   string    `json:"author"`
	Edit     bool      `json:"edit"`
	Token    string    `json:"token"`
	Location string    `json:"location"`
	Source   string    `json:"source"`
	Fallback bool      `json:"fallback,omitempty"`
	Items    []itemOut `json:"items"`
}

func newListOut(s *session) listOut {
	v := s.view
	cat := s.bridge.Catalog()
	out := listOut{
		Author:   v.State.Author,
		Edit:     v.Query.Edit,
		Token:    string(v.Token),
		Location: s.stack.Current(),
		Source:   string(v.Source),
		Fallback: v.Fallback,
		Items:    make([]itemOut, 0, len(v.State.Items)),
	}
	for i, it := range v.State.Items {
		out.Items = append(out.Items, itemOut{
			Position:     i,
			ID:           it.ID,
			CatalogID:    it.CatalogID,
			Name:         cat.Name(it.CatalogID),
			ReferenceURL: cat.ReferenceURL(it.CatalogID),
			Viewed:       it.Viewed,
			Rating:       it.Rating,
		})
	}
	return out
}

func writeList(cmd *cobra.Command, app *App, s *session, meta map[string]any) error {
	if meta == nil {
		meta = map[string]any{}
	}
	meta["historyIndex"], meta["historyLen"] = historyPos(s)
	return writeOut(cmd, app, format.Envelope{Data: newListOut(s), Meta: meta})
}

func historyPos(s *session) (int, int) {
	_, idx := s.stack.Snapshot()
	return idx, s.stack.Len()
}

func newShowCmd(app *App) *cobra.Command {
	var markdown bool
	var width int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the list at the current location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if markdown {
				md := publish.RenderListMarkdown(s.view.State, s.bridge.Catalog(), shareBase(app)+s.bridge.ShareLocation(s.view.State))
				_, err := fmt.Fprint(cmd.OutOrStdout(), tui.RenderMarkdown(md, app.cfg.MarkdownStyle, width))
				return err
			}
			return writeList(cmd, app, s, nil)
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render the list as styled markdown instead of structured output")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --markdown")
	return cmd
}

// newEditCmds returns one command per list edit. Each applies a single op
// and records one history entry.
func newEditCmds(app *App) []*cobra.Command {
	var delta int
	rate := opCmd(app, "rate <item-id>", "Change an item's rating by --delta (wraps 0..10)", 1, func(args []string) (mutate.Op, error) {
		id, err := parseID("id", args[0])
		return mutate.Op{Kind: mutate.OpRate, ItemID: id, Delta: delta}, err
	})
	rate.Flags().IntVar(&delta, "delta", 1, "Rating change (negative to lower)")

	var moveDelta int
	move := opCmd(app, "move <position>", "Move the item at a zero-based position by --delta", 1, func(args []string) (mutate.Op, error) {
		pos, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil {
			return mutate.Op{}, mutate.InvalidArgError{Field: "position", Value: args[0]}
		}
		return mutate.Op{Kind: mutate.OpMove, Position: pos, Delta: moveDelta}, nil
	})
	move.Flags().IntVar(&moveDelta, "delta", -1, "Positions to move (negative moves up)")

	return []*cobra.Command{
		opCmd(app, "add", "Append a new item (first catalog entry, unrated)", 0, func([]string) (mutate.Op, error) {
			return mutate.Op{Kind: mutate.OpAdd}, nil
		}),
		opCmd(app, "delete <item-id>", "Remove an item", 1, func(args []string) (mutate.Op, error) {
			id, err := parseID("id", args[0])
			return mutate.Op{Kind: mutate.OpDelete, ItemID: id}, err
		}),
		opCmd(app, "toggle-viewed <item-id>", "Flip an item's viewed flag", 1, func(args []string) (mutate.Op, error) {
			id, err := parseID("id", args[0])
			return mutate.Op{Kind: mutate.OpToggleViewed, ItemID: id}, err
		}),
		rate,
		opCmd(app, "select <item-id> <catalog-id>", "Point an item at another musical", 2, func(args []string) (mutate.Op, error) {
			id, err := parseID("id", args[0])
			if err != nil {
				return mutate.Op{}, err
			}
			cid, err := parseID("catalogId", args[1])
			return mutate.Op{Kind: mutate.OpSelect, ItemID: id, CatalogID: cid}, err
		}),
		move,
		opCmd(app, "rename <name>", "Set the list's author (\"\" for anonymous)", 1, func(args []string) (mutate.Op, error) {
			return mutate.Op{Kind: mutate.OpRename, Author: strings.TrimSpace(args[0])}, nil
		}),
		opCmd(app, "edit", "Toggle between view and edit mode", 0, func([]string) (mutate.Op, error) {
			return mutate.Op{Kind: mutate.OpToggleEdit}, nil
		}),
	}
}

func opCmd(app *App, use, short string, nargs int, build func(args []string) (mutate.Op, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := build(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if op.Kind != mutate.OpToggleEdit && !s.view.Query.Edit {
				return writeErr(cmd, errViewMode)
			}
			if err := s.apply(cmd.Context(), op); err != nil {
				return writeErr(cmd, err)
			}
			return writeList(cmd, app, s, map[string]any{"op": string(op.Kind)})
		},
	}
}

func parseID(field, s string) (uint64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, mutate.InvalidArgError{Field: field, Value: s}
	}
	return n, nil
}

func shareBase(app *App) string {
	return "http://" + app.cfg.Addr
}

// newNavCmds covers commands that move between locations rather than edit
// the list at one.
func newNavCmds(app *App) []*cobra.Command {
	undo := &cobra.Command{
		Use:   "undo",
		Short: "Go back one location (like the browser's back button)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStep(cmd, app, -1)
		},
	}
	redo := &cobra.Command{
		Use:   "redo",
		Short: "Go forward one location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStep(cmd, app, 1)
		},
	}
	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Start a fresh, empty list in edit mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.reset(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeList(cmd, app, s, nil)
		},
	}
	open := &cobra.Command{
		Use:   "open <location>",
		Short: "Navigate to a shared link or location",
		Example: strings.TrimSpace(`
musicalist open 'http://127.0.0.1:3336/musicalist/?content=...&edit=false'
musicalist open '/musicalist/?user=alice'
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.open(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeList(cmd, app, s, nil)
		},
	}

	var base string
	share := &cobra.Command{
		Use:   "share",
		Short: "Print a read-only link to the current list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if strings.TrimSpace(base) == "" {
				base = shareBase(app)
			}
			loc := s.bridge.ShareLocation(s.view.State)
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{
				"location": loc,
				"url":      strings.TrimRight(base, "/") + loc,
				"author":   s.view.State.Author,
			}})
		},
	}
	share.Flags().StringVar(&base, "base-url", "", "Scheme and host to prefix (default: http://<config addr>)")

	return []*cobra.Command{undo, redo, newCmd, open, share}
}

func runStep(cmd *cobra.Command, app *App, delta int) error {
	s, err := openSession(cmd.Context(), app)
	if err != nil {
		return writeErr(cmd, err)
	}
	moved, err := s.step(cmd.Context(), delta)
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeList(cmd, app, s, map[string]any{"moved": moved})
}
