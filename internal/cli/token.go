package cli

import (
	"strings"

	"musicalist/internal/codec"
	"musicalist/internal/format"
	"musicalist/internal/model"
	"musicalist/internal/urlstate"

	"github.com/spf13/cobra"
)

func newTokenCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Work with content tokens directly",
	}
	cmd.AddCommand(newTokenInspectCmd(app))
	return cmd
}

func newTokenInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <token-or-location>",
		Short: "Decode a token and show what it holds",
		Long: strings.TrimSpace(`
Decode a content token without touching local storage.

The argument may be a bare token or a full location; for a location the
content parameter is used. Tokens that do not decode are reported with the
reason and the default list they fall back to.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok := model.Token(strings.TrimSpace(args[0]))
			if strings.Contains(args[0], "?") {
				tok = urlstate.ParseLocation(args[0]).Content
			}
			d := codec.Decode(tok)
			out := map[string]any{
				"valid":     !d.Fallback,
				"state":     d.State,
				"canonical": string(codec.Encode(d.State)),
			}
			if d.Reason != nil {
				out["reason"] = d.Reason.Error()
			}
			if diag, err := codec.Diagnose(tok); err == nil {
				out["diagnostic"] = diag
			}
			return writeOut(cmd, app, format.Envelope{Data: out})
		},
	}
}
