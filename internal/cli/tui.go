package cli

import (
	"os/signal"
	"syscall"

	"musicalist/internal/tui"

	"github.com/spf13/cobra"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive TUI (same as running with no command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	err = tui.Run(ctx, tui.Options{
		Bridge:        s.bridge,
		Host:          s.stack,
		Persist:       func() error { return s.save(ctx) },
		ShareBase:     shareBase(app),
		MarkdownStyle: app.cfg.MarkdownStyle,
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	return nil
}
