package cli

import (
	"errors"
	"os"
	"path/filepath"

	"musicalist/internal/format"
	"musicalist/internal/store"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, format.Envelope{
				Data: app.cfg,
				Meta: map[string]any{"dir": app.Dir},
			})
		},
	}
	cmd.AddCommand(newConfigInitCmd(app))
	return cmd
}

func newConfigInitCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write config.yaml with the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(app.Dir, "config.yaml")
			if _, err := os.Stat(path); err == nil && !force {
				return writeErr(cmd, errors.New("config: "+path+" exists (use --force to overwrite)"))
			}
			if err := store.SaveConfig(app.Dir, app.cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{"path": path}})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config.yaml (the old one is kept as .bak)")
	return cmd
}
