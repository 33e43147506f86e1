package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"musicalist/internal/catalog"
	"musicalist/internal/format"
	"musicalist/internal/store"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	PrettyJSON bool
	Format     string
	LogLevel   string

	cfg    *store.Config
	logger *slog.Logger
	cat    *catalog.Catalog
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "musicalist",
		Short:        "A shareable list of rated musicals",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  musicalist

  # Scriptable commands
  musicalist edit
  musicalist add
  musicalist rate 1 --delta 3
  musicalist share

  # Walk back through edits
  musicalist undo
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if !format.Valid(app.Format) {
			return writeErr(cmd, fmt.Errorf("unknown format: %s (want json|edn|yaml)", app.Format))
		}
		return app.init(cmd)
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("MUSICALIST_DIR", ""), "Path to store dir (default: $MUSICALIST_CONFIG_DIR or ~/.musicalist)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("MUSICALIST_FORMAT", "json"), "Output format (json|edn|yaml)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error; default from config)")

	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newEditCmds(app)...)
	cmd.AddCommand(newNavCmds(app)...)
	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newCatalogCmd(app))
	cmd.AddCommand(newTokenCmd(app))
	cmd.AddCommand(newBackupCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newTUICmd(app))

	return cmd
}

// init resolves the store dir, reads its config and builds the logger and
// catalog every command shares.
func (app *App) init(cmd *cobra.Command) error {
	if strings.TrimSpace(app.Dir) == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return writeErr(cmd, err)
		}
		app.Dir = d
	}

	cfg, err := store.LoadConfig(app.Dir)
	if err != nil {
		return writeErr(cmd, err)
	}
	if app.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(app.LogLevel))
	}
	app.cfg = cfg

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.logger = logger

	cat, err := loadCatalog(cfg.Catalog, logger)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.cat = cat
	return nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// loadCatalog reads a catalog file (same TSV layout as the built-in one) or
// falls back to the built-in catalog when path is empty.
func loadCatalog(path string, logger *slog.Logger) (*catalog.Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return catalog.Default(logger), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	defer f.Close()
	cat, err := catalog.Load(f, logger)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	if cat.Len() == 0 {
		return nil, errors.New("catalog: " + path + " has no usable rows")
	}
	return cat, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
