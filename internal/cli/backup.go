package cli

import (
	"strings"

	"musicalist/internal/format"
	"musicalist/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// compressionValue lets --compression validate at parse time.
type compressionValue struct {
	tag store.CompressionTag
	set bool
}

var _ pflag.Value = (*compressionValue)(nil)

func (v *compressionValue) String() string { return v.tag.String() }
func (v *compressionValue) Type() string   { return "none|lz4|zstd" }

func (v *compressionValue) Set(s string) error {
	tag, err := store.ParseCompression(s)
	if err != nil {
		return err
	}
	v.tag, v.set = tag, true
	return nil
}

func newBackupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore every stored list and the user registry",
	}
	cmd.AddCommand(newBackupExportCmd(app))
	cmd.AddCommand(newBackupImportCmd(app))
	return cmd
}

func newBackupExportCmd(app *App) *cobra.Command {
	var comp compressionValue

	cmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Write a checksummed archive of local storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tag := comp.tag
			if !comp.set {
				t, err := store.ParseCompression(app.cfg.BackupCompression)
				if err != nil {
					return writeErr(cmd, err)
				}
				tag = t
			}
			path := strings.TrimSpace(args[0])
			n, err := store.ExportFile(cmd.Context(), store.Store{Dir: app.Dir}, path, tag)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{
				"path":        path,
				"entries":     n,
				"compression": tag.String(),
			}})
		},
	}
	cmd.Flags().Var(&comp, "compression", "Body compression (default from config)")
	return cmd
}

func newBackupImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Replace local storage with an archive's contents",
		Long: strings.TrimSpace(`
Replace local storage with the contents of an archive written by
` + "`musicalist backup export`" + `.

The archive is verified before anything is written; keys not present in the
archive are removed. Navigation history is kept.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(args[0])
			n, err := store.ImportFile(cmd.Context(), store.Store{Dir: app.Dir}, path)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{Data: map[string]any{
				"path":    path,
				"entries": n,
			}})
		},
	}
}
