package cli

import (
	"strings"

	"musicalist/internal/format"
	"musicalist/internal/publish"
	"musicalist/internal/store"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var to string
	var overwrite bool
	var base string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Write every stored list as markdown files",
		Long: strings.TrimSpace(`
Write the anonymous list and each registered author's stored list as
markdown: list.md, users/<author>.md and an index.md linking them.
`),
		Example: strings.TrimSpace(`
musicalist publish --to ./site
musicalist publish --to ./site --overwrite --base-url https://lists.example.com
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			content := store.NewContent(store.Store{Dir: app.Dir}, app.logger)
			if strings.TrimSpace(base) == "" {
				base = shareBase(app)
			}
			res, err := publish.WriteAll(cmd.Context(), content, store.NewUsers(content, app.logger), app.cat, to, publish.WriteOptions{
				Overwrite: overwrite,
				ShareBase: base,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{Data: res})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Output directory")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	cmd.Flags().StringVar(&base, "base-url", "", "Scheme and host for share links (default: http://<config addr>)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
