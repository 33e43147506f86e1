package cli

import (
	"strings"

	"musicalist/internal/format"
	"musicalist/internal/model"

	"github.com/spf13/cobra"
)

func newCatalogCmd(app *App) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the musicals an item can point at",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := strings.ToLower(strings.TrimSpace(query))
			out := []model.CatalogEntry{}
			for _, e := range app.cat.Entries() {
				if q != "" && !strings.Contains(strings.ToLower(e.Name), q) {
					continue
				}
				out = append(out, e)
			}
			return writeOut(cmd, app, format.Envelope{
				Data: out,
				Meta: map[string]any{"total": app.cat.Len(), "source": catalogSource(app)},
			})
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "Case-insensitive name filter")
	return cmd
}

func catalogSource(app *App) string {
	if p := strings.TrimSpace(app.cfg.Catalog); p != "" {
		return p
	}
	return "builtin"
}
