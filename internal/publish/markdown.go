package publish

import (
	"fmt"
	"strings"

	"musicalist/internal/catalog"
	"musicalist/internal/model"
)

// RenderListMarkdown renders s as a markdown document: heading, item table
// and, when shareURL is set, a link to the read-only address.
func RenderListMarkdown(s model.ListState, cat *catalog.Catalog, shareURL string) string {
	var b strings.Builder
	b.WriteString("# " + listTitle(s.Author) + "\n\n")
	if len(s.Items) == 0 {
		b.WriteString("_No musicals yet._\n")
	} else {
		b.WriteString("| # | Musical | Viewed | Rating |\n|---:|---|:---:|---:|\n")
		for i, it := range s.Items {
			name := mdEscape(cat.Name(it.CatalogID))
			if ref := cat.ReferenceURL(it.CatalogID); ref != "" {
				name = "[" + name + "](" + ref + ")"
			} else if name == "" {
				name = "_unknown_"
			}
			viewed := ""
			if it.Viewed {
				viewed = "✓"
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %d/%d |\n", i+1, name, viewed, it.Rating, model.MaxRating)
		}
	}
	if shareURL != "" {
		fmt.Fprintf(&b, "\n[Share this list](%s)\n", shareURL)
	}
	return b.String()
}

type indexEntry struct {
	Author string
	Link   string
	Items  int
}

func renderIndexMarkdown(entries []indexEntry) string {
	var b strings.Builder
	b.WriteString("# Musical lists\n\n")
	if len(entries) == 0 {
		b.WriteString("_Nothing stored yet._\n")
		return b.String()
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "- [%s](%s) (%d)\n", listTitle(e.Author), e.Link, e.Items)
	}
	return b.String()
}

func listTitle(author string) string {
	if author == "" {
		return "Musicals"
	}
	return mdEscape(author) + "'s musicals"
}

func mdEscape(s string) string {
	r := strings.NewReplacer("|", `\|`, "[", `\[`, "]", `\]`, "*", `\*`, "_", `\_`)
	return r.Replace(s)
}
