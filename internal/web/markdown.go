package web

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"
	texttemplate "text/template"

	"musicalist/internal/catalog"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// pageVars is what the embedded markdown pages may reference, e.g.
// [{{.FirstMusical}}]({{.MusicalLink .FirstID}}).
type pageVars struct {
	Base         string
	CatalogSize  int
	FirstID      uint64
	FirstMusical string
	Users        []string

	cat *catalog.Catalog
}

func newPageVars(base string, cat *catalog.Catalog, users []string) pageVars {
	first := cat.FirstID()
	return pageVars{
		Base:         base,
		CatalogSize:  cat.Len(),
		FirstID:      first,
		FirstMusical: cat.Name(first),
		Users:        users,
		cat:          cat,
	}
}

// MusicalLink is the reference article for a catalog id.
func (v pageVars) MusicalLink(id uint64) string {
	if v.cat == nil {
		return ""
	}
	return v.cat.ReferenceURL(id)
}

// UserLink is site-relative; siteLinks roots it at Base.
func (v pageVars) UserLink(author string) string {
	return "/?" + url.Values{"user": {author}}.Encode()
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, "[", `\[`, "]", `\]`, "*", `\*`, "_", `\_`, "`", "\\`")

// Label escapes s for use as link text.
func (v pageVars) Label(s string) string {
	return labelEscaper.Replace(s)
}

// siteLinks roots "/..." links at the list's base path and opens external
// links in a new tab.
type siteLinks struct {
	base string
}

func (l siteLinks) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		link, ok := n.(*ast.Link)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		dest := string(link.Destination)
		switch {
		case strings.HasPrefix(dest, "//"):
			// protocol-relative, leave it
		case strings.HasPrefix(dest, "/"):
			link.Destination = []byte(l.base + dest)
		case strings.HasPrefix(dest, "http://"), strings.HasPrefix(dest, "https://"):
			link.SetAttributeString("target", []byte("_blank"))
			link.SetAttributeString("rel", []byte("noopener noreferrer"))
		}
		return ast.WalkContinue, nil
	})
}

func newMarkdown(base string) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			emoji.Emoji,
		),
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(siteLinks{base: base}, 100)),
		),
		goldmark.WithRendererOptions(
			// Raw HTML stays disabled: no html.WithUnsafe().
			html.WithHardWraps(),
		),
	)
}

// renderPage expands src as a text template over vars, then renders the
// markdown. Template errors fall back to the raw source.
func renderPage(md goldmark.Markdown, src string, vars pageVars) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return template.HTML("")
	}
	if t, err := texttemplate.New("page").Parse(src); err == nil {
		var expanded strings.Builder
		if err := t.Execute(&expanded, vars); err == nil {
			src = expanded.String()
		}
	}
	var b bytes.Buffer
	if err := md.Convert([]byte(src), &b); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(src) + "</pre>")
	}
	return template.HTML(b.String())
}
