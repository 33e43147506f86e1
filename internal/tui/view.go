package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"musicalist/internal/model"
	"musicalist/internal/publish"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#5A189A", Dark: "#C77DFF"})
	editBadgeStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.AdaptiveColor{Light: "#9D4EDD", Dark: "#7B2CBF"})
	viewBadgeStyle = lipgloss.NewStyle().Padding(0, 1).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}).
			Background(lipgloss.AdaptiveColor{Light: "#E0E0E6", Dark: "#3A3A40"})
	selectedStyle = lipgloss.NewStyle().Bold(true).
			Background(lipgloss.AdaptiveColor{Light: "#EDE7F6", Dark: "#2D1B3D"})
	dimStyle    = lipgloss.NewStyle().Faint(true)
	ratingStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFD166"})
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#95D5B2"})
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#C0392B", Dark: "#FF6B6B"})
)

// Fixed columns: cursor(2) index(4) viewed(4) rating(bar + " 10").
const (
	minNameWidth = 12
	fixedColumns = 2 + 4 + 4 + model.MaxRating + 4
)

func (m appModel) View() string {
	var b strings.Builder

	title := "Musicals"
	if m.view.State.Author != "" {
		title = m.view.State.Author + "'s musicals"
	}
	badge := viewBadgeStyle.Render("VIEW")
	if m.view.Query.Edit {
		badge = editBadgeStyle.Render("EDIT")
	}
	b.WriteString(titleStyle.Render(title) + "  " + badge + "\n")
	b.WriteString(dimStyle.Render(strings.Repeat(glyphHRule(), max(10, min(m.width, 60)))) + "\n")

	if m.picking {
		b.WriteString(m.users.View() + "\n\n")
		b.WriteString(dimStyle.Render("enter open · d delete user · / filter · esc back"))
		return b.String()
	}

	if m.preview {
		md := publish.RenderListMarkdown(m.view.State, m.opts.Bridge.Catalog(), m.shareURL())
		b.WriteString(RenderMarkdown(md, m.opts.MarkdownStyle, m.width) + "\n\n")
		b.WriteString(m.help.View(m.keys))
		return b.String()
	}

	if m.view.Fallback {
		b.WriteString(errorStyle.Render("That address could not be read; showing an empty list.") + "\n")
	}

	items := m.view.State.Items
	if len(items) == 0 {
		hint := "No musicals yet."
		if m.view.Query.Edit {
			hint += " Press a to add one."
		}
		b.WriteString(dimStyle.Render(hint) + "\n")
	}
	nameWidth := max(minNameWidth, m.width-fixedColumns)
	cat := m.opts.Bridge.Catalog()
	for i, it := range items {
		b.WriteString(m.renderRow(i, it, cat.Name(it.CatalogID), nameWidth) + "\n")
	}

	b.WriteString("\n")
	if m.renaming {
		b.WriteString(m.input.View() + "\n")
	} else if m.status != "" {
		if m.statusErr {
			b.WriteString(errorStyle.Render(m.status) + "\n")
		} else {
			b.WriteString(statusStyle.Render(m.status) + "\n")
		}
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m appModel) renderRow(i int, it model.ListItem, name string, nameWidth int) string {
	cursor := "  "
	if i == m.cursor {
		cursor = glyphCursor() + " "
	}
	if name == "" {
		name = dimStyle.Render("(unknown)")
	}
	name = ansi.Truncate(name, nameWidth, "…")
	if pad := nameWidth - ansi.StringWidth(name); pad > 0 {
		name += strings.Repeat(" ", pad)
	}
	row := fmt.Sprintf("%s%3d %s %-3s %s %2d",
		cursor, i+1, name, glyphViewed(it.Viewed),
		ratingStyle.Render(glyphRating(it.Rating, model.MaxRating)), it.Rating)
	if i == m.cursor {
		return selectedStyle.Render(row)
	}
	return row
}
