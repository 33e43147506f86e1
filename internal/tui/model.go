package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"musicalist/internal/codec"
	"musicalist/internal/history"
	"musicalist/internal/mutate"
	"musicalist/internal/urlstate"
)

type Options struct {
	Bridge *urlstate.Bridge

	// Host is the navigation history the bridge pushes to. It must be the
	// same host the bridge was built with.
	Host *history.Stack

	// Persist runs after every change of Host (saving it to disk, say).
	Persist func() error

	// ShareBase prefixes share locations, e.g. "http://127.0.0.1:3336".
	ShareBase string

	// MarkdownStyle is the glamour style of the preview pane.
	MarkdownStyle string
}

type appModel struct {
	ctx  context.Context
	opts Options
	nav  *history.Navigator

	view   urlstate.View
	cursor int

	keys     KeyMap
	help     help.Model
	input    textinput.Model
	renaming bool
	preview  bool
	picking  bool
	users    list.Model

	status    string
	statusErr bool

	width  int
	height int
}

func newModel(ctx context.Context, opts Options) appModel {
	if opts.Host.Len() == 0 {
		opts.Host.Push(opts.Bridge.Location(urlstate.Query{}))
	}
	in := textinput.New()
	in.Placeholder = "Your name"
	in.CharLimit = 64
	in.Prompt = "Name: "

	m := appModel{
		ctx:   ctx,
		opts:  opts,
		nav:   history.NewNavigator(opts.Host, opts.Bridge),
		keys:  DefaultKeyMap,
		help:  help.New(),
		input: in,
		users: newUserPicker(),
		width: 80,
	}
	m.view = opts.Bridge.Load(ctx, urlstate.ParseLocation(opts.Host.Current()))
	return m
}

func (m appModel) Init() tea.Cmd { return nil }

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.users.SetSize(msg.Width, max(5, msg.Height-6))
		return m, nil
	case tea.KeyMsg:
		if m.renaming {
			return m.updateRename(msg)
		}
		if m.picking {
			return m.updatePicker(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m appModel) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.renaming = false
		m.input.Blur()
		m.apply(mutate.Op{Kind: mutate.OpRename, Author: strings.TrimSpace(m.input.Value())})
		return m, nil
	case tea.KeyEsc:
		m.renaming = false
		m.input.Blur()
		m.setStatus("rename cancelled", false)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m appModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	items := m.view.State.Items

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(items)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Undo):
		m.step(-1)
		return m, nil
	case key.Matches(msg, m.keys.Redo):
		m.step(1)
		return m, nil
	case key.Matches(msg, m.keys.ToggleEdit):
		m.apply(mutate.Op{Kind: mutate.OpToggleEdit})
		return m, nil
	case key.Matches(msg, m.keys.New):
		m.view = m.opts.Bridge.Reset()
		m.cursor = 0
		m.persist()
		return m, nil
	case key.Matches(msg, m.keys.Share):
		m.setStatus(m.shareURL(), false)
		return m, nil
	case key.Matches(msg, m.keys.Preview):
		m.preview = !m.preview
		return m, nil
	case key.Matches(msg, m.keys.Users):
		return m, m.openPicker()
	}
	if m.preview {
		return m, nil
	}

	if !m.view.Query.Edit {
		if isEditKey(m.keys, msg) {
			m.setStatus("view mode: press e to edit", false)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Add):
		m.apply(mutate.Op{Kind: mutate.OpAdd})
		m.cursor = len(m.view.State.Items) - 1
		return m, nil
	case key.Matches(msg, m.keys.Rename):
		m.renaming = true
		m.input.SetValue(m.view.State.Author)
		m.input.CursorEnd()
		return m, m.input.Focus()
	}
	if len(items) == 0 {
		return m, nil
	}
	it := items[m.cursor]
	switch {
	case key.Matches(msg, m.keys.ToggleViewed):
		m.apply(mutate.Op{Kind: mutate.OpToggleViewed, ItemID: it.ID})
	case key.Matches(msg, m.keys.RateUp):
		m.apply(mutate.Op{Kind: mutate.OpRate, ItemID: it.ID, Delta: 1})
	case key.Matches(msg, m.keys.RateDown):
		m.apply(mutate.Op{Kind: mutate.OpRate, ItemID: it.ID, Delta: -1})
	case key.Matches(msg, m.keys.NextMusical):
		m.apply(mutate.Op{Kind: mutate.OpSelect, ItemID: it.ID, CatalogID: m.cycleCatalog(it.CatalogID, 1)})
	case key.Matches(msg, m.keys.PrevMusical):
		m.apply(mutate.Op{Kind: mutate.OpSelect, ItemID: it.ID, CatalogID: m.cycleCatalog(it.CatalogID, -1)})
	case key.Matches(msg, m.keys.MoveUp):
		m.apply(mutate.Op{Kind: mutate.OpMove, Position: m.cursor, Delta: -1})
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.MoveDown):
		m.apply(mutate.Op{Kind: mutate.OpMove, Position: m.cursor, Delta: 1})
		if m.cursor < len(m.view.State.Items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Delete):
		m.apply(mutate.Op{Kind: mutate.OpDelete, ItemID: it.ID})
	}
	return m, nil
}

func isEditKey(k KeyMap, msg tea.KeyMsg) bool {
	return key.Matches(msg, k.Add, k.Rename, k.ToggleViewed, k.RateUp, k.RateDown,
		k.NextMusical, k.PrevMusical, k.MoveUp, k.MoveDown, k.Delete)
}

func (m *appModel) apply(op mutate.Op) {
	v, err := m.opts.Bridge.Apply(m.ctx, m.view.State, m.view.Query, op)
	m.view = v
	m.clampCursor()
	if err != nil {
		m.setStatus(err.Error(), true)
	}
	m.persist()
}

// step moves through history and re-derives the list from the new location.
func (m *appModel) step(delta int) {
	st, moved := m.nav.Step(m.ctx, delta)
	if !moved {
		if delta < 0 {
			m.setStatus("nothing to undo", false)
		} else {
			m.setStatus("nothing to redo", false)
		}
		return
	}
	m.view = urlstate.View{
		State: st,
		Token: codec.Encode(st),
		Query: urlstate.ParseLocation(m.opts.Host.Current()),
	}
	m.clampCursor()
	m.persist()
}

func (m *appModel) cycleCatalog(current uint64, d int) uint64 {
	entries := m.opts.Bridge.Catalog().Entries()
	if len(entries) == 0 {
		return current
	}
	idx := -1
	for i, e := range entries {
		if e.ID == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return entries[0].ID
	}
	n := len(entries)
	return entries[((idx+d)%n+n)%n].ID
}

func (m *appModel) clampCursor() {
	n := len(m.view.State.Items)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *appModel) persist() {
	if m.opts.Persist == nil {
		return
	}
	if err := m.opts.Persist(); err != nil {
		m.setStatus(fmt.Sprintf("save history: %v", err), true)
	}
}

func (m appModel) shareURL() string {
	return m.opts.ShareBase + m.opts.Bridge.ShareLocation(m.view.State)
}

func (m *appModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}
