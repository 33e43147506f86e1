package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"musicalist/internal/urlstate"
)

type userItem struct {
	name     string
	location string
}

func (i userItem) FilterValue() string { return i.name }
func (i userItem) Title() string       { return i.name }
func (i userItem) Description() string { return i.location }

func newUserPicker() list.Model {
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	d.SetSpacing(0)

	l := list.New([]list.Item{}, d, 60, 12)
	l.Title = "Users"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("user", "users")
	// Esc closes the picker instead of quitting.
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	return l
}

func (m *appModel) openPicker() tea.Cmd {
	names := m.opts.Bridge.Users().List(m.ctx)
	if len(names) == 0 {
		m.setStatus("no users yet: rename a list to create one", false)
		return nil
	}
	items := make([]list.Item, 0, len(names))
	for _, n := range names {
		items = append(items, userItem{name: n, location: m.opts.Bridge.UserLocation(n)})
	}
	m.picking = true
	m.users.ResetFilter()
	return m.users.SetItems(items)
}

func (m appModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.users.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.users, cmd = m.users.Update(msg)
		return m, cmd
	}
	switch {
	case msg.Type == tea.KeyEsc, key.Matches(msg, m.keys.Users):
		m.picking = false
		return m, nil
	case msg.Type == tea.KeyEnter:
		if it, ok := m.users.SelectedItem().(userItem); ok {
			m.picking = false
			q := urlstate.Query{HasUser: true, User: it.name}
			m.opts.Host.Push(m.opts.Bridge.Location(q))
			m.view = m.opts.Bridge.Load(m.ctx, q)
			m.cursor = 0
			m.persist()
		}
		return m, nil
	case key.Matches(msg, m.keys.Delete):
		if it, ok := m.users.SelectedItem().(userItem); ok {
			m.picking = false
			v, err := m.opts.Bridge.DeleteUser(m.ctx, it.name)
			m.view = v
			m.cursor = 0
			if err != nil {
				m.setStatus(err.Error(), true)
			} else {
				m.setStatus("deleted "+it.name, false)
			}
			m.persist()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.users, cmd = m.users.Update(msg)
	return m, cmd
}
