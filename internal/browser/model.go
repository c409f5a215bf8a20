// Package browser is a terminal front end for the project list. All state
// lives in the controller; the model only forwards keys and renders views.
package browser

import (
	"context"
	"slices"
	"strconv"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/projecthubv3/projecthub-backend/internal/controller"
	"github.com/projecthubv3/projecthub-backend/internal/projects/domain"
)

type viewMsg struct{}

type removedMsg struct {
	id  string
	err error
}

type Model struct {
	ctrl    *controller.Controller
	updates <-chan struct{}

	view    controller.View
	search  textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	cursor        int
	confirmDelete string
	notice        string
	width         int
}

// New subscribes to ctrl. The caller owns ctrl and closes it after the
// program exits.
func New(ctrl *controller.Controller) Model {
	updates := make(chan struct{}, 1)
	ctrl.OnChange(func(controller.View) {
		select {
		case updates <- struct{}{}:
		default:
		}
	})

	ti := textinput.New()
	ti.Placeholder = "search projects"
	ti.Prompt = "/ "
	ti.SetValue(ctrl.View().Query.Search)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctrl:    ctrl,
		updates: updates,
		view:    ctrl.View(),
		search:  ti,
		spinner: sp,
		help:    help.New(),
		keys:    defaultKeys(),
	}
}

func (m Model) Init() tea.Cmd {
	m.ctrl.Refresh()
	return tea.Batch(m.spinner.Tick, waitForView(m.updates))
}

func waitForView(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return viewMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case viewMsg:
		m.sync()
		return m, waitForView(m.updates)

	case removedMsg:
		if msg.err != nil {
			m.notice = "delete " + msg.id + " failed: " + msg.err.Error()
		} else {
			m.notice = "deleted " + msg.id
		}
		m.sync()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.search.Focused() {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.search.Blur()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.view.Query.Search {
		_ = m.ctrl.SetFilter(controller.FieldSearch, m.search.Value())
		m.sync()
	}
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmDelete != "" {
		id := m.confirmDelete
		m.confirmDelete = ""
		if msg.String() != "y" {
			m.notice = "delete cancelled"
			return m, nil
		}
		return m, m.remove(id)
	}

	q := m.view.Query
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Search):
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Type):
		types := append([]string{domain.TypeAll}, m.view.Result.ProjectTypes...)
		m.set(controller.FieldType, cycle(types, q.Type))
	case key.Matches(msg, m.keys.Status):
		m.set(controller.FieldStatus, cycle(append([]string{""}, domain.Statuses...), q.Status))
	case key.Matches(msg, m.keys.HasFeatures):
		m.set(controller.FieldHasFeatures, cycle(triStates, q.HasFeat))
	case key.Matches(msg, m.keys.HasMarket):
		m.set(controller.FieldHasMarket, cycle(triStates, q.HasMarket))
	case key.Matches(msg, m.keys.SortBy):
		m.set(controller.FieldSortBy, cycle(domain.SortFields, q.SortBy))
	case key.Matches(msg, m.keys.SortOrder):
		m.set(controller.FieldSortOrder, cycle([]string{domain.SortAsc, domain.SortDesc}, q.SortOrder))
	case key.Matches(msg, m.keys.PageSize):
		sizes := make([]string, 0, len(domain.PageSizes))
		for _, n := range domain.PageSizes {
			sizes = append(sizes, strconv.Itoa(n))
		}
		m.set(controller.FieldPageSize, cycle(sizes, strconv.Itoa(q.PageSize)))
	case key.Matches(msg, m.keys.Prev):
		m.ctrl.PrevPage()
	case key.Matches(msg, m.keys.Next):
		m.ctrl.NextPage()
	case key.Matches(msg, m.keys.First):
		m.ctrl.SetPage(1)
	case key.Matches(msg, m.keys.Last):
		m.ctrl.SetPage(m.view.Result.TotalPages)
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(m.cursor+1, max(len(m.view.Result.Projects)-1, 0))
	case key.Matches(msg, m.keys.Delete):
		if p, ok := m.selected(); ok {
			m.confirmDelete = p.ID
			m.notice = "delete " + p.ID + "? (y/n)"
		}
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.ctrl.Refresh()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	m.sync()
	return m, nil
}

func (m *Model) set(field controller.Field, value string) {
	if err := m.ctrl.SetFilter(field, value); err != nil {
		m.notice = err.Error()
	}
}

func (m *Model) sync() {
	m.view = m.ctrl.View()
	m.cursor = min(m.cursor, max(len(m.view.Result.Projects)-1, 0))
}

func (m Model) selected() (domain.Project, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.Result.Projects) {
		return domain.Project{}, false
	}
	return m.view.Result.Projects[m.cursor], true
}

func (m Model) remove(id string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return removedMsg{id: id, err: ctrl.Remove(context.Background(), id)}
	}
}

var triStates = []string{domain.FilterAny, domain.FilterYes, domain.FilterNo}

// cycle returns the option after cur, wrapping around. An unknown cur
// selects the first option.
func cycle(options []string, cur string) string {
	if len(options) == 0 {
		return cur
	}
	i := slices.Index(options, cur)
	return options[(i+1)%len(options)]
}
