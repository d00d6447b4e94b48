package tasklist

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/planit/internal/i18n"
	"github.com/nhle/planit/internal/keys"
	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/recurrence"
	"github.com/nhle/planit/internal/service"
	"github.com/nhle/planit/internal/store"
	"github.com/nhle/planit/internal/theme"
)

// TasksLoadedMsg carries a fresh snapshot of the active tasks.
type TasksLoadedMsg struct {
	Tasks     []model.Task
	Groups    map[int64]string
	Dashboard service.Dashboard
	Today     recurrence.Date
	Err       error
}

// SelectedTaskMsg is sent when a user selects a task to view details.
type SelectedTaskMsg struct {
	TaskID string
}

// Model is the main task list view component.
type Model struct {
	list        list.Model
	tasks       *service.TaskService
	groups      *service.GroupService
	keys        *keys.KeyMap
	env         *renderEnv
	filter      store.TaskFilter
	todayOnly   bool
	dashboard   service.Dashboard
	err         error
	searchMode  bool
	searchInput textinput.Model
	width       int
	height      int
}

// New creates a new task list model.
func New(tasks *service.TaskService, groups *service.GroupService, cat *i18n.Catalog, k *keys.KeyMap, width, height int) Model {
	env := &renderEnv{cat: cat, today: tasks.Today()}
	l := list.New([]list.Item{}, ItemDelegate{env: env}, width, height-2)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle
	// Single-letter task actions belong to the app.
	l.KeyMap.NextPage = key.NewBinding(key.WithKeys("right", "pgdown"))
	l.KeyMap.PrevPage = key.NewBinding(key.WithKeys("left", "pgup"))
	l.KeyMap.GoToStart = key.NewBinding(key.WithKeys("home"))
	l.KeyMap.GoToEnd = key.NewBinding(key.WithKeys("end"))
	l.KeyMap.Quit = key.NewBinding(key.WithDisabled())

	si := textinput.New()
	si.Prompt = "/ "
	si.Width = width - 4

	m := Model{
		list:        l,
		tasks:       tasks,
		groups:      groups,
		keys:        k,
		env:         env,
		filter:      store.TaskFilter{SortBy: model.SortByDeadline},
		searchInput: si,
		width:       width,
		height:      height,
	}
	m.refreshLabels()
	return m
}

// Init returns a command that loads the initial set of tasks.
func (m Model) Init() tea.Cmd {
	return m.LoadTasks()
}

// Update handles messages for the task list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TasksLoadedMsg:
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		m.env.today = msg.Today
		m.dashboard = msg.Dashboard
		items := make([]list.Item, len(msg.Tasks))
		for i, task := range msg.Tasks {
			item := TaskItem{Task: task}
			if task.GroupID != nil {
				item.Group = msg.Groups[*task.GroupID]
			}
			items[i] = item
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		query := m.searchInput.Value()
		if query != "" {
			m.filter.Query = &query
		} else {
			m.filter.Query = nil
		}
		return m, m.LoadTasks()

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.filter.Query = nil
		return m, m.LoadTasks()
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(TaskItem)
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return SelectedTaskMsg{TaskID: item.Task.ID}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.Reset()
		return m, m.searchInput.Focus()

	case key.Matches(msg, m.keys.CycleSort):
		m.filter.SortBy = m.filter.SortBy.Next()
		m.refreshLabels()
		return m, m.LoadTasks()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the task list view.
func (m Model) View() string {
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, searchBar, m.list.View())
	}

	if m.err != nil {
		return m.centered(theme.OverdueStyle, m.env.cat.T(i18n.ErrorPrefix, m.err))
	}
	if len(m.list.Items()) == 0 {
		if m.filter.Query != nil {
			return m.centered(lipgloss.NewStyle().Foreground(theme.ColorGray), m.env.cat.T(i18n.NoMatchingTasks))
		}
		return m.centered(lipgloss.NewStyle().Foreground(theme.ColorGray), m.env.cat.T(i18n.NoTasks))
	}

	return m.list.View()
}

func (m Model) centered(style lipgloss.Style, text string) string {
	return style.
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(text)
}

// LoadTasks returns a tea.Cmd that reloads tasks, group names and the
// dashboard counters.
func (m Model) LoadTasks() tea.Cmd {
	filter := m.filter
	todayOnly := m.todayOnly
	tasks, groups := m.tasks, m.groups
	return func() tea.Msg {
		ctx := context.Background()
		var items []model.Task
		var err error
		if todayOnly {
			items, err = tasks.TasksOn(ctx, tasks.Today())
		} else {
			items, err = tasks.List(ctx, filter)
		}
		if err != nil {
			return TasksLoadedMsg{Err: err}
		}
		names, err := groups.Names(ctx)
		if err != nil {
			return TasksLoadedMsg{Err: err}
		}
		dash, err := tasks.Dashboard(ctx)
		if err != nil {
			return TasksLoadedMsg{Err: err}
		}
		return TasksLoadedMsg{Tasks: items, Groups: names, Dashboard: dash, Today: tasks.Today()}
	}
}

// SelectedTask returns the highlighted task.
func (m Model) SelectedTask() (model.Task, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	return item.Task, ok
}

// Dashboard returns the counters of the last load.
func (m Model) Dashboard() service.Dashboard { return m.dashboard }

// Searching reports whether the search input has focus.
func (m Model) Searching() bool { return m.searchMode }

// SortBy returns the active ordering.
func (m Model) SortBy() model.SortField { return m.filter.SortBy }

// ToggleToday switches between all active tasks and the tasks
// occurring today.
func (m *Model) ToggleToday() tea.Cmd {
	m.todayOnly = !m.todayOnly
	m.refreshLabels()
	return m.LoadTasks()
}

// TodayOnly reports whether the list shows today's agenda.
func (m Model) TodayOnly() bool { return m.todayOnly }

// RefreshLabels re-renders translated labels after a language switch.
func (m *Model) RefreshLabels() { m.refreshLabels() }

func (m *Model) refreshLabels() {
	m.list.Title = m.env.cat.T(i18n.SortedBy, m.filter.SortBy)
	if m.todayOnly {
		m.list.Title = m.env.cat.T(i18n.DueToday) + " · " + m.list.Title
	}
	m.searchInput.Placeholder = m.env.cat.T(i18n.SearchPrompt)
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.searchInput.Width = width - 4
}
