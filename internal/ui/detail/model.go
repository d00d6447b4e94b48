package detail

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/planit/internal/i18n"
	"github.com/nhle/planit/internal/keys"
	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/recurrence"
	"github.com/nhle/planit/internal/service"
	"github.com/nhle/planit/internal/theme"
)

// UpcomingDays is how far ahead the occurrence list looks.
const UpcomingDays = 60

// headerLines is the number of rendered lines above the occurrence list.
const headerLines = 12

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// LoadedMsg carries a task and its upcoming occurrences.
type LoadedMsg struct {
	Task        *model.Task
	Group       string
	Occurrences []service.Occurrence
	Err         error
}

// Action names an operation on a single occurrence.
type Action int

const (
	ActionComplete Action = iota
	ActionExclude
	ActionCutOff
)

// ActionMsg asks the parent to apply an action to the selected occurrence.
type ActionMsg struct {
	Action Action
	TaskID string
	Date   recurrence.Date
}

// Model is the task detail view component.
type Model struct {
	task        *model.Task
	group       string
	occurrences []service.Occurrence
	cursor      int
	err         error
	viewport    viewport.Model
	tasks       *service.TaskService
	groups      *service.GroupService
	cat         *i18n.Catalog
	keys        *keys.KeyMap
	width       int
	height      int
	loading     bool
}

// New creates a new detail view model.
func New(tasks *service.TaskService, groups *service.GroupService, cat *i18n.Catalog, keys *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		tasks:    tasks,
		groups:   groups,
		cat:      cat,
		keys:     keys,
		width:    width,
		height:   height,
	}
}

// Load returns a command that fetches the task and its occurrences from
// today onward.
func (m Model) Load(id string) tea.Cmd {
	tasks, groups := m.tasks, m.groups
	return func() tea.Msg {
		ctx := context.Background()
		task, err := tasks.Get(ctx, id)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		var group string
		if task.GroupID != nil {
			if g, err := groups.Get(ctx, *task.GroupID); err == nil {
				group = g.Name
			}
		}
		from := tasks.Today()
		occ, err := tasks.Occurrences(ctx, id, from, from.AddDays(UpcomingDays))
		if err != nil {
			return LoadedMsg{Err: err}
		}
		return LoadedMsg{Task: task, Group: group, Occurrences: occ}
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.SetDetail(msg)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return BackMsg{}
			}

		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.occurrences)-1 {
				m.cursor++
				m.render()
			}
			return m, nil

		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.render()
			}
			return m, nil

		case key.Matches(msg, m.keys.Complete):
			return m, m.action(ActionComplete)

		case key.Matches(msg, m.keys.Exclude):
			return m, m.action(ActionExclude)

		case key.Matches(msg, m.keys.CutOff):
			return m, m.action(ActionCutOff)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) action(a Action) tea.Cmd {
	date, ok := m.SelectedDate()
	if !ok || !m.task.IsRecurring() {
		return nil
	}
	id := m.task.ID
	return func() tea.Msg {
		return ActionMsg{Action: a, TaskID: id, Date: date}
	}
}

// SelectedDate returns the highlighted occurrence date.
func (m Model) SelectedDate() (recurrence.Date, bool) {
	if m.task == nil || m.cursor >= len(m.occurrences) {
		return recurrence.Date{}, false
	}
	return m.occurrences[m.cursor].Date, true
}

// CurrentTaskID returns the ID of the displayed task.
func (m Model) CurrentTaskID() string {
	if m.task == nil {
		return ""
	}
	return m.task.ID
}

// View renders the detail view.
func (m Model) View() string {
	placeholder := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.loading {
		return placeholder.Render(m.cat.T(i18n.Loading))
	}
	if m.err != nil {
		return placeholder.Foreground(theme.ColorRed).Render(m.cat.T(i18n.ErrorPrefix, m.err))
	}
	if m.task == nil {
		return placeholder.Render(m.cat.T(i18n.NoTasks))
	}

	return m.viewport.View()
}

func (m *Model) render() {
	m.viewport.SetContent(m.renderContent())
	// Keep the cursor row on screen.
	row := headerLines + m.cursor
	if row < m.viewport.YOffset {
		m.viewport.SetYOffset(row)
	} else if row >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(row - m.viewport.Height + 1)
	}
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.task == nil {
		return ""
	}

	task := m.task
	c := m.cat
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(task.Title))

	status := c.T(i18n.Open)
	if task.Done {
		status = c.T(i18n.Done)
	}
	badgeLine := lipgloss.JoinHorizontal(lipgloss.Top,
		theme.StatusStyle(task.Done).Render(status), "  ",
		theme.PriorityStyle(task.Priority).Render(c.Priority(task.Priority)),
	)
	sections = append(sections, badgeLine, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(18)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	meta := func(label, value string) string {
		if value == "" {
			value = "-"
		}
		return metaStyle.Render(label+":") + valStyle.Render(value)
	}

	due := ""
	if task.Deadline != nil {
		due = task.Deadline.String()
		if task.Time != "" {
			due += " " + task.Time
		}
	}
	next := ""
	if task.NextOccurrence != nil {
		next = task.NextOccurrence.String()
	}
	sections = append(sections,
		meta(c.T(i18n.FieldDeadline), due),
		meta(c.T(i18n.FieldGroup), m.group),
		meta(c.T(i18n.Repeats), task.Rule().String()),
		meta(c.T(i18n.Next), next),
		meta(c.T(i18n.Excluded), task.ExcludedDates.String()),
		meta(c.T(i18n.Created), task.CreatedAt.Local().Format("2006-01-02 15:04")),
	)

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	sections = append(sections, "", sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 0))))

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, headerStyle.Render(c.T(i18n.Upcoming)))

	if len(m.occurrences) == 0 {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render(c.T(i18n.NoUpcoming)))
	}
	for i, o := range m.occurrences {
		mark := "○"
		if o.Completed {
			mark = "✓"
		}
		line := fmt.Sprintf("%s %s %s", mark, o.Date, o.Date.Weekday().String()[:3])
		if o.Completed {
			line = theme.DimmedStyle.Render(line + " " + c.T(i18n.Completed))
		}
		if i == m.cursor {
			line = theme.SelectedItemStyle.Render(line)
		} else {
			line = theme.ListItemStyle.Render(line)
		}
		sections = append(sections, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDetail updates the displayed task and re-renders the content.
func (m *Model) SetDetail(msg LoadedMsg) {
	m.loading = false
	m.err = msg.Err
	m.task = msg.Task
	m.group = msg.Group
	m.occurrences = msg.Occurrences
	if m.cursor >= len(m.occurrences) {
		m.cursor = max(len(m.occurrences)-1, 0)
	}
	m.render()
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
	if loading {
		m.cursor = 0
	}
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
}
