package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/planit/internal/i18n"
	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/theme"
)

// Kind identifies a palette command.
type Kind int

const (
	Refresh Kind = iota + 1
	Today
	ClearCompleted
	Groups
	Language
	Dashboard
	Quit
)

// CommandMsg is emitted when the user executes a valid command.
type CommandMsg struct {
	Kind          Kind
	Language      model.Language
	DashboardMode model.DashboardMode
}

// ErrorMsg is emitted when the input does not parse.
type ErrorMsg struct {
	Err error
}

var aliases = map[string]Kind{
	"refresh": Refresh,
	"reload":  Refresh,
	"today":   Today,
	"clear":   ClearCompleted,
	"groups":  Groups,
	"lang":    Language,
	"mode":    Dashboard,
	"q":       Quit,
	"quit":    Quit,
}

// Usage lists the palette commands with their optional arguments.
var Usage = []string{
	"refresh",
	"today",
	"clear",
	"groups",
	"lang [en|de]",
	"mode [counts|percentages|both]",
	"quit",
}

// Parse turns palette input into a command. "lang" without an argument
// toggles the language and "mode" without one cycles the dashboard.
func Parse(input string) (CommandMsg, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return CommandMsg{}, errors.New("empty command")
	}
	kind, ok := aliases[fields[0]]
	if !ok || len(fields) > 2 {
		return CommandMsg{}, fmt.Errorf("unknown command %q", input)
	}
	msg := CommandMsg{Kind: kind}
	if len(fields) == 1 {
		return msg, nil
	}

	var err error
	switch kind {
	case Language:
		msg.Language, err = model.ParseLanguage(fields[1])
	case Dashboard:
		msg.DashboardMode, err = model.ParseDashboardMode(fields[1])
	default:
		err = fmt.Errorf("%s takes no argument", fields[0])
	}
	if err != nil {
		return CommandMsg{}, err
	}
	return msg, nil
}

// Model is the command palette view.
type Model struct {
	cat    *i18n.Catalog
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(cat *i18n.Catalog, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = cat.T(i18n.CommandHint)
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		cat:    cat,
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			raw := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if raw == "" {
				return m, nil
			}
			return m, func() tea.Msg {
				cmd, err := Parse(raw)
				if err != nil {
					return ErrorMsg{Err: err}
				}
				return cmd
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render(m.cat.T(i18n.CommandTitle))
	input := m.input.View()

	content := lipgloss.JoinVertical(lipgloss.Left, title, input)

	return theme.DetailPanelStyle.
		Width(max(m.width-4, 0)).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input and refreshes the
// placeholder for the current language.
func (m *Model) Focus() tea.Cmd {
	m.input.Placeholder = m.cat.T(i18n.CommandHint)
	return m.input.Focus()
}
