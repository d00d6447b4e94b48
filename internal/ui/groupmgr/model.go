package groupmgr

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/planit/internal/i18n"
	"github.com/nhle/planit/internal/keys"
	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/service"
	"github.com/nhle/planit/internal/theme"
)

// CloseMsg signals the parent to close the group view.
type CloseMsg struct{}

// ChangedMsg signals that groups were created, renamed or deleted.
type ChangedMsg struct{}

type groupMode int

const (
	modeList groupMode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	name    string
	confirm bool
}

type groupsLoadedMsg struct {
	groups []model.Group
	err    error
}

type groupSavedMsg struct{ err error }
type groupDeletedMsg struct{ err error }

// Model is the Bubble Tea model for group management.
type Model struct {
	mode        groupMode
	groups      *service.GroupService
	cat         *i18n.Catalog
	keys        *keys.KeyMap
	items       []model.Group
	selectedIdx int
	editingID   int64
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a new group manager model.
func New(groups *service.GroupService, cat *i18n.Catalog, k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:   modeList,
		groups: groups,
		cat:    cat,
		keys:   k,
		fb:     &formBindings{},
		width:  width, height: height,
	}
}

// Init loads groups from the store.
func (m Model) Init() tea.Cmd {
	return m.loadGroups()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case groupsLoadedMsg:
		if msg.err != nil {
			m.statusMsg = m.cat.T(i18n.ErrorPrefix, msg.err)
			return m, nil
		}
		m.items = msg.groups
		if m.selectedIdx >= len(m.items) && m.selectedIdx > 0 {
			m.selectedIdx = len(m.items) - 1
		}
		return m, nil

	case groupSavedMsg:
		m.statusMsg = m.result(msg.err, i18n.GroupSaved)
		m.mode = modeList
		return m, tea.Batch(m.loadGroups(), changed)

	case groupDeletedMsg:
		m.statusMsg = m.result(msg.err, i18n.GroupDeleted)
		m.mode = modeList
		return m, tea.Batch(m.loadGroups(), changed)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveForm(msg)
}

func changed() tea.Msg { return ChangedMsg{} }

func (m Model) result(err error, okKey string) string {
	if err != nil {
		return m.cat.T(i18n.ErrorPrefix, err)
	}
	return m.cat.T(okKey)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeList:
		return m.handleListKey(msg)
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.items) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.items)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.items) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.items) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.editingID = 0
		m.fb.name = ""
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		g, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.editingID = g.ID
		m.fb.name = g.Name
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.Selected(); !ok {
			return m, nil
		}
		m.fb.confirm = false
		m.confirmForm = m.buildConfirmForm()
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

// Selected returns the highlighted group.
func (m Model) Selected() (model.Group, bool) {
	if m.selectedIdx >= len(m.items) {
		return model.Group{}, false
	}
	return m.items[m.selectedIdx], true
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(m.cat.T(i18n.GroupName)).
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New(m.cat.T(i18n.Required, m.cat.T(i18n.GroupName)))
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm() *huh.Form {
	g, _ := m.Selected()
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(m.cat.T(i18n.ConfirmDelete, g.Name)).
				Description(m.cat.T(i18n.GroupKeepTask)).
				Affirmative(m.cat.T(i18n.Yes)).
				Negative(m.cat.T(i18n.Cancel)).
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		return m, m.saveGroup()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	if m.confirmForm.State == huh.StateCompleted {
		if g, ok := m.Selected(); ok && m.fb.confirm {
			return m, m.deleteGroup(g.ID)
		}
		m.mode = modeList
		return m, nil
	}
	if m.confirmForm.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

// View renders the group manager.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render(m.cat.T(i18n.Groups)))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		b.WriteString(emptyStyle.Render(m.cat.T(i18n.NoGroups)))
	}
	for i, g := range m.items {
		if i == m.selectedIdx {
			b.WriteString(theme.SelectedItemStyle.Render(g.Name))
		} else {
			b.WriteString(theme.ListItemStyle.Render(g.Name))
		}
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorYellow).Italic(true).Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render(m.cat.T(i18n.HintGroups)))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(f.View())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func (m Model) loadGroups() tea.Cmd {
	groups := m.groups
	return func() tea.Msg {
		items, err := groups.List(context.Background())
		return groupsLoadedMsg{groups: items, err: err}
	}
}

func (m Model) saveGroup() tea.Cmd {
	groups := m.groups
	name := m.fb.name
	id := m.editingID
	return func() tea.Msg {
		ctx := context.Background()
		if id == 0 {
			_, err := groups.Create(ctx, name)
			return groupSavedMsg{err: err}
		}
		_, err := groups.Rename(ctx, id, name)
		return groupSavedMsg{err: err}
	}
}

func (m Model) deleteGroup(id int64) tea.Cmd {
	groups := m.groups
	return func() tea.Msg {
		return groupDeletedMsg{err: groups.Delete(context.Background(), id)}
	}
}
