package taskform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/planit/internal/i18n"
	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/recurrence"
	"github.com/nhle/planit/internal/theme"
)

// TaskSubmittedMsg is dispatched when the form is completed. For edits
// Task.ID is set.
type TaskSubmittedMsg struct {
	Task model.Task
}

// FormCancelMsg is dispatched when the user cancels the form.
type FormCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title     string
	deadline  string
	priority  model.Priority
	groupID   int64
	timeOfDay string
	frequency recurrence.Frequency
	interval  string
	weekdays  []time.Weekday
	start     string
	until     string
}

// Model is the Bubble Tea model for the task create/edit form.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	cat    *i18n.Catalog
	editOf *model.Task
	groups []model.Group
	width  int
	height int
}

// New creates a new task form model.
func New(cat *i18n.Catalog, width, height int) Model {
	return Model{
		fb:     &formBindings{frequency: recurrence.None, interval: "1"},
		cat:    cat,
		width:  width,
		height: height,
	}
}

// SetGroups sets the choices of the group selector.
func (m *Model) SetGroups(groups []model.Group) {
	m.groups = groups
}

// StartCreate initializes the form for a new task.
func (m *Model) StartCreate() tea.Cmd {
	m.editOf = nil
	*m.fb = formBindings{frequency: recurrence.None, interval: "1"}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form with an existing task.
func (m *Model) StartEdit(task model.Task) tea.Cmd {
	m.editOf = &task
	*m.fb = bindingsFrom(task)
	m.form = m.buildForm()
	return m.form.Init()
}

// Editing reports whether the form edits an existing task.
func (m Model) Editing() bool { return m.editOf != nil }

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return FormCancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := m.cat.T(i18n.NewTask)
	if m.Editing() {
		titleText = m.cat.T(i18n.EditTask)
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	c := m.cat
	fb := m.fb

	core := huh.NewGroup(
		huh.NewInput().
			Title(c.T(i18n.FieldTitle)).
			Placeholder(c.T(i18n.TitlePrompt)).
			Value(&fb.title).
			Validate(m.validateRequired(c.T(i18n.FieldTitle))),
		huh.NewInput().
			Title(c.T(i18n.FieldDeadline)).
			Placeholder(c.T(i18n.DatePrompt)).
			Value(&fb.deadline).
			Validate(m.validateOptionalDate),
		huh.NewInput().
			Title(c.T(i18n.FieldTime)).
			Placeholder(c.T(i18n.TimePrompt)).
			Value(&fb.timeOfDay),
		huh.NewSelect[model.Priority]().
			Title(c.T(i18n.FieldPriority)).
			Options(m.priorityOptions()...).
			Value(&fb.priority),
		huh.NewSelect[int64]().
			Title(c.T(i18n.FieldGroup)).
			Options(m.groupOptions()...).
			Value(&fb.groupID),
		huh.NewSelect[recurrence.Frequency]().
			Title(c.T(i18n.FieldRepeat)).
			Options(m.frequencyOptions()...).
			Value(&fb.frequency),
	)

	repeat := huh.NewGroup(
		huh.NewInput().
			Title(c.T(i18n.FieldInterval)).
			Value(&fb.interval).
			Validate(m.validateInterval),
		huh.NewMultiSelect[time.Weekday]().
			Title(c.T(i18n.FieldWeekdays)).
			Options(weekdayOptions()...).
			Value(&fb.weekdays),
		huh.NewInput().
			Title(c.T(i18n.FieldStart)).
			Placeholder(c.T(i18n.DatePrompt)).
			Value(&fb.start).
			Validate(m.validateOptionalDate),
		huh.NewInput().
			Title(c.T(i18n.FieldUntil)).
			Placeholder(c.T(i18n.DatePrompt)).
			Value(&fb.until).
			Validate(m.validateOptionalDate),
	).WithHideFunc(func() bool { return !fb.frequency.IsRecurring() })

	return huh.NewForm(core, repeat).
		WithWidth(m.formWidth()).
		WithHeight(m.formHeight())
}

func (m *Model) priorityOptions() []huh.Option[model.Priority] {
	opts := []huh.Option[model.Priority]{huh.NewOption(m.cat.Priority(""), model.Priority(""))}
	for _, p := range model.Priorities {
		opts = append(opts, huh.NewOption(m.cat.Priority(p), p))
	}
	return opts
}

func (m *Model) groupOptions() []huh.Option[int64] {
	opts := []huh.Option[int64]{huh.NewOption(m.cat.T(i18n.NoGroup), int64(0))}
	for _, g := range m.groups {
		opts = append(opts, huh.NewOption(g.Name, g.ID))
	}
	return opts
}

func (m *Model) frequencyOptions() []huh.Option[recurrence.Frequency] {
	opts := make([]huh.Option[recurrence.Frequency], 0, len(recurrence.Frequencies))
	for _, f := range recurrence.Frequencies {
		opts = append(opts, huh.NewOption(m.cat.Frequency(f), f))
	}
	return opts
}

func weekdayOptions() []huh.Option[time.Weekday] {
	days := recurrence.NewWeekdays(
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	).Days()
	opts := make([]huh.Option[time.Weekday], len(days))
	for i, d := range days {
		opts[i] = huh.NewOption(recurrence.WeekdayCode(d), d)
	}
	return opts
}

func (m Model) handleSubmit() tea.Cmd {
	task, err := m.fb.task(m.editOf)
	if err != nil {
		// Fields validate on input.
		return func() tea.Msg { return FormCancelMsg{} }
	}
	return func() tea.Msg { return TaskSubmittedMsg{Task: task} }
}

// task builds a task from the bindings, starting from base when editing.
func (fb *formBindings) task(base *model.Task) (model.Task, error) {
	var task model.Task
	if base != nil {
		task = *base
	}
	task.Title = strings.TrimSpace(fb.title)
	task.Priority = fb.priority
	task.Time = strings.TrimSpace(fb.timeOfDay)

	task.GroupID = nil
	if fb.groupID != 0 {
		id := fb.groupID
		task.GroupID = &id
	}

	var err error
	if task.Deadline, err = optionalDate(fb.deadline); err != nil {
		return task, err
	}

	rule := recurrence.Rule{Frequency: fb.frequency, Excluded: task.ExcludedDates}
	if fb.frequency.IsRecurring() {
		interval, err := strconv.Atoi(strings.TrimSpace(fb.interval))
		if err != nil {
			return task, fmt.Errorf("interval: %w", err)
		}
		rule.Interval = interval
		rule.Weekdays = recurrence.NewWeekdays(fb.weekdays...)
		start, err := optionalDate(fb.start)
		if err != nil {
			return task, err
		}
		until, err := optionalDate(fb.until)
		if err != nil {
			return task, err
		}
		rule.Start = deref(start)
		rule.Until = deref(until)
	} else {
		rule.Excluded = nil
	}
	task.SetRule(rule)
	return task, nil
}

func bindingsFrom(t model.Task) formBindings {
	fb := formBindings{
		title:     t.Title,
		deadline:  dateText(t.Deadline),
		priority:  t.Priority,
		timeOfDay: t.Time,
		frequency: t.RepeatFrequency,
		interval:  strconv.Itoa(max(t.RepeatInterval, 1)),
		weekdays:  t.RepeatDays.Days(),
		start:     dateText(t.StartDate),
		until:     dateText(t.RepeatUntil),
	}
	if fb.frequency == "" {
		fb.frequency = recurrence.None
	}
	if t.GroupID != nil {
		fb.groupID = *t.GroupID
	}
	return fb
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func (m Model) validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(m.cat.T(i18n.Required, fieldName))
		}
		return nil
	}
}

func (m Model) validateOptionalDate(s string) error {
	if _, err := optionalDate(s); err != nil {
		return errors.New(m.cat.T(i18n.InvalidDate))
	}
	return nil
}

func (m Model) validateInterval(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return errors.New(m.cat.T(i18n.InvalidNumber))
	}
	return nil
}

func optionalDate(s string) (*recurrence.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := recurrence.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func dateText(d *recurrence.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func deref(d *recurrence.Date) recurrence.Date {
	if d == nil {
		return recurrence.Date{}
	}
	return *d
}
