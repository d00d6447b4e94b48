package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/recurrence"
	"github.com/nhle/planit/internal/service"
	"github.com/nhle/planit/internal/store"
	"github.com/nhle/planit/internal/ui/command"
	"github.com/nhle/planit/internal/ui/detail"
	"github.com/nhle/planit/internal/ui/taskform"
	"github.com/nhle/planit/tests/testutil"
)

type fixture struct {
	tasks  *service.TaskService
	groups *service.GroupService
	cfg    *model.AppConfig
	path   string
}

func setup(t *testing.T) (Model, fixture) {
	t.Helper()
	st := testutil.NewTestStore(t)
	clock := testutil.NewClock(2025, time.January, 8, 9)
	f := fixture{
		tasks:  service.NewTaskService(st, clock, nil),
		groups: service.NewGroupService(st, nil),
		cfg:    model.DefaultAppConfig(),
		path:   filepath.Join(t.TempDir(), "config.yaml"),
	}
	m := New(Options{Tasks: f.tasks, Groups: f.groups, Config: f.cfg, ConfigPath: f.path})
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, f
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	mdl, _ := m.Update(msg)
	out, ok := mdl.(Model)
	require.True(t, ok)
	return out
}

// send delivers msg and then the message produced by the returned
// command, which must not be a batch.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	mdl, cmd := m.Update(msg)
	out := mdl.(Model)
	require.NotNil(t, cmd)
	return update(t, out, cmd())
}

func load(t *testing.T, m Model) Model {
	t.Helper()
	return update(t, m, m.taskList.LoadTasks()())
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestView_ShowsTasksAndDashboard(t *testing.T) {
	m, f := setup(t)
	deadline := recurrence.MustParseDate("2025-01-02")
	_, err := f.tasks.Create(context.Background(), model.Task{Title: "File taxes", Deadline: &deadline})
	require.NoError(t, err)

	m = load(t, m)
	view := m.View()
	assert.Contains(t, view, "planit")
	assert.Contains(t, view, "File taxes")
	assert.Contains(t, view, "OVERDUE")
}

func TestView_NotReady(t *testing.T) {
	_, f := setup(t)
	m := New(Options{Tasks: f.tasks, Groups: f.groups})
	assert.Equal(t, "Loading...", m.View())
}

func TestToggleDone(t *testing.T) {
	m, f := setup(t)
	ctx := context.Background()
	task, err := f.tasks.Create(ctx, model.Task{Title: "Call mom"})
	require.NoError(t, err)
	m = load(t, m)

	m = send(t, m, runes("x"))
	assert.Equal(t, "Task marked as done!", m.flash)

	got, err := f.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, got.Done)
}

func TestDeleteTask(t *testing.T) {
	m, f := setup(t)
	ctx := context.Background()
	task, err := f.tasks.Create(ctx, model.Task{Title: "Old note"})
	require.NoError(t, err)
	m = load(t, m)

	m = send(t, m, runes("d"))
	assert.Equal(t, "Task deleted: Old note", m.flash)

	_, err = f.tasks.Get(ctx, task.ID)
	assert.Error(t, err)
}

func TestNewOpensForm(t *testing.T) {
	m, f := setup(t)
	_, err := f.groups.Create(context.Background(), "Home")
	require.NoError(t, err)

	mdl, cmd := m.Update(runes("n"))
	m = mdl.(Model)
	assert.Equal(t, ViewTaskForm, m.currentView)
	require.NotNil(t, cmd)

	msg, ok := cmd().(formGroupsLoadedMsg)
	require.True(t, ok)
	assert.Len(t, msg.groups, 1)
	assert.Nil(t, msg.edit)
}

func TestTaskSubmitted(t *testing.T) {
	m, f := setup(t)
	m.currentView = ViewTaskForm

	m = send(t, m, taskform.TaskSubmittedMsg{Task: model.Task{Title: "Water plants"}})
	assert.Equal(t, ViewList, m.currentView)
	assert.Equal(t, "Task added successfully!", m.flash)

	all, err := f.tasks.List(context.Background(), store.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Water plants", all[0].Title)
}

func TestToggleLanguagePersists(t *testing.T) {
	m, f := setup(t)

	mdl, _ := m.Update(runes("L"))
	m = mdl.(Model)
	assert.Equal(t, model.LanguageGerman, f.cfg.Display.Language)
	assert.Equal(t, "Sprache auf Deutsch umgestellt.", m.flash)

	require.NoError(t, m.saveSettings()().(settingsSavedMsg).err)
	saved, err := model.LoadConfig(f.path)
	require.NoError(t, err)
	assert.Equal(t, model.LanguageGerman, saved.Display.Language)
}

func TestCycleDashboardMode(t *testing.T) {
	m, f := setup(t)
	mdl, cmd := m.Update(runes("m"))
	m = mdl.(Model)
	assert.Equal(t, model.DashboardPercentages, f.cfg.Display.DashboardMode)
	require.NotNil(t, cmd)
	assert.Equal(t, settingsSavedMsg{}, cmd())
}

func TestHelpAndCommandViews(t *testing.T) {
	m, _ := setup(t)

	m = update(t, m, runes("?"))
	assert.Equal(t, ViewHelp, m.currentView)
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewList, m.currentView)

	m = update(t, m, runes(":"))
	assert.Equal(t, ViewCommand, m.currentView)

	mdl, cmd := m.Update(command.CommandMsg{Kind: command.Today})
	m = mdl.(Model)
	require.NotNil(t, cmd)
	assert.Equal(t, ViewList, m.currentView)
	assert.True(t, m.taskList.TodayOnly())

	m = update(t, m, command.ErrorMsg{Err: assert.AnError})
	assert.Contains(t, m.flash, "Unknown command")
}

func TestOccurrenceAction(t *testing.T) {
	m, f := setup(t)
	ctx := context.Background()
	start := recurrence.MustParseDate("2025-01-06")
	task, err := f.tasks.Create(ctx, model.Task{
		Title:           "Gym",
		RepeatFrequency: recurrence.Daily,
		StartDate:       &start,
	})
	require.NoError(t, err)
	require.NotNil(t, task.NextOccurrence)
	assert.Equal(t, "2025-01-08", task.NextOccurrence.String())

	date := recurrence.MustParseDate("2025-01-08")
	m = update(t, m, m.applyOccurrenceAction(detail.ActionMsg{
		Action: detail.ActionExclude,
		TaskID: task.ID,
		Date:   date,
	})())
	assert.Equal(t, "Occurrence on 2025-01-08 skipped.", m.flash)

	got, err := f.tasks.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-09", got.NextOccurrence.String())
}

func TestQuit(t *testing.T) {
	m, _ := setup(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestDayRollover(t *testing.T) {
	m, _ := setup(t)
	assert.Equal(t, "2025-01-08", m.day.String())

	mdl, cmd := m.Update(dayTickMsg{today: recurrence.MustParseDate("2025-01-08")})
	m = mdl.(Model)
	assert.NotNil(t, cmd)
	assert.Equal(t, "2025-01-08", m.day.String())

	mdl, cmd = m.Update(dayTickMsg{today: recurrence.MustParseDate("2025-01-09")})
	m = mdl.(Model)
	assert.NotNil(t, cmd)
	assert.Equal(t, "2025-01-09", m.day.String())
}
