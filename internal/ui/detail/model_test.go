package detail

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/planit/internal/i18n"
	"github.com/nhle/planit/internal/keys"
	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/recurrence"
	"github.com/nhle/planit/internal/service"
	"github.com/nhle/planit/tests/testutil"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func setup(t *testing.T, task model.Task) (Model, *model.Task) {
	t.Helper()
	st := testutil.NewTestStore(t)
	clock := testutil.NewClock(2025, time.January, 8, 9)
	tasks := service.NewTaskService(st, clock, nil)
	groups := service.NewGroupService(st, nil)

	g, err := groups.Create(context.Background(), "Health")
	require.NoError(t, err)
	task.GroupID = &g.ID
	created, err := tasks.Create(context.Background(), task)
	require.NoError(t, err)

	m := New(tasks, groups, i18n.New(model.LanguageEnglish), keys.DefaultKeyMap(), 100, 40)
	m.SetLoading(true)
	m, _ = m.Update(m.Load(created.ID)())
	return m, created
}

func gym() model.Task {
	start := recurrence.MustParseDate("2025-01-06")
	return model.Task{
		Title:           "Gym",
		RepeatFrequency: recurrence.Weekly,
		RepeatDays:      recurrence.NewWeekdays(time.Monday, time.Wednesday),
		StartDate:       &start,
	}
}

func TestLoad_ShowsUpcomingOccurrences(t *testing.T) {
	m, _ := setup(t, gym())

	require.Len(t, m.occurrences, 17)
	date, ok := m.SelectedDate()
	require.True(t, ok)
	assert.Equal(t, recurrence.MustParseDate("2025-01-08"), date)

	view := m.View()
	assert.Contains(t, view, "Gym")
	assert.Contains(t, view, "Health")
	assert.Contains(t, view, "every week on MON,WED")
	assert.Contains(t, view, "2025-01-08 Wed")
}

func TestCursorAndActions(t *testing.T) {
	m, created := setup(t, gym())

	m, _ = m.Update(runes("j"))
	date, _ := m.SelectedDate()
	assert.Equal(t, recurrence.MustParseDate("2025-01-13"), date)

	tests := []struct {
		key    string
		action Action
	}{
		{"c", ActionComplete},
		{"x", ActionExclude},
		{"u", ActionCutOff},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			_, cmd := m.Update(runes(tt.key))
			require.NotNil(t, cmd)
			assert.Equal(t, ActionMsg{Action: tt.action, TaskID: created.ID, Date: date}, cmd())
		})
	}

	m, _ = m.Update(runes("k"))
	m, _ = m.Update(runes("k"))
	date, _ = m.SelectedDate()
	assert.Equal(t, recurrence.MustParseDate("2025-01-08"), date, "cursor stops at the first row")
}

func TestOneOffTaskHasNoOccurrenceActions(t *testing.T) {
	deadline := recurrence.MustParseDate("2025-01-20")
	m, _ := setup(t, model.Task{Title: "Dentist", Deadline: &deadline})

	require.Len(t, m.occurrences, 1)
	_, cmd := m.Update(runes("c"))
	assert.Nil(t, cmd)
}

func TestBack(t *testing.T) {
	m, _ := setup(t, gym())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, BackMsg{}, cmd())
}

func TestLoadError(t *testing.T) {
	m, _ := setup(t, gym())
	m, _ = m.Update(m.Load("missing")())
	assert.Contains(t, m.View(), "Error:")
}
