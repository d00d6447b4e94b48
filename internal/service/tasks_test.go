package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/recurrence"
	"github.com/nhle/planit/internal/store"
	"github.com/nhle/planit/tests/testutil"
)

func d(s string) recurrence.Date { return recurrence.MustParseDate(s) }

func dp(s string) *recurrence.Date {
	v := d(s)
	return &v
}

func newTestService(t *testing.T) (*TaskService, *GroupService, *testutil.Clock) {
	t.Helper()
	st := testutil.NewTestStore(t)
	clock := testutil.NewClock(2025, time.January, 8, 9)
	return NewTaskService(st, clock, nil), NewGroupService(st, nil), clock
}

func weeklyGym() model.Task {
	return model.Task{
		Title:           "  Gym  ",
		RepeatFrequency: "weekly",
		RepeatDays:      recurrence.NewWeekdays(time.Monday, time.Wednesday),
		StartDate:       dp("2025-01-06"),
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	missingGroup := int64(42)

	tests := []struct {
		name string
		task model.Task
	}{
		{"blank title", model.Task{Title: "  "}},
		{"bad priority", model.Task{Title: "x", Priority: "URGENT"}},
		{"bad frequency", model.Task{Title: "x", RepeatFrequency: "HOURLY"}},
		{"until before start", model.Task{Title: "x", RepeatFrequency: recurrence.Daily, StartDate: dp("2025-02-01"), RepeatUntil: dp("2025-01-01")}},
		{"interval too large", model.Task{Title: "x", RepeatFrequency: recurrence.Weekly, RepeatInterval: recurrence.MaxInterval + 1}},
		{"unknown group", model.Task{Title: "x", GroupID: &missingGroup}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.task)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreate_NormalizesAndComputesNext(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, weeklyGym())
	require.NoError(t, err)
	assert.Equal(t, "Gym", created.Title)
	assert.Equal(t, recurrence.Weekly, created.RepeatFrequency)
	assert.Equal(t, 1, created.RepeatInterval)
	require.NotNil(t, created.NextOccurrence)
	assert.Equal(t, d("2025-01-08"), *created.NextOccurrence)

	once, err := svc.Create(ctx, model.Task{Title: "Dentist", Deadline: dp("2025-01-20"), Priority: "high"})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, once.Priority)
	assert.Nil(t, once.NextOccurrence, "one-off tasks keep no cached occurrence")
}

func TestMarkDone_RecurringAdvances(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, weeklyGym())
	require.NoError(t, err)

	task, err = svc.MarkDone(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, d("2025-01-13"), *task.NextOccurrence)
	assert.False(t, task.Done)

	task, err = svc.MarkDone(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, d("2025-01-15"), *task.NextOccurrence)

	task, err = svc.MarkUndone(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, d("2025-01-13"), *task.NextOccurrence)

	stored, err := svc.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, d("2025-01-13"), *stored.NextOccurrence)
}

func TestMarkDone_OneOffFlipsFlag(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, model.Task{Title: "Call bank"})
	require.NoError(t, err)

	task, err = svc.MarkDone(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, task.Done)

	task, err = svc.MarkUndone(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, task.Done)

	_, err = svc.MarkDone(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMarkDone_MonthEndClamp(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	clock.Advance(24 * 24 * time.Hour) // 2025-02-01

	task, err := svc.Create(ctx, model.Task{
		Title:           "Rent",
		RepeatFrequency: recurrence.Monthly,
		StartDate:       dp("2025-01-31"),
	})
	require.NoError(t, err)
	assert.Equal(t, d("2025-02-28"), *task.NextOccurrence)

	task, err = svc.MarkDone(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, d("2025-03-31"), *task.NextOccurrence)
}

func TestExcludeAndCutOff(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, weeklyGym())
	require.NoError(t, err)
	task, err = svc.CompleteOccurrence(ctx, task.ID, d("2025-01-08"))
	require.NoError(t, err)
	require.Equal(t, d("2025-01-13"), *task.NextOccurrence)

	task, err = svc.ExcludeOccurrence(ctx, task.ID, d("2025-01-13"))
	require.NoError(t, err)
	assert.Equal(t, "2025-01-13", task.ExcludedDates.String())
	assert.Equal(t, d("2025-01-15"), *task.NextOccurrence)

	task, err = svc.CutOff(ctx, task.ID, d("2025-01-13"))
	require.NoError(t, err)
	assert.Equal(t, "2025-01-12", task.RepeatUntil.String())
	assert.Nil(t, task.NextOccurrence, "series has ended")
}

func TestCompleteOccurrence_Rejections(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	gym, err := svc.Create(ctx, weeklyGym())
	require.NoError(t, err)
	once, err := svc.Create(ctx, model.Task{Title: "Once"})
	require.NoError(t, err)

	_, err = svc.CompleteOccurrence(ctx, gym.ID, d("2025-01-09"))
	assert.ErrorIs(t, err, ErrValidation, "thursday is not in the series")

	_, err = svc.CompleteOccurrence(ctx, once.ID, d("2025-01-09"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.ExcludeOccurrence(ctx, gym.ID, recurrence.Date{})
	assert.ErrorIs(t, err, recurrence.ErrInvalidArgument)
}

func TestTasksOnAndDashboard(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, model.Task{Title: "Due today", Deadline: dp("2025-01-08")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, model.Task{Title: "Late", Deadline: dp("2025-01-02")})
	require.NoError(t, err)
	done, err := svc.Create(ctx, model.Task{Title: "Finished", Deadline: dp("2025-01-08")})
	require.NoError(t, err)
	_, err = svc.MarkDone(ctx, done.ID)
	require.NoError(t, err)
	daily, err := svc.Create(ctx, model.Task{Title: "Stretch", RepeatFrequency: recurrence.Daily, StartDate: dp("2025-01-01")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, weeklyGym())
	require.NoError(t, err)

	titles := func(tasks []model.Task) []string {
		var out []string
		for _, t := range tasks {
			out = append(out, t.Title)
		}
		return out
	}

	on, err := svc.TasksOn(ctx, d("2025-01-08"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Due today", "Stretch", "Gym"}, titles(on))

	_, err = svc.CompleteOccurrence(ctx, daily.ID, d("2025-01-08"))
	require.NoError(t, err)
	on, err = svc.TasksOn(ctx, d("2025-01-08"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Due today", "Gym"}, titles(on))

	dash, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, Dashboard{Total: 5, Done: 1, Open: 4, Overdue: 1, DueToday: 2}, dash)
	assert.Equal(t, 20, dash.Percent(dash.Done))
	assert.Equal(t, 0, Dashboard{}.Percent(3))

	_, err = svc.TasksOn(ctx, recurrence.Date{})
	assert.ErrorIs(t, err, recurrence.ErrInvalidArgument)
}

func TestClearCompletedAndArchive(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, model.Task{Title: "a"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, model.Task{Title: "b"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, model.Task{Title: "c", RepeatFrequency: recurrence.Daily})
	require.NoError(t, err)
	_, err = svc.MarkDone(ctx, a.ID)
	require.NoError(t, err)

	n, err := svc.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, svc.Archive(ctx, b.ID))
	archived, err := svc.ArchiveList(ctx)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, "b", archived[0].Title)

	left, err := svc.List(ctx, store.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "c", left[0].Title)
}

func TestRefreshAll(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, model.Task{Title: "Pills", RepeatFrequency: recurrence.Daily, StartDate: dp("2025-01-01")})
	require.NoError(t, err)
	assert.Equal(t, d("2025-01-08"), *task.NextOccurrence)

	clock.Advance(5 * 24 * time.Hour)
	n, err := svc.RefreshAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := svc.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, d("2025-01-13"), *got.NextOccurrence)

	n, err = svc.RefreshAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSearchAndOccurrences(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	gym, err := svc.Create(ctx, weeklyGym())
	require.NoError(t, err)
	_, err = svc.Create(ctx, model.Task{Title: "Groceries"})
	require.NoError(t, err)

	found, err := svc.Search(ctx, "gy")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, gym.ID, found[0].ID)

	none, err := svc.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.CompleteOccurrence(ctx, gym.ID, d("2025-01-08"))
	require.NoError(t, err)

	occ, err := svc.Occurrences(ctx, gym.ID, d("2025-01-06"), d("2025-01-13"))
	require.NoError(t, err)
	assert.Equal(t, []Occurrence{
		{Date: d("2025-01-06")},
		{Date: d("2025-01-08"), Completed: true},
		{Date: d("2025-01-13")},
	}, occ)
}

func TestUpdate_PreservesCreatedAt(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, model.Task{Title: "Draft"})
	require.NoError(t, err)
	clock.Advance(time.Hour)

	task.Title = "Final"
	task.CreatedAt = time.Time{}
	updated, err := svc.Update(ctx, *task)
	require.NoError(t, err)
	assert.Equal(t, "Final", updated.Title)
	assert.False(t, updated.CreatedAt.IsZero())

	_, err = svc.Update(ctx, model.Task{ID: "missing", Title: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGroupService(t *testing.T) {
	svc, groups, _ := newTestService(t)
	ctx := context.Background()

	_, err := groups.Create(ctx, " ")
	assert.ErrorIs(t, err, ErrValidation)

	g, err := groups.Create(ctx, "Home")
	require.NoError(t, err)

	task, err := svc.Create(ctx, model.Task{Title: "Vacuum", GroupID: &g.ID})
	require.NoError(t, err)

	renamed, err := groups.Rename(ctx, g.ID, "House")
	require.NoError(t, err)
	assert.Equal(t, "House", renamed.Name)

	names, err := groups.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{g.ID: "House"}, names)

	require.NoError(t, groups.Delete(ctx, g.ID))
	got, err := svc.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, got.GroupID)
}
