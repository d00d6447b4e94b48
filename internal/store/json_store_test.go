package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/recurrence"
)

func TestJSONStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewJSONStore(dir)
	require.NoError(t, err)

	group, err := s.CreateGroup(ctx, model.Group{Name: "Errands"})
	require.NoError(t, err)
	task, err := s.CreateTask(ctx, model.Task{
		Title:           "Groceries",
		GroupID:         &group.ID,
		RepeatFrequency: recurrence.Weekly,
		ExcludedDates:   recurrence.NewDateSet(recurrence.MustParseDate("2025-02-01")),
	})
	require.NoError(t, err)
	require.NoError(t, s.MarkCompleted(ctx, task.ID, recurrence.MustParseDate("2025-01-25")))

	for _, name := range []string{tasksFile, groupsFile, instancesFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	reopened, err := NewJSONStore(dir)
	require.NoError(t, err)

	got, err := reopened.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Title)
	assert.Equal(t, "2025-02-01", got.ExcludedDates.String())
	require.NotNil(t, got.GroupID)
	assert.Equal(t, group.ID, *got.GroupID)

	dates, err := reopened.FindCompletedDates(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, []recurrence.Date{recurrence.MustParseDate("2025-01-25")}, dates)
}

func TestJSONStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)

	d := recurrence.MustParseDate("2025-01-01")
	task, err := s.CreateTask(ctx, model.Task{Title: "x", Deadline: &d})
	require.NoError(t, err)

	got, err := s.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	*got.Deadline = recurrence.MustParseDate("2030-01-01")

	again, err := s.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", again.Deadline.String())
}

func TestJSONStore_RejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, tasksFile), []byte("{not json"), 0o600))

	_, err := NewJSONStore(dir)
	assert.Error(t, err)
}

func TestJSONStore_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewJSONStore(dir)
	require.NoError(t, err)
	_, err = s.CreateTask(context.Background(), model.Task{Title: "x"})
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}
