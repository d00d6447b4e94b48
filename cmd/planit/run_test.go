package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/planit/internal/i18n"
	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/recurrence"
	"github.com/nhle/planit/internal/store"
	"github.com/nhle/planit/tests/testutil"
)

// writeConfig points planit at a JSON store in a temp dir.
func writeConfig(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "storage:\n  backend: json\n  json_dir: " + dir + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path, dir
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRun_MissingCommand(t *testing.T) {
	_, stderr, err := runCLI(t)
	require.Error(t, err)
	assert.Contains(t, stderr, "Usage: planit")
}

func TestRun_UnknownCommand(t *testing.T) {
	path, _ := writeConfig(t)
	_, _, err := runCLI(t, "-config", path, "launch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command: launch")
}

func TestRun_Help(t *testing.T) {
	stdout, _, err := runCLI(t, "help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "token set <value>")
	assert.Contains(t, stdout, "-config")
}

func TestRun_ListEmpty(t *testing.T) {
	path, _ := writeConfig(t)
	stdout, _, err := runCLI(t, "-config", path, "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No tasks found.")
}

func TestRun_ListAndRefresh(t *testing.T) {
	path, dir := writeConfig(t)

	st, err := store.NewJSONStore(dir)
	require.NoError(t, err)
	start := recurrence.MustParseDate("2025-01-06")
	testutil.SeedTask(t, st, model.Task{
		ID:              "t1",
		Title:           "Water plants",
		RepeatFrequency: recurrence.Daily,
		RepeatInterval:  1,
		StartDate:       &start,
	})
	require.NoError(t, st.Close())

	stdout, _, err := runCLI(t, "-config", path, "refresh")
	require.NoError(t, err)
	assert.Contains(t, stdout, "refreshed 1 tasks")

	stdout, _, err = runCLI(t, "-config", path, "list", "-sort", "title")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Water plants")
	assert.Contains(t, stdout, "Repeats")
}

func TestRun_TokenUsage(t *testing.T) {
	path, _ := writeConfig(t)
	_, _, err := runCLI(t, "-config", path, "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage: planit token")
}

func TestRenderTable(t *testing.T) {
	cat := i18n.New(model.LanguageGerman)
	deadline := recurrence.MustParseDate("2025-01-02")
	var home int64 = 1
	out := renderTable([]model.Task{
		{Title: "Steuern", Deadline: &deadline, Priority: model.PriorityHigh, GroupID: &home},
	}, map[int64]string{1: "Zuhause"}, recurrence.MustParseDate("2025-01-08"), cat)

	assert.Contains(t, out, "Aufgabe")
	assert.Contains(t, out, "Steuern")
	assert.Contains(t, out, "2025-01-02")
	assert.Contains(t, out, "Zuhause")
	assert.Contains(t, out, "Offen")
}
