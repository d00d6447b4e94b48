package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/planit/internal/i18n"
	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/ui/detail"
)

// taskResultMsg is sent after a task write finished.
type taskResultMsg struct {
	flash string
	err   error
}

// occurrenceResultMsg is sent after an occurrence action finished.
type occurrenceResultMsg struct {
	taskID string
	flash  string
	err    error
}

// formGroupsLoadedMsg carries the group options for the task form. A
// non-nil edit opens the form on that task.
type formGroupsLoadedMsg struct {
	groups []model.Group
	edit   *model.Task
}

// settingsSavedMsg reports the result of writing display settings.
type settingsSavedMsg struct{ err error }

// loadFormGroups loads groups and prepares the form.
func (m *Model) loadFormGroups(edit *model.Task) tea.Cmd {
	groups := m.groups
	return func() tea.Msg {
		all, _ := groups.List(context.Background())
		return formGroupsLoadedMsg{groups: all, edit: edit}
	}
}

// saveTask creates a task, or updates it when the ID is set.
func (m *Model) saveTask(task model.Task) tea.Cmd {
	tasks, cat := m.tasks, m.cat
	return func() tea.Msg {
		ctx := context.Background()
		if task.ID == "" {
			_, err := tasks.Create(ctx, task)
			return taskResultMsg{flash: cat.T(i18n.TaskCreated), err: err}
		}
		_, err := tasks.Update(ctx, task)
		return taskResultMsg{flash: cat.T(i18n.TaskUpdated), err: err}
	}
}

// toggleDone marks an open task done or reopens a finished one. For a
// recurring task this completes its next occurrence.
func (m *Model) toggleDone(task model.Task) tea.Cmd {
	tasks, cat := m.tasks, m.cat
	return func() tea.Msg {
		ctx := context.Background()
		if task.Done {
			_, err := tasks.MarkUndone(ctx, task.ID)
			return taskResultMsg{flash: cat.T(i18n.TaskUpdated), err: err}
		}
		_, err := tasks.MarkDone(ctx, task.ID)
		return taskResultMsg{flash: cat.T(i18n.TaskDone), err: err}
	}
}

// deleteTask removes a task and its completed instances.
func (m *Model) deleteTask(task model.Task) tea.Cmd {
	tasks, cat := m.tasks, m.cat
	return func() tea.Msg {
		err := tasks.Delete(context.Background(), task.ID)
		return taskResultMsg{flash: cat.T(i18n.TaskDeleted, task.Title), err: err}
	}
}

// archiveTask moves a task to the archive.
func (m *Model) archiveTask(task model.Task) tea.Cmd {
	tasks, cat := m.tasks, m.cat
	return func() tea.Msg {
		err := tasks.Archive(context.Background(), task.ID)
		return taskResultMsg{flash: cat.T(i18n.TaskArchived, task.Title), err: err}
	}
}

// clearCompleted deletes finished one-off tasks.
func (m *Model) clearCompleted() tea.Cmd {
	tasks, cat := m.tasks, m.cat
	return func() tea.Msg {
		n, err := tasks.ClearCompleted(context.Background())
		return taskResultMsg{flash: cat.T(i18n.CompletedClear, n), err: err}
	}
}

// refreshAll recomputes every cached next occurrence.
func (m *Model) refreshAll() tea.Cmd {
	tasks, logger := m.tasks, m.logger
	return func() tea.Msg {
		n, err := tasks.RefreshAll(context.Background())
		if err == nil {
			logger.Debug("refreshed tasks", "changed", n)
		}
		return taskResultMsg{err: err}
	}
}

// applyOccurrenceAction runs a detail view action on one occurrence.
func (m *Model) applyOccurrenceAction(msg detail.ActionMsg) tea.Cmd {
	tasks, cat := m.tasks, m.cat
	return func() tea.Msg {
		ctx := context.Background()
		date := msg.Date.String()
		var (
			flash string
			err   error
		)
		switch msg.Action {
		case detail.ActionComplete:
			_, err = tasks.CompleteOccurrence(ctx, msg.TaskID, msg.Date)
			flash = cat.T(i18n.OccurrenceDone, date)
		case detail.ActionExclude:
			_, err = tasks.ExcludeOccurrence(ctx, msg.TaskID, msg.Date)
			flash = cat.T(i18n.OccurrenceSkip, date)
		case detail.ActionCutOff:
			_, err = tasks.CutOff(ctx, msg.TaskID, msg.Date)
			flash = cat.T(i18n.SeriesCutOff, date)
		default:
			err = errors.New("unknown occurrence action")
		}
		return occurrenceResultMsg{taskID: msg.TaskID, flash: flash, err: err}
	}
}

// saveSettings writes the display settings to the config file.
func (m *Model) saveSettings() tea.Cmd {
	if m.cfgPath == "" {
		return nil
	}
	path := m.cfgPath
	cfg := *m.cfg
	return func() tea.Msg {
		return settingsSavedMsg{err: model.SaveConfig(path, &cfg)}
	}
}
