package tasklist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/planit/internal/i18n"
	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/recurrence"
	"github.com/nhle/planit/internal/theme"
)

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task  model.Task
	Group string
}

func (i TaskItem) FilterValue() string { return i.Task.Title }

func (i TaskItem) Title() string { return i.Task.Title }

// Description returns a plain summary line for the list.
func (i TaskItem) Description() string {
	parts := []string{i.Task.Rule().String()}
	if due := i.Task.DueDate(); due != nil {
		parts = append(parts, due.String())
	}
	if i.Group != "" {
		parts = append(parts, i.Group)
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate renders one task per line.
type ItemDelegate struct {
	// Shared with the list model so language and date changes apply
	// without rebuilding the delegate.
	env *renderEnv
}

type renderEnv struct {
	cat   *i18n.Catalog
	today recurrence.Date
}

func (d ItemDelegate) Height() int { return 1 }

func (d ItemDelegate) Spacing() int { return 0 }

func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single list item line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	fmt.Fprint(w, renderLine(ti, d.env, index == m.Index()))
}

func renderLine(ti TaskItem, env *renderEnv, selected bool) string {
	t := ti.Task

	prefix := "○"
	if t.Done {
		prefix = "✓"
	}
	if t.IsRecurring() {
		prefix = "↻"
	}

	priBadge := theme.PriorityStyle(t.Priority).Render(priorityLabel(t.Priority))

	groupBadge := ""
	if ti.Group != "" {
		groupBadge = theme.GroupStyle.Render(" [" + ti.Group + "]")
	}

	dueStr := ""
	if due := t.DueDate(); due != nil {
		label := env.cat.T(i18n.Due)
		if t.IsRecurring() {
			label = env.cat.T(i18n.Next)
		}
		dueStr = theme.DueDateStyle.Render(fmt.Sprintf(" %s %s", label, due))
		if t.Time != "" {
			dueStr += theme.DueDateStyle.Render(" " + t.Time)
		}
	}

	repeatStr := ""
	if t.IsRecurring() {
		repeatStr = theme.RecurrenceStyle.Render(" (" + t.Rule().String() + ")")
	}

	overdueStr := ""
	if t.IsOverdue(env.today) {
		overdueStr = theme.OverdueStyle.Render(" " + env.cat.T(i18n.Overdue))
	}

	line := fmt.Sprintf("%s %s %s%s%s%s%s",
		prefix, priBadge, t.Title, groupBadge, dueStr, repeatStr, overdueStr)

	if t.Done && !t.IsRecurring() {
		line = theme.DimmedStyle.Render(line)
	}
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// priorityLabel returns a short label for the given priority.
func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "!!!"
	case model.PriorityMedium:
		return "!! "
	case model.PriorityLow:
		return "!  "
	default:
		return "   "
	}
}
