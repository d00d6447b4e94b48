package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nhle/planit/internal/i18n"
	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/recurrence"
	"github.com/nhle/planit/internal/theme"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// renderTable lays out tasks as a bordered console table.
func renderTable(tasks []model.Task, groups map[int64]string, today recurrence.Date, cat *i18n.Catalog) string {
	rows := make([][]string, 0, len(tasks))
	overdue := make(map[int]bool)
	for i, t := range tasks {
		rows = append(rows, taskRow(t, groups, cat))
		overdue[i] = t.IsOverdue(today)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		Headers(
			cat.T(i18n.TableTitle),
			cat.T(i18n.TableStatus),
			cat.T(i18n.FieldPriority),
			cat.T(i18n.Due),
			cat.T(i18n.Repeats),
			cat.T(i18n.FieldGroup),
		).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 3 && overdue[row] {
				return cellStyle.Foreground(theme.ColorRed)
			}
			return cellStyle
		}).
		String()
}

func taskRow(t model.Task, groups map[int64]string, cat *i18n.Catalog) []string {
	status := cat.T(i18n.Open)
	if t.Done {
		status = cat.T(i18n.Done)
	}

	due := ""
	if d := t.DueDate(); d != nil {
		due = d.String()
		if t.Time != "" {
			due += " " + t.Time
		}
	}

	repeats := ""
	if t.IsRecurring() {
		repeats = t.Rule().String()
	}

	group := ""
	if t.GroupID != nil {
		group = groups[*t.GroupID]
	}

	return []string{t.Title, status, cat.Priority(t.Priority), due, repeats, group}
}
