package ui

import (
	"fmt"
	"strings"

	"github.com/nhle/planit/internal/i18n"
	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/service"
)

// DashboardSummary formats the header counters in the given mode.
func DashboardSummary(d service.Dashboard, mode model.DashboardMode, cat *i18n.Catalog) string {
	type entry struct {
		label string
		n     int
	}
	entries := []entry{
		{cat.T(i18n.Open), d.Open},
		{cat.T(i18n.Done), d.Done},
		{cat.T(i18n.Overdue), d.Overdue},
		{cat.T(i18n.DueToday), d.DueToday},
	}

	parts := make([]string, 0, len(entries)+1)
	if mode != model.DashboardPercentages {
		parts = append(parts, fmt.Sprintf("%s %d", cat.T(i18n.Total), d.Total))
	}
	for _, e := range entries {
		switch mode {
		case model.DashboardPercentages:
			parts = append(parts, fmt.Sprintf("%s %d%%", e.label, d.Percent(e.n)))
		case model.DashboardBoth:
			parts = append(parts, fmt.Sprintf("%s %d (%d%%)", e.label, e.n, d.Percent(e.n)))
		default:
			parts = append(parts, fmt.Sprintf("%s %d", e.label, e.n))
		}
	}
	return strings.Join(parts, " · ")
}
