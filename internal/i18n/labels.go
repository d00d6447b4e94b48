package i18n

import (
	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/recurrence"
)

// Priority returns the display name of p.
func (c *Catalog) Priority(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return c.T(PriorityHigh)
	case model.PriorityMedium:
		return c.T(PriorityMedium)
	case model.PriorityLow:
		return c.T(PriorityLow)
	default:
		return c.T(PriorityNone)
	}
}

// Frequency returns the display name of f.
func (c *Catalog) Frequency(f recurrence.Frequency) string {
	switch f {
	case recurrence.Daily:
		return c.T(RepeatDaily)
	case recurrence.Weekly:
		return c.T(RepeatWeekly)
	case recurrence.Monthly:
		return c.T(RepeatMonthly)
	case recurrence.Yearly:
		return c.T(RepeatYearly)
	case recurrence.Custom:
		return c.T(RepeatCustom)
	default:
		return c.T(RepeatNone)
	}
}
