package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/nhle/planit/internal/recurrence"
)

// Priority is the importance of a task. The empty value means none.
type Priority string

const (
	PriorityNone   Priority = ""
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Priorities lists the selectable priorities, highest first.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// ParsePriority parses a priority name case-insensitively.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case PriorityNone, PriorityHigh, PriorityMedium, PriorityLow:
		return p, nil
	}
	return PriorityNone, fmt.Errorf("unknown priority %q", s)
}

// Rank orders priorities for sorting: HIGH first, none last.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Task is a single to-do item, optionally repeating.
type Task struct {
	ID       string           `json:"id" db:"id"`
	Title    string           `json:"title" db:"title"`
	Deadline *recurrence.Date `json:"deadline,omitempty" db:"deadline"`
	Priority Priority         `json:"priority,omitempty" db:"priority"`
	Done     bool             `json:"done" db:"done"`
	Archived bool             `json:"archived" db:"archived"`
	GroupID  *int64           `json:"groupId,omitempty" db:"group_id"`

	// Time is a free-form time of day shown next to the deadline.
	Time string `json:"time,omitempty" db:"time"`

	RepeatFrequency recurrence.Frequency `json:"repeatFrequency,omitempty" db:"repeat_frequency"`
	RepeatDays      recurrence.Weekdays  `json:"repeatDays,omitempty" db:"repeat_days"`
	RepeatInterval  int                  `json:"repeatInterval,omitempty" db:"repeat_interval"`
	RepeatUntil     *recurrence.Date     `json:"repeatUntil,omitempty" db:"repeat_until"`
	StartDate       *recurrence.Date     `json:"startDate,omitempty" db:"start_date"`
	ExcludedDates   recurrence.DateSet   `json:"excludedDates,omitempty" db:"excluded_dates"`

	// NextOccurrence caches the engine's answer; recomputed on every write.
	NextOccurrence *recurrence.Date `json:"nextOccurrence,omitempty" db:"next_occurrence"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// IsRecurring reports whether the task repeats.
func (t Task) IsRecurring() bool {
	return t.RepeatFrequency.IsRecurring()
}

// Rule returns the recurrence rule stored on the task.
func (t Task) Rule() recurrence.Rule {
	return recurrence.Rule{
		Frequency: t.RepeatFrequency,
		Interval:  t.RepeatInterval,
		Weekdays:  t.RepeatDays,
		Start:     deref(t.StartDate),
		Until:     deref(t.RepeatUntil),
		Excluded:  t.ExcludedDates,
	}
}

// SetRule stores r on the task.
func (t *Task) SetRule(r recurrence.Rule) {
	t.RepeatFrequency = r.Frequency
	t.RepeatInterval = r.Interval
	t.RepeatDays = r.Weekdays
	t.StartDate = ref(r.Start)
	t.RepeatUntil = ref(r.Until)
	t.ExcludedDates = r.Excluded
}

// Series returns the engine input for this task, reading the creation date
// in the local time zone.
func (t Task) Series() recurrence.Series {
	return t.SeriesIn(time.Local)
}

// SeriesIn is like Series but reads the creation date in loc.
func (t Task) SeriesIn(loc *time.Location) recurrence.Series {
	s := recurrence.Series{Rule: t.Rule(), Deadline: deref(t.Deadline)}
	if !t.CreatedAt.IsZero() {
		s.Created = recurrence.DateOf(t.CreatedAt.In(loc))
	}
	return s
}

// DueDate is the date shown for the task: the next occurrence for
// recurring tasks and the deadline otherwise.
func (t Task) DueDate() *recurrence.Date {
	if t.IsRecurring() {
		return t.NextOccurrence
	}
	return t.Deadline
}

// IsOverdue reports whether an open, non-recurring task is past its
// deadline.
func (t Task) IsOverdue(today recurrence.Date) bool {
	return !t.Done && !t.IsRecurring() && t.Deadline != nil && t.Deadline.Before(today)
}

// DateRef returns a pointer to d, or nil for the zero Date.
func DateRef(d recurrence.Date) *recurrence.Date { return ref(d) }

func ref(d recurrence.Date) *recurrence.Date {
	if d.IsZero() {
		return nil
	}
	return &d
}

func deref(d *recurrence.Date) recurrence.Date {
	if d == nil {
		return recurrence.Date{}
	}
	return *d
}
