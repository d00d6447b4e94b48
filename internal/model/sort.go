package model

import (
	"cmp"
	"slices"
	"strings"
)

// SortField names a task ordering.
type SortField string

const (
	SortByCreated  SortField = "created_at"
	SortByDeadline SortField = "deadline"
	SortByPriority SortField = "priority"
	SortByTitle    SortField = "title"
)

// SortFields lists the orderings in the order the UI cycles through them.
var SortFields = []SortField{SortByCreated, SortByDeadline, SortByPriority, SortByTitle}

// ParseSortField returns the named ordering, defaulting to creation time.
func ParseSortField(s string) SortField {
	f := SortField(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(SortFields, f) {
		return f
	}
	return SortByCreated
}

// Next returns the following ordering in SortFields.
func (f SortField) Next() SortField {
	i := slices.Index(SortFields, f)
	return SortFields[(i+1)%len(SortFields)]
}

// SortTasks orders tasks in place. Tasks without a deadline or priority
// always come last; ties fall back to creation time and then ID.
func SortTasks(tasks []Task, by SortField, desc bool) {
	slices.SortStableFunc(tasks, func(a, b Task) int {
		c := comparePrimary(a, b, by, desc)
		if c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func comparePrimary(a, b Task, by SortField, desc bool) int {
	flip := func(c int) int {
		if desc {
			return -c
		}
		return c
	}
	switch by {
	case SortByDeadline:
		switch {
		case a.Deadline == nil && b.Deadline == nil:
			return 0
		case a.Deadline == nil:
			return 1
		case b.Deadline == nil:
			return -1
		}
		return flip(a.Deadline.Compare(*b.Deadline))
	case SortByPriority:
		ra, rb := a.Priority.Rank(), b.Priority.Rank()
		switch {
		case ra == rb:
			return 0
		case a.Priority == PriorityNone:
			return 1
		case b.Priority == PriorityNone:
			return -1
		}
		return flip(cmp.Compare(ra, rb))
	case SortByTitle:
		return flip(strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title)))
	default:
		return flip(a.CreatedAt.Compare(b.CreatedAt))
	}
}
