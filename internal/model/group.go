package model

import "github.com/nhle/planit/internal/recurrence"

// Group is a named bucket of tasks.
type Group struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// CompletedInstance records that one occurrence of a recurring task was
// finished. There is at most one per task and date.
type CompletedInstance struct {
	ID     int64           `json:"id" db:"id"`
	TaskID string          `json:"taskId" db:"task_id"`
	Date   recurrence.Date `json:"date" db:"completed_date"`
}
