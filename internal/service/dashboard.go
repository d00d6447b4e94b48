package service

import (
	"context"

	"github.com/nhle/planit/internal/store"
)

// Dashboard summarizes the active tasks.
type Dashboard struct {
	Total    int `json:"total"`
	Done     int `json:"done"`
	Open     int `json:"open"`
	Overdue  int `json:"overdue"`
	DueToday int `json:"dueToday"`
}

// Percent returns n as a whole percentage of the total.
func (d Dashboard) Percent(n int) int {
	if d.Total == 0 {
		return 0
	}
	return (n*100 + d.Total/2) / d.Total
}

// Dashboard counts the active tasks by state.
func (s *TaskService) Dashboard(ctx context.Context) (Dashboard, error) {
	tasks, err := s.store.GetTasks(ctx, store.TaskFilter{})
	if err != nil {
		return Dashboard{}, err
	}
	now := s.Today()

	var d Dashboard
	for _, t := range tasks {
		d.Total++
		if t.Done {
			d.Done++
		}
		if t.IsOverdue(now) {
			d.Overdue++
		}
	}
	d.Open = d.Total - d.Done

	due, err := s.TasksOn(ctx, now)
	if err != nil {
		return Dashboard{}, err
	}
	d.DueToday = len(due)
	return d, nil
}
