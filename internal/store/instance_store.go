package store

import (
	"context"
	"fmt"

	"github.com/nhle/planit/internal/recurrence"
)

// MarkCompleted records that the task's occurrence on date was finished.
func (s *SQLiteStore) MarkCompleted(ctx context.Context, taskID string, date recurrence.Date) error {
	if date.IsZero() {
		return fmt.Errorf("marking task %s completed: %w", taskID, recurrence.ErrInvalidArgument)
	}
	if err := s.requireTask(ctx, taskID); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO task_instances_completed (task_id, completed_date)
		VALUES (?, ?)`, taskID, date)
	if err != nil {
		return fmt.Errorf("marking task %s completed on %s: %w", taskID, date, err)
	}
	return nil
}

// UnmarkCompleted removes a completed record. Missing records are ignored.
func (s *SQLiteStore) UnmarkCompleted(ctx context.Context, taskID string, date recurrence.Date) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM task_instances_completed WHERE task_id = ? AND completed_date = ?",
		taskID, date)
	if err != nil {
		return fmt.Errorf("unmarking task %s on %s: %w", taskID, date, err)
	}
	return nil
}

// IsCompletedOn reports whether the occurrence on date was finished.
func (s *SQLiteStore) IsCompletedOn(ctx context.Context, taskID string, date recurrence.Date) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM task_instances_completed
		WHERE task_id = ? AND completed_date = ?`, taskID, date)
	if err != nil {
		return false, fmt.Errorf("checking completion of task %s on %s: %w", taskID, date, err)
	}
	return count > 0, nil
}

// FindCompletedDates returns every completed date of a task in ascending
// order.
func (s *SQLiteStore) FindCompletedDates(ctx context.Context, taskID string) ([]recurrence.Date, error) {
	var dates []recurrence.Date
	err := s.db.SelectContext(ctx, &dates, `
		SELECT completed_date FROM task_instances_completed
		WHERE task_id = ? ORDER BY completed_date`, taskID)
	if err != nil {
		return nil, fmt.Errorf("querying completed dates of task %s: %w", taskID, err)
	}
	return dates, nil
}

// DeleteInstancesForTask removes every completed record of a task.
func (s *SQLiteStore) DeleteInstancesForTask(ctx context.Context, taskID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM task_instances_completed WHERE task_id = ?", taskID)
	if err != nil {
		return fmt.Errorf("deleting instances of task %s: %w", taskID, err)
	}
	return nil
}

func (s *SQLiteStore) requireTask(ctx context.Context, taskID string) error {
	var count int
	if err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM tasks WHERE id = ?", taskID); err != nil {
		return fmt.Errorf("looking up task %s: %w", taskID, err)
	}
	if count == 0 {
		return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	return nil
}
