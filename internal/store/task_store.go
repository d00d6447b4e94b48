package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/recurrence"
)

const insertTaskSQL = `
	INSERT INTO %s (
		id, title, deadline, priority, done, archived, group_id, time,
		repeat_frequency, repeat_days, repeat_interval, repeat_until,
		start_date, excluded_dates, next_occurrence,
		created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// CreateTask inserts a new task. Generates a UUID if ID is empty.
func (s *SQLiteStore) CreateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	if strings.TrimSpace(task.Title) == "" {
		return nil, fmt.Errorf("task title must not be empty")
	}
	prepareNewTask(&task)

	_, err := s.db.ExecContext(ctx, fmt.Sprintf(insertTaskSQL, "tasks"), taskArgs(task)...)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return &task, nil
}

// UpdateTask updates an existing task by ID.
func (s *SQLiteStore) UpdateTask(ctx context.Context, task model.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return fmt.Errorf("task title must not be empty")
	}
	task.UpdatedAt = time.Now().UTC()

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			title = ?, deadline = ?, priority = ?, done = ?, archived = ?,
			group_id = ?, time = ?, repeat_frequency = ?, repeat_days = ?,
			repeat_interval = ?, repeat_until = ?, start_date = ?,
			excluded_dates = ?, next_occurrence = ?, updated_at = ?
		WHERE id = ?`,
		task.Title, task.Deadline, task.Priority, boolToInt(task.Done), boolToInt(task.Archived),
		task.GroupID, task.Time, task.RepeatFrequency, task.RepeatDays,
		task.RepeatInterval, task.RepeatUntil, task.StartDate,
		task.ExcludedDates, task.NextOccurrence, task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task %s: %w", task.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("updating task %s: %w", task.ID, ErrNotFound)
	}
	return nil
}

// DeleteTask removes a task and its completed instances.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM task_instances_completed WHERE task_id = ?", id); err != nil {
		return fmt.Errorf("deleting instances of task %s: %w", id, err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("deleting task %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

// GetTaskByID retrieves a single active task by ID.
func (s *SQLiteStore) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := s.db.GetContext(ctx, &task, "SELECT * FROM tasks WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return &task, nil
}

// GetTasks retrieves active tasks matching the filter.
func (s *SQLiteStore) GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	query, args := buildTaskQuery("tasks", filter)

	var tasks []model.Task
	if err := s.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	return tasks, nil
}

// ArchiveTask copies a task into the archive table and removes it, along
// with its completed instances, from the active set.
func (s *SQLiteStore) ArchiveTask(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO archive SELECT * FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("archiving task %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("archiving task %s: %w", id, ErrNotFound)
	}

	statements := []string{
		"UPDATE archive SET archived = 1, updated_at = ? WHERE id = ?",
		"DELETE FROM task_instances_completed WHERE task_id = ?",
		"DELETE FROM tasks WHERE id = ?",
	}
	for i, stmt := range statements {
		args := []any{id}
		if i == 0 {
			args = []any{time.Now().UTC(), id}
		}
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("archiving task %s: %w", id, err)
		}
	}
	return tx.Commit()
}

// GetArchive returns every archived task, most recently archived first.
func (s *SQLiteStore) GetArchive(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := s.db.SelectContext(ctx, &tasks,
		"SELECT * FROM archive ORDER BY updated_at DESC, id"); err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	return tasks, nil
}

// prepareNewTask fills in the ID, timestamps and recurrence defaults of a
// task about to be inserted.
func prepareNewTask(task *model.Task) {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	if task.RepeatFrequency == "" {
		task.RepeatFrequency = recurrence.None
	}
	if task.RepeatInterval < 1 {
		task.RepeatInterval = 1
	}
}

func taskArgs(t model.Task) []any {
	return []any{
		t.ID, t.Title, t.Deadline, t.Priority, boolToInt(t.Done), boolToInt(t.Archived),
		t.GroupID, t.Time, t.RepeatFrequency, t.RepeatDays, t.RepeatInterval,
		t.RepeatUntil, t.StartDate, t.ExcludedDates, t.NextOccurrence,
		t.CreatedAt, t.UpdatedAt,
	}
}

// buildTaskQuery constructs a SELECT query with WHERE, ORDER BY, and LIMIT
// clauses from a TaskFilter.
func buildTaskQuery(table string, filter TaskFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.Done != nil {
		conditions = append(conditions, "done = ?")
		args = append(args, boolToInt(*filter.Done))
	}
	if filter.GroupID != nil {
		conditions = append(conditions, "group_id = ?")
		args = append(args, *filter.GroupID)
	}
	if filter.Query != nil && strings.TrimSpace(*filter.Query) != "" {
		conditions = append(conditions, "title LIKE ?")
		args = append(args, "%"+strings.TrimSpace(*filter.Query)+"%")
	}
	if filter.Recurring != nil {
		if *filter.Recurring {
			conditions = append(conditions, "repeat_frequency <> 'NONE'")
		} else {
			conditions = append(conditions, "repeat_frequency = 'NONE'")
		}
	}

	query := "SELECT * FROM " + table
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	var order string
	switch filter.SortBy {
	case model.SortByDeadline:
		order = "deadline IS NULL, deadline " + direction
	case model.SortByPriority:
		order = "priority = '', CASE priority WHEN 'HIGH' THEN 0 WHEN 'MEDIUM' THEN 1 WHEN 'LOW' THEN 2 ELSE 3 END " + direction
	case model.SortByTitle:
		order = "title COLLATE NOCASE " + direction
	default:
		order = "created_at " + direction
	}
	query += " ORDER BY " + order + ", created_at, id"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	return query, args
}
