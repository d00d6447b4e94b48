package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nhle/planit/internal/model"
)

// CreateGroup inserts a new group. The ID is assigned by the database.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group model.Group) (*model.Group, error) {
	group.Name = strings.TrimSpace(group.Name)
	if group.Name == "" {
		return nil, fmt.Errorf("group name must not be empty")
	}

	result, err := s.db.ExecContext(ctx, "INSERT INTO task_groups (name) VALUES (?)", group.Name)
	if err != nil {
		return nil, fmt.Errorf("creating group: %w", err)
	}
	group.ID, err = result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading group id: %w", err)
	}
	return &group, nil
}

// UpdateGroup renames an existing group.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, group model.Group) error {
	group.Name = strings.TrimSpace(group.Name)
	if group.Name == "" {
		return fmt.Errorf("group name must not be empty")
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE task_groups SET name = ? WHERE id = ?", group.Name, group.ID)
	if err != nil {
		return fmt.Errorf("updating group %d: %w", group.ID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("updating group %d: %w", group.ID, ErrNotFound)
	}
	return nil
}

// DeleteGroup removes a group. Its tasks get group_id set to NULL.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE tasks SET group_id = NULL WHERE group_id = ?", id); err != nil {
		return fmt.Errorf("detaching tasks from group %d: %w", id, err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM task_groups WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting group %d: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("deleting group %d: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

// GetGroupByID retrieves a single group by ID.
func (s *SQLiteStore) GetGroupByID(ctx context.Context, id int64) (*model.Group, error) {
	var group model.Group
	err := s.db.GetContext(ctx, &group, "SELECT id, name FROM task_groups WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting group %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting group %d: %w", id, err)
	}
	return &group, nil
}

// GetGroups retrieves all groups ordered by name.
func (s *SQLiteStore) GetGroups(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	if err := s.db.SelectContext(ctx, &groups,
		"SELECT id, name FROM task_groups ORDER BY name COLLATE NOCASE, id"); err != nil {
		return nil, fmt.Errorf("querying groups: %w", err)
	}
	return groups, nil
}
