package store

import (
	"context"
	"errors"

	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/recurrence"
)

// ErrNotFound is returned when the addressed task or group does not exist.
var ErrNotFound = errors.New("not found")

// TaskFilter controls filtering, sorting, and pagination for task queries.
type TaskFilter struct {
	Done      *bool
	GroupID   *int64
	Query     *string // case-insensitive title substring
	Recurring *bool
	SortBy    model.SortField
	SortDesc  bool
	Limit     int
	Offset    int
}

// Store defines the persistence interface for tasks, the archive, groups,
// and completed occurrences of recurring tasks.
type Store interface {
	// === Tasks ===

	// CreateTask inserts a task, assigning an ID and timestamps when unset.
	CreateTask(ctx context.Context, task model.Task) (*model.Task, error)
	UpdateTask(ctx context.Context, task model.Task) error
	// DeleteTask removes a task together with its completed instances.
	DeleteTask(ctx context.Context, id string) error
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)
	GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error)

	// === Archive ===

	// ArchiveTask moves an active task into the archive.
	ArchiveTask(ctx context.Context, id string) error
	GetArchive(ctx context.Context) ([]model.Task, error)

	// === Groups ===

	CreateGroup(ctx context.Context, group model.Group) (*model.Group, error)
	UpdateGroup(ctx context.Context, group model.Group) error
	// DeleteGroup removes a group and detaches its tasks.
	DeleteGroup(ctx context.Context, id int64) error
	GetGroupByID(ctx context.Context, id int64) (*model.Group, error)
	GetGroups(ctx context.Context) ([]model.Group, error)

	// === Completed instances ===

	// MarkCompleted records a completed occurrence. Repeated calls for the
	// same task and date are no-ops.
	MarkCompleted(ctx context.Context, taskID string, date recurrence.Date) error
	UnmarkCompleted(ctx context.Context, taskID string, date recurrence.Date) error
	IsCompletedOn(ctx context.Context, taskID string, date recurrence.Date) (bool, error)
	// FindCompletedDates returns the completed dates of a task in
	// ascending order.
	FindCompletedDates(ctx context.Context, taskID string) ([]recurrence.Date, error)
	DeleteInstancesForTask(ctx context.Context, taskID string) error

	Close() error
}

// Open returns the backend selected by cfg.
func Open(cfg model.StorageConfig) (Store, error) {
	if cfg.Backend == model.BackendJSON {
		return NewJSONStore(cfg.JSONDir)
	}
	return NewSQLiteStore(cfg.DBPath)
}
