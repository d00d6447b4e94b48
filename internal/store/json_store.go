package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/recurrence"
)

// File names used by the JSON backend.
const (
	tasksFile     = "planit_tasks.json"
	archiveFile   = "planit_archive.json"
	groupsFile    = "planit_groups.json"
	instancesFile = "planit_instances.json"
)

// JSONStore implements the Store interface on a directory of JSON files.
// The whole data set is held in memory and each mutation rewrites the
// affected file atomically.
type JSONStore struct {
	mu  sync.Mutex
	dir string

	tasks     []model.Task
	archive   []model.Task
	groups    []model.Group
	instances []model.CompletedInstance
}

var _ Store = (*JSONStore)(nil)

// NewJSONStore opens the JSON files in dir, creating the directory if
// needed. Missing files start empty.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", dir, err)
	}

	s := &JSONStore{dir: dir}
	loads := []struct {
		name string
		dst  any
	}{
		{tasksFile, &s.tasks},
		{archiveFile, &s.archive},
		{groupsFile, &s.groups},
		{instancesFile, &s.instances},
	}
	for _, l := range loads {
		if err := s.load(l.name, l.dst); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Close is a no-op; every mutation is already on disk.
func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) load(name string, dst any) error {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// save writes v to a temp file next to name and renames it into place.
func (s *JSONStore) save(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

func (s *JSONStore) taskIndex(id string) int {
	return slices.IndexFunc(s.tasks, func(t model.Task) bool { return t.ID == id })
}

func (s *JSONStore) groupIndex(id int64) int {
	return slices.IndexFunc(s.groups, func(g model.Group) bool { return g.ID == id })
}

// === Tasks ===

// CreateTask appends a task to planit_tasks.json.
func (s *JSONStore) CreateTask(ctx context.Context, task model.Task) (*model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(task.Title) == "" {
		return nil, fmt.Errorf("task title must not be empty")
	}
	prepareNewTask(&task)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.taskIndex(task.ID) >= 0 {
		return nil, fmt.Errorf("creating task: id %s already exists", task.ID)
	}
	tasks := append(slices.Clone(s.tasks), cloneTask(task))
	if err := s.save(tasksFile, tasks); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	s.tasks = tasks
	return &task, nil
}

// UpdateTask replaces a stored task.
func (s *JSONStore) UpdateTask(ctx context.Context, task model.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(task.Title) == "" {
		return fmt.Errorf("task title must not be empty")
	}
	task.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(task.ID)
	if i < 0 {
		return fmt.Errorf("updating task %s: %w", task.ID, ErrNotFound)
	}
	task.CreatedAt = s.tasks[i].CreatedAt

	tasks := slices.Clone(s.tasks)
	tasks[i] = cloneTask(task)
	if err := s.save(tasksFile, tasks); err != nil {
		return fmt.Errorf("updating task %s: %w", task.ID, err)
	}
	s.tasks = tasks
	return nil
}

// DeleteTask removes a task and its completed instances.
func (s *JSONStore) DeleteTask(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return fmt.Errorf("deleting task %s: %w", id, ErrNotFound)
	}
	if err := s.deleteInstancesLocked(id); err != nil {
		return err
	}
	tasks := slices.Delete(slices.Clone(s.tasks), i, i+1)
	if err := s.save(tasksFile, tasks); err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	s.tasks = tasks
	return nil
}

// GetTaskByID retrieves a single active task by ID.
func (s *JSONStore) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("getting task %s: %w", id, ErrNotFound)
	}
	task := cloneTask(s.tasks[i])
	return &task, nil
}

// GetTasks retrieves active tasks matching the filter.
func (s *JSONStore) GetTasks(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	var tasks []model.Task
	for _, t := range s.tasks {
		if matchesFilter(t, filter) {
			tasks = append(tasks, cloneTask(t))
		}
	}
	s.mu.Unlock()

	model.SortTasks(tasks, filter.SortBy, filter.SortDesc)

	if filter.Offset > 0 {
		if filter.Offset >= len(tasks) {
			return nil, nil
		}
		tasks = tasks[filter.Offset:]
	}
	if filter.Limit > 0 && len(tasks) > filter.Limit {
		tasks = tasks[:filter.Limit]
	}
	return tasks, nil
}

func matchesFilter(t model.Task, f TaskFilter) bool {
	if f.Done != nil && t.Done != *f.Done {
		return false
	}
	if f.GroupID != nil && (t.GroupID == nil || *t.GroupID != *f.GroupID) {
		return false
	}
	if f.Query != nil {
		q := strings.ToLower(strings.TrimSpace(*f.Query))
		if q != "" && !strings.Contains(strings.ToLower(t.Title), q) {
			return false
		}
	}
	if f.Recurring != nil && t.IsRecurring() != *f.Recurring {
		return false
	}
	return true
}

// === Archive ===

// ArchiveTask moves a task from planit_tasks.json to planit_archive.json.
func (s *JSONStore) ArchiveTask(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndex(id)
	if i < 0 {
		return fmt.Errorf("archiving task %s: %w", id, ErrNotFound)
	}

	task := cloneTask(s.tasks[i])
	task.Archived = true
	task.UpdatedAt = time.Now().UTC()

	archive := slices.DeleteFunc(slices.Clone(s.archive), func(t model.Task) bool { return t.ID == id })
	archive = append(archive, task)
	if err := s.save(archiveFile, archive); err != nil {
		return fmt.Errorf("archiving task %s: %w", id, err)
	}
	s.archive = archive

	if err := s.deleteInstancesLocked(id); err != nil {
		return err
	}
	tasks := slices.Delete(slices.Clone(s.tasks), i, i+1)
	if err := s.save(tasksFile, tasks); err != nil {
		return fmt.Errorf("archiving task %s: %w", id, err)
	}
	s.tasks = tasks
	return nil
}

// GetArchive returns every archived task, most recently archived first.
func (s *JSONStore) GetArchive(ctx context.Context) ([]model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Task, 0, len(s.archive))
	for _, t := range s.archive {
		out = append(out, cloneTask(t))
	}
	slices.SortStableFunc(out, func(a, b model.Task) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// === Groups ===

// CreateGroup appends a group with the next free ID.
func (s *JSONStore) CreateGroup(ctx context.Context, group model.Group) (*model.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	group.Name = strings.TrimSpace(group.Name)
	if group.Name == "" {
		return nil, fmt.Errorf("group name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	group.ID = 1
	for _, g := range s.groups {
		group.ID = max(group.ID, g.ID+1)
	}
	groups := append(slices.Clone(s.groups), group)
	if err := s.save(groupsFile, groups); err != nil {
		return nil, fmt.Errorf("creating group: %w", err)
	}
	s.groups = groups
	return &group, nil
}

// UpdateGroup renames an existing group.
func (s *JSONStore) UpdateGroup(ctx context.Context, group model.Group) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	group.Name = strings.TrimSpace(group.Name)
	if group.Name == "" {
		return fmt.Errorf("group name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.groupIndex(group.ID)
	if i < 0 {
		return fmt.Errorf("updating group %d: %w", group.ID, ErrNotFound)
	}
	groups := slices.Clone(s.groups)
	groups[i] = group
	if err := s.save(groupsFile, groups); err != nil {
		return fmt.Errorf("updating group %d: %w", group.ID, err)
	}
	s.groups = groups
	return nil
}

// DeleteGroup removes a group and detaches its tasks.
func (s *JSONStore) DeleteGroup(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.groupIndex(id)
	if i < 0 {
		return fmt.Errorf("deleting group %d: %w", id, ErrNotFound)
	}

	tasks := slices.Clone(s.tasks)
	detached := false
	for j := range tasks {
		if tasks[j].GroupID != nil && *tasks[j].GroupID == id {
			tasks[j].GroupID = nil
			detached = true
		}
	}
	if detached {
		if err := s.save(tasksFile, tasks); err != nil {
			return fmt.Errorf("detaching tasks from group %d: %w", id, err)
		}
		s.tasks = tasks
	}

	groups := slices.Delete(slices.Clone(s.groups), i, i+1)
	if err := s.save(groupsFile, groups); err != nil {
		return fmt.Errorf("deleting group %d: %w", id, err)
	}
	s.groups = groups
	return nil
}

// GetGroupByID retrieves a single group by ID.
func (s *JSONStore) GetGroupByID(ctx context.Context, id int64) (*model.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.groupIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("getting group %d: %w", id, ErrNotFound)
	}
	g := s.groups[i]
	return &g, nil
}

// GetGroups retrieves all groups ordered by name.
func (s *JSONStore) GetGroups(ctx context.Context) ([]model.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	groups := slices.Clone(s.groups)
	s.mu.Unlock()

	slices.SortStableFunc(groups, func(a, b model.Group) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return int(a.ID - b.ID)
	})
	return groups, nil
}

// === Completed instances ===

// MarkCompleted records a completed occurrence.
func (s *JSONStore) MarkCompleted(ctx context.Context, taskID string, date recurrence.Date) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if date.IsZero() {
		return fmt.Errorf("marking task %s completed: %w", taskID, recurrence.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.taskIndex(taskID) < 0 {
		return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	var nextID int64 = 1
	for _, in := range s.instances {
		if in.TaskID == taskID && in.Date == date {
			return nil
		}
		nextID = max(nextID, in.ID+1)
	}

	instances := append(slices.Clone(s.instances),
		model.CompletedInstance{ID: nextID, TaskID: taskID, Date: date})
	if err := s.save(instancesFile, instances); err != nil {
		return fmt.Errorf("marking task %s completed on %s: %w", taskID, date, err)
	}
	s.instances = instances
	return nil
}

// UnmarkCompleted removes a completed record. Missing records are ignored.
func (s *JSONStore) UnmarkCompleted(ctx context.Context, taskID string, date recurrence.Date) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeInstancesLocked(func(in model.CompletedInstance) bool {
		return in.TaskID == taskID && in.Date == date
	})
}

// IsCompletedOn reports whether the occurrence on date was finished.
func (s *JSONStore) IsCompletedOn(ctx context.Context, taskID string, date recurrence.Date) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.ContainsFunc(s.instances, func(in model.CompletedInstance) bool {
		return in.TaskID == taskID && in.Date == date
	}), nil
}

// FindCompletedDates returns every completed date of a task in ascending
// order.
func (s *JSONStore) FindCompletedDates(ctx context.Context, taskID string) ([]recurrence.Date, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var dates []recurrence.Date
	for _, in := range s.instances {
		if in.TaskID == taskID {
			dates = append(dates, in.Date)
		}
	}
	slices.SortFunc(dates, recurrence.Date.Compare)
	return dates, nil
}

// DeleteInstancesForTask removes every completed record of a task.
func (s *JSONStore) DeleteInstancesForTask(ctx context.Context, taskID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.deleteInstancesLocked(taskID)
}

func (s *JSONStore) deleteInstancesLocked(taskID string) error {
	return s.removeInstancesLocked(func(in model.CompletedInstance) bool {
		return in.TaskID == taskID
	})
}

func (s *JSONStore) removeInstancesLocked(match func(model.CompletedInstance) bool) error {
	if !slices.ContainsFunc(s.instances, match) {
		return nil
	}
	instances := slices.DeleteFunc(slices.Clone(s.instances), match)
	if err := s.save(instancesFile, instances); err != nil {
		return fmt.Errorf("removing completed instances: %w", err)
	}
	s.instances = instances
	return nil
}

// cloneTask copies the pointer fields of t so the caller cannot mutate
// stored state.
func cloneTask(t model.Task) model.Task {
	dup := func(d *recurrence.Date) *recurrence.Date {
		if d == nil {
			return nil
		}
		c := *d
		return &c
	}
	t.Deadline = dup(t.Deadline)
	t.RepeatUntil = dup(t.RepeatUntil)
	t.StartDate = dup(t.StartDate)
	t.NextOccurrence = dup(t.NextOccurrence)
	t.ExcludedDates = slices.Clone(t.ExcludedDates)
	if t.GroupID != nil {
		g := *t.GroupID
		t.GroupID = &g
	}
	return t
}
