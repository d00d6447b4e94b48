package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/recurrence"
	"github.com/nhle/planit/internal/store"
)

// TaskService implements task use cases on top of a Store.
type TaskService struct {
	store  store.Store
	clock  Clock
	logger *log.Logger
}

// NewTaskService returns a TaskService. A nil clock reads the wall clock and
// a nil logger discards output.
func NewTaskService(st store.Store, clock Clock, logger *log.Logger) *TaskService {
	clock, logger = orDefault(clock, logger)
	return &TaskService{store: st, clock: clock, logger: logger}
}

// Today returns the service's current calendar day.
func (s *TaskService) Today() recurrence.Date {
	return today(s.clock)
}

// Now returns the service clock's current time.
func (s *TaskService) Now() time.Time {
	return s.clock.Now()
}

// Occurrence is one date of a recurring task's series.
type Occurrence struct {
	Date      recurrence.Date `json:"date"`
	Completed bool            `json:"completed"`
}

// Create validates and stores a new task.
func (s *TaskService) Create(ctx context.Context, task model.Task) (*model.Task, error) {
	task.ID = ""
	task.Archived = false
	task.CreatedAt = s.clock.Now().UTC()
	if err := s.validate(ctx, &task); err != nil {
		return nil, err
	}
	s.recompute(&task, nil)

	created, err := s.store.CreateTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	s.logger.Info("task created", "id", created.ID, "title", created.Title, "repeat", created.RepeatFrequency)
	return created, nil
}

// Update validates and stores changes to an existing task. The creation
// time and archived flag are kept from the stored copy.
func (s *TaskService) Update(ctx context.Context, task model.Task) (*model.Task, error) {
	existing, err := s.store.GetTaskByID(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	task.CreatedAt = existing.CreatedAt
	task.Archived = existing.Archived
	if err := s.validate(ctx, &task); err != nil {
		return nil, err
	}
	if err := s.save(ctx, &task); err != nil {
		return nil, err
	}
	s.logger.Info("task updated", "id", task.ID)
	return &task, nil
}

// Delete removes a task and its completion history.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.logger.Info("task deleted", "id", id)
	return nil
}

// Get returns a single task.
func (s *TaskService) Get(ctx context.Context, id string) (*model.Task, error) {
	return s.store.GetTaskByID(ctx, id)
}

// List returns the active tasks matching filter.
func (s *TaskService) List(ctx context.Context, filter store.TaskFilter) ([]model.Task, error) {
	return s.store.GetTasks(ctx, filter)
}

// Search returns tasks whose title contains keyword. A blank keyword
// matches nothing.
func (s *TaskService) Search(ctx context.Context, keyword string) ([]model.Task, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []model.Task{}, nil
	}
	return s.store.GetTasks(ctx, store.TaskFilter{Query: &keyword, SortBy: model.SortByTitle})
}

// MarkDone finishes a one-off task. For a recurring task it completes the
// pending occurrence, or today's when none is cached.
func (s *TaskService) MarkDone(ctx context.Context, id string) (*model.Task, error) {
	task, err := s.store.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.IsRecurring() {
		date := s.Today()
		if task.NextOccurrence != nil {
			date = *task.NextOccurrence
		}
		return s.CompleteOccurrence(ctx, id, date)
	}

	task.Done = true
	if err := s.store.UpdateTask(ctx, *task); err != nil {
		return nil, fmt.Errorf("marking task %s done: %w", id, err)
	}
	s.logger.Info("task done", "id", id)
	return task, nil
}

// MarkUndone reopens a one-off task. For a recurring task it reverts the
// most recently completed occurrence.
func (s *TaskService) MarkUndone(ctx context.Context, id string) (*model.Task, error) {
	task, err := s.store.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.IsRecurring() {
		task.Done = false
		if err := s.store.UpdateTask(ctx, *task); err != nil {
			return nil, fmt.Errorf("marking task %s undone: %w", id, err)
		}
		return task, nil
	}

	completed, err := s.store.FindCompletedDates(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(completed) == 0 {
		return task, nil
	}
	last := completed[len(completed)-1]
	if err := s.store.UnmarkCompleted(ctx, id, last); err != nil {
		return nil, err
	}
	if err := s.save(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info("occurrence reopened", "id", id, "date", last)
	return task, nil
}

// CompleteOccurrence records the occurrence on date as finished and
// advances the task's next occurrence.
func (s *TaskService) CompleteOccurrence(ctx context.Context, id string, date recurrence.Date) (*model.Task, error) {
	task, err := s.recurringTask(ctx, id, date)
	if err != nil {
		return nil, err
	}
	occurs := recurrenceOccurs(s.series(*task), date)
	if !occurs && (task.NextOccurrence == nil || *task.NextOccurrence != date) {
		return nil, fmt.Errorf("%w: task %s has no occurrence on %s", ErrValidation, id, date)
	}

	if err := s.store.MarkCompleted(ctx, id, date); err != nil {
		return nil, fmt.Errorf("completing task %s on %s: %w", id, date, err)
	}
	if err := s.save(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info("occurrence completed", "id", id, "date", date, "next", task.NextOccurrence)
	return task, nil
}

// ExcludeOccurrence removes a single date from the series.
func (s *TaskService) ExcludeOccurrence(ctx context.Context, id string, date recurrence.Date) (*model.Task, error) {
	task, err := s.recurringTask(ctx, id, date)
	if err != nil {
		return nil, err
	}
	task.ExcludedDates = task.ExcludedDates.With(date)
	if err := s.save(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info("occurrence excluded", "id", id, "date", date)
	return task, nil
}

// CutOff ends the series on the day before from.
func (s *TaskService) CutOff(ctx context.Context, id string, from recurrence.Date) (*model.Task, error) {
	task, err := s.recurringTask(ctx, id, from)
	if err != nil {
		return nil, err
	}
	task.SetRule(recurrence.CutOff(task.Rule(), from))
	if err := s.save(ctx, task); err != nil {
		return nil, err
	}
	s.logger.Info("series cut off", "id", id, "until", task.RepeatUntil)
	return task, nil
}

// Archive moves a task into the archive.
func (s *TaskService) Archive(ctx context.Context, id string) error {
	if err := s.store.ArchiveTask(ctx, id); err != nil {
		return err
	}
	s.logger.Info("task archived", "id", id)
	return nil
}

// ArchiveList returns the archived tasks.
func (s *TaskService) ArchiveList(ctx context.Context) ([]model.Task, error) {
	return s.store.GetArchive(ctx)
}

// ClearCompleted deletes every finished one-off task and returns how many
// were removed.
func (s *TaskService) ClearCompleted(ctx context.Context) (int, error) {
	done, recurring := true, false
	tasks, err := s.store.GetTasks(ctx, store.TaskFilter{Done: &done, Recurring: &recurring})
	if err != nil {
		return 0, err
	}
	for _, t := range tasks {
		if err := s.store.DeleteTask(ctx, t.ID); err != nil {
			return 0, fmt.Errorf("clearing completed tasks: %w", err)
		}
	}
	s.logger.Info("completed tasks cleared", "count", len(tasks))
	return len(tasks), nil
}

// TasksOn returns the tasks due on date that are not yet finished there.
func (s *TaskService) TasksOn(ctx context.Context, date recurrence.Date) ([]model.Task, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", recurrence.ErrInvalidArgument)
	}
	tasks, err := s.store.GetTasks(ctx, store.TaskFilter{SortBy: model.SortByPriority})
	if err != nil {
		return nil, err
	}

	out := []model.Task{}
	for _, t := range tasks {
		if !recurrenceOccurs(s.series(t), date) {
			continue
		}
		if !t.IsRecurring() {
			if !t.Done {
				out = append(out, t)
			}
			continue
		}
		finished, err := s.store.IsCompletedOn(ctx, t.ID, date)
		if err != nil {
			return nil, err
		}
		if !finished {
			out = append(out, t)
		}
	}
	return out, nil
}

// Occurrences lists a task's occurrences within [from, to] with their
// completion state.
func (s *TaskService) Occurrences(ctx context.Context, id string, from, to recurrence.Date) ([]Occurrence, error) {
	task, err := s.store.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dates, err := recurrence.Occurrences(s.series(*task), from, to)
	if err != nil {
		return nil, err
	}
	completed, err := s.store.FindCompletedDates(ctx, id)
	if err != nil {
		return nil, err
	}
	done := recurrence.NewDateSet(completed...)

	out := make([]Occurrence, 0, len(dates))
	for _, d := range dates {
		out = append(out, Occurrence{Date: d, Completed: done.Contains(d) || (!task.IsRecurring() && task.Done)})
	}
	return out, nil
}

// RefreshAll recomputes the cached next occurrence of every recurring task
// and returns how many changed.
func (s *TaskService) RefreshAll(ctx context.Context) (int, error) {
	recurring := true
	tasks, err := s.store.GetTasks(ctx, store.TaskFilter{Recurring: &recurring})
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := range tasks {
		task := &tasks[i]
		before := task.NextOccurrence
		completed, err := s.store.FindCompletedDates(ctx, task.ID)
		if err != nil {
			return changed, err
		}
		s.recompute(task, completed)
		if sameDate(before, task.NextOccurrence) {
			continue
		}
		if err := s.store.UpdateTask(ctx, *task); err != nil {
			return changed, fmt.Errorf("refreshing task %s: %w", task.ID, err)
		}
		changed++
	}
	s.logger.Info("next occurrences refreshed", "tasks", len(tasks), "changed", changed)
	return changed, nil
}

// validate normalizes user input in place.
func (s *TaskService) validate(ctx context.Context, task *model.Task) error {
	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	p, err := model.ParsePriority(string(task.Priority))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	task.Priority = p

	freq, err := recurrence.ParseFrequency(string(task.RepeatFrequency))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	task.SetRule(recurrence.Normalize(task.Rule()))
	task.RepeatFrequency = freq
	if task.RepeatInterval > recurrence.MaxInterval {
		return fmt.Errorf("%w: interval must be at most %d", ErrValidation, recurrence.MaxInterval)
	}
	task.Time = strings.TrimSpace(task.Time)

	if task.IsRecurring() {
		if start, ok := s.series(*task).StartDate(); ok && task.RepeatUntil != nil && task.RepeatUntil.Before(start) {
			return fmt.Errorf("%w: repeat until %s is before the start %s", ErrValidation, task.RepeatUntil, start)
		}
	}

	if task.GroupID != nil {
		if _, err := s.store.GetGroupByID(ctx, *task.GroupID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: group %d does not exist", ErrValidation, *task.GroupID)
			}
			return err
		}
	}
	return nil
}

// save recomputes the next occurrence from the stored history and writes
// the task.
func (s *TaskService) save(ctx context.Context, task *model.Task) error {
	var completed []recurrence.Date
	if task.IsRecurring() {
		var err error
		completed, err = s.store.FindCompletedDates(ctx, task.ID)
		if err != nil {
			return err
		}
	}
	s.recompute(task, completed)
	if err := s.store.UpdateTask(ctx, *task); err != nil {
		return fmt.Errorf("saving task %s: %w", task.ID, err)
	}
	return nil
}

func (s *TaskService) recompute(task *model.Task, completed []recurrence.Date) {
	if !task.IsRecurring() {
		task.NextOccurrence = nil
		return
	}
	task.NextOccurrence = recurrence.NextOccurrence(s.series(*task), completed, s.Today())
	s.logger.Debug("next occurrence computed", "id", task.ID, "next", task.NextOccurrence)
}

func (s *TaskService) recurringTask(ctx context.Context, id string, date recurrence.Date) (*model.Task, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", recurrence.ErrInvalidArgument)
	}
	task, err := s.store.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !task.IsRecurring() {
		return nil, fmt.Errorf("%w: task %s %v", ErrValidation, id, recurrence.ErrNotRecurring)
	}
	return task, nil
}

// series builds the engine input with the creation date read in the clock's
// location, the same one Today uses.
func (s *TaskService) series(t model.Task) recurrence.Series {
	return t.SeriesIn(s.clock.Now().Location())
}

func recurrenceOccurs(s recurrence.Series, date recurrence.Date) bool {
	ok, err := recurrence.OccursOn(s, date)
	return err == nil && ok
}

func sameDate(a, b *recurrence.Date) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
