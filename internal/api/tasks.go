package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/nhle/planit/internal/model"
	"github.com/nhle/planit/internal/recurrence"
	"github.com/nhle/planit/internal/service"
	"github.com/nhle/planit/internal/store"
)

const (
	maxBodyBytes   = 1 << 20
	maxListLimit   = 200
	occurrenceSpan = 60
)

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTaskFilter(r)
	if err != nil {
		s.sendError(w, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return
	}
	tasks, err := s.tasks.List(r.Context(), filter)
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendData(w, http.StatusOK, map[string]any{
		"tasks":  tasks,
		"total":  len(tasks),
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

func parseTaskFilter(r *http.Request) (store.TaskFilter, error) {
	q := r.URL.Query()
	filter := store.TaskFilter{
		SortBy:   model.ParseSortField(q.Get("sort")),
		SortDesc: strings.EqualFold(q.Get("order"), "desc"),
	}

	if v := q.Get("done"); v != "" {
		done, err := strconv.ParseBool(v)
		if err != nil {
			return filter, fmt.Errorf("invalid done value %q", v)
		}
		filter.Done = &done
	}
	if v := q.Get("recurring"); v != "" {
		recurring, err := strconv.ParseBool(v)
		if err != nil {
			return filter, fmt.Errorf("invalid recurring value %q", v)
		}
		filter.Recurring = &recurring
	}
	if v := q.Get("group"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid group id %q", v)
		}
		filter.GroupID = &id
	}
	if v := strings.TrimSpace(q.Get("q")); v != "" {
		filter.Query = &v
	}

	if v := q.Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 {
			filter.Limit = min(l, maxListLimit)
		}
	}
	if v := q.Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil && o >= 0 {
			filter.Offset = o
		}
	}
	return filter, nil
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	task, ok := s.decodeTask(w, r)
	if !ok {
		return
	}
	created, err := s.tasks.Create(r.Context(), task)
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendData(w, http.StatusCreated, created)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendData(w, http.StatusOK, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	task, ok := s.decodeTask(w, r)
	if !ok {
		return
	}
	task.ID = r.PathValue("id")
	updated, err := s.tasks.Update(r.Context(), task)
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendData(w, http.StatusOK, updated)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.tasks.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendData(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}

func (s *Server) markDone(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.MarkDone(r.Context(), r.PathValue("id"))
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendData(w, http.StatusOK, task)
}

func (s *Server) markUndone(w http.ResponseWriter, r *http.Request) {
	task, err := s.tasks.MarkUndone(r.Context(), r.PathValue("id"))
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendData(w, http.StatusOK, task)
}

func (s *Server) archiveTask(w http.ResponseWriter, r *http.Request) {
	if err := s.tasks.Archive(r.Context(), r.PathValue("id")); err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendData(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}

func (s *Server) clearCompleted(w http.ResponseWriter, r *http.Request) {
	n, err := s.tasks.ClearCompleted(r.Context())
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendData(w, http.StatusOK, map[string]int{"deleted": n})
}

func (s *Server) listArchive(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.ArchiveList(r.Context())
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendData(w, http.StatusOK, tasks)
}

func (s *Server) listOccurrences(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := s.tasks.Today()
	if v := q.Get("from"); v != "" {
		d, err := recurrence.ParseDate(v)
		if err != nil {
			s.sendError(w, http.StatusBadRequest, codeInvalidArgument, err.Error())
			return
		}
		from = d
	}
	to := from.AddDays(occurrenceSpan)
	if v := q.Get("to"); v != "" {
		d, err := recurrence.ParseDate(v)
		if err != nil {
			s.sendError(w, http.StatusBadRequest, codeInvalidArgument, err.Error())
			return
		}
		to = d
	}

	occ, err := s.tasks.Occurrences(r.Context(), r.PathValue("id"), from, to)
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendData(w, http.StatusOK, occ)
}

func (s *Server) completeOccurrence(w http.ResponseWriter, r *http.Request) {
	s.occurrenceAction(w, r, s.tasks.CompleteOccurrence)
}

func (s *Server) excludeOccurrence(w http.ResponseWriter, r *http.Request) {
	s.occurrenceAction(w, r, s.tasks.ExcludeOccurrence)
}

func (s *Server) cutOff(w http.ResponseWriter, r *http.Request) {
	s.occurrenceAction(w, r, s.tasks.CutOff)
}

type occurrenceFunc func(ctx context.Context, id string, date recurrence.Date) (*model.Task, error)

func (s *Server) occurrenceAction(w http.ResponseWriter, r *http.Request, action occurrenceFunc) {
	date, ok := s.pathDate(w, r)
	if !ok {
		return
	}
	task, err := action(r.Context(), r.PathValue("id"), date)
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendData(w, http.StatusOK, task)
}

func (s *Server) agenda(w http.ResponseWriter, r *http.Request) {
	date, ok := s.pathDate(w, r)
	if !ok {
		return
	}
	tasks, err := s.tasks.TasksOn(r.Context(), date)
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendData(w, http.StatusOK, map[string]any{"date": date, "tasks": tasks})
}

type dashboardResponse struct {
	service.Dashboard
	PercentDone    int `json:"percentDone"`
	PercentOverdue int `json:"percentOverdue"`
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.tasks.Dashboard(r.Context())
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendData(w, http.StatusOK, dashboardResponse{
		Dashboard:      d,
		PercentDone:    d.Percent(d.Done),
		PercentOverdue: d.Percent(d.Overdue),
	})
}

func (s *Server) decodeTask(w http.ResponseWriter, r *http.Request) (model.Task, bool) {
	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var task model.Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		s.sendError(w, http.StatusBadRequest, codeInvalidJSON, fmt.Sprintf("invalid task body: %v", err))
		return task, false
	}
	return task, true
}

func (s *Server) pathDate(w http.ResponseWriter, r *http.Request) (recurrence.Date, bool) {
	date, err := recurrence.ParseDate(r.PathValue("date"))
	if err != nil {
		s.sendError(w, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return recurrence.Date{}, false
	}
	return date, true
}
