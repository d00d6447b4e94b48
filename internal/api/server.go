// Package api serves the task tracker over HTTP with a JSON envelope.
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nhle/planit/internal/logging"
	"github.com/nhle/planit/internal/service"
)

// Options configures a Server.
type Options struct {
	// CORSOrigin is sent as Access-Control-Allow-Origin; empty means "*".
	CORSOrigin string
	// Token enables bearer authentication on /api routes when set.
	Token  string
	Logger *log.Logger
}

// Server routes HTTP requests to the task and group services.
type Server struct {
	tasks      *service.TaskService
	groups     *service.GroupService
	logger     *log.Logger
	corsOrigin string
	token      string
}

func NewServer(tasks *service.TaskService, groups *service.GroupService, opts Options) *Server {
	s := &Server{
		tasks:      tasks,
		groups:     groups,
		logger:     opts.Logger,
		corsOrigin: opts.CORSOrigin,
		token:      opts.Token,
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.corsOrigin == "" {
		s.corsOrigin = "*"
	}
	return s
}

// Handler returns the routed mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	route := func(pattern string, h http.HandlerFunc, timeout time.Duration) {
		mux.HandleFunc(pattern, chain(h, s.cors, s.recoverPanic, s.auth, withTimeout(timeout)))
	}

	mux.HandleFunc("GET /health", chain(s.health, s.cors, s.recoverPanic))
	mux.HandleFunc("OPTIONS /api/", chain(func(http.ResponseWriter, *http.Request) {}, s.cors))

	route("GET /api/tasks", s.listTasks, ListTimeout)
	route("POST /api/tasks", s.createTask, WriteTimeout)
	route("DELETE /api/tasks/completed", s.clearCompleted, DefaultTimeout)
	route("GET /api/tasks/{id}", s.getTask, DefaultTimeout)
	route("PUT /api/tasks/{id}", s.updateTask, WriteTimeout)
	route("DELETE /api/tasks/{id}", s.deleteTask, WriteTimeout)
	route("PUT /api/tasks/{id}/done", s.markDone, WriteTimeout)
	route("PUT /api/tasks/{id}/undone", s.markUndone, WriteTimeout)
	route("POST /api/tasks/{id}/archive", s.archiveTask, WriteTimeout)
	route("GET /api/tasks/{id}/occurrences", s.listOccurrences, ListTimeout)
	route("POST /api/tasks/{id}/occurrences/{date}/complete", s.completeOccurrence, WriteTimeout)
	route("POST /api/tasks/{id}/occurrences/{date}/exclude", s.excludeOccurrence, WriteTimeout)
	route("POST /api/tasks/{id}/cutoff/{date}", s.cutOff, WriteTimeout)

	route("GET /api/agenda/{date}", s.agenda, ListTimeout)
	route("GET /api/dashboard", s.dashboard, ListTimeout)
	route("GET /api/archive", s.listArchive, ListTimeout)
	route("GET /api/calendar.ics", s.exportCalendar, ExportTimeout)

	route("GET /api/groups", s.listGroups, ListTimeout)
	route("POST /api/groups", s.createGroup, WriteTimeout)
	route("PUT /api/groups/{id}", s.renameGroup, WriteTimeout)
	route("DELETE /api/groups/{id}", s.deleteGroup, WriteTimeout)

	return mux
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.sendData(w, http.StatusOK, map[string]any{
		"status": "ok",
		"today":  s.tasks.Today(),
	})
}
