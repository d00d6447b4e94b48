package api

import (
	"bytes"
	"net/http"

	"github.com/nhle/planit/internal/calendar"
	"github.com/nhle/planit/internal/store"
)

func (s *Server) exportCalendar(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.List(r.Context(), store.TaskFilter{})
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	names, err := s.groups.Names(r.Context())
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := calendar.Encode(&buf, tasks, names, s.tasks.Now()); err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="planit.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
