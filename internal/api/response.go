package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nhle/planit/internal/recurrence"
	"github.com/nhle/planit/internal/service"
	"github.com/nhle/planit/internal/store"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo describes a failed request.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	codeInvalidArgument = "INVALID_ARGUMENT"
	codeInvalidJSON     = "INVALID_JSON"
	codeInvalidID       = "INVALID_ID"
	codeValidation      = "VALIDATION_ERROR"
	codeNotFound        = "NOT_FOUND"
	codeUnauthorized    = "UNAUTHORIZED"
	codeTimeout         = "TIMEOUT"
	codeInternal        = "INTERNAL_ERROR"
)

func (s *Server) sendJSON(w http.ResponseWriter, status int, response Response) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(response); err != nil {
		// Plain text; sendError would recurse.
		s.logger.Error("failed to encode response", "err", err)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Internal Server Error: failed to encode response"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) sendData(w http.ResponseWriter, status int, data any) {
	s.sendJSON(w, status, Response{Success: true, Data: data})
}

func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	s.sendJSON(w, status, Response{
		Success: false,
		Error:   &ErrorInfo{Code: code, Message: message},
	})
}

// sendServiceError maps domain errors onto HTTP status codes.
func (s *Server) sendServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		// Client went away.
		s.logger.Debug("request canceled", "path", r.URL.Path)
	case errors.Is(err, context.DeadlineExceeded):
		s.logger.Warn("request timed out", "method", r.Method, "path", r.URL.Path)
		s.sendError(w, http.StatusRequestTimeout, codeTimeout, "request timed out, try again later")
	case errors.Is(err, service.ErrValidation):
		s.sendError(w, http.StatusBadRequest, codeValidation, err.Error())
	case errors.Is(err, recurrence.ErrInvalidArgument), errors.Is(err, recurrence.ErrNotRecurring):
		s.sendError(w, http.StatusBadRequest, codeInvalidArgument, err.Error())
	case errors.Is(err, store.ErrNotFound):
		s.sendError(w, http.StatusNotFound, codeNotFound, err.Error())
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		s.sendError(w, http.StatusInternalServerError, codeInternal, "internal server error")
	}
}
