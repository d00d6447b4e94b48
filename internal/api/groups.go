package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

type groupRequest struct {
	Name string `json:"name"`
}

func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.List(r.Context())
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendData(w, http.StatusOK, groups)
}

func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeGroup(w, r)
	if !ok {
		return
	}
	g, err := s.groups.Create(r.Context(), req.Name)
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendData(w, http.StatusCreated, g)
}

func (s *Server) renameGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathGroupID(w, r)
	if !ok {
		return
	}
	req, ok := s.decodeGroup(w, r)
	if !ok {
		return
	}
	g, err := s.groups.Rename(r.Context(), id, req.Name)
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendData(w, http.StatusOK, g)
}

func (s *Server) deleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathGroupID(w, r)
	if !ok {
		return
	}
	if err := s.groups.Delete(r.Context(), id); err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendData(w, http.StatusOK, map[string]int64{"id": id})
}

func (s *Server) decodeGroup(w http.ResponseWriter, r *http.Request) (groupRequest, bool) {
	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req groupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, codeInvalidJSON, fmt.Sprintf("invalid group body: %v", err))
		return req, false
	}
	return req, true
}

func (s *Server) pathGroupID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.sendError(w, http.StatusBadRequest, codeInvalidID, fmt.Sprintf("invalid group id %q", r.PathValue("id")))
		return 0, false
	}
	return id, true
}
