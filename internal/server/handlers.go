package server

import (
	"encoding/json"
	"net/http"

	"github.com/haskel/2b2q/internal/train"
)

type HealthResponse struct {
	Status string `json:"status"`
}

// StatusResponse is the live view of the session: fixed metadata plus the
// latest snapshot. Snapshot is null before the first unit of work.
type StatusResponse struct {
	Meta     Meta            `json:"meta"`
	Snapshot *train.Snapshot `json:"snapshot"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Meta: s.meta}
	if snap, ok := s.source.Snapshot(); ok {
		resp.Snapshot = &snap
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}
