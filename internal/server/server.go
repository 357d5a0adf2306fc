// Package server exposes a running training session over a small HTTP
// listener, loopback by default, so unattended and looping runs can be
// checked without touching the process. Read-only diagnostics: two fixed
// routes, no auth.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/haskel/2b2q/internal/train"
)

// SnapshotSource supplies the latest training snapshot; ok is false until
// the first unit of work reports in.
type SnapshotSource interface {
	Snapshot() (train.Snapshot, bool)
}

// Meta describes the session the server reports on; fixed at start.
type Meta struct {
	ModelPath string    `json:"model_path"`
	Topology  []int     `json:"topology"`
	DataDir   string    `json:"data_dir"`
	Samples   int       `json:"samples"`
	StartedAt time.Time `json:"started_at"`
}

type Server struct {
	httpServer *http.Server
	source     SnapshotSource
	meta       Meta
	logger     *slog.Logger
}

func New(addr string, meta Meta, source SnapshotSource, logger *slog.Logger) *Server {
	s := &Server{
		source: source,
		meta:   meta,
		logger: logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return s
}

// Start serves in a background goroutine. Listen failures are logged, not
// fatal: the server is an observer and must never stop a training run.
func (s *Server) Start() {
	go func() {
		s.logger.Info("status server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Warn("status server stopped", "error", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
