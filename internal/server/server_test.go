package server

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/haskel/2b2q/internal/logger"
	"github.com/haskel/2b2q/internal/train"
)

func newTestServer(tracker *train.Tracker) *Server {
	meta := Meta{
		ModelPath: "/models/10-6-2-4-1.json",
		Topology:  []int{10, 6, 2, 4, 1},
		DataDir:   "/data",
		Samples:   42,
		StartedAt: time.Now(),
	}
	return New("127.0.0.1:0", meta, tracker, logger.Discard())
}

func TestHealth(t *testing.T) {
	s := newTestServer(&train.Tracker{})

	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected ok, got %q", resp.Status)
	}
}

func TestStatusBeforeFirstSnapshot(t *testing.T) {
	s := newTestServer(&train.Tracker{})

	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/status", nil))

	var resp StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Snapshot != nil {
		t.Errorf("expected null snapshot before training starts, got %+v", resp.Snapshot)
	}
	if resp.Meta.Samples != 42 {
		t.Errorf("unexpected meta: %+v", resp.Meta)
	}
}

func TestStatusServesLatestSnapshot(t *testing.T) {
	tracker := &train.Tracker{}
	tracker.Update(train.Snapshot{State: "training", Iteration: 2, Epoch: 7, Err: 0.03})
	s := newTestServer(tracker)

	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/status", nil))

	var resp StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Snapshot == nil || resp.Snapshot.Epoch != 7 || resp.Snapshot.Iteration != 2 {
		t.Errorf("unexpected snapshot: %+v", resp.Snapshot)
	}
}

func TestStatusMethodNotAllowed(t *testing.T) {
	s := newTestServer(&train.Tracker{})

	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest("POST", "/status", nil))

	if rec.Code != 405 {
		t.Errorf("expected 405 for POST, got %d", rec.Code)
	}
}
