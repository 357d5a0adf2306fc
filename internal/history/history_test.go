package history

import (
	"path/filepath"
	"testing"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func TestBeginFinish(t *testing.T) {
	s := openStore(t)

	id, err := s.Begin(Run{
		ModelPath: "/models/10-6-2-4-1.json",
		Topology:  "10-6-2-4-1",
		DataDir:   "/data",
		Samples:   120,
		Halts:     "epochs(5)",
	})
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}

	runs, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != StatusRunning {
		t.Fatalf("expected one running record, got %+v", runs)
	}
	if runs[0].FinishedAt != nil {
		t.Error("running record should have no finish time")
	}

	err = s.Finish(id, Outcome{
		Status:      StatusHalted,
		HaltedBy:    "epochs",
		Iterations:  1,
		Epochs:      5,
		Batches:     5,
		Checkpoints: 1,
		FinalErr:    0.02,
	})
	if err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	runs, err = s.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	got := runs[0]
	if got.Status != StatusHalted || got.HaltedBy != "epochs" {
		t.Errorf("unexpected outcome: %+v", got)
	}
	if got.Epochs != 5 || got.FinalErr != 0.02 {
		t.Errorf("unexpected counters: %+v", got)
	}
	if got.FinishedAt == nil {
		t.Error("finished record should have a finish time")
	}
}

func TestRecentOrderAndLimit(t *testing.T) {
	s := openStore(t)
	for i := 0; i < 5; i++ {
		if _, err := s.Begin(Run{ModelPath: "m.json", Topology: "2-1"}); err != nil {
			t.Fatalf("Begin failed: %v", err)
		}
	}

	runs, err := s.Recent(3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("expected 3 runs, got %d", len(runs))
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].StartedAt.After(runs[i-1].StartedAt) {
			t.Error("runs not ordered newest first")
		}
	}
}
