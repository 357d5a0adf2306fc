// Package train drives a model through iterative training: it feeds the
// dataset to the learning engine batch by batch, evaluates the halt
// predicates after every unit of work, and checkpoints through the model
// store so a crash or divergence never costs more than one iteration.
package train

import (
	"errors"
	"fmt"
	"time"

	"github.com/haskel/2b2q/internal/dataset"
	"github.com/haskel/2b2q/internal/nn"
)

var (
	// ErrNoHaltCondition rejects a session with no epoch, timer, or error
	// target and no loop flag: it could never finish on its own.
	ErrNoHaltCondition = errors.New("no halt condition: set epochs, timer, or mse (or loop)")

	// ErrConflictingOptions rejects loop + target error together: error is
	// not expected to keep decreasing across independent re-loops, so the
	// target would fire again immediately or never.
	ErrConflictingOptions = errors.New("conflicting options: loop and mse cannot be combined")
)

// DivergenceError reports a non-finite training error. The diverged
// in-memory weights are discarded; the last checkpoint stays untouched.
type DivergenceError struct {
	Iteration int
	Epoch     int
	Value     float64
}

func (e *DivergenceError) Error() string {
	return fmt.Sprintf("training diverged on iteration %d epoch %d (error %v)", e.Iteration, e.Epoch, e.Value)
}

// Saver persists the trained weights; a checkpoint after every halt.
type Saver interface {
	Save() error
}

// State is the orchestrator's lifecycle position.
type State int

const (
	Idle State = iota
	Running
	Halted
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Halted:
		return "halted"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Session aggregates everything one train invocation needs. It exists for
// the duration of that invocation; the orchestrator owns the engine and
// saver exclusively while it runs.
type Session struct {
	Dataset *dataset.Dataset
	Engine  nn.Engine
	Saver   Saver

	Halts []HaltCondition
	Loop  bool

	Rate     float64
	Momentum float64

	// BatchSize is the samples per unit of work; 0 means the whole
	// dataset, making a unit one epoch.
	BatchSize int

	// Logging controls the periodic error-rate snapshots; LogInterval is
	// the number of batches between them.
	Logging     bool
	LogInterval int
}

// Validate applies the entry rules. Run calls it before any training step;
// callers that need to act between validation and training (the history
// recorder does) may call it themselves first.
func (s *Session) Validate() error {
	if s.Dataset == nil || s.Dataset.Len() == 0 {
		return dataset.ErrEmpty
	}
	if len(s.Halts) == 0 && !s.Loop {
		return ErrNoHaltCondition
	}
	if s.Loop && hasTargetError(s.Halts) {
		return ErrConflictingOptions
	}
	return nil
}

// Result is the terminal outcome of a session.
type Result struct {
	State       State
	HaltedBy    string
	Iterations  int
	Epochs      int
	Batches     int
	FinalErr    float64
	Checkpoints int
	Elapsed     time.Duration
}

// Snapshot is an observational view of training progress. Emission never
// influences control flow.
type Snapshot struct {
	State       string  `json:"state"`
	Iteration   int     `json:"iteration"`
	Epoch       int     `json:"epoch"`
	Batch       int     `json:"batch"`
	Err         float64 `json:"err"`
	BestErr     float64 `json:"best_err"`
	ElapsedMS   int64   `json:"elapsed_ms"`
	Checkpoints int     `json:"checkpoints"`
	CPUPercent  float64 `json:"cpu_percent,omitempty"`
	RSSBytes    uint64  `json:"rss_bytes,omitempty"`
}

func (s Snapshot) Elapsed() time.Duration {
	return time.Duration(s.ElapsedMS) * time.Millisecond
}
