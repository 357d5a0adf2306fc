package train

import (
	"fmt"
	"math"
	"time"
)

type haltKind int

const (
	haltEpochs haltKind = iota
	haltTimer
	haltTargetError
)

// HaltCondition is one predicate that can end a training iteration. Any
// tripped condition halts the session; with the loop flag set a new
// iteration starts instead.
type HaltCondition struct {
	kind   haltKind
	epochs int
	limit  time.Duration
	mse    float64
}

// EpochCount halts after n completed epochs.
func EpochCount(n int) (HaltCondition, error) {
	if n <= 0 {
		return HaltCondition{}, fmt.Errorf("epoch count must be positive, got %d", n)
	}
	return HaltCondition{kind: haltEpochs, epochs: n}, nil
}

// WallClock halts once elapsed training time reaches d.
func WallClock(d time.Duration) (HaltCondition, error) {
	if d <= 0 {
		return HaltCondition{}, fmt.Errorf("timer must be positive, got %v", d)
	}
	return HaltCondition{kind: haltTimer, limit: d}, nil
}

// TargetError halts once the training error drops to mse or below.
func TargetError(mse float64) (HaltCondition, error) {
	if mse < 0 || math.IsNaN(mse) {
		return HaltCondition{}, fmt.Errorf("target error must be non-negative, got %v", mse)
	}
	return HaltCondition{kind: haltTargetError, mse: mse}, nil
}

// progress is what the predicates see after each unit of work.
type progress struct {
	epochs  int
	elapsed time.Duration
	err     float64
	hasErr  bool
}

func (h HaltCondition) met(p progress) bool {
	switch h.kind {
	case haltEpochs:
		return p.epochs >= h.epochs
	case haltTimer:
		return p.elapsed >= h.limit
	case haltTargetError:
		return p.hasErr && p.err <= h.mse
	}
	return false
}

func (h HaltCondition) String() string {
	switch h.kind {
	case haltEpochs:
		return fmt.Sprintf("epochs(%d)", h.epochs)
	case haltTimer:
		return fmt.Sprintf("timer(%v)", h.limit)
	case haltTargetError:
		return fmt.Sprintf("mse(%v)", h.mse)
	}
	return "unknown"
}

// name is the halted-by label reported in results and snapshots.
func (h HaltCondition) name() string {
	switch h.kind {
	case haltEpochs:
		return "epochs"
	case haltTimer:
		return "timer"
	case haltTargetError:
		return "mse"
	}
	return "unknown"
}

func hasTargetError(halts []HaltCondition) bool {
	for _, h := range halts {
		if h.kind == haltTargetError {
			return true
		}
	}
	return false
}
