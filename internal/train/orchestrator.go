package train

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/haskel/2b2q/internal/dataset"
	"github.com/haskel/2b2q/internal/nn"
)

// haltedByCancel labels a session ended by the caller's context rather
// than by a predicate.
const haltedByCancel = "cancelled"

// ResourceSampler supplies the process reading attached to snapshots.
type ResourceSampler interface {
	Resources() (cpuPercent float64, rssBytes uint64, ok bool)
}

// Orchestrator runs one session through the Idle → Running → Halted/Failed
// lifecycle. The training loop body is strictly sequential; only snapshot
// emission ever leaves it, and that never blocks.
type Orchestrator struct {
	session *Session
	logger  *slog.Logger

	// OnSnapshot, when set, receives every progress snapshot. It is called
	// from the training goroutine and must return quickly.
	OnSnapshot func(Snapshot)

	// Sampler, when set, contributes CPU/RSS readings to snapshots.
	Sampler ResourceSampler

	state State
}

func New(session *Session, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		session: session,
		logger:  logger,
		state:   Idle,
	}
}

func (o *Orchestrator) State() State {
	return o.state
}

// Run validates the session and trains until a halt predicate trips, the
// context is cancelled, or the engine diverges. With the loop flag set,
// each halt checkpoints the model and starts a fresh iteration instead of
// finishing. Validation failures leave the orchestrator Idle with no side
// effects; a non-nil Result is returned whenever training actually ran.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	s := o.session
	if err := s.Validate(); err != nil {
		return nil, err
	}

	batches := makeBatches(s.Dataset, s.BatchSize)
	interval := s.LogInterval
	if interval <= 0 {
		interval = 100
	}

	o.state = Running
	res := &Result{State: Running}
	best := math.Inf(1)
	runStart := time.Now()

	defer func() {
		res.State = o.state
		res.Elapsed = time.Since(runStart)
	}()

	for iteration := 1; ; iteration++ {
		res.Iterations = iteration
		iterStart := time.Now()
		epochs := 0
		var lastErr float64

		o.logger.Debug("iteration started", "iteration", iteration)

		haltedBy := ""
	iterLoop:
		for {
			for _, batch := range batches {
				// Cancellation is honored between units: the batch in
				// flight always completes and gets persisted.
				if ctx.Err() != nil {
					haltedBy = haltedByCancel
					break iterLoop
				}

				errVal, err := s.Engine.TrainBatch(batch, s.Rate, s.Momentum)
				if err != nil {
					o.state = Failed
					return res, err
				}
				res.Batches++
				lastErr = errVal
				res.FinalErr = errVal

				if math.IsNaN(errVal) || math.IsInf(errVal, 0) {
					o.state = Failed
					return res, &DivergenceError{
						Iteration: iteration,
						Epoch:     epochs + 1,
						Value:     errVal,
					}
				}
				best = math.Min(best, errVal)

				if res.Batches%interval == 0 {
					o.emit("training", iteration, epochs, res.Batches, lastErr, best, iterStart, res.Checkpoints)
				}

				p := progress{epochs: epochs, elapsed: time.Since(iterStart), err: lastErr, hasErr: true}
				if h, ok := tripped(s.Halts, p); ok {
					haltedBy = h.name()
					break iterLoop
				}
			}

			epochs++
			res.Epochs++
			p := progress{epochs: epochs, elapsed: time.Since(iterStart), err: lastErr, hasErr: true}
			if h, ok := tripped(s.Halts, p); ok {
				haltedBy = h.name()
				break
			}
		}

		if err := s.Saver.Save(); err != nil {
			o.state = Failed
			return res, err
		}
		res.Checkpoints++
		res.HaltedBy = haltedBy
		o.emit("checkpoint", iteration, epochs, res.Batches, lastErr, best, iterStart, res.Checkpoints)

		if haltedBy == haltedByCancel || !s.Loop || ctx.Err() != nil {
			if ctx.Err() != nil {
				res.HaltedBy = haltedByCancel
			}
			o.state = Halted
			return res, nil
		}
	}
}

// tripped reports the first satisfied halt predicate.
func tripped(halts []HaltCondition, p progress) (HaltCondition, bool) {
	for _, h := range halts {
		if h.met(p) {
			return h, true
		}
	}
	return HaltCondition{}, false
}

func (o *Orchestrator) emit(state string, iteration, epoch, batch int, err, best float64, iterStart time.Time, checkpoints int) {
	snap := Snapshot{
		State:       state,
		Iteration:   iteration,
		Epoch:       epoch,
		Batch:       batch,
		Err:         err,
		BestErr:     best,
		ElapsedMS:   time.Since(iterStart).Milliseconds(),
		Checkpoints: checkpoints,
	}
	if o.Sampler != nil {
		if cpu, rss, ok := o.Sampler.Resources(); ok {
			snap.CPUPercent = cpu
			snap.RSSBytes = rss
		}
	}

	if o.session.Logging {
		o.logger.Info("training progress",
			"state", snap.State,
			"iteration", snap.Iteration,
			"epoch", snap.Epoch,
			"batch", snap.Batch,
			"err", snap.Err,
			"best", snap.BestErr,
			"elapsed", snap.Elapsed(),
			"checkpoints", snap.Checkpoints,
		)
	}
	if o.OnSnapshot != nil {
		o.OnSnapshot(snap)
	}
}

// makeBatches splits the dataset into engine batches of size samples,
// keeping dataset order. size <= 0 yields one batch per epoch.
func makeBatches(ds *dataset.Dataset, size int) [][]nn.Example {
	examples := make([]nn.Example, ds.Len())
	for i, s := range ds.Samples {
		examples[i] = nn.Example{
			Inputs:  s.Inputs,
			Targets: []float64{s.Target},
		}
	}

	if size <= 0 || size >= len(examples) {
		return [][]nn.Example{examples}
	}

	var batches [][]nn.Example
	for start := 0; start < len(examples); start += size {
		end := min(start+size, len(examples))
		batches = append(batches, examples[start:end])
	}
	return batches
}
