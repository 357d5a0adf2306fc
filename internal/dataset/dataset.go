package dataset

import (
	"errors"
	"fmt"
)

// ErrEmpty reports a dataset with no samples. Loading an empty directory is
// not an error; consuming the result for training or evaluation is.
var ErrEmpty = errors.New("dataset is empty")

// ParseError reports a malformed CSV header or data row.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

// DataPoint is one observed queue state: a unix-millisecond timestamp plus
// the client's position and the total queue length at that moment.
type DataPoint struct {
	Time     uint64
	Position uint16
	Length   uint16
}

// QueueRun is one queue session as recorded by one CSV file: the state at
// join time followed by every later observation, in source order. The last
// point marks the moment the queue was cleared.
type QueueRun struct {
	File   string
	Points []DataPoint
}

// Samples derives one training sample per observation. The target of each
// sample is the wait remaining from that observation until the end of the
// run. Runs with fewer than two points carry no measurable wait and yield
// nothing.
func (r QueueRun) Samples() []Sample {
	if len(r.Points) < 2 {
		return nil
	}
	start := r.Points[0]
	end := r.Points[len(r.Points)-1]

	samples := make([]Sample, 0, len(r.Points))
	for _, p := range r.Points {
		var wait float64
		if end.Time > p.Time {
			wait = float64(end.Time - p.Time)
		}
		samples = append(samples, Sample{
			Inputs: MakeInputs(start, p),
			Target: NormWait(wait),
		})
	}
	return samples
}

// Sample pairs a normalized feature vector with its normalized wait target.
type Sample struct {
	Inputs []float64
	Target float64
}

// RunInfo summarizes one queue run for reporting: the join-time queue state,
// the join-time feature vector, and the real wait the run took.
type RunInfo struct {
	File      string
	Position  uint16
	Length    uint16
	Inputs    []float64
	WaitHours float64
}

// Dataset is an ordered sequence of samples loaded from every CSV file in a
// directory, concatenated in filename-lexicographic order. Read-only once
// loaded; every sample's feature vector has the same length.
type Dataset struct {
	Samples []Sample
	Runs    []RunInfo

	// Skipped counts data rows dropped in lenient mode.
	Skipped int
}

func (d *Dataset) Len() int { return len(d.Samples) }

// FeatureWidth is the shared feature-vector length, 0 for an empty dataset.
func (d *Dataset) FeatureWidth() int {
	if len(d.Samples) == 0 {
		return 0
	}
	return len(d.Samples[0].Inputs)
}
