// Package nn implements the feed-forward networks the trainer drives and
// the evaluator reads. Consumers depend on the Engine capability surface,
// not on the concrete network, so the numeric implementation can change
// without touching orchestration code.
package nn

import "fmt"

// Example pairs one input vector with its expected outputs.
type Example struct {
	Inputs  []float64
	Targets []float64
}

// Engine is the capability surface of a trainable regression network.
type Engine interface {
	// Topology reports the layer widths, input layer first.
	Topology() []int

	// ForwardPass runs inference without mutating any weights.
	ForwardPass(inputs []float64) ([]float64, error)

	// TrainBatch updates weights in place over one batch and reports the
	// batch's mean squared error, measured before each sample's update.
	TrainBatch(batch []Example, rate, momentum float64) (float64, error)
}

// ShapeError reports an input vector whose width does not match the
// network's input layer.
type ShapeError struct {
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("input width mismatch: network expects %d inputs, got %d", e.Want, e.Got)
}
