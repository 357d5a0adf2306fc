package nn

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"slices"
)

// networkState is the serialized form: topology plus weights. Momentum
// buffers are transient and reset on load.
type networkState struct {
	Layers  []int         `json:"layers"`
	Weights [][][]float64 `json:"weights"`
}

// Network is a fully-connected feed-forward network with a sigmoid
// activation on every layer. weights[l][j] holds neuron j of layer l+1,
// bias first, then one weight per neuron of layer l. Not safe for
// concurrent use; a training session owns its network exclusively.
type Network struct {
	layers  []int
	weights [][][]float64
	moment  [][][]float64
}

// New creates a network with the given layer widths and fresh weights
// drawn uniformly from [-0.5, 0.5).
func New(topology []int) (*Network, error) {
	if err := validateTopology(topology); err != nil {
		return nil, err
	}

	n := &Network{
		layers:  slices.Clone(topology),
		weights: newTensor(topology),
		moment:  newTensor(topology),
	}
	for l := range n.weights {
		for j := range n.weights[l] {
			for k := range n.weights[l][j] {
				n.weights[l][j][k] = rand.Float64() - 0.5
			}
		}
	}
	return n, nil
}

func validateTopology(topology []int) error {
	if len(topology) < 2 {
		return fmt.Errorf("topology needs at least input and output layers, got %d", len(topology))
	}
	for i, width := range topology {
		if width < 1 {
			return fmt.Errorf("layer %d must have a positive width, got %d", i, width)
		}
	}
	return nil
}

func newTensor(topology []int) [][][]float64 {
	t := make([][][]float64, len(topology)-1)
	for l := 0; l < len(topology)-1; l++ {
		t[l] = make([][]float64, topology[l+1])
		for j := range t[l] {
			t[l][j] = make([]float64, topology[l]+1)
		}
	}
	return t
}

func (n *Network) Topology() []int {
	return slices.Clone(n.layers)
}

func (n *Network) InputWidth() int {
	return n.layers[0]
}

// ForwardPass runs inference. The network is not mutated and the returned
// slice is freshly allocated.
func (n *Network) ForwardPass(inputs []float64) ([]float64, error) {
	if len(inputs) != n.layers[0] {
		return nil, &ShapeError{Want: n.layers[0], Got: len(inputs)}
	}

	out := inputs
	for l := range n.weights {
		next := make([]float64, len(n.weights[l]))
		for j, wj := range n.weights[l] {
			sum := wj[0]
			for k, v := range out {
				sum += wj[k+1] * v
			}
			next[j] = sigmoid(sum)
		}
		out = next
	}
	return out, nil
}

// TrainBatch backpropagates every sample of the batch in order, updating
// weights after each sample, and returns the batch's mean squared error.
// Each sample's error is measured on its own pre-update forward pass.
func (n *Network) TrainBatch(batch []Example, rate, momentum float64) (float64, error) {
	if len(batch) == 0 {
		return 0, errors.New("empty batch")
	}

	outWidth := n.layers[len(n.layers)-1]
	var total float64
	for _, ex := range batch {
		if len(ex.Inputs) != n.layers[0] {
			return 0, &ShapeError{Want: n.layers[0], Got: len(ex.Inputs)}
		}
		if len(ex.Targets) != outWidth {
			return 0, fmt.Errorf("target width mismatch: network has %d outputs, got %d", outWidth, len(ex.Targets))
		}
		total += n.trainSample(ex, rate, momentum)
	}
	return total / float64(len(batch)), nil
}

func (n *Network) trainSample(ex Example, rate, momentum float64) float64 {
	// Forward, keeping every layer's activations for the backward pass.
	acts := make([][]float64, len(n.layers))
	acts[0] = ex.Inputs
	for l := range n.weights {
		next := make([]float64, len(n.weights[l]))
		for j, wj := range n.weights[l] {
			sum := wj[0]
			for k, v := range acts[l] {
				sum += wj[k+1] * v
			}
			next[j] = sigmoid(sum)
		}
		acts[l+1] = next
	}

	outs := acts[len(acts)-1]
	var errSum float64
	for j, o := range outs {
		d := ex.Targets[j] - o
		errSum += d * d
	}

	// Deltas, output layer first.
	deltas := make([][]float64, len(n.weights))
	last := len(n.weights) - 1
	deltas[last] = make([]float64, len(outs))
	for j, o := range outs {
		deltas[last][j] = o * (1 - o) * (ex.Targets[j] - o)
	}
	for l := last - 1; l >= 0; l-- {
		deltas[l] = make([]float64, len(n.weights[l]))
		for j := range n.weights[l] {
			var sum float64
			for k := range n.weights[l+1] {
				sum += n.weights[l+1][k][j+1] * deltas[l+1][k]
			}
			o := acts[l+1][j]
			deltas[l][j] = o * (1 - o) * sum
		}
	}

	// Delta-rule update with momentum on the previous step.
	for l := range n.weights {
		for j := range n.weights[l] {
			step := rate*deltas[l][j] + momentum*n.moment[l][j][0]
			n.weights[l][j][0] += step
			n.moment[l][j][0] = step
			for k, v := range acts[l] {
				step := rate*deltas[l][j]*v + momentum*n.moment[l][j][k+1]
				n.weights[l][j][k+1] += step
				n.moment[l][j][k+1] = step
			}
		}
	}

	return errSum
}

// Save writes the network state as JSON. Serialization fails if any weight
// has gone non-finite, so a diverged network can never reach disk.
func (n *Network) Save(w io.Writer) error {
	state := networkState{
		Layers:  n.layers,
		Weights: n.weights,
	}
	if err := json.NewEncoder(w).Encode(state); err != nil {
		return fmt.Errorf("failed to encode network state: %w", err)
	}
	return nil
}

// Load replaces the network with the serialized state, resetting momentum.
func (n *Network) Load(r io.Reader) error {
	var state networkState
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return fmt.Errorf("failed to decode network state: %w", err)
	}
	if err := validateState(&state); err != nil {
		return err
	}

	n.layers = state.Layers
	n.weights = state.Weights
	n.moment = newTensor(state.Layers)
	return nil
}

// LoadNetwork reads a serialized network.
func LoadNetwork(r io.Reader) (*Network, error) {
	n := &Network{}
	if err := n.Load(r); err != nil {
		return nil, err
	}
	return n, nil
}

func validateState(state *networkState) error {
	if err := validateTopology(state.Layers); err != nil {
		return err
	}
	if len(state.Weights) != len(state.Layers)-1 {
		return fmt.Errorf("expected %d weight layers, got %d", len(state.Layers)-1, len(state.Weights))
	}
	for l, layer := range state.Weights {
		if len(layer) != state.Layers[l+1] {
			return fmt.Errorf("layer %d: expected %d neurons, got %d", l+1, state.Layers[l+1], len(layer))
		}
		for j, neuron := range layer {
			if len(neuron) != state.Layers[l]+1 {
				return fmt.Errorf("layer %d neuron %d: expected %d weights, got %d", l+1, j, state.Layers[l]+1, len(neuron))
			}
		}
	}
	return nil
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
