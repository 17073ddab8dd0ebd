// Package neural provides the built-in feedforward baseline policy.
package neural

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/pthm-cable/nectar/systems"
)

// Network dimensions (compile-time constants for array sizing). Inputs match
// the observation vector, outputs the action vector.
const (
	NumInputs  = systems.ObsSize
	NumHidden  = 16
	NumOutputs = systems.ActionSize
)

// NumWeights is the total parameter count, the length of the flat weight
// vector used by external tuners.
const NumWeights = NumHidden*NumInputs + NumHidden + NumOutputs*NumHidden + NumOutputs

// FFNN is a two-layer feedforward policy with tanh activations. Outputs land
// in [-1, 1], the nominal action range.
type FFNN struct {
	W1 [NumHidden][NumInputs]float64  // input -> hidden weights
	B1 [NumHidden]float64             // hidden biases
	W2 [NumOutputs][NumHidden]float64 // hidden -> output weights
	B2 [NumOutputs]float64            // output biases
}

// New creates a randomly initialized network.
func New(rng *rand.Rand) *FFNN {
	nn := &FFNN{}
	// Xavier initialization
	scale1 := math.Sqrt(2.0 / float64(NumInputs))
	scale2 := math.Sqrt(2.0 / float64(NumHidden))

	for i := range nn.W1 {
		for j := range nn.W1[i] {
			nn.W1[i][j] = rng.NormFloat64() * scale1
		}
		nn.B1[i] = 0
	}
	for i := range nn.W2 {
		for j := range nn.W2[i] {
			nn.W2[i][j] = rng.NormFloat64() * scale2
		}
		nn.B2[i] = 0
	}
	return nn
}

// Forward runs the network on an observation vector.
func (nn *FFNN) Forward(in []float64) [NumOutputs]float64 {
	var hidden [NumHidden]float64
	for i := range hidden {
		sum := nn.B1[i]
		for j, v := range in {
			sum += nn.W1[i][j] * v
		}
		hidden[i] = math.Tanh(sum)
	}

	var out [NumOutputs]float64
	for i := range out {
		sum := nn.B2[i]
		for j, h := range hidden {
			sum += nn.W2[i][j] * h
		}
		out[i] = math.Tanh(sum)
	}
	return out
}

// Act implements the environment's policy interface. The reward and done
// signals are ignored; the baseline is stateless.
func (nn *FFNN) Act(obs []float64, _ float64, _ bool) (systems.Action, error) {
	if len(obs) != NumInputs {
		return systems.Action{}, fmt.Errorf("ffnn: observation length %d, want %d", len(obs), NumInputs)
	}
	return systems.Action(nn.Forward(obs)), nil
}

// Weights returns the parameters as a flat vector in a fixed order.
func (nn *FFNN) Weights() []float64 {
	w := make([]float64, 0, NumWeights)
	for i := range nn.W1 {
		w = append(w, nn.W1[i][:]...)
	}
	w = append(w, nn.B1[:]...)
	for i := range nn.W2 {
		w = append(w, nn.W2[i][:]...)
	}
	w = append(w, nn.B2[:]...)
	return w
}

// SetWeights loads a flat weight vector produced by Weights.
func (nn *FFNN) SetWeights(w []float64) error {
	if len(w) != NumWeights {
		return fmt.Errorf("ffnn: weight vector length %d, want %d", len(w), NumWeights)
	}
	idx := 0
	for i := range nn.W1 {
		idx += copy(nn.W1[i][:], w[idx:])
	}
	idx += copy(nn.B1[:], w[idx:])
	for i := range nn.W2 {
		idx += copy(nn.W2[i][:], w[idx:])
	}
	copy(nn.B2[:], w[idx:])
	return nil
}
