package gridworld

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// Probabilities of the actuator drifting a quarter turn away from the
// intended direction, in each rotational sense
const (
	DriftBack    float64 = 0.1
	DriftForward float64 = 0.1
)

// Sampler draws uniform random samples in [0, 1). A GridWorld draws one
// sample per step to decide actuator drift.
type Sampler interface {
	Rand() float64
}

// NewSampler returns a seeded uniform Sampler on [0, 1)
func NewSampler(seed uint64) Sampler {
	return distuv.Uniform{Min: 0, Max: 1, Src: rand.NewSource(seed)}
}

// Constant is a Sampler which always returns the same sample
type Constant float64

// Rand returns c
func (c Constant) Rand() float64 {
	return float64(c)
}

// drift resolves the direction actually executed for an intended
// direction and a uniform sample r
func drift(intended Direction, r float64) Direction {
	switch {
	case r < DriftBack:
		return intended.Rotate(-1)
	case r < DriftBack+DriftForward:
		return intended.Rotate(1)
	default:
		return intended
	}
}
