package environment

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r1"
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an acion, an observation, or a reward
type SpecType int

const (
	ActionType SpecType = iota
	ObservationType
	RewardType
)

func (s SpecType) String() string {
	switch s {
	case ActionType:
		return "Action"
	case ObservationType:
		return "Observation"
	default:
		return "Reward"
	}
}

// Cardinality determines the cardinality of a number (discrete or continuous)
type Cardinality string

const (
	Continuous Cardinality = "Continuous"
	Discrete   Cardinality = "Discrete"
)

// Spec implements an environment specification, which tells the type,
// size, and bounds of the actions, observations, or rewards in an
// environment. Size is the number of values of a discrete Spec.
type Spec struct {
	Type   SpecType
	Size   int
	Bounds r1.Interval
	Cardinality
}

// NewSpec constructs a new environment specification
func NewSpec(t SpecType, size int, bounds r1.Interval,
	cardinality Cardinality) Spec {
	if bounds.Min > bounds.Max {
		panic(fmt.Sprintf("lower bound %v must not exceed upper bound %v",
			bounds.Min, bounds.Max))
	}
	return Spec{t, size, bounds, cardinality}
}

// Contains returns whether or not v lies within the Spec's bounds
func (s Spec) Contains(v float64) bool {
	return s.Bounds.Min <= v && v <= s.Bounds.Max
}
