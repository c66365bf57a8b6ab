// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"
)

// State is an opaque identifier of an environment observation
type State string

// StepType denotes the type of step that a TimeStep can be, either the
// first environmental step or any step after it. Interaction is a single
// running trajectory, so there is no last step.
type StepType int

const (
	First StepType = iota
	Mid
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	default:
		return "Mid"
	}
}

// TimeStep packages together a single timestep in an environment
type TimeStep struct {
	StepType
	Reward      float64
	Observation State
	Number      int
}

// New returns a new TimeStep
func New(t StepType, r float64, o State, n int) TimeStep {
	return TimeStep{t, r, o, n}
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.StepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.StepType == Mid
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  State: %v  |  " +
		"Step Number:  %v"

	return fmt.Sprintf(str, t.StepType, t.Reward, t.Observation, t.Number)
}
