// Package environment outlines the interfaces and types needed to
// implement concrete environments over discrete state and action
// alphabets
package environment

import (
	"github.com/samuelfneumann/modelrl/timestep"
)

// State is an opaque identifier of an environment observation. States
// are drawn from a finite alphabet fixed when the environment is
// created.
type State = timestep.State

// Action is a discrete choice available to an agent at each tick
type Action string

// Environment implements a simulated environment. Agents never call an
// Environment directly; a driver takes the action chosen by an agent
// and steps the Environment with it.
type Environment interface {
	// Observe returns the current state without changing it
	Observe() State

	// Step applies an action and returns the resulting timestep, whose
	// observation becomes the current state
	Step(action Action) (timestep.TimeStep, error)

	// CurrentTimeStep returns the most recent timestep
	CurrentTimeStep() timestep.TimeStep

	// Actions returns the action alphabet in a fixed order
	Actions() []Action

	// States returns the full state alphabet in a fixed order. Some
	// states may never be observed.
	States() []State

	RewardSpec() Spec
}
