// Package agent defines an agent interface
package agent

import (
	"github.com/samuelfneumann/modelrl/environment"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns a model of its
// environment from observed transitions, and a Policy which chooses
// actions in each state using what the Learner has learned.
type Agent interface {
	Learner
	Policy

	// SelectNextAction observes the transition from prevState to
	// curState under prevAction and returns the action to take in
	// curState
	SelectNextAction(prevState environment.State,
		prevAction environment.Action, curState environment.State,
		curReward float64) (environment.Action, error)
}

// Learner implements a learning algorithm that defines how the learned
// model changes over time.
type Learner interface {
	// Observe records that taking prevAction in prevState lead to
	// curState, which was entered with reward curReward
	Observe(prevState environment.State, prevAction environment.Action,
		curState environment.State, curReward float64) error
}

// Policy represents a policy that an agent can have.
//
// Policies determine how agents select actions. The Policy and Learner
// of an Agent share the same learned tables so that any change the
// Learner makes is reflected in the actions the Policy chooses.
type Policy interface {
	SelectAction(s environment.State) (environment.Action, error)
}
