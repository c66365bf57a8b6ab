// Package modelbased implements a tabular model-based agent.
//
// The agent learns a maximum likelihood model of transition
// probabilities and a running mean model of the reward received on
// entering each state. After every observed transition it re-solves the
// state values of the learned model with value iteration, warm started
// from the previous values, and acts greedily with respect to them.
package modelbased

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"
	"github.com/samuelfneumann/modelrl/environment"
	"github.com/samuelfneumann/modelrl/rlerr"
	"github.com/samuelfneumann/modelrl/utils/sliceutils"
	"gonum.org/v1/gonum/mat"
)

// ModelBased implements the tabular model-based agent. States and
// actions are fixed at construction and every table is indexed by the
// position of a state or action in its alphabet.
type ModelBased struct {
	actions []environment.Action
	states  []environment.State
	actionI map[environment.Action]int
	stateI  map[environment.State]int

	discountRate    float64
	acceptableError float64
	maxSweeps       int

	model  *model
	values *mat.VecDense
	sweeps int

	// Scratch space for value iteration
	nextBuffer     *mat.VecDense
	expectedBuffer *mat.VecDense
	bestBuffer     []float64
}

// New creates a new ModelBased agent over the argument action and state
// alphabets. Repeated actions and states are removed, keeping the order
// of first occurrence. Transition probabilities start uniform over all
// states, and rewards and values start at zero.
//
// New fails with rlerr.ErrInvalidArgument if either alphabet is empty
// or c is not valid.
func New(actions []environment.Action, states []environment.State,
	c Config) (*ModelBased, error) {
	var errs error
	if len(actions) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("no actions"))
	}
	if len(states) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("no states"))
	}
	if err := c.validate(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if errs != nil {
		return nil, rlerr.InvalidArgument("new", errs, map[string]interface{}{
			"actions":         len(actions),
			"states":          len(states),
			"discountRate":    c.DiscountRate,
			"acceptableError": c.AcceptableError,
			"maxSweeps":       c.MaxSweeps,
		})
	}

	actions = sliceutils.RemoveRepeats(actions)
	states = sliceutils.RemoveRepeats(states)

	return newModelBased(actions, states, c), nil
}

// newModelBased constructs a ModelBased agent from de-duplicated
// alphabets and a valid Config
func newModelBased(actions []environment.Action, states []environment.State,
	c Config) *ModelBased {
	numStates := len(states)

	return &ModelBased{
		actions:         actions,
		states:          states,
		actionI:         sliceutils.Index(actions),
		stateI:          sliceutils.Index(states),
		discountRate:    c.DiscountRate,
		acceptableError: c.AcceptableError,
		maxSweeps:       c.maxSweeps(),
		model:           newModel(len(actions), numStates),
		values:          mat.NewVecDense(numStates, nil),
		nextBuffer:      mat.NewVecDense(numStates, nil),
		expectedBuffer:  mat.NewVecDense(numStates, nil),
		bestBuffer:      make([]float64, numStates),
	}
}

// SelectNextAction observes that taking prevAction in prevState lead
// to curState with reward curReward, re-solves the state values of the
// updated model, and returns the greedy action in curState.
//
// Unknown states or actions fail with rlerr.ErrKeyNotFound before
// anything is updated. If value iteration does not converge within the
// sweep cap, the model update and partially converged values are kept
// and an rlerr.ErrConvergenceFailure is returned with no action.
func (m *ModelBased) SelectNextAction(prevState environment.State,
	prevAction environment.Action, curState environment.State,
	curReward float64) (environment.Action, error) {
	if err := m.Observe(prevState, prevAction, curState, curReward); err != nil {
		return "", err
	}
	return m.SelectAction(curState)
}

// Observe updates the model with a single transition and re-solves the
// state values. The transition probabilities of (prevState, prevAction)
// are re-estimated from their counts and curReward is folded into the
// running mean reward of curState.
func (m *ModelBased) Observe(prevState environment.State,
	prevAction environment.Action, curState environment.State,
	curReward float64) error {
	s, err := m.stateIndex("observe", prevState)
	if err != nil {
		return err
	}
	a, err := m.actionIndex("observe", prevAction)
	if err != nil {
		return err
	}
	next, err := m.stateIndex("observe", curState)
	if err != nil {
		return err
	}
	if math.IsNaN(curReward) || math.IsInf(curReward, 0) {
		return rlerr.InvalidArgument("observe", fmt.Errorf("reward is not "+
			"finite"), map[string]interface{}{"reward": curReward})
	}

	m.model.observeTransition(s, a, next)
	m.model.observeReward(next, curReward)

	return m.solve()
}

// SelectAction returns the greedy action in state s under the current
// values. Ties go to the action earliest in the action alphabet.
func (m *ModelBased) SelectAction(s environment.State) (environment.Action,
	error) {
	i, err := m.stateIndex("selectAction", s)
	if err != nil {
		return "", err
	}
	return m.greedy(i), nil
}

// Actions returns the de-duplicated action alphabet
func (m *ModelBased) Actions() []environment.Action {
	return append([]environment.Action(nil), m.actions...)
}

// States returns the de-duplicated state alphabet
func (m *ModelBased) States() []environment.State {
	return append([]environment.State(nil), m.states...)
}

// DiscountRate returns the discount rate used in value iteration
func (m *ModelBased) DiscountRate() float64 {
	return m.discountRate
}

// AcceptableError returns the largest change in any value that ends
// value iteration
func (m *ModelBased) AcceptableError() float64 {
	return m.acceptableError
}

// MaxSweeps returns the cap on sweeps in a single solve
func (m *ModelBased) MaxSweeps() int {
	return m.maxSweeps
}

// Sweeps returns the number of sweeps taken by the last solve
func (m *ModelBased) Sweeps() int {
	return m.sweeps
}

// Transition returns the learned statistic of moving from s to next
// under action a
func (m *ModelBased) Transition(s environment.State, a environment.Action,
	next environment.State) (TransitionStat, error) {
	i, err := m.stateIndex("transition", s)
	if err != nil {
		return TransitionStat{}, err
	}
	j, err := m.actionIndex("transition", a)
	if err != nil {
		return TransitionStat{}, err
	}
	k, err := m.stateIndex("transition", next)
	if err != nil {
		return TransitionStat{}, err
	}
	return m.model.transition(i, j, k), nil
}

// Reward returns the learned statistic of rewards on entering s
func (m *ModelBased) Reward(s environment.State) (RewardStat, error) {
	i, err := m.stateIndex("reward", s)
	if err != nil {
		return RewardStat{}, err
	}
	return m.model.reward(i), nil
}

// Value returns the current value of s
func (m *ModelBased) Value(s environment.State) (float64, error) {
	i, err := m.stateIndex("value", s)
	if err != nil {
		return 0, err
	}
	return m.values.AtVec(i), nil
}

// Values returns the current value of each state, in the order of
// States()
func (m *ModelBased) Values() []float64 {
	return append([]float64(nil), m.values.RawVector().Data...)
}

func (m *ModelBased) String() string {
	str := "ModelBased | Actions: %d  |  States: %d  |  Discount: %v  |  " +
		"Acceptable Error: %v  |  Sweeps: %d"
	return fmt.Sprintf(str, len(m.actions), len(m.states), m.discountRate,
		m.acceptableError, m.sweeps)
}

func (m *ModelBased) stateIndex(op string, s environment.State) (int, error) {
	i, ok := m.stateI[s]
	if !ok {
		return 0, rlerr.KeyNotFound(op, map[string]interface{}{"state": s})
	}
	return i, nil
}

func (m *ModelBased) actionIndex(op string, a environment.Action) (int,
	error) {
	i, ok := m.actionI[a]
	if !ok {
		return 0, rlerr.KeyNotFound(op, map[string]interface{}{"action": a})
	}
	return i, nil
}
