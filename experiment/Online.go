package experiment

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/samuelfneumann/modelrl/agent"
	"github.com/samuelfneumann/modelrl/agent/tabular/modelbased"
	env "github.com/samuelfneumann/modelrl/environment"
	"github.com/samuelfneumann/modelrl/environment/gridworld"
	"github.com/samuelfneumann/modelrl/experiment/checkpointer"
	"github.com/samuelfneumann/modelrl/experiment/trackers"
	"github.com/samuelfneumann/modelrl/rlerr"
	ts "github.com/samuelfneumann/modelrl/timestep"
	"github.com/sirupsen/logrus"
)

func init() {
	// Concrete types stored behind the agent and environment interfaces
	// of a serialized Online experiment
	gob.Register(&gridworld.GridWorld{})
	gob.Register(&modelbased.ModelBased{})
}

// Tick is the outcome of a single tick of an Online experiment
type Tick struct {
	Number int
	Action env.Action
	State  env.State
	Reward float64

	// Converged is false if value iteration reached its sweep cap on
	// this tick, in which case Action is greedy with respect to the
	// partially converged values
	Converged bool
}

// Online is an Experiment that runs an agent online in a single
// running trajectory.
//
// Online is the only place where an agent and environment meet. It
// holds the running tuple (prevState, prevAction, curState, curReward),
// asks the agent for the next action, and steps the environment with
// it.
type Online struct {
	environment env.Environment
	agent       agent.Agent

	prevState  env.State
	prevAction env.Action
	curState   env.State
	curReward  float64
	ticks      int

	trackers      []trackers.Tracker
	checkpointers []checkpointer.Checkpointer
	logger        logrus.FieldLogger
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. Both the previous and current state
// start as the current observation of e, the current reward as the
// reward of e's current timestep, and the previous action as
// initialAction.
//
// NewOnline fails with rlerr.ErrInvalidArgument if initialAction is not
// an action of e.
func NewOnline(e env.Environment, a agent.Agent, initialAction env.Action,
	logger logrus.FieldLogger) (*Online, error) {
	valid := false
	for _, action := range e.Actions() {
		valid = valid || action == initialAction
	}
	if !valid {
		return nil, rlerr.InvalidArgument("newOnline",
			fmt.Errorf("initial action is not an environment action"),
			map[string]interface{}{
				"initialAction": initialAction,
				"actions":       e.Actions(),
			})
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}

	state := e.Observe()
	return &Online{
		environment: e,
		agent:       a,
		prevState:   state,
		prevAction:  initialAction,
		curState:    state,
		curReward:   e.CurrentTimeStep().Reward,
		logger:      logger,
	}, nil
}

// Register registers a trackers.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t trackers.Tracker) {
	o.trackers = append(o.trackers, t)
}

// RegisterCheckpointer registers a checkpointer.Checkpointer which is
// given every timestep of the experiment
func (o *Online) RegisterCheckpointer(c checkpointer.Checkpointer) {
	o.checkpointers = append(o.checkpointers, c)
}

// SetLogger sets the logger of the experiment
func (o *Online) SetLogger(logger logrus.FieldLogger) {
	o.logger = logger
}

// Tick runs a single tick of the experiment: the agent observes the
// last transition and selects an action, which is then applied to the
// environment.
//
// If value iteration fails to converge, the failure is logged and the
// action that is greedy under the partially converged values is taken.
// Any other error aborts the tick before the environment is stepped.
func (o *Online) Tick() (Tick, error) {
	converged := true
	action, err := o.agent.SelectNextAction(o.prevState, o.prevAction,
		o.curState, o.curReward)
	if rlerr.IsConvergenceFailure(err) {
		o.logger.WithError(err).WithField("tick", o.ticks+1).Warn(
			"value iteration did not converge")
		converged = false
		action, err = o.agent.SelectAction(o.curState)
	}
	if err != nil {
		return Tick{}, fmt.Errorf("tick: %w", err)
	}

	step, err := o.environment.Step(action)
	if err != nil {
		return Tick{}, fmt.Errorf("tick: %w", err)
	}

	o.ticks++
	o.prevState = o.curState
	o.prevAction = action
	o.curState = step.Observation
	o.curReward = step.Reward

	o.logger.WithFields(logrus.Fields{
		"tick":   o.ticks,
		"action": action,
		"state":  step.Observation,
		"reward": step.Reward,
	}).Debug("tick")
	if s, ok := o.agent.(interface{ Sweeps() int }); ok {
		o.logger.WithField("sweeps", s.Sweeps()).Debug("value iteration")
	}

	o.track(step)
	if err := o.checkpoint(step); err != nil {
		return Tick{}, err
	}

	return Tick{
		Number:    o.ticks,
		Action:    action,
		State:     step.Observation,
		Reward:    step.Reward,
		Converged: converged,
	}, nil
}

// Run runs the experiment for steps ticks
func (o *Online) Run(steps int) error {
	for i := 0; i < steps; i++ {
		if _, err := o.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// Save saves all the data cached by the Trackers
func (o *Online) Save() error {
	var errs error
	for _, tracker := range o.trackers {
		if err := tracker.Save(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs
}

// Environment returns the environment of the experiment
func (o *Online) Environment() env.Environment {
	return o.environment
}

// Agent returns the agent of the experiment
func (o *Online) Agent() agent.Agent {
	return o.agent
}

// Ticks returns the number of completed ticks
func (o *Online) Ticks() int {
	return o.ticks
}

// PrevState returns the state in which the previous action was taken
func (o *Online) PrevState() env.State {
	return o.prevState
}

// PrevAction returns the previous action taken
func (o *Online) PrevAction() env.Action {
	return o.prevAction
}

// CurState returns the current state
func (o *Online) CurState() env.State {
	return o.curState
}

// CurReward returns the reward received on entering the current state
func (o *Online) CurReward() float64 {
	return o.curReward
}

// track tracks the current timestep by caching its data in each
// tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tracker := range o.trackers {
		tracker.Track(t)
	}
}

// checkpoint gives the current timestep to each checkpointer
func (o *Online) checkpoint(t ts.TimeStep) error {
	for _, c := range o.checkpointers {
		if err := c.Checkpoint(t); err != nil {
			return fmt.Errorf("checkpoint: %w", err)
		}
	}
	return nil
}

// GobEncode implements the gob.GobEncoder interface. The agent,
// environment, running tuple, and tick count are stored. Trackers,
// checkpointers, and the logger are not.
func (o *Online) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	err := enc.Encode(&o.environment)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode environment: %v",
			err)
	}

	err = enc.Encode(&o.agent)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode agent: %v", err)
	}

	err = enc.Encode(session{
		PrevState:  o.prevState,
		PrevAction: o.prevAction,
		CurState:   o.curState,
		CurReward:  o.curReward,
		Ticks:      o.ticks,
	})
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode session: %v",
			err)
	}

	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The decoded
// experiment logs to the standard logger until SetLogger is called.
func (o *Online) GobDecode(in []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(in))

	var environment env.Environment
	err := dec.Decode(&environment)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode environment: %v", err)
	}

	var a agent.Agent
	err = dec.Decode(&a)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode agent: %v", err)
	}

	var s session
	err = dec.Decode(&s)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode session: %v", err)
	}

	*o = Online{
		environment: environment,
		agent:       a,
		prevState:   s.PrevState,
		prevAction:  s.PrevAction,
		curState:    s.CurState,
		curReward:   s.CurReward,
		ticks:       s.Ticks,
		logger:      logrus.StandardLogger(),
	}
	return nil
}

// session is the serialized running tuple of an Online experiment
type session struct {
	PrevState  env.State
	PrevAction env.Action
	CurState   env.State
	CurReward  float64
	Ticks      int
}
