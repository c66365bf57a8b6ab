// Package experiment implements functionality for running an experiment
package experiment

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/samuelfneumann/modelrl/agent"
	env "github.com/samuelfneumann/modelrl/environment"
	"github.com/samuelfneumann/modelrl/experiment/checkpointer"
	"github.com/samuelfneumann/modelrl/experiment/trackers"
	"github.com/samuelfneumann/modelrl/rlerr"
	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-vfs"
)

// Experiment outlines structs that can run experiments. Tick runs a
// single step of agent-environment interaction, while Run runs a given
// number of them.
//
// In order to save data, Experiments use Trackers. Trackers determine
// which data generated during the experiment is saved. Experiments
// send each TimeStep to Trackers using the Tracker's Track() method and
// the Save() method saves all tracked data.
type Experiment interface {
	Tick() (Tick, error)
	Run(steps int) error

	// Save all tracked data
	Save() error

	// Adds a new trackers.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t trackers.Tracker)
}

// DefaultInitialAction is the action assumed to have been taken before
// the first tick
const DefaultInitialAction env.Action = "W"

// Config represents a configuration of an experiment
type Config struct {
	// InitialAction is the action assumed to have been taken before the
	// first tick
	InitialAction env.Action `mapstructure:"initial_action" yaml:"initial_action"`

	// Steps is the number of ticks run by a batch experiment
	Steps int `mapstructure:"steps" yaml:"steps"`

	// CheckpointEvery, if positive, saves the experiment every
	// CheckpointEvery ticks to files named CheckpointPrefix-<tick>.gob
	CheckpointEvery  int    `mapstructure:"checkpoint_every" yaml:"checkpoint_every"`
	CheckpointPrefix string `mapstructure:"checkpoint_prefix" yaml:"checkpoint_prefix"`

	// RewardsFile, if set, is where the reward of every tick is saved
	RewardsFile string `mapstructure:"rewards_file" yaml:"rewards_file"`
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	var errs error
	if c.Steps < 0 {
		errs = multierror.Append(errs, fmt.Errorf("steps %d is negative",
			c.Steps))
	}
	if c.CheckpointEvery < 0 {
		errs = multierror.Append(errs, fmt.Errorf("checkpoint interval %d "+
			"is negative", c.CheckpointEvery))
	}
	if c.CheckpointEvery > 0 && c.CheckpointPrefix == "" {
		errs = multierror.Append(errs, fmt.Errorf("checkpointing requires "+
			"a checkpoint prefix"))
	}
	if errs != nil {
		return rlerr.InvalidArgument("validate", errs, nil)
	}
	return nil
}

// CreateExp creates an Online experiment of an agent configured by
// agentConf on e. Trackers and checkpointers configured by c are
// registered with the experiment and write to fs.
func (c Config) CreateExp(e env.Environment, agentConf agent.Config,
	fs vfs.FS, logger logrus.FieldLogger) (*Online, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	a, err := agentConf.CreateAgent(e)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create agent: %w", err)
	}

	initialAction := c.InitialAction
	if initialAction == "" {
		initialAction = DefaultInitialAction
	}
	o, err := NewOnline(e, a, initialAction, logger)
	if err != nil {
		return nil, err
	}

	if err := c.Attach(o, fs); err != nil {
		return nil, err
	}
	return o, nil
}

// Attach registers the trackers and checkpointers configured by c with
// o. It is used both for new experiments and for experiments restored
// with Load, whose trackers and checkpointers are not serialized.
func (c Config) Attach(o *Online, fs vfs.FS) error {
	if c.RewardsFile != "" {
		o.Register(trackers.NewRewards(fs, c.RewardsFile))
	}

	if c.CheckpointEvery > 0 {
		n, err := checkpointer.NewNStep(c.CheckpointEvery, fs, o,
			checkpointer.StepNamer(c.CheckpointPrefix, ".gob"))
		if err != nil {
			return err
		}
		o.RegisterCheckpointer(n)
	}
	return nil
}

// Load loads an Online experiment saved to filename on fs
func Load(fs vfs.FS, filename string,
	logger logrus.FieldLogger) (*Online, error) {
	var o Online
	if err := checkpointer.Load(fs, filename, &o); err != nil {
		return nil, err
	}
	if logger != nil {
		o.SetLogger(logger)
	}
	return &o, nil
}

// Save saves o to a new file filename on fs. Existing files are never
// overwritten.
func Save(fs vfs.FS, filename string, o *Online) error {
	return checkpointer.Save(fs, filename, o)
}
