package modelbased

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"
	"github.com/samuelfneumann/modelrl/agent"
	"github.com/samuelfneumann/modelrl/environment"
	"github.com/samuelfneumann/modelrl/rlerr"
)

// DefaultMaxSweeps is the sweep cap of value iteration when a Config
// leaves MaxSweeps unset
const DefaultMaxSweeps = 10000

// Config represents a configuration for the ModelBased agent
type Config struct {
	DiscountRate    float64 `mapstructure:"discount_rate" yaml:"discount_rate"`
	AcceptableError float64 `mapstructure:"acceptable_error" yaml:"acceptable_error"`

	// MaxSweeps caps the sweeps of a single solve. Zero means
	// DefaultMaxSweeps.
	MaxSweeps int `mapstructure:"max_sweeps" yaml:"max_sweeps"`
}

// CreateAgent creates a ModelBased agent over the action and state
// alphabets of env
func (c Config) CreateAgent(env environment.Environment) (agent.Agent,
	error) {
	m, err := New(env.Actions(), env.States(), c)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*ModelBased)
	return ok
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if err := c.validate(); err != nil {
		return rlerr.InvalidArgument("validate", err, map[string]interface{}{
			"discountRate":    c.DiscountRate,
			"acceptableError": c.AcceptableError,
			"maxSweeps":       c.MaxSweeps,
		})
	}
	return nil
}

// validate returns every rule that the Config violates
func (c Config) validate() error {
	var errs error
	if !(c.DiscountRate >= 0 && c.DiscountRate <= 1) {
		errs = multierror.Append(errs, fmt.Errorf("discount rate %v is "+
			"outside [0, 1]", c.DiscountRate))
	}
	if !(c.AcceptableError > 0) || math.IsInf(c.AcceptableError, 1) {
		errs = multierror.Append(errs, fmt.Errorf("acceptable error %v is "+
			"not a positive number", c.AcceptableError))
	}
	if c.MaxSweeps < 0 {
		errs = multierror.Append(errs, fmt.Errorf("max sweeps %d is "+
			"negative", c.MaxSweeps))
	}
	return errs
}

func (c Config) maxSweeps() int {
	if c.MaxSweeps == 0 {
		return DefaultMaxSweeps
	}
	return c.MaxSweeps
}
