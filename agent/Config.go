package agent

import (
	"github.com/samuelfneumann/modelrl/environment"
)

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes over the
	// action and state alphabets of env
	CreateAgent(env environment.Environment) (Agent, error)

	// ValidAgent returns whether the argument agent is valid for the
	// Config
	ValidAgent(Agent) bool

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error
}
