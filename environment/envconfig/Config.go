// Package envconfig provides configuration structs for configuring the
// grid world environment. Environment configurations in this package
// are serializable with mapstructure, YAML, and JSON.
package envconfig

import (
	"github.com/samuelfneumann/modelrl/environment/gridworld"
	ts "github.com/samuelfneumann/modelrl/timestep"
)

// DefaultMap is the grid world map used when none is configured.
// DefaultMap[x] holds column x from y = 0 upwards.
var DefaultMap = []string{
	"OOOOOO",
	"OXOOXX",
	"OOOOOO",
	"OOOOOO",
	"OXOOOO",
	"XXOOXO",
}

// Default settings of the grid world
const (
	DefaultSensorCapability = 3
)

// Position is a cell of the grid
type Position struct {
	X int `mapstructure:"x" yaml:"x" json:"x"`
	Y int `mapstructure:"y" yaml:"y" json:"y"`
}

// Config implements a specific configuration of the grid world
type Config struct {
	// Map holds one string per column of the grid, O for path and X for
	// obstacle cells
	Map              []string `mapstructure:"map" yaml:"map" json:"map"`
	SensorCapability int      `mapstructure:"sensor_capability" yaml:"sensor_capability" json:"ir_capability"`
	Start            Position `mapstructure:"start" yaml:"start" json:"initial_position"`

	// Seed seeds the source of actuator drift
	Seed uint64 `mapstructure:"seed" yaml:"seed" json:"seed,omitempty"`
}

// NewConfig returns a new environment Config
func NewConfig(columns []string, sensorCapability, x, y int,
	seed uint64) Config {
	return Config{
		Map:              columns,
		SensorCapability: sensorCapability,
		Start:            Position{X: x, Y: y},
		Seed:             seed,
	}
}

// Default returns the default configuration
func Default() Config {
	return NewConfig(append([]string(nil), DefaultMap...),
		DefaultSensorCapability, 0, 0, 0)
}

// Grid returns the map of the Config as a Grid
func (c Config) Grid() gridworld.Grid {
	return gridworld.ParseGrid(c.Map)
}

// Validate returns an error describing every way in which the Config
// cannot create an environment
func (c Config) Validate() error {
	_, _, err := c.Create()
	return err
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment. Drift is sampled from a
// uniform source seeded with the Config's seed.
func (c Config) Create() (*gridworld.GridWorld, ts.TimeStep, error) {
	return c.CreateWithSampler(gridworld.NewSampler(c.Seed))
}

// CreateWithSampler returns the environment described by the Config,
// drawing actuator drift from s
func (c Config) CreateWithSampler(s gridworld.Sampler) (*gridworld.GridWorld,
	ts.TimeStep, error) {
	return gridworld.New(c.Grid(), c.SensorCapability, c.Start.X, c.Start.Y,
		s)
}
