// Package gridworld implements a 2D grid world with obstacles, sensed by
// four range-limited obstacle distance sensors
package gridworld

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/samuelfneumann/modelrl/environment"
	"github.com/samuelfneumann/modelrl/rlerr"
	ts "github.com/samuelfneumann/modelrl/timestep"
)

// Actions of the grid world, one per direction
const (
	E environment.Action = "E"
	W environment.Action = "W"
	S environment.Action = "S"
	N environment.Action = "N"
)

// GridWorld represents a gridworld environment
//
// The grid is stored as a flattened matrix alongside the current agent
// position, which always indexes a Path cell. An observation is the
// state key of the four sensor readings at the current position and
// the reward is given by a Clearance task.
type GridWorld struct {
	Clearance
	cells            []Cell
	r, c             int // rows (y extent) and columns (x extent)
	position         int
	sensorCapability int
	sampler          Sampler

	actions     []environment.Action
	states      []environment.State
	currentStep ts.TimeStep
}

// New creates a new gridworld on grid with the agent starting at
// (x, y). Sensor readings are clamped to sensorCapability and sampler
// supplies the draw that decides actuator drift on each step.
//
// New fails with rlerr.ErrInvalidArgument if the grid is not a
// non-empty rectangle of Path and Obstacle cells, sensorCapability is
// not in [1, MaxSensorCapability], or (x, y) is not a Path cell inside
// the grid.
func New(grid Grid, sensorCapability, x, y int,
	sampler Sampler) (*GridWorld, ts.TimeStep, error) {
	if err := validate(grid, sensorCapability, x, y); err != nil {
		return nil, ts.TimeStep{}, err
	}
	if sampler == nil {
		return nil, ts.TimeStep{}, rlerr.InvalidArgument("new",
			fmt.Errorf("sampler is nil"), nil)
	}

	width, height := grid.Dims()
	cells := make([]Cell, width*height)
	for i := range grid {
		for j, cell := range grid[i] {
			cells[cToInd(i, j, width)] = cell
		}
	}

	g := &GridWorld{
		Clearance:        NewClearance(sensorCapability),
		cells:            cells,
		r:                height,
		c:                width,
		position:         cToInd(x, y, width),
		sensorCapability: sensorCapability,
		sampler:          sampler,
		actions:          []environment.Action{E, W, S, N},
		states:           States(sensorCapability),
	}

	readings := g.readings()
	g.currentStep = ts.New(ts.First, g.GetReward(readings), readings.State(),
		0)

	return g, g.currentStep, nil
}

// validate reports every problem with the construction parameters of a
// GridWorld
func validate(grid Grid, sensorCapability, x, y int) error {
	gridErr := grid.Validate()
	errs := gridErr

	if sensorCapability <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("sensor capability %d "+
			"is not positive", sensorCapability))
	} else if sensorCapability > MaxSensorCapability {
		errs = multierror.Append(errs, fmt.Errorf("sensor capability %d "+
			"exceeds %d", sensorCapability, MaxSensorCapability))
	}

	if gridErr == nil {
		if !grid.Contains(x, y) {
			errs = multierror.Append(errs, fmt.Errorf("start (%d, %d) is "+
				"outside the grid", x, y))
		} else if grid[x][y] != Path {
			errs = multierror.Append(errs, fmt.Errorf("start (%d, %d) is "+
				"not a path cell", x, y))
		}
	}

	if errs != nil {
		return rlerr.InvalidArgument("new", errs, map[string]interface{}{
			"grid":             grid.Columns(),
			"sensorCapability": sensorCapability,
			"x":                x,
			"y":                y,
		})
	}
	return nil
}

// Observe returns the current state
func (g *GridWorld) Observe() environment.State {
	return g.readings().State()
}

// Reward returns the reward of the current position
func (g *GridWorld) Reward() float64 {
	return g.GetReward(g.readings())
}

// Step attempts to move the agent one cell in the direction of action.
// With probability DriftBack the agent instead moves a quarter turn
// back in E, S, W, N order, and with probability DriftForward a quarter
// turn forward. Moves off the grid or into an obstacle leave the
// position unchanged. The returned timestep holds the new state and
// the Clearance reward of the new position.
func (g *GridWorld) Step(action environment.Action) (ts.TimeStep, error) {
	intended, ok := directionOf(action)
	if !ok {
		return ts.TimeStep{}, rlerr.InvalidArgument("step", nil,
			map[string]interface{}{"action": action})
	}

	direction := drift(intended, g.sampler.Rand())

	x, y := g.Position()
	dx, dy := direction.Offset()
	if newX, newY := x+dx, y+dy; g.free(newX, newY) {
		g.position = g.cToInd(newX, newY)
	}

	readings := g.readings()
	step := ts.New(ts.Mid, g.GetReward(readings), readings.State(),
		g.currentStep.Number+1)
	g.currentStep = step

	return step, nil
}

// CurrentTimeStep returns the last timestep produced by the GridWorld
func (g *GridWorld) CurrentTimeStep() ts.TimeStep {
	return g.currentStep
}

// Actions returns the action alphabet E, W, S, N
func (g *GridWorld) Actions() []environment.Action {
	return append([]environment.Action(nil), g.actions...)
}

// States returns every possible state key. Many of them may be
// unreachable on a given grid.
func (g *GridWorld) States() []environment.State {
	return append([]environment.State(nil), g.states...)
}

// RewardSpec returns the specification of rewards
func (g *GridWorld) RewardSpec() environment.Spec {
	return environment.NewSpec(environment.RewardType, 0, g.Bounds(),
		environment.Discrete)
}

// Sense returns the sensor readings at (x, y)
func (g *GridWorld) Sense(x, y int) (Readings, error) {
	if !g.free(x, y) {
		return Readings{}, errNotPath(x, y)
	}
	return castRays(g.free, g.sensorCapability, x, y), nil
}

// SensorCapability returns the maximum sensing range
func (g *GridWorld) SensorCapability() int {
	return g.sensorCapability
}

// SetSampler replaces the source of actuator drift draws
func (g *GridWorld) SetSampler(s Sampler) {
	g.sampler = s
}

// Dims gets the width and height of the GridWorld
func (g *GridWorld) Dims() (width, height int) {
	return g.c, g.r
}

// At returns the cell at (x, y)
func (g *GridWorld) At(x, y int) Cell {
	return g.cells[g.cToInd(x, y)]
}

// Grid returns a copy of the grid
func (g *GridWorld) Grid() Grid {
	grid := make(Grid, g.c)
	for x := range grid {
		grid[x] = make([]Cell, g.r)
		for y := range grid[x] {
			grid[x][y] = g.At(x, y)
		}
	}
	return grid
}

// Position returns the (x, y) position of the agent
func (g *GridWorld) Position() (x, y int) {
	y = g.position / g.c
	x = g.position - (y * g.c)
	return x, y
}

func (g *GridWorld) String() string {
	str := "GridWorld | At: (%d, %d)  |  State: %v  |  Bounds: (%d, %d)"
	x, y := g.Position()

	return fmt.Sprintf(str, x, y, g.Observe(), g.c, g.r)
}

// readings returns the sensor readings at the current position, which
// is always a path cell
func (g *GridWorld) readings() Readings {
	x, y := g.Position()
	return castRays(g.free, g.sensorCapability, x, y)
}

// free returns whether or not (x, y) is a path cell inside the grid
func (g *GridWorld) free(x, y int) bool {
	if x < 0 || x >= g.c || y < 0 || y >= g.r {
		return false
	}
	return g.At(x, y) == Path
}

func (g *GridWorld) cToInd(x, y int) int {
	return cToInd(x, y, g.c)
}

func cToInd(x, y, c int) int {
	return y*c + x
}

// directionOf maps an action to the direction it intends
func directionOf(a environment.Action) (Direction, bool) {
	switch a {
	case E:
		return East, true
	case S:
		return South, true
	case W:
		return West, true
	case N:
		return North, true
	}
	return 0, false
}
