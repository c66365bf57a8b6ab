package gridworld

import (
	"fmt"

	"github.com/samuelfneumann/modelrl/environment"
	"github.com/samuelfneumann/modelrl/rlerr"
	"github.com/samuelfneumann/modelrl/utils/intutils"
)

// Direction is one of the four axis directions, in sensor order
type Direction int

const (
	East Direction = iota
	South
	West
	North
	numDirections
)

func (d Direction) String() string {
	switch d {
	case East:
		return "E"
	case South:
		return "S"
	case West:
		return "W"
	case North:
		return "N"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Offset returns the change in (x, y) of a single step in direction d
func (d Direction) Offset() (dx, dy int) {
	switch d {
	case East:
		return 1, 0
	case South:
		return 0, -1
	case West:
		return -1, 0
	case North:
		return 0, 1
	}
	panic(fmt.Sprintf("offset: invalid direction %d", int(d)))
}

// Rotate returns the direction k quarter turns away from d in sensor
// order E, S, W, N
func (d Direction) Rotate(k int) Direction {
	return Direction(intutils.Mod(int(d)+k, int(numDirections)))
}

// MaxSensorCapability is the largest supported sensing range. A grid
// world has sensorCapability^4 states and a tabular agent stores
// |S|x|S| tables per action, so the range is bounded.
const MaxSensorCapability = 6

// Readings holds the clamped obstacle distance sensed in each
// direction, indexed by Direction
type Readings [numDirections]int

// Min returns the smallest reading
func (r Readings) Min() int {
	return intutils.Min(r[:]...)
}

// State renders the readings as the canonical state key (E,S,W,N)
func (r Readings) State() environment.State {
	return stateKey(r[East], r[South], r[West], r[North])
}

func stateKey(e, s, w, n int) environment.State {
	return environment.State(fmt.Sprintf("(%d,%d,%d,%d)", e, s, w, n))
}

// ParseState parses a canonical state key back into Readings
func ParseState(s environment.State) (Readings, error) {
	var r Readings
	_, err := fmt.Sscanf(string(s), "(%d,%d,%d,%d)", &r[East], &r[South],
		&r[West], &r[North])
	if err != nil || r.State() != s {
		return Readings{}, rlerr.InvalidArgument("parseState", err,
			map[string]interface{}{"state": s})
	}
	return r, nil
}

// States returns every state key with each reading in
// [1, sensorCapability], that is sensorCapability^4 states
func States(sensorCapability int) []environment.State {
	states := make([]environment.State, 0, intutils.Pow(sensorCapability,
		int(numDirections)))

	for i := 1; i <= sensorCapability; i++ {
		for j := 1; j <= sensorCapability; j++ {
			for k := 1; k <= sensorCapability; k++ {
				for l := 1; l <= sensorCapability; l++ {
					states = append(states, stateKey(i, j, k, l))
				}
			}
		}
	}
	return states
}

// Sense casts a ray in each direction from (x, y), counting cells until
// the ray enters an obstacle or leaves the grid. Each distance is
// clamped to sensorCapability, so readings lie in [1, sensorCapability].
func Sense(grid Grid, sensorCapability, x, y int) (Readings, error) {
	free := func(x, y int) bool {
		return grid.Contains(x, y) && grid[x][y] == Path
	}
	if !free(x, y) {
		return Readings{}, errNotPath(x, y)
	}
	return castRays(free, sensorCapability, x, y), nil
}

// castRays senses from (x, y) given a test of whether a cell can be
// entered
func castRays(free func(x, y int) bool, sensorCapability, x,
	y int) Readings {
	var readings Readings
	for d := East; d < numDirections; d++ {
		dx, dy := d.Offset()
		rayX, rayY := x, y
		distance := 0

		for {
			distance++
			rayX += dx
			rayY += dy

			if !free(rayX, rayY) {
				break
			}
		}
		readings[d] = intutils.Min(distance, sensorCapability)
	}
	return readings
}

func errNotPath(x, y int) error {
	return rlerr.InvalidArgument("sense",
		fmt.Errorf("(%d, %d) is not a path cell inside the grid", x, y),
		map[string]interface{}{"x": x, "y": y})
}
