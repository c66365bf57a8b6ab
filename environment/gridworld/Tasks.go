package gridworld

import (
	"github.com/samuelfneumann/modelrl/utils/floatutils"
	"gonum.org/v1/gonum/spatial/r1"
)

// Clearance is the task of keeping away from obstacles. The reward for
// arriving at a position is the smallest of its sensor readings, so it
// lies in [1, sensorCapability].
type Clearance struct {
	sensorCapability int
}

// NewClearance returns a new Clearance task for sensors with the given
// capability
func NewClearance(sensorCapability int) Clearance {
	return Clearance{sensorCapability}
}

// GetReward returns the reward for arriving at a position with the
// argument readings
func (c Clearance) GetReward(r Readings) float64 {
	return floatutils.ClipInterval(float64(r.Min()), c.Bounds())
}

// Min returns the minimum reward attainable in the Task
func (c Clearance) Min() float64 {
	return 1
}

// Max returns the maximum reward attainable in the Task
func (c Clearance) Max() float64 {
	return float64(c.sensorCapability)
}

// Bounds returns the interval of attainable rewards
func (c Clearance) Bounds() r1.Interval {
	return r1.Interval{Min: c.Min(), Max: c.Max()}
}
