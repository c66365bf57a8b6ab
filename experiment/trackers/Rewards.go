package trackers

import (
	"encoding/gob"
	"fmt"

	ts "github.com/samuelfneumann/modelrl/timestep"
	"github.com/twpayne/go-vfs"
	"gonum.org/v1/gonum/stat"
)

// Rewards tracks and saves the reward received on every tick of an
// experiment. The reward of the first timestep, received before the
// agent has acted, is not tracked.
type Rewards struct {
	lastTimeStep int
	rewards      []float64
	fs           vfs.FS
	filename     string
}

// NewRewards creates and returns a new *Rewards Tracker which saves
// its data to filename on fs
func NewRewards(fs vfs.FS, filename string) *Rewards {
	return &Rewards{
		lastTimeStep: -1,
		fs:           fs,
		filename:     filename,
	}
}

// Track tracks the reward of a timestep.
//
// Track panics if it is called for non-sequential timesteps. The first
// tracked timestep may have any number, so that tracking can begin
// part way through a restored experiment.
func (r *Rewards) Track(step ts.TimeStep) {
	if step.First() {
		return
	}

	// Ensure that Track is called on sequential timesteps
	if r.lastTimeStep >= 0 && r.lastTimeStep+1 != step.Number {
		msg := fmt.Sprintf("track: last two timesteps tracked are not "+
			"sequential: timestep %v --> timestep %v were tracked",
			r.lastTimeStep, step.Number)
		panic(msg)
	}

	r.rewards = append(r.rewards, step.Reward)
	r.lastTimeStep = step.Number
}

// Data returns the tracked rewards
func (r *Rewards) Data() []float64 {
	return append([]float64(nil), r.rewards...)
}

// Mean returns the mean tracked reward, or 0 if no reward has been
// tracked
func (r *Rewards) Mean() float64 {
	if len(r.rewards) == 0 {
		return 0
	}
	return stat.Mean(r.rewards, nil)
}

// Save saves the data tracked by the Rewards Tracker, replacing any
// previously saved data
func (r *Rewards) Save() error {
	file, err := r.fs.Create(r.filename)
	if err != nil {
		return fmt.Errorf("save: could not open save file: %v", err)
	}
	defer file.Close()

	// Encode and save the file
	en := gob.NewEncoder(file)
	if err = en.Encode(r.rewards); err != nil {
		return fmt.Errorf("save: could not encode reward data: %v", err)
	}
	return nil
}
