package gridworld

import (
	"bytes"
	"encoding/gob"
	"fmt"

	ts "github.com/samuelfneumann/modelrl/timestep"
)

// GobEncode implements the gob.GobEncoder interface. The grid, sensor
// capability, agent position and current timestep are stored. The drift
// sampler is not stored.
func (g *GridWorld) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	err := enc.Encode(g.Grid().Columns())
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode grid: %v", err)
	}

	err = enc.Encode(g.sensorCapability)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode sensor "+
			"capability: %v", err)
	}

	x, y := g.Position()
	err = enc.Encode([]int{x, y})
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode position: %v",
			err)
	}

	err = enc.Encode(g.currentStep)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode timestep: %v",
			err)
	}

	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface. The decoded
// GridWorld draws drift from NewSampler(0) until SetSampler is called.
func (g *GridWorld) GobDecode(in []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(in))

	var columns []string
	err := dec.Decode(&columns)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode grid: %v", err)
	}

	var sensorCapability int
	err = dec.Decode(&sensorCapability)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode sensor capability: "+
			"%v", err)
	}

	var position []int
	err = dec.Decode(&position)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode position: %v", err)
	}
	if len(position) != 2 {
		return fmt.Errorf("gobdecode: position has %d coordinates, want 2",
			len(position))
	}

	var step ts.TimeStep
	err = dec.Decode(&step)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode timestep: %v", err)
	}

	newGrid, _, err := New(ParseGrid(columns), sensorCapability,
		position[0], position[1], NewSampler(0))
	if err != nil {
		return fmt.Errorf("gobdecode: could not construct gridworld: %w", err)
	}
	newGrid.currentStep = step

	*g = *newGrid
	return nil
}
