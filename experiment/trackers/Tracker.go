// Package trackers implements Trackers, which track and save data in
// an experiment
package trackers

import (
	"encoding/gob"
	"fmt"

	ts "github.com/samuelfneumann/modelrl/timestep"
	"github.com/twpayne/go-vfs"
)

// Tracker keeps track of experiment data and saves the data after the
// experiment has finished
type Tracker interface {
	Track(t ts.TimeStep)
	Save() error
}

// LoadData loads and returns the data saved by a Tracker
func LoadData(fs vfs.FS, filename string) ([]float64, error) {
	file, err := fs.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadData: could not open data file: %v", err)
	}
	defer file.Close()

	// Create the decoder and the variable to store the data in
	dec := gob.NewDecoder(file)
	var data []float64

	err = dec.Decode(&data)
	if err != nil {
		return nil, fmt.Errorf("loadData: could not decode data: %v", err)
	}

	return data, nil
}
