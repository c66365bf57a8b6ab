// Package checkpointer implements saving and loading of serializable
// objects, either on demand or periodically as an experiment runs.
package checkpointer

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"

	ts "github.com/samuelfneumann/modelrl/timestep"
	"github.com/twpayne/go-vfs"
)

// ErrExists is returned when saving to a destination that already
// exists. Existing files are never overwritten.
var ErrExists = errors.New("destination exists")

// Serializable is an object that can be saved/serialized
type Serializable interface {
	gob.GobEncoder
	gob.GobDecoder
}

// Checkpointer checkpoints/saves serializable objects based on
// timestep.TimeSteps
type Checkpointer interface {
	Checkpoint(ts.TimeStep) error
}

// Save gob encodes object to a new file filename on fs. If filename
// already exists, nothing is written and an error wrapping ErrExists is
// returned.
func Save(fs vfs.FS, filename string, object Serializable) error {
	file, err := fs.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL,
		0o644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("save: %v: %w", filename, ErrExists)
	} else if err != nil {
		return fmt.Errorf("save: could not create %v: %v", filename, err)
	}

	if err := gob.NewEncoder(file).Encode(object); err != nil {
		file.Close()
		return fmt.Errorf("save: could not encode %v: %v", filename, err)
	}
	return file.Close()
}

// Load decodes the object saved in filename on fs into object
func Load(fs vfs.FS, filename string, object Serializable) error {
	file, err := fs.Open(filename)
	if err != nil {
		return fmt.Errorf("load: could not open %v: %v", filename, err)
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(object); err != nil {
		return fmt.Errorf("load: could not decode %v: %v", filename, err)
	}
	return nil
}
