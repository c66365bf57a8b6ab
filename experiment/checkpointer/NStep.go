package checkpointer

import (
	"fmt"

	"github.com/samuelfneumann/modelrl/rlerr"
	ts "github.com/samuelfneumann/modelrl/timestep"
	"github.com/twpayne/go-vfs"
)

// nStep implements checkpointing every N steps
type nStep struct {
	interval int
	fs       vfs.FS
	object   Serializable // Object to save

	// filename names the checkpoint of a timestep, usually a
	// StepNamer so that a resumed session never reuses a name
	filename Namer
}

// NewNStep returns a checkpointer that saves object to fs every n
// steps. The first timestep is never checkpointed.
func NewNStep(n int, fs vfs.FS, object Serializable,
	filename Namer) (Checkpointer, error) {
	if n <= 0 {
		return nil, rlerr.InvalidArgument("newNStep",
			fmt.Errorf("interval must be positive"),
			map[string]interface{}{"n": n})
	}

	return &nStep{
		interval: n,
		fs:       fs,
		object:   object,
		filename: filename,
	}, nil
}

// Checkpoint saves the Checkpointer's tracked object if t falls on the
// checkpointing interval
func (n *nStep) Checkpoint(t ts.TimeStep) error {
	if t.First() || t.Number%n.interval != 0 {
		return nil
	}
	return Save(n.fs, n.filename(t), n.object)
}
