package checkpointer

import (
	"fmt"

	ts "github.com/samuelfneumann/modelrl/timestep"
)

// Namer returns the filename to checkpoint to at a timestep
type Namer func(ts.TimeStep) string

// StepNamer returns a Namer which suffixes filename with the number of
// the timestep being checkpointed
func StepNamer(filename, extension string) Namer {
	return func(t ts.TimeStep) string {
		return fmt.Sprintf("%v-%v%v", filename, t.Number, extension)
	}
}
