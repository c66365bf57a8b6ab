package gridworld

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Cell is a single square of a Grid
type Cell byte

const (
	Path     Cell = 'O'
	Obstacle Cell = 'X'
)

// Valid returns whether or not c is a Path or an Obstacle
func (c Cell) Valid() bool {
	return c == Path || c == Obstacle
}

func (c Cell) String() string {
	return string(c)
}

// MarshalText encodes a Cell as its single character
func (c Cell) MarshalText() ([]byte, error) {
	return []byte{byte(c)}, nil
}

// UnmarshalText decodes a single character into a Cell. Longer text is
// decoded into an invalid Cell so that grid validation can report it
// along with its position.
func (c *Cell) UnmarshalText(text []byte) error {
	if len(text) != 1 {
		*c = 0
		return nil
	}
	*c = Cell(text[0])
	return nil
}

// Grid is a rectangular map of cells indexed as grid[x][y]. The first
// dimension runs along the x-axis from west to east and the second
// along the y-axis from south to north.
type Grid [][]Cell

// ParseGrid converts columns of characters into a Grid. columns[x] holds
// the cells of column x from y = 0 upwards. Characters are not
// validated.
func ParseGrid(columns []string) Grid {
	grid := make(Grid, len(columns))
	for x, column := range columns {
		grid[x] = make([]Cell, len(column))
		for y := 0; y < len(column); y++ {
			grid[x][y] = Cell(column[y])
		}
	}
	return grid
}

// Columns returns the Grid as one string per column, the inverse of
// ParseGrid
func (g Grid) Columns() []string {
	columns := make([]string, len(g))
	for x := range g {
		var b strings.Builder
		for _, c := range g[x] {
			b.WriteByte(byte(c))
		}
		columns[x] = b.String()
	}
	return columns
}

// Dims returns the width (x extent) and height (y extent) of the Grid
func (g Grid) Dims() (width, height int) {
	if len(g) == 0 {
		return 0, 0
	}
	return len(g), len(g[0])
}

// Contains returns whether or not (x, y) lies inside the Grid
func (g Grid) Contains(x, y int) bool {
	width, height := g.Dims()
	return 0 <= x && x < width && 0 <= y && y < height
}

// Validate returns every way in which the Grid is not a non-empty
// rectangle of Path and Obstacle cells
func (g Grid) Validate() error {
	var errs error

	if len(g) == 0 {
		return multierror.Append(errs, fmt.Errorf("grid is empty"))
	}

	height := len(g[0])
	if height == 0 {
		errs = multierror.Append(errs, fmt.Errorf("column 0 is empty"))
	}

	for x := range g {
		if len(g[x]) != height {
			errs = multierror.Append(errs, fmt.Errorf("column %d has %d "+
				"cells, want %d", x, len(g[x]), height))
			continue
		}
		for y, c := range g[x] {
			if !c.Valid() {
				errs = multierror.Append(errs, fmt.Errorf("cell (%d, %d) = "+
					"%q is neither %v nor %v", x, y, byte(c), Path, Obstacle))
			}
		}
	}
	return errs
}
