package grid

import (
	"math"

	"climindex/domain/core"
)

// Grid is a time-major array of gridded values: Data[timestep][cell].
type Grid struct {
	Data [][]float64 `json:"data"`
}

// New allocates a grid with every value set to fill.
func New(timesteps, cells int, fill float64) Grid {
	data := make([][]float64, timesteps)
	for t := range data {
		row := make([]float64, cells)
		for c := range row {
			row[c] = fill
		}
		data[t] = row
	}
	return Grid{Data: data}
}

// FromSeries builds a single-cell grid from one time series.
func FromSeries(values ...float64) Grid {
	data := make([][]float64, len(values))
	for t, v := range values {
		data[t] = []float64{v}
	}
	return Grid{Data: data}
}

// Timesteps returns the length of the time axis.
func (g Grid) Timesteps() int { return len(g.Data) }

// Cells returns the number of spatial cells.
func (g Grid) Cells() int {
	if len(g.Data) == 0 {
		return 0
	}
	return len(g.Data[0])
}

// Validate checks that the grid is non-empty and rectangular.
func (g Grid) Validate() error {
	if len(g.Data) == 0 {
		return core.NewShapeError("grid timesteps", 0, 1)
	}
	cells := len(g.Data[0])
	if cells == 0 {
		return core.NewShapeError("grid cells", 0, 1)
	}
	for _, row := range g.Data {
		if len(row) != cells {
			return core.NewShapeError("grid row", len(row), cells)
		}
	}
	return nil
}

// SameShape reports an error unless both grids have identical dimensions.
func (g Grid) SameShape(other Grid) error {
	if g.Timesteps() != other.Timesteps() {
		return core.NewShapeError("grid timesteps", other.Timesteps(), g.Timesteps())
	}
	if g.Cells() != other.Cells() {
		return core.NewShapeError("grid cells", other.Cells(), g.Cells())
	}
	return nil
}

// Column copies the time series of one cell.
func (g Grid) Column(cell int) []float64 {
	col := make([]float64, len(g.Data))
	for t, row := range g.Data {
		col[t] = row[cell]
	}
	return col
}

// IsMissing reports whether v is the fill sentinel or NaN.
func IsMissing(v, fill float64) bool {
	return math.IsNaN(v) || v == fill
}
