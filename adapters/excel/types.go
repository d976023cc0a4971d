package excel

import (
	"time"

	"climindex/domain/core"
	"climindex/domain/grid"
)

// SeriesData is a gridded variable read from a sheet: one row per timestep,
// one column per cell.
type SeriesData struct {
	Cells    []string    // Column headers after the time column
	TimeAxis []time.Time // Parsed first column
	Grid     grid.Grid
}

// Append concatenates another file of the same variable along time.
func (s *SeriesData) Append(other *SeriesData) error {
	if len(s.Cells) != len(other.Cells) {
		return core.NewShapeError("appended file cells", len(other.Cells), len(s.Cells))
	}
	s.TimeAxis = append(s.TimeAxis, other.TimeAxis...)
	s.Grid.Data = append(s.Grid.Data, other.Grid.Data...)
	return nil
}
