package grid

import (
	"fmt"
	"time"

	"climindex/domain/core"
)

// ThresholdKind tells which representation a Threshold carries.
type ThresholdKind int

const (
	ThresholdNone ThresholdKind = iota
	ThresholdFixed
	// ThresholdDaily holds one value per cell for each calendar day of year
	// (temperature-like variables).
	ThresholdDaily
	// ThresholdSpatial holds one value per cell (precipitation-like variables).
	ThresholdSpatial
)

// Threshold is the effective comparison threshold handed to a kernel.
type Threshold struct {
	Kind    ThresholdKind     `json:"kind"`
	Value   float64           `json:"value,omitempty"`
	Daily   map[int][]float64 `json:"daily,omitempty"`
	Spatial []float64         `json:"spatial,omitempty"`
}

func Fixed(v float64) Threshold { return Threshold{Kind: ThresholdFixed, Value: v} }

func Daily(byDayOfYear map[int][]float64) Threshold {
	return Threshold{Kind: ThresholdDaily, Daily: byDayOfYear}
}

func Spatial(perCell []float64) Threshold {
	return Threshold{Kind: ThresholdSpatial, Spatial: perCell}
}

// IsSet reports whether any threshold was supplied.
func (th Threshold) IsSet() bool { return th.Kind != ThresholdNone }

// Lookup returns the threshold for a timestep and cell.
type Lookup func(t, cell int) float64

// Bind checks the threshold against the grid dimensions once and returns a
// lookup for the kernel loop. Daily thresholds need a time axis.
func (th Threshold) Bind(timesteps, cells int, times []time.Time) (Lookup, error) {
	switch th.Kind {
	case ThresholdFixed:
		v := th.Value
		return func(int, int) float64 { return v }, nil

	case ThresholdSpatial:
		if len(th.Spatial) != cells {
			return nil, core.NewShapeError("spatial percentile threshold", len(th.Spatial), cells)
		}
		s := th.Spatial
		return func(_, c int) float64 { return s[c] }, nil

	case ThresholdDaily:
		if len(times) != timesteps {
			return nil, core.NewShapeError("time axis for daily percentile threshold", len(times), timesteps)
		}
		rows := make([][]float64, timesteps)
		for t, ts := range times {
			doy := ts.YearDay()
			row, ok := th.Daily[doy]
			if !ok && doy == 366 {
				row, ok = th.Daily[365]
			}
			if !ok {
				return nil, fmt.Errorf("%w: no daily percentile for day of year %d", core.ErrInvalidInputShape, doy)
			}
			if len(row) != cells {
				return nil, core.NewShapeError(fmt.Sprintf("daily percentile for day %d", doy), len(row), cells)
			}
			rows[t] = row
		}
		return func(t, c int) float64 { return rows[t][c] }, nil
	}
	return nil, core.ErrMissingThreshold
}
