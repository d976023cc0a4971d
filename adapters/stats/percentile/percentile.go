package percentile

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"climindex/domain/core"
	"climindex/domain/grid"
	"climindex/ports"

	"github.com/montanaflynn/stats"
)

const (
	// DefaultWindow is the width in days of the centred window used for
	// day-of-year percentiles.
	DefaultWindow = 5
	// WetDayThreshold is the minimum daily amount kept for precipitation
	// percentiles.
	WetDayThreshold = 1.0
)

// Calculator is the reference PercentilePort.
type Calculator struct {
	Window int
	WetDay float64
}

var _ ports.PercentilePort = (*Calculator)(nil)

// New returns a calculator with the default window and wet-day threshold.
func New() *Calculator {
	return &Calculator{Window: DefaultWindow, WetDay: WetDayThreshold}
}

// Threshold picks the representation from the variable type: day-of-year
// percentiles for "t", spatial wet-day percentiles for "p".
func (c *Calculator) Threshold(ctx context.Context, req ports.PercentileRequest) (grid.Threshold, error) {
	if err := ctx.Err(); err != nil {
		return grid.Threshold{}, err
	}
	if err := req.Grid.Validate(); err != nil {
		return grid.Threshold{}, err
	}

	switch strings.ToLower(strings.TrimSpace(req.VarType)) {
	case "t":
		return Daily(req.Grid, req.TimeAxis, req.Percentile, req.FillValue, c.Window)
	case "p":
		return Spatial(req.Grid, req.Percentile, req.FillValue, c.WetDay)
	}
	return grid.Threshold{}, fmt.Errorf("%w: var_type %q has no percentile method", core.ErrInvalidParameterValue, req.VarType)
}

// Spatial computes one percentile per cell over all timesteps. Values below
// minValue are left out; pass -Inf to keep everything. Cells without data get NaN,
// which no comparison matches.
func Spatial(g grid.Grid, pct, fill, minValue float64) (grid.Threshold, error) {
	cells := g.Cells()
	out := make([]float64, cells)
	for c := 0; c < cells; c++ {
		values := make(stats.Float64Data, 0, g.Timesteps())
		for t := range g.Data {
			v := g.Data[t][c]
			if grid.IsMissing(v, fill) || v < minValue {
				continue
			}
			values = append(values, v)
		}
		p, err := percentileOf(values, pct)
		if err != nil {
			return grid.Threshold{}, err
		}
		out[c] = p
	}
	return grid.Spatial(out), nil
}

// Daily computes, for each day of year, one percentile per cell over the
// values falling in a centred window of the given width. Day 366 is pooled
// with day 365.
func Daily(g grid.Grid, times []time.Time, pct, fill float64, window int) (grid.Threshold, error) {
	if len(times) != g.Timesteps() {
		return grid.Threshold{}, core.NewShapeError("time axis for daily percentiles", len(times), g.Timesteps())
	}
	if window < 1 {
		window = 1
	}

	byDay := make(map[int][]int, 366)
	for t, ts := range times {
		doy := ts.YearDay()
		if doy == 366 {
			doy = 365
		}
		byDay[doy] = append(byDay[doy], t)
	}

	half := window / 2
	cells := g.Cells()
	daily := make(map[int][]float64, 365)
	for doy := 1; doy <= 365; doy++ {
		var steps []int
		for off := -half; off <= half; off++ {
			d := (doy-1+off+365)%365 + 1
			steps = append(steps, byDay[d]...)
		}
		if len(steps) == 0 {
			continue
		}

		row := make([]float64, cells)
		for c := 0; c < cells; c++ {
			values := make(stats.Float64Data, 0, len(steps))
			for _, t := range steps {
				if v := g.Data[t][c]; !grid.IsMissing(v, fill) {
					values = append(values, v)
				}
			}
			p, err := percentileOf(values, pct)
			if err != nil {
				return grid.Threshold{}, err
			}
			row[c] = p
		}
		daily[doy] = row
	}
	return grid.Daily(daily), nil
}

func percentileOf(values stats.Float64Data, pct float64) (float64, error) {
	if pct <= 0 || pct > 100 {
		return 0, fmt.Errorf("%w: percentile %g outside (0, 100]", core.ErrInvalidParameterValue, pct)
	}
	if len(values) == 0 {
		return math.NaN(), nil
	}
	// stats.Percentile rejects ranks that fall below the first element
	if pct/100*float64(len(values)) < 1 {
		return stats.Min(values)
	}
	return stats.Percentile(values, pct)
}
