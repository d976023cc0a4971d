package testkit

import (
	"time"

	"climindex/domain/grid"
)

// DailyAxis returns n consecutive days starting at start.
func DailyAxis(start time.Time, n int) []time.Time {
	axis := make([]time.Time, n)
	for i := range axis {
		axis[i] = start.AddDate(0, 0, i)
	}
	return axis
}

// Date is a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Series builds a single-cell grid.
func Series(values ...float64) grid.Grid {
	return grid.FromSeries(values...)
}

// Columns builds a grid from one time series per cell. All series must have
// the same length.
func Columns(cols ...[]float64) grid.Grid {
	if len(cols) == 0 {
		return grid.Grid{}
	}
	g := grid.New(len(cols[0]), len(cols), 0)
	for c, col := range cols {
		for t, v := range col {
			g.Data[t][c] = v
		}
	}
	return g
}

// Constant fills a grid with v.
func Constant(timesteps, cells int, v float64) grid.Grid {
	return grid.New(timesteps, cells, v)
}
