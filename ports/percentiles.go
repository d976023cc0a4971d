package ports

import (
	"context"
	"time"

	"climindex/domain/grid"
)

// PercentileRequest asks for the percentile threshold of one variable over
// its base period.
type PercentileRequest struct {
	Grid       grid.Grid
	TimeAxis   []time.Time
	Percentile float64 // rank in (0, 100]
	VarType    string  // "t" for temperature-like, "p" for precipitation-like
	FillValue  float64
}

// PercentilePort precomputes percentile thresholds for the dispatcher.
type PercentilePort interface {
	Threshold(ctx context.Context, req PercentileRequest) (grid.Threshold, error)
}
