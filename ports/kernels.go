package ports

import (
	"context"
	"time"

	"climindex/domain/grid"
)

// SimpleStatRequest reduces each cell over time, optionally keeping only
// values that satisfy Logical against Threshold.
type SimpleStatRequest struct {
	Grid       grid.Grid
	Stat       grid.StatMode
	Logical    grid.LogicalOp // empty for no masking
	Threshold  grid.Threshold
	Coef       float64
	FillValue  float64
	TimeAxis   []time.Time
	TrackEvent bool
}

// EventCountRequest counts timesteps satisfying Logical against Threshold.
type EventCountRequest struct {
	Grid       grid.Grid
	Logical    grid.LogicalOp
	Threshold  grid.Threshold
	Coef       float64
	FillValue  float64
	TimeAxis   []time.Time
	OutUnit    grid.OutUnit
	TrackEvent bool
}

// BinaryRequest builds a 0/1 event array; missing values stay FillValue.
type BinaryRequest struct {
	Grid      grid.Grid
	Logical   grid.LogicalOp
	Threshold grid.Threshold
	Coef      float64
	FillValue float64
	TimeAxis  []time.Time
}

// ConsecutiveRequest finds the longest run of timesteps satisfying Logical
// against Threshold. It works on any array, binary ones included.
type ConsecutiveRequest struct {
	Grid       grid.Grid
	Logical    grid.LogicalOp
	Threshold  grid.Threshold
	Coef       float64
	FillValue  float64
	TimeAxis   []time.Time
	OutUnit    grid.OutUnit
	TrackEvent bool
}

// RunStatRequest computes a running-window statistic and keeps its extreme.
type RunStatRequest struct {
	Grid        grid.Grid
	WindowWidth int
	StatMode    grid.StatMode // mean or sum
	ExtremeMode grid.ExtremeMode
	Coef        float64
	FillValue   float64
	TimeAxis    []time.Time
	TrackEvent  bool
}

// AnomalyRequest compares the mean of a future period with a base period.
type AnomalyRequest struct {
	Future    grid.Grid
	Base      grid.Grid
	FillValue float64
	OutUnit   grid.OutUnit
}

// MultivarEventRequest combines per-variable binary arrays with Link, then
// counts events or finds the longest run.
type MultivarEventRequest struct {
	Binaries       []grid.Grid
	Link           grid.LinkOp
	FillValue      float64
	TimeAxis       []time.Time
	OutUnit        grid.OutUnit
	TrackEvent     bool
	MaxConsecutive bool
}

// KernelPort is the statistical kernel library the dispatcher drives.
// Implementations must report shape problems with core.ErrInvalidInputShape.
type KernelPort interface {
	SimpleStat(ctx context.Context, req SimpleStatRequest) (grid.Result, error)
	NbEvents(ctx context.Context, req EventCountRequest) (grid.Result, error)
	BinaryArray(ctx context.Context, req BinaryRequest) (grid.Grid, error)
	MaxConsecutive(ctx context.Context, req ConsecutiveRequest) (grid.Result, error)
	RunStat(ctx context.Context, req RunStatRequest) (grid.Result, error)
	Anomaly(ctx context.Context, req AnomalyRequest) (grid.Result, error)
	NbEventsMultivar(ctx context.Context, req MultivarEventRequest) (grid.Result, error)
}
