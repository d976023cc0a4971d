// Package kernels is a reference implementation of the statistical kernels
// driven by the indice dispatcher. Grids are reduced cell by cell over time.
package kernels

import (
	"fmt"
	"time"

	"climindex/domain/core"
	"climindex/domain/grid"
	"climindex/ports"
)

// Kernels implements ports.KernelPort on in-memory grids.
type Kernels struct{}

var _ ports.KernelPort = (*Kernels)(nil)

// New creates the reference kernels
func New() *Kernels {
	return &Kernels{}
}

// bindComparison binds the threshold of a comparison kernel, which needs both
// an operator and a threshold.
func bindComparison(g grid.Grid, op grid.LogicalOp, th grid.Threshold, times []time.Time) (grid.Lookup, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if op == "" {
		return nil, fmt.Errorf("%w: comparison kernel called without logical operation", core.ErrContractViolation)
	}
	return th.Bind(g.Timesteps(), g.Cells(), times)
}

// countInUnit converts a number of timesteps to the requested unit. Without a
// time axis timesteps are taken to be days.
func countInUnit(count int, unit grid.OutUnit, times []time.Time) float64 {
	step := 24 * time.Hour
	if len(times) >= 2 {
		step = times[1].Sub(times[0])
	}
	switch unit {
	case grid.UnitDays:
		return float64(count) * step.Hours() / 24
	case grid.UnitHours:
		return float64(count) * step.Hours()
	}
	return float64(count)
}
