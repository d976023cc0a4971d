package kernels

import (
	"context"
	"fmt"

	"climindex/domain/core"
	"climindex/domain/grid"
	"climindex/ports"

	"gonum.org/v1/gonum/floats"
)

// RunStat slides a window of WindowWidth timesteps over each cell, computes
// its sum or mean and keeps the maximum or minimum. Windows holding missing
// values are skipped.
func (k *Kernels) RunStat(ctx context.Context, req ports.RunStatRequest) (grid.Result, error) {
	if err := ctx.Err(); err != nil {
		return grid.Result{}, err
	}
	g := req.Grid
	if err := g.Validate(); err != nil {
		return grid.Result{}, err
	}
	w := req.WindowWidth
	if w < 1 || w > g.Timesteps() {
		return grid.Result{}, fmt.Errorf("%w: window width %d for %d timesteps", core.ErrInvalidInputShape, w, g.Timesteps())
	}
	if req.StatMode != grid.StatMean && req.StatMode != grid.StatSum {
		return grid.Result{}, fmt.Errorf("%w: running statistic %q", core.ErrContractViolation, req.StatMode)
	}
	if req.ExtremeMode != grid.ExtremeMax && req.ExtremeMode != grid.ExtremeMin {
		return grid.Result{}, fmt.Errorf("%w: extreme mode %q", core.ErrContractViolation, req.ExtremeMode)
	}

	res := grid.NewResult(g.Cells(), req.FillValue, req.TrackEvent)
	coef := req.Coef

	for c := 0; c < g.Cells(); c++ {
		col := g.Column(c)
		missing := make([]bool, len(col))
		for t, v := range col {
			if grid.IsMissing(v, req.FillValue) {
				missing[t] = true
				col[t] = 0
				continue
			}
			col[t] = v * coef
		}

		bestStart := -1
		var best float64
		for s := 0; s+w <= len(col); s++ {
			if anyTrue(missing[s : s+w]) {
				continue
			}
			v := floats.Sum(col[s : s+w])
			if req.StatMode == grid.StatMean {
				v /= float64(w)
			}
			if bestStart < 0 ||
				(req.ExtremeMode == grid.ExtremeMax && v > best) ||
				(req.ExtremeMode == grid.ExtremeMin && v < best) {
				best, bestStart = v, s
			}
		}
		if bestStart < 0 {
			continue
		}
		res.Values[c] = best
		if res.Events != nil {
			res.Events[c] = grid.NewEventSpan(bestStart, bestStart+w-1, req.TimeAxis)
		}
	}
	return res, nil
}

func anyTrue(bs []bool) bool {
	for _, b := range bs {
		if b {
			return true
		}
	}
	return false
}
