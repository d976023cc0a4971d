package kernels

import (
	"context"
	"fmt"

	"climindex/domain/core"
	"climindex/domain/grid"
	"climindex/ports"

	"github.com/montanaflynn/stats"
)

// SimpleStat reduces each cell with max, min, sum or mean. When both a
// logical operation and a threshold are given only matching values count.
func (k *Kernels) SimpleStat(ctx context.Context, req ports.SimpleStatRequest) (grid.Result, error) {
	if err := ctx.Err(); err != nil {
		return grid.Result{}, err
	}
	g := req.Grid
	if err := g.Validate(); err != nil {
		return grid.Result{}, err
	}

	var lookup grid.Lookup
	if req.Logical != "" && req.Threshold.IsSet() {
		var err error
		if lookup, err = req.Threshold.Bind(g.Timesteps(), g.Cells(), req.TimeAxis); err != nil {
			return grid.Result{}, err
		}
	}

	extreme := req.Stat == grid.StatMax || req.Stat == grid.StatMin
	res := grid.NewResult(g.Cells(), req.FillValue, req.TrackEvent && extreme)
	coef := req.Coef

	for c := 0; c < g.Cells(); c++ {
		var vals []float64
		var idx []int
		valid := false
		for t, row := range g.Data {
			v := row[c]
			if grid.IsMissing(v, req.FillValue) {
				continue
			}
			valid = true
			v *= coef
			if lookup != nil && !req.Logical.Compare(v, lookup(t, c)) {
				continue
			}
			vals = append(vals, v)
			idx = append(idx, t)
		}
		if !valid {
			continue
		}
		if len(vals) == 0 {
			if req.Stat == grid.StatSum {
				res.Values[c] = 0
			}
			continue
		}

		var out float64
		var err error
		switch req.Stat {
		case grid.StatMax:
			out, err = stats.Max(vals)
		case grid.StatMin:
			out, err = stats.Min(vals)
		case grid.StatSum:
			out, err = stats.Sum(vals)
		case grid.StatMean:
			out, err = stats.Mean(vals)
		default:
			return grid.Result{}, fmt.Errorf("%w: unknown statistic %q", core.ErrContractViolation, req.Stat)
		}
		if err != nil {
			return grid.Result{}, err
		}
		res.Values[c] = out

		if res.Events != nil {
			for i, v := range vals {
				if v == out {
					res.Events[c] = grid.NewEventSpan(idx[i], idx[i], req.TimeAxis)
					break
				}
			}
		}
	}
	return res, nil
}
