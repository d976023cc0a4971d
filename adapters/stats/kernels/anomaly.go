package kernels

import (
	"context"

	"climindex/domain/core"
	"climindex/domain/grid"
	"climindex/ports"

	"github.com/montanaflynn/stats"
)

// Anomaly is the difference between the future and base period means of each
// cell, or their relative difference in percent when OutUnit is "%".
func (k *Kernels) Anomaly(ctx context.Context, req ports.AnomalyRequest) (grid.Result, error) {
	if err := ctx.Err(); err != nil {
		return grid.Result{}, err
	}
	if err := req.Future.Validate(); err != nil {
		return grid.Result{}, err
	}
	if err := req.Base.Validate(); err != nil {
		return grid.Result{}, err
	}
	if req.Future.Cells() != req.Base.Cells() {
		return grid.Result{}, core.NewShapeError("base period cells", req.Base.Cells(), req.Future.Cells())
	}

	res := grid.NewResult(req.Future.Cells(), req.FillValue, false)
	for c := 0; c < req.Future.Cells(); c++ {
		future := validValues(req.Future.Column(c), req.FillValue)
		base := validValues(req.Base.Column(c), req.FillValue)
		if len(future) == 0 || len(base) == 0 {
			continue
		}
		fm, err := stats.Mean(future)
		if err != nil {
			return grid.Result{}, err
		}
		bm, err := stats.Mean(base)
		if err != nil {
			return grid.Result{}, err
		}
		if req.OutUnit == grid.UnitPercent {
			if bm == 0 {
				continue
			}
			res.Values[c] = (fm - bm) / bm * 100
			continue
		}
		res.Values[c] = fm - bm
	}
	return res, nil
}

func validValues(col []float64, fill float64) []float64 {
	out := col[:0]
	for _, v := range col {
		if !grid.IsMissing(v, fill) {
			out = append(out, v)
		}
	}
	return out
}
