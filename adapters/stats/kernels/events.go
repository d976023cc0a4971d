package kernels

import (
	"context"
	"fmt"
	"time"

	"climindex/domain/core"
	"climindex/domain/grid"
	"climindex/ports"
)

// NbEvents counts, per cell, the timesteps satisfying the comparison. The
// tracked event spans the first and last matching timestep.
func (k *Kernels) NbEvents(ctx context.Context, req ports.EventCountRequest) (grid.Result, error) {
	if err := ctx.Err(); err != nil {
		return grid.Result{}, err
	}
	lookup, err := bindComparison(req.Grid, req.Logical, req.Threshold, req.TimeAxis)
	if err != nil {
		return grid.Result{}, err
	}

	g := req.Grid
	res := grid.NewResult(g.Cells(), req.FillValue, req.TrackEvent)
	coef := req.Coef

	for c := 0; c < g.Cells(); c++ {
		count, first, last := 0, -1, -1
		valid := false
		for t, row := range g.Data {
			v := row[c]
			if grid.IsMissing(v, req.FillValue) {
				continue
			}
			valid = true
			if req.Logical.Compare(v*coef, lookup(t, c)) {
				count++
				if first < 0 {
					first = t
				}
				last = t
			}
		}
		if !valid {
			continue
		}
		res.Values[c] = countInUnit(count, req.OutUnit, req.TimeAxis)
		if res.Events != nil && first >= 0 {
			res.Events[c] = grid.NewEventSpan(first, last, req.TimeAxis)
		}
	}
	return res, nil
}

// BinaryArray marks matching timesteps with 1 and the others with 0.
func (k *Kernels) BinaryArray(ctx context.Context, req ports.BinaryRequest) (grid.Grid, error) {
	if err := ctx.Err(); err != nil {
		return grid.Grid{}, err
	}
	lookup, err := bindComparison(req.Grid, req.Logical, req.Threshold, req.TimeAxis)
	if err != nil {
		return grid.Grid{}, err
	}

	g := req.Grid
	out := grid.New(g.Timesteps(), g.Cells(), req.FillValue)
	coef := req.Coef
	for t, row := range g.Data {
		for c, v := range row {
			if grid.IsMissing(v, req.FillValue) {
				continue
			}
			if req.Logical.Compare(v*coef, lookup(t, c)) {
				out.Data[t][c] = 1
			} else {
				out.Data[t][c] = 0
			}
		}
	}
	return out, nil
}

// MaxConsecutive finds the longest run of matching timesteps per cell. Missing
// values end a run.
func (k *Kernels) MaxConsecutive(ctx context.Context, req ports.ConsecutiveRequest) (grid.Result, error) {
	if err := ctx.Err(); err != nil {
		return grid.Result{}, err
	}
	lookup, err := bindComparison(req.Grid, req.Logical, req.Threshold, req.TimeAxis)
	if err != nil {
		return grid.Result{}, err
	}

	g := req.Grid
	coef := req.Coef
	match := func(t, c int) (hit, missing bool) {
		v := g.Data[t][c]
		if grid.IsMissing(v, req.FillValue) {
			return false, true
		}
		return req.Logical.Compare(v*coef, lookup(t, c)), false
	}
	return longestRuns(g.Timesteps(), g.Cells(), match, req.FillValue, req.OutUnit, req.TimeAxis, req.TrackEvent), nil
}

// NbEventsMultivar links per-variable binary arrays with and/or and either
// counts the combined events or finds their longest run. A timestep missing
// in any variable is missing in the combination.
func (k *Kernels) NbEventsMultivar(ctx context.Context, req ports.MultivarEventRequest) (grid.Result, error) {
	if err := ctx.Err(); err != nil {
		return grid.Result{}, err
	}
	if len(req.Binaries) == 0 {
		return grid.Result{}, core.NewShapeError("binary arrays", 0, 1)
	}
	ref := req.Binaries[0]
	if err := ref.Validate(); err != nil {
		return grid.Result{}, err
	}
	for _, b := range req.Binaries[1:] {
		if err := b.Validate(); err != nil {
			return grid.Result{}, err
		}
		if err := ref.SameShape(b); err != nil {
			return grid.Result{}, err
		}
	}
	if req.Link != grid.LinkAnd && req.Link != grid.LinkOr {
		return grid.Result{}, fmt.Errorf("%w: unknown link operation %q", core.ErrContractViolation, req.Link)
	}

	combined := func(t, c int) (hit, missing bool) {
		hit = req.Link == grid.LinkAnd
		for _, b := range req.Binaries {
			v := b.Data[t][c]
			if v != 0 && v != 1 {
				return false, true
			}
			if req.Link == grid.LinkAnd {
				hit = hit && v == 1
			} else {
				hit = hit || v == 1
			}
		}
		return hit, false
	}

	steps, cells := ref.Timesteps(), ref.Cells()
	if req.MaxConsecutive {
		return longestRuns(steps, cells, combined, req.FillValue, req.OutUnit, req.TimeAxis, req.TrackEvent), nil
	}

	res := grid.NewResult(cells, req.FillValue, req.TrackEvent)
	for c := 0; c < cells; c++ {
		count, first, last := 0, -1, -1
		valid := false
		for t := 0; t < steps; t++ {
			hit, missing := combined(t, c)
			if missing {
				continue
			}
			valid = true
			if hit {
				count++
				if first < 0 {
					first = t
				}
				last = t
			}
		}
		if !valid {
			continue
		}
		res.Values[c] = countInUnit(count, req.OutUnit, req.TimeAxis)
		if res.Events != nil && first >= 0 {
			res.Events[c] = grid.NewEventSpan(first, last, req.TimeAxis)
		}
	}
	return res, nil
}

// longestRuns scans each cell for its longest run of hits; the first longest
// run wins.
func longestRuns(steps, cells int, match func(t, c int) (bool, bool), fill float64, unit grid.OutUnit, times []time.Time, track bool) grid.Result {
	res := grid.NewResult(cells, fill, track)
	for c := 0; c < cells; c++ {
		best, bestStart := 0, -1
		run, runStart := 0, -1
		valid := false
		for t := 0; t < steps; t++ {
			hit, missing := match(t, c)
			if !missing {
				valid = true
			}
			if !hit {
				run = 0
				continue
			}
			if run == 0 {
				runStart = t
			}
			run++
			if run > best {
				best, bestStart = run, runStart
			}
		}
		if !valid {
			continue
		}
		res.Values[c] = countInUnit(best, unit, times)
		if res.Events != nil && best > 0 {
			res.Events[c] = grid.NewEventSpan(bestStart, bestStart+best-1, times)
		}
	}
	return res
}
