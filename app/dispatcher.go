package app

import (
	"context"
	"fmt"
	"time"

	"climindex/domain/core"
	"climindex/domain/grid"
	"climindex/domain/indice"
	"climindex/internal"
	"climindex/ports"
)

// Inputs carries the arrays and auxiliary data of one indice computation.
type Inputs struct {
	// Arrays holds one grid per target variable.
	Arrays map[core.VariableKey]grid.Grid
	// Periods holds the future and base period grids of an anomaly, in that order.
	Periods []grid.Grid
	// FillValue marks missing data; FillValues overrides it per variable.
	FillValue  float64
	FillValues map[core.VariableKey]float64
	TimeAxis   []time.Time
	// Percentiles holds the precomputed threshold of every variable whose
	// threshold is a percentile token.
	Percentiles map[core.VariableKey]grid.Threshold
	// OutUnit overrides the unit resolved with the indice when set.
	OutUnit grid.OutUnit
}

func (in Inputs) fillFor(v core.VariableKey) float64 {
	if f, ok := in.FillValues[v]; ok {
		return f
	}
	return in.FillValue
}

// Dispatcher routes a resolved indice to the statistical kernels.
type Dispatcher struct {
	kernels ports.KernelPort
	logger  *internal.Logger
}

// NewDispatcher creates a dispatcher over a kernel implementation
func NewDispatcher(kernels ports.KernelPort, logger *internal.Logger) *Dispatcher {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Dispatcher{kernels: kernels, logger: logger}
}

// Dispatch runs the kernels for a resolved indice. Kernel errors are returned
// unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, resolved *indice.ResolvedIndiceSpec, in Inputs) (grid.Result, error) {
	unit := resolved.OutUnit
	if in.OutUnit != "" {
		unit = in.OutUnit
	}

	if resolved.Type.IsMultivariable() {
		d.logger.Debug("[Dispatcher] %s: %s over %v via multivariable events", resolved.IndiceName, resolved.CalcOperation, resolved.Variables())
		return d.dispatchMultivariable(ctx, resolved, in, unit)
	}

	variables := resolved.Variables()
	if len(variables) != 1 {
		return grid.Result{}, core.NewContractError("%s indice with %d variables", resolved.Type, len(variables))
	}
	rec, _ := resolved.Record(variables[0])
	d.logger.Debug("[Dispatcher] %s: %s on %s", resolved.IndiceName, rec.CalcOperation, rec.Variable)
	return d.dispatchSingle(ctx, rec, in, unit)
}

func (d *Dispatcher) dispatchSingle(ctx context.Context, rec indice.ResolvedParameterRecord, in Inputs, unit grid.OutUnit) (grid.Result, error) {
	fill := in.fillFor(rec.Variable)

	if rec.CalcOperation == indice.OpAnomaly {
		if len(in.Periods) != 2 {
			return grid.Result{}, core.NewShapeError("anomaly periods", len(in.Periods), 2)
		}
		return d.kernels.Anomaly(ctx, ports.AnomalyRequest{
			Future:    in.Periods[0],
			Base:      in.Periods[1],
			FillValue: fill,
			OutUnit:   unit,
		})
	}

	arr, ok := in.Arrays[rec.Variable]
	if !ok {
		return grid.Result{}, fmt.Errorf("%w: no input array for variable %s", core.ErrInvalidInputShape, rec.Variable)
	}
	thresh, err := effectiveThreshold(rec, in)
	if err != nil {
		return grid.Result{}, err
	}

	switch op := rec.CalcOperation; {
	case op.IsReduction():
		return d.kernels.SimpleStat(ctx, ports.SimpleStatRequest{
			Grid:       arr,
			Stat:       grid.StatMode(op),
			Logical:    rec.LogicalOperation,
			Threshold:  thresh,
			Coef:       rec.Coefficient,
			FillValue:  fill,
			TimeAxis:   in.TimeAxis,
			TrackEvent: rec.DateEvent,
		})

	case op == indice.OpNbEvents:
		return d.kernels.NbEvents(ctx, ports.EventCountRequest{
			Grid:       arr,
			Logical:    rec.LogicalOperation,
			Threshold:  thresh,
			Coef:       rec.Coefficient,
			FillValue:  fill,
			TimeAxis:   in.TimeAxis,
			OutUnit:    unit,
			TrackEvent: rec.DateEvent,
		})

	case op == indice.OpMaxNbConsecutiveEvents:
		// the run-length kernel is generic: count runs of 1 in the event array
		bin, err := d.kernels.BinaryArray(ctx, ports.BinaryRequest{
			Grid:      arr,
			Logical:   rec.LogicalOperation,
			Threshold: thresh,
			Coef:      rec.Coefficient,
			FillValue: fill,
			TimeAxis:  in.TimeAxis,
		})
		if err != nil {
			return grid.Result{}, err
		}
		return d.kernels.MaxConsecutive(ctx, ports.ConsecutiveRequest{
			Grid:       bin,
			Logical:    grid.Equal,
			Threshold:  grid.Fixed(1),
			Coef:       1.0,
			FillValue:  fill,
			TimeAxis:   in.TimeAxis,
			OutUnit:    unit,
			TrackEvent: rec.DateEvent,
		})

	case op.IsRunning():
		statMode := grid.StatMean
		if op == indice.OpRunSum {
			statMode = grid.StatSum
		}
		return d.kernels.RunStat(ctx, ports.RunStatRequest{
			Grid:        arr,
			WindowWidth: rec.WindowWidth,
			StatMode:    statMode,
			ExtremeMode: rec.ExtremeMode,
			Coef:        rec.Coefficient,
			FillValue:   fill,
			TimeAxis:    in.TimeAxis,
			TrackEvent:  rec.DateEvent,
		})
	}

	return grid.Result{}, core.NewContractError("no kernel for calc_operation %q", rec.CalcOperation)
}

func (d *Dispatcher) dispatchMultivariable(ctx context.Context, resolved *indice.ResolvedIndiceSpec, in Inputs, unit grid.OutUnit) (grid.Result, error) {
	records := resolved.Records()
	binaries := make([]grid.Grid, 0, len(records))

	for _, rec := range records {
		arr, ok := in.Arrays[rec.Variable]
		if !ok {
			return grid.Result{}, fmt.Errorf("%w: no input array for variable %s", core.ErrInvalidInputShape, rec.Variable)
		}
		thresh, err := effectiveThreshold(rec, in)
		if err != nil {
			return grid.Result{}, err
		}
		bin, err := d.kernels.BinaryArray(ctx, ports.BinaryRequest{
			Grid:      arr,
			Logical:   rec.LogicalOperation,
			Threshold: thresh,
			Coef:      rec.Coefficient,
			FillValue: in.fillFor(rec.Variable),
			TimeAxis:  in.TimeAxis,
		})
		if err != nil {
			return grid.Result{}, err
		}
		binaries = append(binaries, bin)
	}

	var maxConsecutive bool
	switch resolved.CalcOperation {
	case indice.OpNbEvents:
	case indice.OpMaxNbConsecutiveEvents:
		maxConsecutive = true
	default:
		return grid.Result{}, core.NewContractError("multivariable indice with calc_operation %q", resolved.CalcOperation)
	}

	first := records[0]
	return d.kernels.NbEventsMultivar(ctx, ports.MultivarEventRequest{
		Binaries:       binaries,
		Link:           first.LinkLogicalOperation,
		FillValue:      in.fillFor(first.Variable),
		TimeAxis:       in.TimeAxis,
		OutUnit:        unit,
		TrackEvent:     resolved.DateEvent,
		MaxConsecutive: maxConsecutive,
	})
}

// effectiveThreshold turns a resolved threshold into the kernel threshold:
// fixed values pass through, percentile tokens take the variable's precomputed
// percentiles.
func effectiveThreshold(rec indice.ResolvedParameterRecord, in Inputs) (grid.Threshold, error) {
	if v, ok := rec.Threshold.Value(); ok {
		return grid.Fixed(v), nil
	}
	if !rec.Threshold.IsPercentile() {
		return grid.Threshold{}, nil
	}
	th, ok := in.Percentiles[rec.Variable]
	if !ok || !th.IsSet() {
		return grid.Threshold{}, fmt.Errorf("%w: variable %s uses %s", core.ErrMissingThreshold, rec.Variable, rec.Threshold.Token())
	}
	return th, nil
}
