package app

import (
	"context"
	"fmt"
	"time"

	"climindex/domain/core"
	"climindex/domain/grid"
	"climindex/domain/indice"
	"climindex/domain/run"
	"climindex/internal"
	"climindex/internal/batch"
	"climindex/ports"
)

// KernelVersion is recorded in run fingerprints.
const KernelVersion = "v0.3.0"

// ServiceConfig holds the defaults applied when a request leaves them unset.
type ServiceConfig struct {
	OutUnit       grid.OutUnit
	FillValue     float64
	BatchCapacity int
}

// IndiceService runs the validate, normalize and dispatch pipeline.
type IndiceService struct {
	catalog     indice.ParameterCatalog
	dispatcher  *Dispatcher
	percentiles ports.PercentilePort
	executor    *batch.Executor
	config      ServiceConfig
	logger      *internal.Logger
}

// ComputeRequest is one indice computation over in-memory grids.
type ComputeRequest struct {
	Spec      indice.RawIndiceSpec
	Variables []core.VariableKey
	// TimeRange is the base period: anomalies compare the rest of the axis
	// against it, percentile thresholds are computed over it.
	TimeRange *core.TimeRange
	OutUnit   string
	Arrays    map[core.VariableKey]grid.Grid
	TimeAxis  []time.Time
	FillValue *float64
	// Percentiles supplies thresholds directly and skips precomputation for
	// the variables it covers.
	Percentiles map[core.VariableKey]grid.Threshold
}

// Computation is the outcome of one ComputeRequest.
type Computation struct {
	Manifest *run.Manifest              `json:"manifest"`
	Resolved *indice.ResolvedIndiceSpec `json:"resolved"`
	Result   grid.Result                `json:"result"`
}

// BatchResult pairs a batch entry with its error.
type BatchResult struct {
	Computation *Computation
	Err         error
}

// NewIndiceService wires the pipeline over a kernel library and a percentile
// calculator. percentiles may be nil when callers always supply thresholds.
func NewIndiceService(kernels ports.KernelPort, percentiles ports.PercentilePort, cfg ServiceConfig, logger *internal.Logger) *IndiceService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if cfg.OutUnit == "" {
		cfg.OutUnit = grid.UnitDays
	}
	return &IndiceService{
		catalog:     indice.DefaultCatalog,
		dispatcher:  NewDispatcher(kernels, logger),
		percentiles: percentiles,
		executor:    batch.NewExecutor(cfg.BatchCapacity, logger),
		config:      cfg,
		logger:      logger,
	}
}

// Validate checks a raw definition without resolving it.
func (s *IndiceService) Validate(spec indice.RawIndiceSpec, variables []core.VariableKey, timeRange *core.TimeRange) error {
	return s.catalog.Validate(spec, variables, timeRange)
}

// Resolve validates a definition and normalizes it into per-variable records.
// An empty outUnit takes the service default.
func (s *IndiceService) Resolve(spec indice.RawIndiceSpec, variables []core.VariableKey, timeRange *core.TimeRange, outUnit string) (*indice.ResolvedIndiceSpec, error) {
	if err := s.catalog.Validate(spec, variables, timeRange); err != nil {
		return nil, err
	}

	if outUnit == "" {
		outUnit = string(s.config.OutUnit)
	}
	resolved, err := indice.Normalize(spec, variables, outUnit)
	if err != nil {
		return nil, err
	}
	if ignored := s.catalog.Ignored(resolved.CalcOperation, spec); len(ignored) > 0 {
		s.logger.Warn("[IndiceService] %s ignores parameters %v", resolved.CalcOperation, ignored)
	}
	return resolved, nil
}

// Compute resolves the request, precomputes missing percentile thresholds
// and dispatches to the kernels.
func (s *IndiceService) Compute(ctx context.Context, req ComputeRequest) (*Computation, error) {
	resolved, err := s.Resolve(req.Spec, req.Variables, req.TimeRange, req.OutUnit)
	if err != nil {
		return nil, err
	}

	fill := s.config.FillValue
	if req.FillValue != nil {
		fill = *req.FillValue
	}

	in := Inputs{
		Arrays:    req.Arrays,
		FillValue: fill,
		TimeAxis:  req.TimeAxis,
	}

	if resolved.CalcOperation == indice.OpAnomaly {
		periods, err := splitPeriods(req, resolved.Variables()[0])
		if err != nil {
			return nil, err
		}
		in.Periods = periods
	}

	if resolved.Type.IsPercentileBased() {
		in.Percentiles, err = s.thresholds(ctx, resolved, req, fill)
		if err != nil {
			return nil, err
		}
	}

	start := time.Now()
	result, err := s.dispatcher.Dispatch(ctx, resolved, in)
	if err != nil {
		return nil, err
	}

	manifest := run.NewManifest(resolved, resolved.OutUnit, fill, KernelVersion)
	s.logger.Info("[IndiceService] %s (%s, %s) computed in %v, run %s",
		resolved.IndiceName, resolved.CalcOperation, resolved.Type, time.Since(start), manifest.RunID)

	return &Computation{Manifest: manifest, Resolved: resolved, Result: result}, nil
}

// ComputeBatch computes several indices concurrently. Each entry costs one
// unit of batch capacity per variable. Failures are reported per entry.
func (s *IndiceService) ComputeBatch(ctx context.Context, reqs []ComputeRequest) ([]BatchResult, error) {
	results := make([]BatchResult, len(reqs))
	tasks := make([]batch.Task, len(reqs))

	for i, req := range reqs {
		i, req := i, req
		tasks[i] = batch.Task{
			Name: fmt.Sprintf("indice[%d]", i),
			Cost: int64(len(req.Variables)),
			Run: func(ctx context.Context) error {
				comp, err := s.Compute(ctx, req)
				results[i].Computation = comp
				return err
			},
		}
	}

	errs, err := s.executor.Execute(ctx, tasks)
	for i := range results {
		results[i].Err = errs[i]
	}
	return results, err
}

// thresholds returns the percentile threshold of every variable whose
// resolved threshold is a token.
func (s *IndiceService) thresholds(ctx context.Context, resolved *indice.ResolvedIndiceSpec, req ComputeRequest, fill float64) (map[core.VariableKey]grid.Threshold, error) {
	out := make(map[core.VariableKey]grid.Threshold, len(req.Percentiles))
	for v, th := range req.Percentiles {
		out[v] = th
	}

	for _, rec := range resolved.Records() {
		if !rec.Threshold.IsPercentile() {
			continue
		}
		if _, ok := out[rec.Variable]; ok {
			continue
		}
		if s.percentiles == nil {
			return nil, fmt.Errorf("%w: variable %s uses %s", core.ErrMissingThreshold, rec.Variable, rec.Threshold.Token())
		}

		pct, err := rec.Threshold.Percentile()
		if err != nil {
			return nil, err
		}
		arr, ok := req.Arrays[rec.Variable]
		if !ok {
			return nil, fmt.Errorf("%w: no input array for variable %s", core.ErrInvalidInputShape, rec.Variable)
		}
		base, axis := arr, req.TimeAxis
		if req.TimeRange != nil && len(req.TimeAxis) > 0 {
			base, axis, _ = splitByRange(arr, req.TimeAxis, *req.TimeRange)
		}

		th, err := s.percentiles.Threshold(ctx, ports.PercentileRequest{
			Grid:       base,
			TimeAxis:   axis,
			Percentile: pct,
			VarType:    rec.VarType,
			FillValue:  fill,
		})
		if err != nil {
			return nil, err
		}
		s.logger.Debug("[IndiceService] %s percentile %g for %s precomputed over %d steps", rec.VarType, pct, rec.Variable, base.Timesteps())
		out[rec.Variable] = th
	}
	return out, nil
}

// splitPeriods cuts the anomaly variable into the study period and the base
// period given by the request's time range.
func splitPeriods(req ComputeRequest, v core.VariableKey) ([]grid.Grid, error) {
	arr, ok := req.Arrays[v]
	if !ok {
		return nil, fmt.Errorf("%w: no input array for variable %s", core.ErrInvalidInputShape, v)
	}
	if len(req.TimeAxis) != arr.Timesteps() {
		return nil, core.NewShapeError("time axis for anomaly", len(req.TimeAxis), arr.Timesteps())
	}
	base, _, future := splitByRange(arr, req.TimeAxis, *req.TimeRange)
	if base.Timesteps() == 0 || future.Timesteps() == 0 {
		return nil, fmt.Errorf("%w: base period %s leaves base %d and study %d timesteps",
			core.ErrInvalidInputShape, req.TimeRange, base.Timesteps(), future.Timesteps())
	}
	return []grid.Grid{future, base}, nil
}

// splitByRange returns the rows inside r with their times, and the rows outside r.
func splitByRange(g grid.Grid, times []time.Time, r core.TimeRange) (grid.Grid, []time.Time, grid.Grid) {
	var inside, outside grid.Grid
	var axis []time.Time
	for t, ts := range times {
		if t >= len(g.Data) {
			break
		}
		if r.Contains(ts) {
			inside.Data = append(inside.Data, g.Data[t])
			axis = append(axis, ts)
		} else {
			outside.Data = append(outside.Data, g.Data[t])
		}
	}
	return inside, axis, outside
}
