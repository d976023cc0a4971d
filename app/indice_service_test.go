package app

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"climindex/adapters/stats/kernels"
	"climindex/adapters/stats/percentile"
	"climindex/domain/core"
	"climindex/domain/grid"
	"climindex/domain/indice"
	"climindex/internal"
	"climindex/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(logger *internal.Logger) *IndiceService {
	return NewIndiceService(kernels.New(), percentile.New(), ServiceConfig{
		OutUnit:       grid.UnitDays,
		FillValue:     fill,
		BatchCapacity: 2,
	}, logger)
}

func rawSpec(t *testing.T, params map[string]interface{}) indice.RawIndiceSpec {
	t.Helper()
	spec, err := indice.ParseRawIndiceSpec(params)
	require.NoError(t, err)
	return spec
}

func TestResolveFailsFast(t *testing.T) {
	s := newTestService(nil)
	spec := rawSpec(t, map[string]interface{}{
		"indice_name":    "su",
		"calc_operation": "nb_events",
	})

	resolved, err := s.Resolve(spec, core.VariableKeys("tasmax"), nil, "")
	assert.Nil(t, resolved)
	assert.True(t, errors.Is(err, core.ErrMissingRequiredParameter))

	var verr *indice.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []string{"logical_operation", "thresh"}, verr.Params)
}

func TestResolveWarnsAboutIgnoredParameters(t *testing.T) {
	var buf bytes.Buffer
	s := newTestService(internal.NewLoggerTo(internal.LogLevelWarn, &buf))
	spec := rawSpec(t, map[string]interface{}{
		"indice_name":    "tmean",
		"calc_operation": "mean",
		"date_event":     true,
	})

	resolved, err := s.Resolve(spec, core.VariableKeys("tas"), nil, "")
	require.NoError(t, err)
	assert.Equal(t, grid.UnitDays, resolved.OutUnit)
	assert.Contains(t, buf.String(), "date_event")
}

func TestComputeSimpleIndice(t *testing.T) {
	s := newTestService(nil)
	spec := rawSpec(t, map[string]interface{}{
		"indice_name":       "su",
		"calc_operation":    "nb_events",
		"logical_operation": "gt",
		"thresh":            25,
	})

	comp, err := s.Compute(context.Background(), ComputeRequest{
		Spec:      spec,
		Variables: core.VariableKeys("tasmax"),
		Arrays: map[core.VariableKey]grid.Grid{
			"tasmax": testkit.Columns([]float64{20, 26, 27, fill}, []float64{30, 30, 30, 30}),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4}, comp.Result.Values)
	require.NoError(t, comp.Manifest.Validate())
	assert.Equal(t, comp.Resolved.Hash, comp.Manifest.SpecHash)
	assert.Equal(t, indice.TypeSimple, comp.Manifest.IndiceType)
}

func TestComputePrecomputesPercentiles(t *testing.T) {
	s := newTestService(nil)
	spec := rawSpec(t, map[string]interface{}{
		"indice_name":       "r90p",
		"calc_operation":    "nb_events",
		"logical_operation": "gt",
		"thresh":            "90p",
		"var_type":          "p",
	})

	comp, err := s.Compute(context.Background(), ComputeRequest{
		Spec:      spec,
		Variables: core.VariableKeys("pr"),
		Arrays: map[core.VariableKey]grid.Grid{
			// wet days 1..10, the 90th percentile is 9
			"pr": testkit.Series(0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 0),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, indice.TypePercentileBased, comp.Resolved.Type)
	assert.Equal(t, 1.0, comp.Result.Values[0])
}

func TestComputeUppercaseVarType(t *testing.T) {
	s := newTestService(nil)
	spec := rawSpec(t, map[string]interface{}{
		"indice_name":       "r90p",
		"calc_operation":    "nb_events",
		"logical_operation": "gt",
		"thresh":            "90p",
		"var_type":          "P",
	})

	comp, err := s.Compute(context.Background(), ComputeRequest{
		Spec:      spec,
		Variables: core.VariableKeys("pr"),
		Arrays: map[core.VariableKey]grid.Grid{
			"pr": testkit.Series(0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 0),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, comp.Result.Values[0])
}

func TestComputeSuppliedPercentilesWin(t *testing.T) {
	s := NewIndiceService(kernels.New(), nil, ServiceConfig{FillValue: fill}, nil)
	spec := rawSpec(t, map[string]interface{}{
		"indice_name":       "tx90p",
		"calc_operation":    "nb_events",
		"logical_operation": "gt",
		"thresh":            "90p",
		"var_type":          "t",
	})
	req := ComputeRequest{
		Spec:      spec,
		Variables: core.VariableKeys("tasmax"),
		Arrays:    map[core.VariableKey]grid.Grid{"tasmax": testkit.Series(1, 5, 9)},
	}

	_, err := s.Compute(context.Background(), req)
	assert.True(t, errors.Is(err, core.ErrMissingThreshold))

	req.Percentiles = map[core.VariableKey]grid.Threshold{"tasmax": grid.Spatial([]float64{4})}
	comp, err := s.Compute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2.0, comp.Result.Values[0])
}

func TestComputeAnomalySplitsBasePeriod(t *testing.T) {
	s := newTestService(nil)
	spec := rawSpec(t, map[string]interface{}{
		"indice_name":    "tas_anomaly",
		"calc_operation": "anomaly",
	})
	axis := testkit.DailyAxis(testkit.Date(2000, 1, 1), 6)
	base, err := core.NewTimeRange(axis[0], axis[2])
	require.NoError(t, err)

	comp, err := s.Compute(context.Background(), ComputeRequest{
		Spec:      spec,
		Variables: core.VariableKeys("tas"),
		TimeRange: &base,
		OutUnit:   "value",
		Arrays:    map[core.VariableKey]grid.Grid{"tas": testkit.Series(10, 10, 10, 12, 12, 12)},
		TimeAxis:  axis,
	})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, comp.Result.Values[0], 1e-9)
}

func TestComputeAnomalyWithoutTimeRange(t *testing.T) {
	s := newTestService(nil)
	spec := rawSpec(t, map[string]interface{}{
		"indice_name":    "tas_anomaly",
		"calc_operation": "anomaly",
	})

	_, err := s.Compute(context.Background(), ComputeRequest{
		Spec:      spec,
		Variables: core.VariableKeys("tas"),
		Arrays:    map[core.VariableKey]grid.Grid{"tas": testkit.Series(1, 2)},
	})
	assert.True(t, errors.Is(err, core.ErrMissingTimeRange))
}

func TestComputeBatch(t *testing.T) {
	s := newTestService(nil)
	ok := ComputeRequest{
		Spec: rawSpec(t, map[string]interface{}{
			"indice_name":    "txx",
			"calc_operation": "max",
		}),
		Variables: core.VariableKeys("tasmax"),
		Arrays:    map[core.VariableKey]grid.Grid{"tasmax": testkit.Series(1, 7, 3)},
	}
	multi := ComputeRequest{
		Spec: rawSpec(t, map[string]interface{}{
			"indice_name":             "hot_dry",
			"calc_operation":          "nb_events",
			"logical_operation":       []interface{}{"gt", "lt"},
			"thresh":                  []interface{}{25, 1},
			"link_logical_operations": "and",
		}),
		Variables: core.VariableKeys("tasmax", "pr"),
		Arrays: map[core.VariableKey]grid.Grid{
			"tasmax": testkit.Series(30, 30, 20),
			"pr":     testkit.Series(0, 5, 0),
		},
	}
	bad := ComputeRequest{
		Spec:      rawSpec(t, map[string]interface{}{"indice_name": "x", "calc_operation": "median"}),
		Variables: core.VariableKeys("tas"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	results, err := s.ComputeBatch(ctx, []ComputeRequest{ok, multi, bad})
	require.NoError(t, err)
	require.Len(t, results, 3)

	require.NoError(t, results[0].Err)
	assert.Equal(t, 7.0, results[0].Computation.Result.Values[0])

	require.NoError(t, results[1].Err)
	assert.Equal(t, indice.TypeMultivariable, results[1].Computation.Resolved.Type)
	assert.Equal(t, 1.0, results[1].Computation.Result.Values[0])

	assert.True(t, errors.Is(results[2].Err, core.ErrUnknownOperation))
	assert.Nil(t, results[2].Computation)
	assert.NotEqual(t, results[0].Computation.Manifest.RunID, results[1].Computation.Manifest.RunID)
}

func TestComputeBatchCancelledMarksEveryEntry(t *testing.T) {
	s := newTestService(nil)
	req := ComputeRequest{
		Spec: rawSpec(t, map[string]interface{}{
			"indice_name":    "txx",
			"calc_operation": "max",
		}),
		Variables: core.VariableKeys("tasmax"),
		Arrays:    map[core.VariableKey]grid.Grid{"tasmax": testkit.Series(1, 7, 3)},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := s.ComputeBatch(ctx, []ComputeRequest{req, req})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Nil(t, r.Computation)
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
}

func TestComputeSyntheticClimate(t *testing.T) {
	gen := testkit.NewClimateGenerator(testkit.DefaultClimateConfig())
	axis := gen.TimeAxis()
	arrays := map[core.VariableKey]grid.Grid{
		"tasmax": gen.Temperature(),
		"pr":     gen.Precipitation(),
	}
	s := newTestService(nil)
	ctx := context.Background()

	count := func(params map[string]interface{}, variables ...string) []float64 {
		comp, err := s.Compute(ctx, ComputeRequest{
			Spec:      rawSpec(t, params),
			Variables: core.VariableKeys(variables...),
			Arrays:    arrays,
			TimeAxis:  axis,
		})
		require.NoError(t, err)
		return comp.Result.Values
	}

	hot := count(map[string]interface{}{
		"indice_name": "tx90p", "calc_operation": "nb_events",
		"logical_operation": "gt", "thresh": "90p", "var_type": "t",
	}, "tasmax")
	wet := count(map[string]interface{}{
		"indice_name": "wet", "calc_operation": "nb_events",
		"logical_operation": "get", "thresh": 1,
	}, "pr")
	hotAndWet := count(map[string]interface{}{
		"indice_name": "hot_wet", "calc_operation": "nb_events",
		"logical_operation": []interface{}{"gt", "get"}, "thresh": []interface{}{"90p", 1},
		"var_type": []interface{}{"t", "p"}, "link_logical_operations": "and",
	}, "tasmax", "pr")
	hotOrWet := count(map[string]interface{}{
		"indice_name": "hot_or_wet", "calc_operation": "nb_events",
		"logical_operation": []interface{}{"gt", "get"}, "thresh": []interface{}{"90p", 1},
		"var_type": []interface{}{"t", "p"}, "link_logical_operations": "or",
	}, "tasmax", "pr")

	days := float64(len(axis))
	for c := range hot {
		// roughly a tenth of the days exceed their own day-of-year 90th percentile
		assert.Greater(t, hot[c], 0.05*days)
		assert.Less(t, hot[c], 0.15*days)
		assert.LessOrEqual(t, hotAndWet[c], hot[c])
		assert.LessOrEqual(t, hotAndWet[c], wet[c])
		assert.GreaterOrEqual(t, hotOrWet[c], hot[c])
		assert.LessOrEqual(t, hotOrWet[c], hot[c]+wet[c])
	}
}
