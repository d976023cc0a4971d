package kernels

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"climindex/domain/core"
	"climindex/domain/grid"
	"climindex/internal/testkit"
	"climindex/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fill = 1e20

func TestSimpleStat(t *testing.T) {
	k := New()
	ctx := context.Background()
	g := testkit.Columns(
		[]float64{1, 5, 3, fill},
		[]float64{fill, fill, fill, fill},
	)

	tests := []struct {
		stat grid.StatMode
		want float64
	}{
		{grid.StatMax, 5},
		{grid.StatMin, 1},
		{grid.StatSum, 9},
		{grid.StatMean, 3},
	}
	for _, tt := range tests {
		res, err := k.SimpleStat(ctx, ports.SimpleStatRequest{Grid: g, Stat: tt.stat, Coef: 1, FillValue: fill})
		require.NoError(t, err)
		assert.InDelta(t, tt.want, res.Values[0], 1e-9, string(tt.stat))
		assert.Equal(t, fill, res.Values[1], "all-missing cell keeps fill")
	}
}

func TestSimpleStat_ThresholdMaskAndEvent(t *testing.T) {
	axis := testkit.DailyAxis(testkit.Date(2001, 7, 1), 5)
	res, err := New().SimpleStat(context.Background(), ports.SimpleStatRequest{
		Grid:       testkit.Series(10, 30, 20, 28, 5),
		Stat:       grid.StatMax,
		Logical:    grid.LessThan,
		Threshold:  grid.Fixed(29),
		Coef:       1,
		FillValue:  fill,
		TimeAxis:   axis,
		TrackEvent: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 28.0, res.Values[0])
	require.NotNil(t, res.Events[0])
	assert.Equal(t, 3, res.Events[0].Start)
	assert.Equal(t, axis[3], *res.Events[0].StartDate)
}

func TestSimpleStat_Coefficient(t *testing.T) {
	res, err := New().SimpleStat(context.Background(), ports.SimpleStatRequest{
		Grid:      testkit.Series(1, 2, 3),
		Stat:      grid.StatSum,
		Coef:      86400,
		FillValue: fill,
	})
	require.NoError(t, err)
	assert.Equal(t, 6*86400.0, res.Values[0])
}

func TestSimpleStat_ZeroCoefficientIsApplied(t *testing.T) {
	res, err := New().SimpleStat(context.Background(), ports.SimpleStatRequest{
		Grid:      testkit.Series(1, 5, 3),
		Stat:      grid.StatMax,
		Coef:      0,
		FillValue: fill,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Values[0])
}

func TestNbEvents(t *testing.T) {
	g := testkit.Columns(
		[]float64{26, 20, 30, fill, 25.5},
		[]float64{1, 2, 3, 4, 5},
	)
	res, err := New().NbEvents(context.Background(), ports.EventCountRequest{
		Grid:       g,
		Logical:    grid.GreaterThan,
		Threshold:  grid.Fixed(25),
		Coef:       1,
		FillValue:  fill,
		OutUnit:    grid.UnitDays,
		TrackEvent: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 0}, res.Values)
	require.NotNil(t, res.Events[0])
	assert.Equal(t, 0, res.Events[0].Start)
	assert.Equal(t, 4, res.Events[0].End)
	assert.Nil(t, res.Events[1])
}

func TestNbEvents_SpatialPercentile(t *testing.T) {
	g := testkit.Columns([]float64{1, 5, 9}, []float64{1, 5, 9})
	res, err := New().NbEvents(context.Background(), ports.EventCountRequest{
		Grid:      g,
		Logical:   grid.GreaterOrEqual,
		Threshold: grid.Spatial([]float64{5, 9}),
		Coef:      1,
		FillValue: fill,
		OutUnit:   grid.UnitTimesteps,
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1}, res.Values)
}

func TestNbEvents_OutUnitHoursFromAxis(t *testing.T) {
	start := testkit.Date(2001, 1, 1)
	times := make([]time.Time, 4)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * 6 * time.Hour)
	}
	res, err := New().NbEvents(context.Background(), ports.EventCountRequest{
		Grid:      testkit.Series(1, 1, 1, 0),
		Logical:   grid.Equal,
		Threshold: grid.Fixed(1),
		Coef:      1,
		FillValue: fill,
		TimeAxis:  times,
		OutUnit:   grid.UnitDays,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.75, res.Values[0], 1e-9)
}

func TestNbEvents_ShapeErrors(t *testing.T) {
	k := New()
	ctx := context.Background()

	_, err := k.NbEvents(ctx, ports.EventCountRequest{
		Grid:      testkit.Columns([]float64{1, 2}, []float64{3, 4}),
		Logical:   grid.GreaterThan,
		Threshold: grid.Spatial([]float64{1}),
		FillValue: fill,
	})
	assert.True(t, errors.Is(err, core.ErrInvalidInputShape))

	_, err = k.NbEvents(ctx, ports.EventCountRequest{
		Grid:      grid.Grid{Data: [][]float64{{1, 2}, {3}}},
		Logical:   grid.GreaterThan,
		Threshold: grid.Fixed(1),
		FillValue: fill,
	})
	assert.True(t, errors.Is(err, core.ErrInvalidInputShape))

	_, err = k.NbEvents(ctx, ports.EventCountRequest{
		Grid:      testkit.Series(1),
		Logical:   grid.GreaterThan,
		FillValue: fill,
	})
	assert.True(t, errors.Is(err, core.ErrMissingThreshold))
}

func TestBinaryArray(t *testing.T) {
	bin, err := New().BinaryArray(context.Background(), ports.BinaryRequest{
		Grid:      testkit.Series(3, fill, 1, 5),
		Logical:   grid.GreaterOrEqual,
		Threshold: grid.Fixed(3),
		Coef:      1,
		FillValue: fill,
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, fill, 0, 1}, bin.Column(0))
}

func TestMaxConsecutive(t *testing.T) {
	res, err := New().MaxConsecutive(context.Background(), ports.ConsecutiveRequest{
		Grid:       testkit.Series(1, 1, 0, 1, 1, 1, 1, 0, 1, 0),
		Logical:    grid.Equal,
		Threshold:  grid.Fixed(1),
		Coef:       1,
		FillValue:  fill,
		OutUnit:    grid.UnitDays,
		TrackEvent: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, res.Values[0])
	assert.Equal(t, 3, res.Events[0].Start)
	assert.Equal(t, 6, res.Events[0].End)
}

func TestMaxConsecutive_MissingBreaksRun(t *testing.T) {
	res, err := New().MaxConsecutive(context.Background(), ports.ConsecutiveRequest{
		Grid:      testkit.Series(1, 1, fill, 1, 1, 1),
		Logical:   grid.Equal,
		Threshold: grid.Fixed(1),
		Coef:      1,
		FillValue: fill,
		OutUnit:   grid.UnitTimesteps,
	})
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.Values[0])
}

func TestNbEventsMultivar(t *testing.T) {
	a := testkit.Series(1, 0, 1, 1)
	b := testkit.Series(1, 1, 0, 1)
	k := New()
	ctx := context.Background()

	and, err := k.NbEventsMultivar(ctx, ports.MultivarEventRequest{
		Binaries: []grid.Grid{a, b}, Link: grid.LinkAnd, FillValue: fill, OutUnit: grid.UnitDays,
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, and.Values[0])

	or, err := k.NbEventsMultivar(ctx, ports.MultivarEventRequest{
		Binaries: []grid.Grid{a, b}, Link: grid.LinkOr, FillValue: fill, OutUnit: grid.UnitDays,
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, or.Values[0])

	run, err := k.NbEventsMultivar(ctx, ports.MultivarEventRequest{
		Binaries: []grid.Grid{a, b}, Link: grid.LinkOr, FillValue: fill, OutUnit: grid.UnitDays,
		MaxConsecutive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, run.Values[0])

	_, err = k.NbEventsMultivar(ctx, ports.MultivarEventRequest{
		Binaries: []grid.Grid{a, testkit.Series(1, 1)}, Link: grid.LinkAnd, FillValue: fill,
	})
	assert.True(t, errors.Is(err, core.ErrInvalidInputShape))
}

func TestNbEventsMultivar_MissingInAnyVariable(t *testing.T) {
	res, err := New().NbEventsMultivar(context.Background(), ports.MultivarEventRequest{
		Binaries:  []grid.Grid{testkit.Series(1, 1), testkit.Series(-999, 1)},
		Link:      grid.LinkOr,
		FillValue: fill,
		OutUnit:   grid.UnitTimesteps,
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Values[0])
}

func TestRunStat(t *testing.T) {
	k := New()
	ctx := context.Background()
	g := testkit.Series(1, 2, 10, 1, 1, 7)

	maxRes, err := k.RunStat(ctx, ports.RunStatRequest{
		Grid: g, WindowWidth: 2, StatMode: grid.StatSum, ExtremeMode: grid.ExtremeMax,
		Coef: 1, FillValue: fill, TrackEvent: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 12.0, maxRes.Values[0])
	assert.Equal(t, 1, maxRes.Events[0].Start)
	assert.Equal(t, 2, maxRes.Events[0].End)

	minRes, err := k.RunStat(ctx, ports.RunStatRequest{
		Grid: g, WindowWidth: 3, StatMode: grid.StatMean, ExtremeMode: grid.ExtremeMin,
		Coef: 1, FillValue: fill,
	})
	require.NoError(t, err)
	assert.InDelta(t, 3.0, minRes.Values[0], 1e-9)

	_, err = k.RunStat(ctx, ports.RunStatRequest{
		Grid: g, WindowWidth: 7, StatMode: grid.StatSum, ExtremeMode: grid.ExtremeMax, FillValue: fill,
	})
	assert.True(t, errors.Is(err, core.ErrInvalidInputShape))
}

func TestRunStat_SkipsWindowsWithMissing(t *testing.T) {
	res, err := New().RunStat(context.Background(), ports.RunStatRequest{
		Grid: testkit.Series(100, fill, 1, 1), WindowWidth: 2, StatMode: grid.StatSum,
		ExtremeMode: grid.ExtremeMax, Coef: 1, FillValue: fill,
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Values[0])
}

func TestAnomaly(t *testing.T) {
	future := testkit.Columns([]float64{11, 13, 12}, []float64{fill, fill, fill}, []float64{20, 20, 20})
	base := testkit.Columns([]float64{9, 11}, []float64{1, 1}, []float64{10, 10})

	res, err := New().Anomaly(context.Background(), ports.AnomalyRequest{
		Future: future, Base: base, FillValue: fill, OutUnit: grid.UnitValue,
	})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, res.Values[0], 1e-9)
	assert.Equal(t, fill, res.Values[1])
	assert.InDelta(t, 10.0, res.Values[2], 1e-9)

	pct, err := New().Anomaly(context.Background(), ports.AnomalyRequest{
		Future: future, Base: base, FillValue: fill, OutUnit: grid.UnitPercent,
	})
	require.NoError(t, err)
	assert.InDelta(t, 20.0, pct.Values[0], 1e-9)
	assert.InDelta(t, 100.0, pct.Values[2], 1e-9)

	_, err = New().Anomaly(context.Background(), ports.AnomalyRequest{
		Future: future, Base: testkit.Series(1), FillValue: fill,
	})
	assert.True(t, errors.Is(err, core.ErrInvalidInputShape))
}

func TestKernels_RespectCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().SimpleStat(ctx, ports.SimpleStatRequest{Grid: testkit.Series(1), Stat: grid.StatMax})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKernels_NaNIsMissing(t *testing.T) {
	res, err := New().SimpleStat(context.Background(), ports.SimpleStatRequest{
		Grid: testkit.Series(math.NaN(), 4), Stat: grid.StatMean, Coef: 1, FillValue: fill,
	})
	require.NoError(t, err)
	assert.Equal(t, 4.0, res.Values[0])
}
