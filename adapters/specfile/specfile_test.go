package specfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"climindex/domain/core"
	"climindex/domain/indice"
	apperrors "climindex/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlDefinition = `
indice:
  indice_name: hot_and_wet
  calc_operation: nb_events
  logical_operation: [gt, gt]
  threshold: ["90p", 1.5]
  var_type: [t, p]
  link_logical_operations: and
variables: [tasmax, pr]
base_period:
  start: 1981-01-01
  end: 2010-12-31
out_unit: days
inputs:
  tasmax: [tx_1981.xlsx, tx_1991.xlsx]
  pr: [pr.csv]
`

func TestParseYAML(t *testing.T) {
	def, err := Parse([]byte(yamlDefinition), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, core.VariableKeys("tasmax", "pr"), def.Variables)
	assert.Equal(t, "days", def.OutUnit)
	require.NotNil(t, def.TimeRange)
	assert.Equal(t, "1981-01-01/2010-12-31", def.TimeRange.String())
	assert.Equal(t, []string{"pr.csv"}, def.Inputs["pr"])

	// aliases are canonicalised on construction
	thresh, ok := def.Spec.Get(indice.ParamThreshold)
	require.True(t, ok)
	assert.True(t, thresh.IsPerVariable())
	assert.Equal(t, 2, thresh.Len())

	require.NoError(t, indice.Validate(def.Spec, def.Variables, def.TimeRange))
}

func TestPeriodIncludesWholeLastDay(t *testing.T) {
	r, err := Period{Start: "2000-01-01", End: "2000-12-31"}.TimeRange()
	require.NoError(t, err)

	assert.True(t, r.Contains(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, r.Contains(time.Date(2000, 12, 31, 12, 0, 0, 0, time.UTC)))
	assert.True(t, r.Contains(time.Date(2000, 12, 31, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(1999, 12, 31, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2000-01-01/2000-12-31", r.String())
}

func TestParseJSON(t *testing.T) {
	data := []byte(`{
		"indice": {"indice_name": "rx5day", "calc_operation": "run_sum", "extreme_mode": "max", "window_width": 5},
		"variables": ["pr"]
	}`)

	def, err := Parse(data, FormatJSON)
	require.NoError(t, err)
	require.NoError(t, indice.Validate(def.Spec, def.Variables, def.TimeRange))

	resolved, err := indice.Normalize(def.Spec, def.Variables, def.OutUnit)
	require.NoError(t, err)
	rec, ok := resolved.Record("pr")
	require.True(t, ok)
	assert.Equal(t, 5, rec.WindowWidth)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("indice: [unclosed"), FormatYAML)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	_, err = Parse([]byte(`{"indice": `), FormatJSON)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	_, err = Parse([]byte("indice: {indice_name: x, calc_operation: max}\nvariables: [tas]\nbase_period: {start: 2010-01-01, end: 2000-01-01}\n"), FormatYAML)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	_, err = Parse([]byte("indice: {thresh: 1, threshold: 2}\n"), FormatYAML)
	assert.True(t, errors.Is(err, core.ErrInvalidParameterValue))
}

func TestLoadPicksFormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "su.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"indice": {"indice_name": "su", "calc_operation": "max"}, "variables": ["tasmax"]}`), 0o644))

	def, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, core.VariableKeys("tasmax"), def.Variables)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}
