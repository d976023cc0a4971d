package indice

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"climindex/domain/core"
	"climindex/domain/grid"
)

// ThresholdValue is a resolved threshold: absent, a fixed number, or a
// percentile token to be replaced by precomputed percentiles at dispatch.
type ThresholdValue struct {
	set        bool
	percentile bool
	value      float64
	token      string
}

func FixedThreshold(v float64) ThresholdValue { return ThresholdValue{set: true, value: v} }

func PercentileThreshold(token string) ThresholdValue {
	return ThresholdValue{set: true, percentile: true, token: token}
}

func (t ThresholdValue) IsSet() bool        { return t.set }
func (t ThresholdValue) IsPercentile() bool { return t.set && t.percentile }

// Value returns the fixed threshold.
func (t ThresholdValue) Value() (float64, bool) {
	return t.value, t.set && !t.percentile
}

// Token returns the percentile token, e.g. "90p".
func (t ThresholdValue) Token() string { return t.token }

// Percentile parses the token into a percentile rank in (0, 100].
func (t ThresholdValue) Percentile() (float64, error) {
	if !t.IsPercentile() {
		return 0, fmt.Errorf("%w: threshold is not a percentile", core.ErrInvalidParameterValue)
	}
	s := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(t.token)), "p")
	p, err := strconv.ParseFloat(s, 64)
	if err != nil || p <= 0 || p > 100 {
		return 0, fmt.Errorf("%w: cannot read percentile from %q", core.ErrInvalidParameterValue, t.token)
	}
	return p, nil
}

func (t ThresholdValue) MarshalJSON() ([]byte, error) {
	switch {
	case !t.set:
		return []byte("null"), nil
	case t.percentile:
		return json.Marshal(t.token)
	}
	return json.Marshal(t.value)
}

// ResolvedParameterRecord holds the parameters of one target variable, with
// defaults applied and per-variable lists already indexed.
type ResolvedParameterRecord struct {
	Variable             core.VariableKey `json:"variable"`
	IndiceName           string           `json:"indice_name"`
	CalcOperation        OperationKind    `json:"calc_operation"`
	LogicalOperation     grid.LogicalOp   `json:"logical_operation,omitempty"`
	Threshold            ThresholdValue   `json:"thresh"`
	Coefficient          float64          `json:"coef"`
	DateEvent            bool             `json:"date_event"`
	VarType              string           `json:"var_type,omitempty"`
	LinkLogicalOperation grid.LinkOp      `json:"link_logical_operations"`
	ExtremeMode          grid.ExtremeMode `json:"extreme_mode,omitempty"`
	WindowWidth          int              `json:"window_width,omitempty"`
}

// defaultRecord carries the declared default of every parameter.
func defaultRecord(v core.VariableKey) ResolvedParameterRecord {
	return ResolvedParameterRecord{
		Variable:             v,
		Coefficient:          1.0,
		DateEvent:            false,
		LinkLogicalOperation: grid.LinkAnd,
	}
}

// ResolvedIndiceSpec is the per-variable execution plan of one indice. It is
// created by Normalize and read-only afterwards.
type ResolvedIndiceSpec struct {
	IndiceName    string
	CalcOperation OperationKind
	DateEvent     bool
	Type          IndiceType
	OutUnit       grid.OutUnit
	Hash          core.SpecHash

	variables []core.VariableKey
	records   map[core.VariableKey]ResolvedParameterRecord
}

// Variables returns the target variables in definition order.
func (r *ResolvedIndiceSpec) Variables() []core.VariableKey {
	return append([]core.VariableKey(nil), r.variables...)
}

// Record returns the resolved parameters of one variable.
func (r *ResolvedIndiceSpec) Record(v core.VariableKey) (ResolvedParameterRecord, bool) {
	rec, ok := r.records[v]
	return rec, ok
}

// Records returns every record in variable order.
func (r *ResolvedIndiceSpec) Records() []ResolvedParameterRecord {
	out := make([]ResolvedParameterRecord, len(r.variables))
	for i, v := range r.variables {
		out[i] = r.records[v]
	}
	return out
}

func (r *ResolvedIndiceSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		IndiceName    string                    `json:"indice_name"`
		CalcOperation OperationKind             `json:"calc_operation"`
		DateEvent     bool                      `json:"date_event"`
		Type          IndiceType                `json:"type"`
		OutUnit       grid.OutUnit              `json:"out_unit"`
		Hash          core.SpecHash             `json:"spec_hash"`
		Variables     []core.VariableKey        `json:"variables"`
		Records       []ResolvedParameterRecord `json:"records"`
	}{
		IndiceName:    r.IndiceName,
		CalcOperation: r.CalcOperation,
		DateEvent:     r.DateEvent,
		Type:          r.Type,
		OutUnit:       r.OutUnit,
		Hash:          r.Hash,
		Variables:     r.variables,
		Records:       r.Records(),
	})
}
