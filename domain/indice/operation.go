package indice

import (
	"fmt"
	"strings"

	"climindex/domain/core"
)

// OperationKind is the closed set of user indice calculations.
type OperationKind string

const (
	OpMax                    OperationKind = "max"
	OpMin                    OperationKind = "min"
	OpSum                    OperationKind = "sum"
	OpMean                   OperationKind = "mean"
	OpNbEvents               OperationKind = "nb_events"
	OpMaxNbConsecutiveEvents OperationKind = "max_nb_consecutive_events"
	OpRunMean                OperationKind = "run_mean"
	OpRunSum                 OperationKind = "run_sum"
	OpAnomaly                OperationKind = "anomaly"
)

// Operations lists every supported operation in catalog order.
var Operations = []OperationKind{
	OpMax, OpMin, OpSum, OpMean,
	OpNbEvents, OpMaxNbConsecutiveEvents,
	OpRunMean, OpRunSum,
	OpAnomaly,
}

// ParseOperation rejects anything outside the closed set.
func ParseOperation(s string) (OperationKind, error) {
	op := OperationKind(strings.TrimSpace(s))
	for _, known := range Operations {
		if op == known {
			return op, nil
		}
	}
	return "", newValidationError(core.ErrUnknownOperation, []string{ParamCalcOperation},
		"unknown calc_operation %q", s)
}

func (op OperationKind) String() string { return string(op) }

// IsReduction is true for max, min, sum and mean.
func (op OperationKind) IsReduction() bool {
	switch op {
	case OpMax, OpMin, OpSum, OpMean:
		return true
	}
	return false
}

// IsEventBased is true for the operations that compare values against a threshold
// and can be combined across several variables.
func (op OperationKind) IsEventBased() bool {
	return op == OpNbEvents || op == OpMaxNbConsecutiveEvents
}

// IsRunning is true for running-window statistics.
func (op OperationKind) IsRunning() bool {
	return op == OpRunMean || op == OpRunSum
}

// tracksEvents is false for operations whose result has no single event date.
func (op OperationKind) tracksEvents() bool {
	return op != OpMean && op != OpSum
}

// IndiceType classifies a resolved indice for downstream handling.
type IndiceType string

const (
	TypeSimple                       IndiceType = "simple"
	TypePercentileBased              IndiceType = "percentile_based"
	TypeMultivariable                IndiceType = "multivariable"
	TypePercentileBasedMultivariable IndiceType = "percentile_based_multivariable"
)

// IsMultivariable reports whether per-variable event arrays are combined.
func (t IndiceType) IsMultivariable() bool {
	return t == TypeMultivariable || t == TypePercentileBasedMultivariable
}

// IsPercentileBased reports whether precomputed percentile thresholds are needed.
func (t IndiceType) IsPercentileBased() bool {
	return t == TypePercentileBased || t == TypePercentileBasedMultivariable
}

func (t IndiceType) String() string { return string(t) }

func describe(vs []string) string {
	return fmt.Sprintf("[%s]", strings.Join(vs, ", "))
}
