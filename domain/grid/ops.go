package grid

import (
	"fmt"
	"strings"

	"climindex/domain/core"
)

// LogicalOp compares a value against a threshold.
type LogicalOp string

const (
	GreaterThan    LogicalOp = "gt"
	GreaterOrEqual LogicalOp = "get"
	LessThan       LogicalOp = "lt"
	LessOrEqual    LogicalOp = "let"
	Equal          LogicalOp = "e"
)

var logicalAliases = map[string]LogicalOp{
	"gt": GreaterThan, ">": GreaterThan,
	"get": GreaterOrEqual, "ge": GreaterOrEqual, ">=": GreaterOrEqual,
	"lt": LessThan, "<": LessThan,
	"let": LessOrEqual, "le": LessOrEqual, "<=": LessOrEqual,
	"e": Equal, "eq": Equal, "==": Equal,
}

// ParseLogicalOp accepts both mnemonic and symbolic spellings.
func ParseLogicalOp(s string) (LogicalOp, error) {
	op, ok := logicalAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: unknown logical operation %q", core.ErrInvalidParameterValue, s)
	}
	return op, nil
}

// Compare applies the operation to value and threshold.
func (op LogicalOp) Compare(value, threshold float64) bool {
	switch op {
	case GreaterThan:
		return value > threshold
	case GreaterOrEqual:
		return value >= threshold
	case LessThan:
		return value < threshold
	case LessOrEqual:
		return value <= threshold
	case Equal:
		return value == threshold
	}
	return false
}

// LinkOp merges per-variable event arrays.
type LinkOp string

const (
	LinkAnd LinkOp = "and"
	LinkOr  LinkOp = "or"
)

func ParseLinkOp(s string) (LinkOp, error) {
	switch LinkOp(strings.ToLower(strings.TrimSpace(s))) {
	case LinkAnd:
		return LinkAnd, nil
	case LinkOr:
		return LinkOr, nil
	}
	return "", fmt.Errorf("%w: unknown link logical operation %q", core.ErrInvalidParameterValue, s)
}

// ExtremeMode selects which running-window extreme is reported.
type ExtremeMode string

const (
	ExtremeMax ExtremeMode = "max"
	ExtremeMin ExtremeMode = "min"
)

func ParseExtremeMode(s string) (ExtremeMode, error) {
	switch ExtremeMode(strings.ToLower(strings.TrimSpace(s))) {
	case ExtremeMax:
		return ExtremeMax, nil
	case ExtremeMin:
		return ExtremeMin, nil
	}
	return "", fmt.Errorf("%w: unknown extreme mode %q", core.ErrInvalidParameterValue, s)
}

// StatMode is the per-window statistic of running kernels, and the reduction of simple ones.
type StatMode string

const (
	StatMax  StatMode = "max"
	StatMin  StatMode = "min"
	StatSum  StatMode = "sum"
	StatMean StatMode = "mean"
)

// OutUnit controls how counts and anomalies are reported.
type OutUnit string

const (
	UnitDays      OutUnit = "days"
	UnitHours     OutUnit = "hours"
	UnitTimesteps OutUnit = "timesteps"
	UnitPercent   OutUnit = "%"
	UnitValue     OutUnit = "value"
)

// ParseOutUnit defaults to days.
func ParseOutUnit(s string) (OutUnit, error) {
	switch u := OutUnit(strings.ToLower(strings.TrimSpace(s))); u {
	case "":
		return UnitDays, nil
	case UnitDays, UnitHours, UnitTimesteps, UnitPercent, UnitValue:
		return u, nil
	}
	return "", fmt.Errorf("%w: unknown out unit %q", core.ErrInvalidParameterValue, s)
}
