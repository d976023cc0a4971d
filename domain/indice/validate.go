package indice

import (
	"math"

	"climindex/domain/core"
	"climindex/domain/grid"
)

// Validate checks a raw indice definition against the catalog and the
// structural rules for its variables. It must succeed before Normalize is
// called. timeRange is the anomaly base period, nil when none was given.
func Validate(spec RawIndiceSpec, variables []core.VariableKey, timeRange *core.TimeRange) error {
	return DefaultCatalog.Validate(spec, variables, timeRange)
}

// Validate is Validate against a specific catalog.
func (c ParameterCatalog) Validate(spec RawIndiceSpec, variables []core.VariableKey, timeRange *core.TimeRange) error {
	if len(variables) == 0 {
		return newValidationError(core.ErrNoVariables, nil, "at least one target variable is required")
	}

	for _, name := range []string{ParamIndiceName, ParamCalcOperation} {
		if !spec.Has(name) {
			return newValidationError(core.ErrMissingField, []string{name},
				"%q is required for a user defined indice", name)
		}
	}
	for _, name := range []string{ParamIndiceName, ParamCalcOperation, ParamDateEvent, ParamLinkLogicalOperation} {
		if p, ok := spec.Get(name); ok && p.IsPerVariable() {
			return newValidationError(core.ErrInconsistentField, []string{name},
				"%q must be a single value shared by all variables, got %s", name, p.describe())
		}
	}
	if _, ok := spec.scalarString(ParamIndiceName); !ok {
		return newValidationError(core.ErrInvalidParameterValue, []string{ParamIndiceName},
			"%q must be a string", ParamIndiceName)
	}
	opName, ok := spec.scalarString(ParamCalcOperation)
	if !ok {
		return newValidationError(core.ErrInvalidParameterValue, []string{ParamCalcOperation},
			"%q must be a string", ParamCalcOperation)
	}
	op, err := ParseOperation(opName)
	if err != nil {
		return err
	}

	for _, name := range spec.Names() {
		if !c.Known(name) {
			return newValidationError(core.ErrUnknownParameter, []string{name},
				"parameter %q is not recognised by any operation", name)
		}
	}

	if !op.IsReduction() {
		if missing := c.Missing(op, spec); len(missing) > 0 {
			return newValidationError(core.ErrMissingRequiredParameter, missing,
				"%s requires all of %s, missing %s", op, describe(c.required[op]), describe(missing))
		}
	}

	thresh, hasThresh := spec.Get(ParamThreshold)
	hasVarType := spec.Has(ParamVarType)

	if op.IsEventBased() && hasThresh {
		if v, ok := thresh.At(0); ok && v.IsPercentileToken() && !hasVarType {
			return newValidationError(core.ErrMissingVariableType, []string{ParamVarType},
				"threshold %s is a percentile, %q is required", v, ParamVarType)
		}
	}

	if op == OpAnomaly && timeRange == nil {
		return newValidationError(core.ErrMissingTimeRange, nil,
			"a base period time range is required for anomaly indices")
	}

	n := len(variables)
	if n > 1 {
		if !op.IsEventBased() {
			return newValidationError(core.ErrUnsupportedMultivariable, []string{ParamCalcOperation},
				"%s cannot combine %d variables, only %s and %s can", op, n, OpNbEvents, OpMaxNbConsecutiveEvents)
		}
		for _, name := range []string{ParamLogicalOperation, ParamThreshold} {
			p, _ := spec.Get(name)
			if !p.IsPerVariable() || p.Len() != n {
				return newValidationError(core.ErrArityMismatch, []string{name},
					"indice is based on %d variables, %q must be a list of %d values, got %s", n, name, n, p.describe())
			}
		}
		if !spec.Has(ParamLinkLogicalOperation) {
			return newValidationError(core.ErrMissingLinkOperation, []string{ParamLinkLogicalOperation},
				"indice is based on %d variables, %q ('and' or 'or') is required", n, ParamLinkLogicalOperation)
		}
		for i := 0; i < n; i++ {
			if v, ok := thresh.At(i); ok && v.IsPercentileToken() && !hasVarType {
				return newValidationError(core.ErrMissingVariableType, []string{ParamVarType},
					"threshold %s of variable %s is a percentile, %q is required (it may be a list)",
					v, variables[i], ParamVarType)
			}
		}
	}

	for _, name := range spec.Names() {
		if p, _ := spec.Get(name); p.IsPerVariable() && p.Len() != n {
			return newValidationError(core.ErrArityMismatch, []string{name},
				"%q has %s but there are %d variables", name, p.describe(), n)
		}
	}

	return validateValues(spec)
}

// validateValues checks the type of every value against what the kernels expect.
func validateValues(spec RawIndiceSpec) error {
	for _, name := range spec.Names() {
		p, _ := spec.Get(name)
		for _, v := range p.Values() {
			if err := checkValue(name, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkValue(name string, v Value) error {
	invalid := func(format string, args ...interface{}) error {
		return newValidationError(core.ErrInvalidParameterValue, []string{name}, format, args...)
	}

	switch name {
	case ParamIndiceName, ParamCalcOperation:
		if _, ok := v.Str(); !ok {
			return invalid("%q must be a string, got %s", name, v)
		}
	case ParamVarType:
		s, ok := v.Str()
		if !ok {
			return invalid("%q must be a string, got %s", name, v)
		}
		if _, err := ParseVarType(s); err != nil {
			return invalid("%v", err)
		}
	case ParamThreshold:
		if v.Kind() != KindNumber && v.Kind() != KindString {
			return invalid("%q must be a number or a percentile such as \"90p\", got %s", name, v)
		}
		if s, ok := v.Str(); ok {
			if _, err := PercentileThreshold(s).Percentile(); err != nil {
				return invalid("%q must be a number or a percentile such as \"90p\", got %s", name, v)
			}
		}
	case ParamCoefficient:
		if _, ok := v.Float(); !ok {
			return invalid("%q must be a number, got %s", name, v)
		}
	case ParamDateEvent:
		if _, ok := v.Flag(); !ok {
			return invalid("%q must be true or false, got %s", name, v)
		}
	case ParamLogicalOperation:
		s, ok := v.Str()
		if !ok {
			return invalid("%q must be a string, got %s", name, v)
		}
		if _, err := grid.ParseLogicalOp(s); err != nil {
			return invalid("%v", err)
		}
	case ParamLinkLogicalOperation:
		s, ok := v.Str()
		if !ok {
			return invalid("%q must be a string, got %s", name, v)
		}
		if _, err := grid.ParseLinkOp(s); err != nil {
			return invalid("%v", err)
		}
	case ParamExtremeMode:
		s, ok := v.Str()
		if !ok {
			return invalid("%q must be a string, got %s", name, v)
		}
		if _, err := grid.ParseExtremeMode(s); err != nil {
			return invalid("%v", err)
		}
	case ParamWindowWidth:
		f, ok := v.Float()
		if !ok || f < 1 || f != math.Trunc(f) {
			return invalid("%q must be a positive integer, got %s", name, v)
		}
	}
	return nil
}

// CheckFeatures aligns target variables with their input file groups. A
// single variable takes every file; several variables need one group each.
func CheckFeatures(variables []core.VariableKey, files [][]string) (map[core.VariableKey][]string, error) {
	if len(variables) == 0 {
		return nil, newValidationError(core.ErrNoVariables, nil, "at least one target variable is required")
	}
	out := make(map[core.VariableKey][]string, len(variables))
	if len(variables) == 1 {
		var all []string
		for _, group := range files {
			all = append(all, group...)
		}
		out[variables[0]] = all
		return out, nil
	}
	if len(files) != len(variables) {
		return nil, newValidationError(core.ErrArityMismatch, nil,
			"number of input file groups (%d) must match number of input variables (%d)", len(files), len(variables))
	}
	for i, v := range variables {
		out[v] = append([]string(nil), files[i]...)
	}
	return out, nil
}
