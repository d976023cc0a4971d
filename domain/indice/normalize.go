package indice

import (
	"climindex/domain/core"
	"climindex/domain/grid"
)

// Normalize expands a validated definition into one parameter record per
// variable and classifies the indice. Errors here mean Validate was skipped.
func Normalize(spec RawIndiceSpec, variables []core.VariableKey, outUnit string) (*ResolvedIndiceSpec, error) {
	if len(variables) == 0 {
		return nil, core.NewContractError("normalize called without variables")
	}
	unit, err := grid.ParseOutUnit(outUnit)
	if err != nil {
		return nil, err
	}

	opName, _ := spec.scalarString(ParamCalcOperation)
	op, err := ParseOperation(opName)
	if err != nil {
		return nil, core.NewContractError("normalize called with unvalidated calc_operation %q", opName)
	}

	// date_event only makes sense where a single event date exists
	dateEvent := false
	if p, ok := spec.Get(ParamDateEvent); ok && op.tracksEvents() {
		v, _ := p.Scalar()
		dateEvent, _ = v.Flag()
	}

	records := make(map[core.VariableKey]ResolvedParameterRecord, len(variables))
	for i, v := range variables {
		if _, dup := records[v]; dup {
			return nil, core.NewContractError("variable %s listed twice", v)
		}
		rec, err := resolveRecord(spec, v, i)
		if err != nil {
			return nil, err
		}
		rec.DateEvent = dateEvent
		records[v] = rec
	}

	resolved := &ResolvedIndiceSpec{
		OutUnit:   unit,
		Hash:      core.ComputeSpecHash(spec.fingerprint(), variables),
		variables: append([]core.VariableKey(nil), variables...),
		records:   records,
	}
	resolved.Type = Classify(resolved.Records())

	first := records[variables[0]]
	for _, v := range variables[1:] {
		rec := records[v]
		if rec.IndiceName != first.IndiceName || rec.CalcOperation != first.CalcOperation || rec.DateEvent != first.DateEvent {
			return nil, core.NewContractError("variable %s disagrees with %s on indice_name, calc_operation or date_event", v, variables[0])
		}
	}
	resolved.IndiceName = first.IndiceName
	resolved.CalcOperation = first.CalcOperation
	resolved.DateEvent = first.DateEvent

	return resolved, nil
}

// resolveRecord overlays the parameters of variable i on the defaults.
func resolveRecord(spec RawIndiceSpec, variable core.VariableKey, i int) (ResolvedParameterRecord, error) {
	rec := defaultRecord(variable)

	for _, name := range spec.Names() {
		p, _ := spec.Get(name)
		v, ok := p.At(i)
		if !ok {
			return rec, core.NewContractError("parameter %q has no value for variable %s", name, variable)
		}
		if err := assign(&rec, name, v); err != nil {
			return rec, core.NewContractError("parameter %q for variable %s: %v", name, variable, err)
		}
	}
	return rec, nil
}

func assign(rec *ResolvedParameterRecord, name string, v Value) error {
	if err := checkValue(name, v); err != nil {
		return err
	}

	var err error
	switch name {
	case ParamIndiceName:
		rec.IndiceName, _ = v.Str()
	case ParamCalcOperation:
		s, _ := v.Str()
		rec.CalcOperation, err = ParseOperation(s)
	case ParamLogicalOperation:
		s, _ := v.Str()
		rec.LogicalOperation, err = grid.ParseLogicalOp(s)
	case ParamThreshold:
		if s, ok := v.Str(); ok {
			rec.Threshold = PercentileThreshold(s)
		} else {
			f, _ := v.Float()
			rec.Threshold = FixedThreshold(f)
		}
	case ParamCoefficient:
		rec.Coefficient, _ = v.Float()
	case ParamVarType:
		s, _ := v.Str()
		rec.VarType, err = ParseVarType(s)
	case ParamLinkLogicalOperation:
		s, _ := v.Str()
		rec.LinkLogicalOperation, err = grid.ParseLinkOp(s)
	case ParamExtremeMode:
		s, _ := v.Str()
		rec.ExtremeMode, err = grid.ParseExtremeMode(s)
	case ParamWindowWidth:
		f, _ := v.Float()
		rec.WindowWidth = int(f)
	}
	return err
}

// Classify derives the indice type from resolved records alone, so that
// classifying the records of a ResolvedIndiceSpec reproduces its Type.
func Classify(records []ResolvedParameterRecord) IndiceType {
	percentile := false
	for _, rec := range records {
		if rec.Threshold.IsPercentile() {
			percentile = true
			break
		}
	}

	if len(records) > 1 {
		if percentile {
			return TypePercentileBasedMultivariable
		}
		return TypeMultivariable
	}
	if percentile {
		return TypePercentileBased
	}
	return TypeSimple
}
