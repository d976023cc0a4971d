package indice

// ParameterCatalog declares, per operation, the required and optional parameters.
type ParameterCatalog struct {
	required map[OperationKind][]string
	optional map[OperationKind][]string
}

// DefaultCatalog is the catalog of the user indice operations.
var DefaultCatalog = ParameterCatalog{
	required: map[OperationKind][]string{
		OpMax:  {},
		OpMin:  {},
		OpSum:  {},
		OpMean: {},
		// multi-variable event indices also need link_logical_operations
		OpNbEvents:               {ParamLogicalOperation, ParamThreshold},
		OpMaxNbConsecutiveEvents: {ParamLogicalOperation, ParamThreshold},
		OpRunMean:                {ParamExtremeMode, ParamWindowWidth},
		OpRunSum:                 {ParamExtremeMode, ParamWindowWidth},
		// anomaly needs a base period, which is not a parameter
		OpAnomaly: {},
	},
	optional: map[OperationKind][]string{
		OpMax:                    {ParamCoefficient, ParamLogicalOperation, ParamThreshold, ParamDateEvent},
		OpMin:                    {ParamCoefficient, ParamLogicalOperation, ParamThreshold, ParamDateEvent},
		OpSum:                    {ParamCoefficient, ParamLogicalOperation, ParamThreshold},
		OpMean:                   {ParamCoefficient, ParamLogicalOperation, ParamThreshold},
		OpNbEvents:               {ParamCoefficient, ParamDateEvent},
		OpMaxNbConsecutiveEvents: {ParamCoefficient, ParamDateEvent},
		OpRunMean:                {ParamCoefficient, ParamDateEvent},
		OpRunSum:                 {ParamCoefficient, ParamDateEvent},
		OpAnomaly:                {},
	},
}

// contextual parameters apply to any operation when thresholds are
// percentiles or several variables are combined.
var contextualParams = []string{ParamVarType, ParamLinkLogicalOperation}

func (c ParameterCatalog) Required(op OperationKind) []string {
	return append([]string(nil), c.required[op]...)
}

func (c ParameterCatalog) Optional(op OperationKind) []string {
	return append([]string(nil), c.optional[op]...)
}

// Known reports whether any operation recognises the parameter name.
func (c ParameterCatalog) Known(name string) bool {
	name = CanonicalParam(name)
	if name == ParamIndiceName || name == ParamCalcOperation || contains(contextualParams, name) {
		return true
	}
	for _, names := range c.required {
		if contains(names, name) {
			return true
		}
	}
	for _, names := range c.optional {
		if contains(names, name) {
			return true
		}
	}
	return false
}

// Missing returns the required parameters of op absent from spec, in catalog order.
func (c ParameterCatalog) Missing(op OperationKind, spec RawIndiceSpec) []string {
	var missing []string
	for _, name := range c.required[op] {
		if !spec.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Ignored returns recognised parameters of spec that op does not use.
func (c ParameterCatalog) Ignored(op OperationKind, spec RawIndiceSpec) []string {
	var ignored []string
	for _, name := range spec.Names() {
		switch {
		case name == ParamIndiceName || name == ParamCalcOperation:
		case contains(contextualParams, name):
		case contains(c.required[op], name), contains(c.optional[op], name):
		case c.Known(name):
			ignored = append(ignored, name)
		}
	}
	return ignored
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
