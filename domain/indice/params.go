package indice

import (
	"fmt"
	"strings"
)

// Parameter names as written in user indice definitions.
const (
	ParamIndiceName           = "indice_name"
	ParamCalcOperation        = "calc_operation"
	ParamLogicalOperation     = "logical_operation"
	ParamThreshold            = "thresh"
	ParamCoefficient          = "coef"
	ParamDateEvent            = "date_event"
	ParamVarType              = "var_type"
	ParamLinkLogicalOperation = "link_logical_operations"
	ParamExtremeMode          = "extreme_mode"
	ParamWindowWidth          = "window_width"
)

var paramAliases = map[string]string{
	"threshold":              ParamThreshold,
	"coefficient":            ParamCoefficient,
	"date_event_flag":        ParamDateEvent,
	"variable_type":          ParamVarType,
	"link_logical_operation": ParamLinkLogicalOperation,
}

// CanonicalParam maps an accepted alias to its canonical name.
func CanonicalParam(name string) string {
	if canonical, ok := paramAliases[name]; ok {
		return canonical
	}
	return name
}

// Variable types that select a percentile method.
const (
	VarTypeTemperature   = "t"
	VarTypePrecipitation = "p"
)

// ParseVarType accepts a variable type in any case.
func ParseVarType(s string) (string, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case VarTypeTemperature, VarTypePrecipitation:
		return v, nil
	}
	return "", fmt.Errorf("unknown variable type %q, expected %q or %q", s, VarTypeTemperature, VarTypePrecipitation)
}
