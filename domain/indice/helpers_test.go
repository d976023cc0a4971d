package indice

import "climindex/domain/core"

func num(f float64) ParamValue { return Scalar(Number(f)) }
func str(s string) ParamValue  { return Scalar(String(s)) }
func flag(b bool) ParamValue   { return Scalar(Bool(b)) }

func vars(names ...string) []core.VariableKey { return core.VariableKeys(names...) }

func list(vs ...interface{}) ParamValue {
	out := make([]Value, len(vs))
	for i, v := range vs {
		switch t := v.(type) {
		case string:
			out[i] = String(t)
		case bool:
			out[i] = Bool(t)
		case int:
			out[i] = Number(float64(t))
		case float64:
			out[i] = Number(t)
		}
	}
	return PerVariable(out...)
}

func baseRange() *core.TimeRange {
	return &core.TimeRange{}
}
