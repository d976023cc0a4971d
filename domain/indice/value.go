package indice

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"climindex/domain/core"
)

// ValueKind discriminates Value.
type ValueKind int

const (
	KindNumber ValueKind = iota + 1
	KindString
	KindBool
)

// Value is one scalar parameter value as written by the user.
type Value struct {
	kind ValueKind
	num  float64
	str  string
	flag bool
}

func Number(f float64) Value { return Value{kind: KindNumber, num: f} }
func String(s string) Value  { return Value{kind: KindString, str: s} }
func Bool(b bool) Value      { return Value{kind: KindBool, flag: b} }

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) Float() (float64, bool) { return v.num, v.kind == KindNumber }

func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

func (v Value) Flag() (bool, bool) { return v.flag, v.kind == KindBool }

// IsPercentileToken is true for thresholds written symbolically, e.g. "90p".
func (v Value) IsPercentileToken() bool { return v.kind == KindString }

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.str)
	case KindBool:
		return strconv.FormatBool(v.flag)
	}
	return "<nil>"
}

// Interface returns the value as a plain Go value for encoding.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindBool:
		return v.flag
	}
	return nil
}

// valueFromAny converts a decoded JSON or YAML scalar.
func valueFromAny(name string, x interface{}) (Value, error) {
	switch t := x.(type) {
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, newValidationError(core.ErrInvalidParameterValue, []string{name},
				"parameter %q: %v", name, err)
		}
		return Number(f), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	}
	return Value{}, newValidationError(core.ErrInvalidParameterValue, []string{name},
		"parameter %q has unsupported value type %T", name, x)
}

// ParamValue is either one value broadcast to every variable, or an ordered
// sequence holding one value per variable.
type ParamValue struct {
	scalar      Value
	list        []Value
	perVariable bool
}

// Scalar applies v to every target variable.
func Scalar(v Value) ParamValue { return ParamValue{scalar: v} }

// PerVariable holds one value per target variable, positionally aligned.
func PerVariable(vs ...Value) ParamValue {
	list := make([]Value, len(vs))
	copy(list, vs)
	return ParamValue{list: list, perVariable: true}
}

func (p ParamValue) IsPerVariable() bool { return p.perVariable }

// Len is the number of explicit values (1 for a scalar).
func (p ParamValue) Len() int {
	if p.perVariable {
		return len(p.list)
	}
	return 1
}

// At resolves the value for the variable at position i.
func (p ParamValue) At(i int) (Value, bool) {
	if !p.perVariable {
		return p.scalar, true
	}
	if i < 0 || i >= len(p.list) {
		return Value{}, false
	}
	return p.list[i], true
}

// Scalar returns the broadcast value, if this is not a per-variable list.
func (p ParamValue) Scalar() (Value, bool) { return p.scalar, !p.perVariable }

// Values returns a copy of every explicit value.
func (p ParamValue) Values() []Value {
	if !p.perVariable {
		return []Value{p.scalar}
	}
	out := make([]Value, len(p.list))
	copy(out, p.list)
	return out
}

func (p ParamValue) String() string {
	if !p.perVariable {
		return p.scalar.String()
	}
	parts := make([]string, len(p.list))
	for i, v := range p.list {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func paramValueFromAny(name string, x interface{}) (ParamValue, error) {
	items, ok := x.([]interface{})
	if !ok {
		v, err := valueFromAny(name, x)
		if err != nil {
			return ParamValue{}, err
		}
		return Scalar(v), nil
	}
	if len(items) == 0 {
		return ParamValue{}, newValidationError(core.ErrInvalidParameterValue, []string{name},
			"parameter %q is an empty list", name)
	}
	vs := make([]Value, len(items))
	for i, item := range items {
		v, err := valueFromAny(name, item)
		if err != nil {
			return ParamValue{}, err
		}
		vs[i] = v
	}
	return PerVariable(vs...), nil
}

func (p ParamValue) describe() string {
	return fmt.Sprintf("%d value(s) %s", p.Len(), p.String())
}
