package indice

import (
	"sort"

	"climindex/domain/core"
)

// RawIndiceSpec is a user indice definition before validation. It is
// immutable: constructors copy their input.
type RawIndiceSpec struct {
	params map[string]ParamValue
}

// NewRawIndiceSpec canonicalizes parameter aliases. Supplying an alias together
// with its canonical name is rejected.
func NewRawIndiceSpec(params map[string]ParamValue) (RawIndiceSpec, error) {
	out := make(map[string]ParamValue, len(params))
	for name, v := range params {
		canonical := CanonicalParam(name)
		if _, dup := out[canonical]; dup {
			return RawIndiceSpec{}, newValidationError(core.ErrInvalidParameterValue, []string{canonical},
				"parameter %q given more than once (check aliases)", canonical)
		}
		out[canonical] = v
	}
	return RawIndiceSpec{params: out}, nil
}

// ParseRawIndiceSpec builds a spec from decoded JSON or YAML, where a list
// value means one entry per variable.
func ParseRawIndiceSpec(m map[string]interface{}) (RawIndiceSpec, error) {
	params := make(map[string]ParamValue, len(m))
	for name, x := range m {
		v, err := paramValueFromAny(name, x)
		if err != nil {
			return RawIndiceSpec{}, err
		}
		params[name] = v
	}
	return NewRawIndiceSpec(params)
}

// MustRawIndiceSpec is NewRawIndiceSpec for literals in tests and examples.
func MustRawIndiceSpec(params map[string]ParamValue) RawIndiceSpec {
	spec, err := NewRawIndiceSpec(params)
	if err != nil {
		panic(err)
	}
	return spec
}

// Get returns the value of a parameter by canonical or alias name.
func (s RawIndiceSpec) Get(name string) (ParamValue, bool) {
	v, ok := s.params[CanonicalParam(name)]
	return v, ok
}

// Has reports whether a parameter is present.
func (s RawIndiceSpec) Has(name string) bool {
	_, ok := s.Get(name)
	return ok
}

// Names returns the canonical parameter names, sorted.
func (s RawIndiceSpec) Names() []string {
	names := make([]string, 0, len(s.params))
	for name := range s.params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len is the number of parameters.
func (s RawIndiceSpec) Len() int { return len(s.params) }

// ToMap renders the raw indice spec back to plain values, lists for per-variable parameters.
func (s RawIndiceSpec) ToMap() map[string]interface{} {
	out := make(map[string]interface{}, len(s.params))
	for name, p := range s.params {
		if !p.IsPerVariable() {
			out[name] = p.scalar.Interface()
			continue
		}
		items := make([]interface{}, len(p.list))
		for i, v := range p.list {
			items[i] = v.Interface()
		}
		out[name] = items
	}
	return out
}

func (s RawIndiceSpec) fingerprint() map[string]string {
	out := make(map[string]string, len(s.params))
	for name, p := range s.params {
		out[name] = p.String()
	}
	return out
}

// scalarString returns a scalar string parameter.
func (s RawIndiceSpec) scalarString(name string) (string, bool) {
	p, ok := s.Get(name)
	if !ok {
		return "", false
	}
	v, ok := p.Scalar()
	if !ok {
		return "", false
	}
	return v.Str()
}
