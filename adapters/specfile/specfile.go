package specfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"climindex/domain/core"
	"climindex/domain/indice"
	"climindex/internal/errors"

	"gopkg.in/yaml.v3"
)

// Format is the encoding of an indice definition.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Document is the on-disk and on-the-wire shape of an indice definition.
type Document struct {
	Indice     map[string]interface{} `yaml:"indice" json:"indice"`
	Variables  []string               `yaml:"variables" json:"variables"`
	BasePeriod *Period                `yaml:"base_period,omitempty" json:"base_period,omitempty"`
	OutUnit    string                 `yaml:"out_unit,omitempty" json:"out_unit,omitempty"`
	// Inputs maps each variable to the files holding its grid.
	Inputs map[string][]string `yaml:"inputs,omitempty" json:"inputs,omitempty"`
}

// Period is an inclusive date range written as YYYY-MM-DD strings.
type Period struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// Definition is a decoded indice definition ready for the service.
type Definition struct {
	Spec      indice.RawIndiceSpec
	Variables []core.VariableKey
	TimeRange *core.TimeRange
	OutUnit   string
	Inputs    map[core.VariableKey][]string
}

// Load reads a definition file; the format follows the extension.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.InvalidInput(err.Error()), "failed to read indice definition %s", path)
	}

	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}
	return Parse(data, format)
}

// Parse decodes a definition. Syntax errors are INVALID_INPUT app errors,
// parameter errors are the domain validation errors.
func Parse(data []byte, format Format) (*Definition, error) {
	var doc Document
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("invalid JSON indice definition: %v", err))
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("invalid YAML indice definition: %v", err))
		}
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unknown definition format %q", format))
	}
	return doc.Definition()
}

// Definition converts the decoded document.
func (d Document) Definition() (*Definition, error) {
	spec, err := indice.ParseRawIndiceSpec(d.Indice)
	if err != nil {
		return nil, err
	}

	variables := make([]core.VariableKey, 0, len(d.Variables))
	for _, name := range d.Variables {
		v, err := core.ParseVariableKey(name)
		if err != nil {
			return nil, errors.InvalidInput(err.Error())
		}
		variables = append(variables, v)
	}

	def := &Definition{
		Spec:      spec,
		Variables: variables,
		OutUnit:   d.OutUnit,
	}

	if d.BasePeriod != nil {
		r, err := d.BasePeriod.TimeRange()
		if err != nil {
			return nil, err
		}
		def.TimeRange = &r
	}

	if len(d.Inputs) > 0 {
		def.Inputs = make(map[core.VariableKey][]string, len(d.Inputs))
		for name, files := range d.Inputs {
			def.Inputs[core.VariableKey(name)] = files
		}
	}
	return def, nil
}

// TimeRange parses the period bounds. Both days are included, so the range
// ends at the last instant of End.
func (p Period) TimeRange() (core.TimeRange, error) {
	start, err := time.Parse(time.DateOnly, strings.TrimSpace(p.Start))
	if err != nil {
		return core.TimeRange{}, errors.InvalidInput(fmt.Sprintf("base_period start %q: expected YYYY-MM-DD", p.Start))
	}
	end, err := time.Parse(time.DateOnly, strings.TrimSpace(p.End))
	if err != nil {
		return core.TimeRange{}, errors.InvalidInput(fmt.Sprintf("base_period end %q: expected YYYY-MM-DD", p.End))
	}
	r, err := core.NewTimeRange(start, end.AddDate(0, 0, 1).Add(-time.Nanosecond))
	if err != nil {
		return core.TimeRange{}, errors.InvalidInput(err.Error())
	}
	return r, nil
}
