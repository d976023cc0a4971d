package api

import (
	"climindex/adapters/specfile"
)

// ComputeBody is the payload of POST /v1/indices/compute: an indice
// definition plus the grids of its variables, each as [timestep][cell].
type ComputeBody struct {
	specfile.Document
	Arrays    map[string][][]float64 `json:"arrays"`
	TimeAxis  []string               `json:"time_axis,omitempty"`
	FillValue *float64               `json:"fill_value,omitempty"`
}

// ValidateResponse is returned for a definition that passed validation.
type ValidateResponse struct {
	Valid     bool     `json:"valid"`
	Variables []string `json:"variables"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string   `json:"error"`
	Code   string   `json:"code"`
	Params []string `json:"params,omitempty"`
}
