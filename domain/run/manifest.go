package run

import (
	"fmt"

	"climindex/domain/core"
	"climindex/domain/grid"
	"climindex/domain/indice"
)

// Manifest describes one indice computation. It is returned next to the
// result so a run can be traced back to its resolved definition.
type Manifest struct {
	RunID         core.RunID         `json:"run_id"`
	IndiceName    string             `json:"indice_name"`
	CalcOperation string             `json:"calc_operation"`
	IndiceType    indice.IndiceType  `json:"indice_type"`
	Variables     []core.VariableKey `json:"variables"`
	SpecHash      core.SpecHash      `json:"spec_hash"`
	Fingerprint   RunFingerprint     `json:"fingerprint"`
	CreatedAt     core.Timestamp     `json:"created_at"`
}

// NewManifest creates the manifest of a run over a resolved indice
func NewManifest(resolved *indice.ResolvedIndiceSpec, unit grid.OutUnit, fillValue float64, kernelVersion string) *Manifest {
	return &Manifest{
		RunID:         core.NewRunID(),
		IndiceName:    resolved.IndiceName,
		CalcOperation: resolved.CalcOperation.String(),
		IndiceType:    resolved.Type,
		Variables:     resolved.Variables(),
		SpecHash:      resolved.Hash,
		Fingerprint:   NewRunFingerprint(resolved.Hash, unit, fillValue, kernelVersion),
		CreatedAt:     core.Now(),
	}
}

// Validate checks if the manifest is complete
func (m *Manifest) Validate() error {
	if core.ID(m.RunID).IsEmpty() {
		return fmt.Errorf("%w: run_id cannot be empty", core.ErrContractViolation)
	}
	if m.IndiceName == "" {
		return fmt.Errorf("%w: indice_name cannot be empty", core.ErrContractViolation)
	}
	if len(m.Variables) == 0 {
		return fmt.Errorf("%w: manifest has no variables", core.ErrContractViolation)
	}
	if m.SpecHash == "" {
		return fmt.Errorf("%w: spec_hash cannot be empty", core.ErrContractViolation)
	}
	return nil
}
