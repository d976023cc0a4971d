package run

import (
	"crypto/sha256"
	"fmt"

	"climindex/domain/core"
	"climindex/domain/grid"
)

// RunFingerprint identifies the inputs that determine a computation's result
type RunFingerprint struct {
	SpecHash      core.SpecHash `json:"spec_hash"`
	OutUnit       grid.OutUnit  `json:"out_unit"`
	FillValue     float64       `json:"fill_value"`
	KernelVersion string        `json:"kernel_version"`
	Fingerprint   core.Hash     `json:"fingerprint"` // Hash of all above
}

// NewRunFingerprint creates a fingerprint from determinism parameters
func NewRunFingerprint(specHash core.SpecHash, outUnit grid.OutUnit, fillValue float64, kernelVersion string) RunFingerprint {
	return RunFingerprint{
		SpecHash:      specHash,
		OutUnit:       outUnit,
		FillValue:     fillValue,
		KernelVersion: kernelVersion,
		Fingerprint:   computeRunFingerprint(specHash, outUnit, fillValue, kernelVersion),
	}
}

func computeRunFingerprint(specHash core.SpecHash, outUnit grid.OutUnit, fillValue float64, kernelVersion string) core.Hash {
	data := fmt.Sprintf("spec:%s|unit:%s|fill:%g|kernels:%s", specHash, outUnit, fillValue, kernelVersion)
	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}
