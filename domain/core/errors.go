package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Indice definition errors
	ErrInvalidIndice            = errors.New("invalid indice definition")
	ErrMissingField             = fmt.Errorf("%w: missing field", ErrInvalidIndice)
	ErrMissingRequiredParameter = fmt.Errorf("%w: missing required parameter", ErrInvalidIndice)
	ErrMissingVariableType      = fmt.Errorf("%w: missing variable type", ErrInvalidIndice)
	ErrMissingTimeRange         = fmt.Errorf("%w: missing time range", ErrInvalidIndice)
	ErrArityMismatch            = fmt.Errorf("%w: arity mismatch", ErrInvalidIndice)
	ErrMissingLinkOperation     = fmt.Errorf("%w: missing link logical operation", ErrInvalidIndice)
	ErrUnknownOperation         = fmt.Errorf("%w: unknown operation", ErrInvalidIndice)
	ErrUnknownParameter         = fmt.Errorf("%w: unknown parameter", ErrInvalidIndice)
	ErrInvalidParameterValue    = fmt.Errorf("%w: invalid parameter value", ErrInvalidIndice)
	ErrUnsupportedMultivariable = fmt.Errorf("%w: operation does not support multiple variables", ErrInvalidIndice)
	ErrInconsistentField        = fmt.Errorf("%w: field must be identical for all variables", ErrInvalidIndice)
	ErrNoVariables              = fmt.Errorf("%w: no target variables", ErrInvalidIndice)

	// Kernel errors
	ErrInvalidInputShape = errors.New("invalid input shape")
	ErrMissingThreshold  = errors.New("percentile threshold not supplied")

	// Internal contract violations (normalization of an unvalidated spec)
	ErrContractViolation = errors.New("internal contract violation")
)

// NewShapeError reports a kernel input whose dimensions do not line up.
func NewShapeError(what string, got, want int) error {
	return fmt.Errorf("%w: %s has %d, expected %d", ErrInvalidInputShape, what, got, want)
}

// NewContractError reports a normalizer or dispatcher invariant that an
// earlier validation step should have guaranteed.
func NewContractError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrContractViolation, fmt.Sprintf(format, args...))
}

// Error checking helpers
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidIndice)
}

func IsShapeError(err error) bool {
	return errors.Is(err, ErrInvalidInputShape) || errors.Is(err, ErrMissingThreshold)
}
