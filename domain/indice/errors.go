package indice

import (
	"fmt"
)

// ValidationError reports why an indice definition was rejected. Kind is one
// of the core.Err* sentinels and is matched with errors.Is.
type ValidationError struct {
	Kind    error
	Params  []string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func newValidationError(kind error, params []string, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Kind:    kind,
		Params:  params,
		Message: fmt.Sprintf(format, args...),
	}
}
