package errors

import (
	"fmt"
	"strings"
)

// ValidationError represents a single rejected configuration field.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// ConfigValidationError wraps every field error found while validating configuration.
type ConfigValidationError struct {
	Errors []*ValidationError
}

func (e *ConfigValidationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "configuration validation failed"
	case 1:
		return fmt.Sprintf("configuration validation failed: %v", e.Errors[0])
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("configuration validation failed with %d errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual field errors to errors.Is/As.
func (e *ConfigValidationError) Unwrap() []error {
	out := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		out[i] = err
	}
	return out
}
