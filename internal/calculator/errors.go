package calculator

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is returned when the recipe cannot be used, e.g. a non-positive pizzas-per-kg divisor.
	ErrInvalidConfiguration = errors.New("invalid recipe configuration")
	// ErrInvalidInput is returned when eater types or the hydration percentage are out of range.
	ErrInvalidInput = errors.New("invalid calculation input")
)

// ValidationError describes which field failed validation. Kind is one of the
// sentinel errors above and is exposed through Unwrap for errors.Is checks.
type ValidationError struct {
	Kind   error
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s %s", e.Kind, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func invalidConfig(field, reason string) error {
	return &ValidationError{Kind: ErrInvalidConfiguration, Field: field, Reason: reason}
}

func invalidInput(field, reason string) error {
	return &ValidationError{Kind: ErrInvalidInput, Field: field, Reason: reason}
}
