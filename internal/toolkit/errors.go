package toolkit

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTool is returned when no tool has the requested name.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrMissingInput is returned when a required input is absent.
	ErrMissingInput = errors.New("missing input")

	// ErrInvalidInput is returned when an input cannot be parsed or is out of range.
	ErrInvalidInput = errors.New("invalid input")
)

// OperationError wraps a failure of a specific tool.
type OperationError struct {
	Tool string
	Err  error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Tool, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func invalidInput(name string, format string, args ...interface{}) error {
	return fmt.Errorf("%w %s: %s", ErrInvalidInput, name, fmt.Sprintf(format, args...))
}
