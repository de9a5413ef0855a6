package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmptyInput        = errors.New("empty input")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrDegenerateVector  = errors.New("zero-magnitude vector")
)

// CollaboratorError reports a failed call to an external model service.
type CollaboratorError struct {
	Op    string // "embed" or "generate"
	Model string
	Err   error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s with %s: %v", e.Op, e.Model, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
