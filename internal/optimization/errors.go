package optimization

import (
	"errors"
	"fmt"
)

// Sentinel errors reported by the search packages. Wrapped values returned by
// this module always match one of them under errors.Is.
var (
	// ErrInvalidBounds is returned for empty bounds, non-finite limits or an
	// interval whose lower limit exceeds its upper limit.
	ErrInvalidBounds = errors.New("invalid bounds")
	// ErrDimensionMismatch is returned when a point or the objective's
	// expected input length disagrees with the number of bounds.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrNilObjective is returned when a problem carries no objective.
	ErrNilObjective = errors.New("objective function is nil")
	// ErrInfeasiblePoint is returned when a starting point lies outside the bounds.
	ErrInfeasiblePoint = errors.New("point outside bounds")
	// ErrInvalidConfig is returned for out-of-range algorithm parameters.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNonFiniteValue is returned when the objective yields NaN or an infinity.
	ErrNonFiniteValue = errors.New("objective returned a non-finite value")
)

// Error represents an optimization error with context
// that can be wrapped with additional information.
type Error struct {
	// Message describes the error that occurred.
	Message string
	// Op is the operation that caused the error.
	Op string
	// Component is the component where the error occurred.
	Component string
	// Err is the underlying error, usually one of the sentinels above.
	Err error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	prefix := e.Component
	switch {
	case e.Component != "" && e.Op != "":
		prefix = e.Component + ": " + e.Op
	case e.Op != "":
		prefix = e.Op
	}

	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		}
	}

	if prefix == "" {
		return msg
	}
	return prefix + ": " + msg
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithOperation adds operation context to the error.
func (e *Error) WithOperation(op string) *Error {
	e.Op = op
	return e
}

// WithComponent adds component context to the error.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// WrapErrorf wraps an existing error with additional formatted context.
// If err is nil, WrapErrorf returns nil.
func WrapErrorf(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}
