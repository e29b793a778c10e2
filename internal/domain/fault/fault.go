// Package fault carries the domain error taxonomy: validation failures are
// rejected before any state change, state conflicts reject transitions on
// terminal or already-materialized state, and arithmetic invariant faults
// flag a reconciliation the schedule math must never produce.
package fault

import (
	"errors"
	"fmt"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

type StateConflictError struct {
	Code string `json:"code"`
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("state_conflict: %s", e.Code)
}

func Conflict(code string) error {
	return &StateConflictError{Code: code}
}

type ArithmeticInvariantError struct {
	Detail string
}

func (e *ArithmeticInvariantError) Error() string {
	return fmt.Sprintf("arithmetic_invariant: %s", e.Detail)
}

func Arithmetic(format string, args ...any) error {
	return &ArithmeticInvariantError{Detail: fmt.Sprintf(format, args...)}
}

var ErrNotFound = errors.New("not_found")

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsConflict(err error) bool {
	var c *StateConflictError
	return errors.As(err, &c)
}

func IsArithmetic(err error) bool {
	var a *ArithmeticInvariantError
	return errors.As(err, &a)
}
