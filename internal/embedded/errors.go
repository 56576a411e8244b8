package embedded

import (
	"errors"
	"fmt"
)

var (
	// ErrMarkerNotFound matches both ErrVariableNotFound and
	// ErrTerminatorNotFound.
	ErrMarkerNotFound = errors.New("assignment marker not found")

	// ErrVariableNotFound means no script contains the variable assignment.
	ErrVariableNotFound = fmt.Errorf("%w: no script assigns the variable", ErrMarkerNotFound)

	// ErrTerminatorNotFound means the assignment has no ';' after it.
	ErrTerminatorNotFound = fmt.Errorf("%w: no ';' after assignment", ErrMarkerNotFound)
)

// DecodeError reports JSON that could not be decoded into an array of objects.
type DecodeError struct {
	Variable string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Variable, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// FieldError reports a record that is missing a field or has it mistyped.
type FieldError struct {
	Variable string
	Index    int
	Field    string
	Missing  bool
	Err      error
}

func (e *FieldError) Error() string {
	if e.Missing {
		return fmt.Sprintf("%s[%d]: missing field %q", e.Variable, e.Index, e.Field)
	}
	return fmt.Sprintf("%s[%d]: field %q: %v", e.Variable, e.Index, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
