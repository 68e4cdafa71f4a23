// Package validation checks raw JSON-like values exchanged with the identity
// service and turns them into typed, fully validated values.
//
// Raw values are what encoding/json produces when decoding into an `any`
// (preferably with Decoder.UseNumber): map[string]any, []any, string,
// json.Number, float64, bool and nil.
package validation

import "fmt"

// Validator checks a raw value and returns its normalized form.
// Implementations hold no per-call state and are safe for concurrent use.
type Validator[T any] interface {
	Validate(raw any) (T, error)
}

// Error is the single failure type produced by validators.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

func errorf(format string, args ...any) *Error {
	return &Error{Reason: fmt.Sprintf(format, args...)}
}

func wrap(reason string, err error) *Error {
	return &Error{Reason: reason, Err: err}
}
