// SPDX-License-Identifier: MIT
package analysis

import (
	"encoding/json"
	"errors"
)

// Result is either a computed report or the error that prevented it.
type Result[T any] struct {
	value *T
	err   error
}

// Ok wraps a computed report.
func Ok[T any](v *T) Result[T] {
	return Result[T]{value: v}
}

// Fail wraps the cause of a failed analysis. A nil cause is recorded as
// ErrInsufficientData so a failed Result is never mistaken for a success.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = ErrInsufficientData
	}
	return Result[T]{err: err}
}

// From builds a Result from an analyzer's return values.
func From[T any](v *T, err error) Result[T] {
	if err != nil || v == nil {
		return Fail[T](err)
	}
	return Ok(v)
}

// Available reports whether the report was computed.
func (r Result[T]) Available() bool { return r.err == nil && r.value != nil }

// Value returns the report, or nil when unavailable.
func (r Result[T]) Value() *T { return r.value }

// Err returns the failure cause, or nil when available.
func (r Result[T]) Err() error {
	if r.Available() {
		return nil
	}
	if r.err == nil {
		return ErrInsufficientData
	}
	return r.err
}

// Cause returns the human-readable failure cause, or "" when available.
func (r Result[T]) Cause() string {
	if err := r.Err(); err != nil {
		return err.Error()
	}
	return ""
}

// Is reports whether the failure matches target.
func (r Result[T]) Is(target error) bool {
	return errors.Is(r.Err(), target)
}

// MarshalJSON encodes the report itself, or {"error": cause}.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.Available() {
		return json.Marshal(r.value)
	}
	return json.Marshal(struct {
		Error string `json:"error"`
	}{r.Cause()})
}
