package core

import (
	"errors"
	"fmt"
)

// ErrNotFound signals that an operation targeted a record id that does not
// exist in the store.
var ErrNotFound = errors.New("not found")

// ValidationError reports a missing or malformed required field. It is always
// recoverable and carries a field-level message for the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ConflictError reports a duplicate unique key, e.g. registering an expense
// type name that already exists.
type ConflictError struct {
	Resource string
	Key      string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Resource, e.Key)
}

// StoreError wraps an underlying storage failure with the operation that hit
// it. The raw message stays reachable through Unwrap.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
