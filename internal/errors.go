package internal

import (
	"errors"
	"fmt"
)

// ErrAuthUnavailable signals that no bearer token is available; all store
// operations short-circuit without attempting remote calls.
var ErrAuthUnavailable = errors.New("auth unavailable: no bearer token")

// StoreError represents a failed remote store operation
type StoreError struct {
	Op   string // "find", "create-folder", "create-file", "list", "read"
	Name string // object name or ID involved
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s %s: %v", e.Op, e.Name, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// InitializationError represents a failure during the resolve/select/restore
// pipeline; the engine falls back to an in-memory-only session
type InitializationError struct {
	Stage string // "resolve", "select", "restore", "create"
	Err   error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialization failed [%s]: %v", e.Stage, e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// AppendError represents a single turn that failed to persist; the sequence
// counter is not advanced and the conversation continues unaffected
type AppendError struct {
	StepNumber int
	Err        error
}

func (e *AppendError) Error() string {
	return fmt.Sprintf("append failed [step %d]: %v", e.StepNumber, e.Err)
}

func (e *AppendError) Unwrap() error {
	return e.Err
}
