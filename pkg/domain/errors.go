package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no post matches the given id
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID is returned when an id cannot be parsed into the store key type
	ErrInvalidID = errors.New("invalid document id")
)

// ConnectionError reports that the store could not be reached or authenticated against
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("store connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ValidationError reports malformed or missing client input
type ValidationError struct {
	Fields []string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s %s", strings.Join(e.Fields, ", "), e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StoreError wraps any other failure of a store operation
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
