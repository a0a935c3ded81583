package message

import (
	"errors"
	"fmt"
)

// ErrNotFound marks store failures caused by a missing row. It is always
// wrapped in a *StoreError; match it with errors.Is.
var ErrNotFound = errors.New("no such message")

// StoreError is the single error channel of the gateway: any transport,
// query or constraint failure surfaces as one of these.
type StoreError struct {
	Op  string // the gateway operation that failed
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("message store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}
