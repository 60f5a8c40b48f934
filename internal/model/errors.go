package model

import "fmt"

// AuthError means the session credentials were rejected. Retrying cannot
// succeed, so the run aborts immediately.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication rejected: %s", e.Reason)
}

// TransientIOError is a retryable failure: a timeout, a missing page element,
// temporary unavailability. Bounded retry applies before giving up.
type TransientIOError struct {
	Op  string
	Err error
}

func (e *TransientIOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientIOError) Unwrap() error { return e.Err }

// BetError means a parlay submission failed. The run completes and reports
// the pre-bet balance.
type BetError struct {
	Err error
}

func (e *BetError) Error() string {
	return fmt.Sprintf("bet submission failed: %v", e.Err)
}

func (e *BetError) Unwrap() error { return e.Err }

// DisableError means the scheduler disable call failed. Best-effort only:
// logged, never blocks the run outcome.
type DisableError struct {
	Err error
}

func (e *DisableError) Error() string {
	return fmt.Sprintf("disable workflow: %v", e.Err)
}

func (e *DisableError) Unwrap() error { return e.Err }

// Transient wraps err as a retryable failure attributed to op.
func Transient(op string, err error) *TransientIOError {
	return &TransientIOError{Op: op, Err: err}
}
