package wm

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a Registry operation wraps exactly one
// of these, so callers can branch with errors.Is.
var (
	// ErrInvalidReference means the window id is unknown or already closed.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrConflictingOperation means the request clashes with the current
	// gesture or window state, e.g. a second drag while one is active.
	ErrConflictingOperation = errors.New("conflicting operation")
	// ErrConstraintViolation means the request would break a geometry or
	// capability constraint such as the minimum size.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrResourceExhausted means no more window ids can be allocated.
	ErrResourceExhausted = errors.New("resource exhausted")
)

// OpError describes a rejected registry operation.
type OpError struct {
	Op     string
	ID     WindowID
	Err    error
	Detail string
}

func (e *OpError) Error() string {
	msg := "wm: " + e.Op
	if e.ID != 0 {
		msg += fmt.Sprintf(" window %d", e.ID)
	}
	msg += ": " + e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *OpError) Unwrap() error { return e.Err }

func opErr(op string, id WindowID, kind error, format string, args ...any) error {
	return &OpError{Op: op, ID: id, Err: kind, Detail: fmt.Sprintf(format, args...)}
}

// Error codes used when an error crosses a process boundary.
const (
	CodeInvalidReference     = "invalid_reference"
	CodeConflictingOperation = "conflicting_operation"
	CodeConstraintViolation  = "constraint_violation"
	CodeResourceExhausted    = "resource_exhausted"
)

var codeKinds = map[string]error{
	CodeInvalidReference:     ErrInvalidReference,
	CodeConflictingOperation: ErrConflictingOperation,
	CodeConstraintViolation:  ErrConstraintViolation,
	CodeResourceExhausted:    ErrResourceExhausted,
}

// Code returns the wire code for err's kind, or "" if err is not a registry
// error.
func Code(err error) string {
	for code, kind := range codeKinds {
		if errors.Is(err, kind) {
			return code
		}
	}
	return ""
}

// ErrorFromCode rebuilds an error that wraps the kind named by code. Unknown
// codes produce a plain error.
func ErrorFromCode(code, msg string) error {
	if kind, ok := codeKinds[code]; ok {
		return fmt.Errorf("%s: %w", msg, kind)
	}
	return errors.New(msg)
}
