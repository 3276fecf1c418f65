package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Code classifies an engine failure so callers can react without parsing messages
type Code string

const (
	CodeValidation  Code = "VALIDATION"
	CodeNotFound    Code = "NOT_FOUND"
	CodeConsistency Code = "CONSISTENCY"
	CodeTransient   Code = "TRANSIENT"
)

// Error is the error type returned by every engine operation
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports an invalid input or an already-terminal state
func Validation(format string, args ...interface{}) error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing plan, instance, subscription or transaction
func NotFound(format string, args ...interface{}) error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Consistency reports a downstream record that should exist but does not
func Consistency(format string, args ...interface{}) error {
	return &Error{Code: CodeConsistency, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code carried by err, or "" when err is not an engine error
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsCode reports whether err carries the given code
func IsCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// transientPgCodes are postgres SQLSTATEs that are safe to retry
var transientPgCodes = map[string]bool{
	"40001": true, // serialization_failure
	"40P01": true, // deadlock_detected
	"57P01": true, // admin_shutdown
	"53300": true, // too_many_connections
}

// FromStore wraps a storage error into the taxonomy.
// Errors already carrying a code are returned unchanged.
func FromStore(err error, what string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Code: CodeNotFound, Message: what + " not found", Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return &Error{Code: CodeTransient, Message: "storage timeout", Err: err}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08: connection exception
		if transientPgCodes[pgErr.Code] || (len(pgErr.Code) == 5 && pgErr.Code[:2] == "08") {
			return &Error{Code: CodeTransient, Message: "storage unavailable", Err: err}
		}
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return &Error{Code: CodeTransient, Message: "storage unreachable", Err: err}
	}
	return fmt.Errorf("%s: %w", what, err)
}
