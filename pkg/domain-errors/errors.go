// Package domainerrors carries the typed rejection codes surfaced by the registry.
//
// Services return *Error values; adapters and stores return sentinel errors from
// pkg/platform/sentinel which services translate into a code here. Callers branch
// on codes with HasCode or Is, never on message text.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a rejection so callers can react without parsing messages.
type Code string

const (
	// CodeUnauthorized: caller lacks the capability or identity match.
	CodeUnauthorized Code = "unauthorized"
	// CodeNotFound: unknown company or user id.
	CodeNotFound Code = "not_found"
	// CodeInsufficientPayment: payment below the fee, or a zero prize.
	CodeInsufficientPayment Code = "insufficient_payment"
	// CodeEmptyCollection: award requested for a company with no members.
	CodeEmptyCollection Code = "empty_collection"
	// CodeZeroBalance: withdrawal requested with nothing pooled.
	CodeZeroBalance Code = "zero_balance"

	CodeValidation         Code = "validation"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeInvariantViolation Code = "invariant_violation"
	CodeUnavailable        Code = "unavailable"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal"
)

// Error is a coded domain error with an optional wrapped cause.
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

// New creates a coded error without a cause.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Newf is New with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the outermost *Error in the chain,
// or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether any *Error in the chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// Is is shorthand for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}
