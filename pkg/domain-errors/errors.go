// Package domainerrors carries coded failures from services to transports.
//
// Every registry failure is reported as exactly one Code. Transports map the
// code to a status; callers branch on it with HasCode rather than on messages.
package domainerrors

import (
	"errors"
)

// Code identifies a class of failure.
type Code string

// Registry failure codes.
const (
	CodeNotAuthorized   Code = "not_authorized"
	CodeInvalidInvoice  Code = "invalid_invoice"
	CodeInvoiceExists   Code = "invoice_exists"
	CodeInvoiceNotFound Code = "invoice_not_found"
	CodePaused          Code = "paused"
	CodeZeroAddress     Code = "zero_address"
	CodeInvalidStatus   Code = "invalid_status"
	CodeAlreadyVerified Code = "already_verified"
	// CodeOracleFailure is reserved for oracle integrations; the registry never returns it.
	CodeOracleFailure Code = "oracle_failure"
)

// Transport and infrastructure codes.
const (
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeTimeout      Code = "timeout"
	CodeInternal     Code = "internal_error"
)

// Error is a coded failure with an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns a coded error without a cause.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) error {
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether the outermost coded error in err's chain has the given code.
func HasCode(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// CodeOf returns the code of the outermost coded error in err's chain.
func CodeOf(err error) (Code, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Code, true
	}
	return "", false
}
