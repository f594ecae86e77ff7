package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrBridgeExited indicates the bridge process ended before answering.
	ErrBridgeExited = errors.New("conversion bridge exited unexpectedly")

	// ErrNoRemediation indicates no automatic fix is configured.
	ErrNoRemediation = errors.New("no remediation configured")
)

// ErrorCode identifies a class of pipeline failure.
type ErrorCode string

const (
	// ErrorCodeIncompatible is the known tensor-library version mismatch:
	// the pipeline asks the library for an attribute it does not have. An
	// upgrade fixes it, but only for a freshly started process.
	ErrorCodeIncompatible ErrorCode = "INCOMPATIBLE"

	// ErrorCodeFailure is any other error raised by the pipeline.
	ErrorCodeFailure ErrorCode = "PIPELINE_FAILURE"

	// ErrorCodeProtocol indicates a malformed bridge exchange.
	ErrorCodeProtocol ErrorCode = "PROTOCOL"

	// ErrorCodeUnavailable indicates the pipeline could not be started.
	ErrorCodeUnavailable ErrorCode = "UNAVAILABLE"

	ErrorCodeCanceled ErrorCode = "CANCELED"
	ErrorCodeTimeout  ErrorCode = "TIMEOUT"
)

// Error is a failure reported by or while talking to the pipeline.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	// Trace is the diagnostic trace reported by the pipeline, if any.
	Trace string
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	} else if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Op, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a pipeline error.
func NewError(code ErrorCode, op, message string, cause error) *Error {
	return &Error{Code: code, Op: op, Message: message, Cause: cause}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if
// there is none.
func CodeOf(err error) ErrorCode {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// TraceOf returns the pipeline's diagnostic trace for err, if it has one.
func TraceOf(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Trace
	}
	return ""
}

// IsIncompatible reports whether err is the known version mismatch.
func IsIncompatible(err error) bool {
	return CodeOf(err) == ErrorCodeIncompatible
}
