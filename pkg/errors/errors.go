// Package errors defines the coded error type shared by the CLI, the
// pipeline and the preview server.
//
// Every failure that crosses a package boundary carries a [Code], so
// the server can map it to an HTTP status and the CLI can decide
// between "fix your flags" and "the blog is down" without string
// matching. Codes group by prefix: INVALID_* for rejected input,
// *_NOT_FOUND for missing resources, the rest for network, parse and
// internal failures.
//
//	err := errors.New(errors.ErrCodeInvalidCategory, "no such category %q", key)
//	if errors.Is(err, errors.ErrCodeInvalidCategory) {
//	    ...
//	}
//
// [Wrap] keeps the cause on the chain, so stdlib errors.Is and
// errors.As keep working through coded errors.
package errors

import (
	"errors"
	"fmt"
)

// Code identifies a failure class. Codes are stable strings; they
// appear in JSON error responses and in --verbose log output.
type Code string

const (
	// Rejected input.
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidCategory Code = "INVALID_CATEGORY"
	ErrCodeInvalidCard     Code = "INVALID_CARD"
	ErrCodeInvalidViewport Code = "INVALID_VIEWPORT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"
	ErrCodeInvalidPage     Code = "INVALID_PAGE"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Missing resources.
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodePageNotFound     Code = "PAGE_NOT_FOUND"
	ErrCodeCategoryNotFound Code = "CATEGORY_NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"

	// Upstream failures.
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Malformed documents and payloads.
	ErrCodeParse      Code = "PARSE_ERROR"
	ErrCodeBadPayload Code = "BAD_PAYLOAD"

	// Engine state.
	ErrCodeLimitExceeded Code = "LIMIT_EXCEEDED"
	ErrCodeExhausted     Code = "EXHAUSTED"

	// Everything else.
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error pairs a code with a human-readable message and an optional
// cause. The code prefixes the error string, so logs stay greppable
// by failure class.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause to stdlib errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds a coded error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap builds a coded error around cause. The cause stays reachable
// through Unwrap.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err carries the given code. The outermost coded
// error on the chain decides; a wrapped inner code does not match.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns err's code, or the empty Code for plain errors
// and nil.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix, suitable
// for terminal output. Plain errors pass through unchanged.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// RateLimitedError reports a 429 from the origin along with how long
// it asked us to wait.
type RateLimitedError struct {
	RetryAfter int // seconds, 0 when the origin did not say
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns ErrCodeRateLimited so coded-error handling sees rate
// limits without a dedicated type check.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
