// Package errors defines the coded error type used across the diagnostic
// CLI. Parsers never return errors (they are terminal error boundaries);
// these codes cover the orchestration surface around them: configuration,
// external command invocation, and persistence.
package errors

import (
	"context"
	"errors"
	"fmt"
)

type DiagError struct {
	Code    string
	Message string
	Target  string
	Cause   error
}

func (e *DiagError) Error() string {
	msg := e.Message
	if e.Target != "" {
		msg = fmt.Sprintf("%s (target %s)", msg, e.Target)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *DiagError) Unwrap() error { return e.Cause }

const (
	ErrCodeInvalidTarget   = "INVALID_TARGET"
	ErrCodeInvalidConfig   = "INVALID_CONFIG"
	ErrCodeCommandNotFound = "COMMAND_NOT_FOUND"
	ErrCodeCommandTimeout  = "COMMAND_TIMEOUT"
	ErrCodeStoreFailure    = "STORE_FAILURE"
	ErrCodeExportFailure   = "EXPORT_FAILURE"
	ErrCodeISPDetection    = "ISP_DETECTION_FAILED"
)

func ErrInvalidTarget(target string, cause error) *DiagError {
	return &DiagError{Code: ErrCodeInvalidTarget, Message: "invalid test target", Target: target, Cause: cause}
}

func ErrInvalidConfig(msg string, cause error) *DiagError {
	return &DiagError{Code: ErrCodeInvalidConfig, Message: msg, Cause: cause}
}

func ErrCommandNotFound(command string) *DiagError {
	return &DiagError{Code: ErrCodeCommandNotFound, Message: fmt.Sprintf("%q not found on PATH", command)}
}

func ErrCommandTimeout(command, target string) *DiagError {
	return &DiagError{Code: ErrCodeCommandTimeout, Message: fmt.Sprintf("%s timed out", command), Target: target}
}

func ErrStoreFailure(msg string, cause error) *DiagError {
	return &DiagError{Code: ErrCodeStoreFailure, Message: msg, Cause: cause}
}

func ErrExportFailure(format string, cause error) *DiagError {
	return &DiagError{Code: ErrCodeExportFailure, Message: fmt.Sprintf("export to %s failed", format), Cause: cause}
}

func ErrISPDetection(msg string, cause error) *DiagError {
	return &DiagError{Code: ErrCodeISPDetection, Message: msg, Cause: cause}
}

// IsContextError reports whether err is a cancellation or deadline from the
// surrounding context rather than a command failure.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
