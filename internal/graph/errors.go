package graph

import (
	"errors"
	"fmt"
)

// ConstructErrorCode categorizes construction failures.
type ConstructErrorCode string

const (
	// ErrCodeScopeEscape indicates a reference that does not resolve inside
	// its owning workflow scope.
	ErrCodeScopeEscape ConstructErrorCode = "SCOPE_ESCAPE"

	// ErrCodeParamConflict indicates a parameter redefined with a
	// conflicting type or default.
	ErrCodeParamConflict ConstructErrorCode = "PARAM_CONFLICT"

	// ErrCodeUnsupportedArgument indicates an argument that is neither a
	// serializable literal nor a traced call or captured parameter.
	ErrCodeUnsupportedArgument ConstructErrorCode = "UNSUPPORTED_ARGUMENT"

	// ErrCodeTaskConflict indicates two distinct callables claiming the
	// same task name.
	ErrCodeTaskConflict ConstructErrorCode = "TASK_CONFLICT"

	// ErrCodeEmptyBody indicates a nested composition or boundary without
	// a returned expression.
	ErrCodeEmptyBody ConstructErrorCode = "EMPTY_BODY"
)

// ConstructError is a fatal construction failure. It carries enough context
// to locate the triggering call node; construction is never retried.
type ConstructError struct {
	Code    ConstructErrorCode
	Message string
	// Subject names the offending task, parameter, or argument.
	Subject string
	Err     error
}

func (e *ConstructError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Subject)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ConstructError) Unwrap() error {
	return e.Err
}

// CodeOf extracts the construction error code, or empty for foreign errors.
func CodeOf(err error) ConstructErrorCode {
	var ce *ConstructError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

func constructErrf(code ConstructErrorCode, subject, format string, args ...any) *ConstructError {
	return &ConstructError{Code: code, Subject: subject, Message: fmt.Sprintf(format, args...)}
}
