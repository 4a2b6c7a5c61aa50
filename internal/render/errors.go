package render

import (
	"errors"
	"fmt"
)

// RenderErrorCode categorizes rendering failures.
type RenderErrorCode string

const (
	// ErrCodeTypeError indicates a raw value whose type the active
	// renderer cannot represent under the current configuration.
	// Recoverable by re-rendering with a different configuration.
	ErrCodeTypeError RenderErrorCode = "TYPE_ERROR"

	// ErrCodeUnsupportedMode indicates a renderer failing the capability
	// check at registration.
	ErrCodeUnsupportedMode RenderErrorCode = "UNSUPPORTED_MODE"

	// ErrCodeUnknownRenderer indicates a lookup for an unregistered name.
	ErrCodeUnknownRenderer RenderErrorCode = "UNKNOWN_RENDERER"
)

// RenderError is a fatal failure of a single render call. The workflow
// itself is untouched; the same workflow may be re-rendered with a
// different configuration.
type RenderError struct {
	Code    RenderErrorCode
	Message string
	// Subject names the offending value, option, or renderer.
	Subject string
}

func (e *RenderError) Error() string {
	if e.Subject != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Subject)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsTypeError reports whether err is a renderer type error.
func IsTypeError(err error) bool {
	var re *RenderError
	return errors.As(err, &re) && re.Code == ErrCodeTypeError
}
