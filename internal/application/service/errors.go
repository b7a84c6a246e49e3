// Package service internal/application/service/errors.go
package service

import (
	"errors"
	"fmt"
)

// Fixed validation messages. They are safe to show to callers.
const (
	MsgMissingParameters = "missing required parameters"
	MsgInvalidDateRange  = "invalid date range"
	MsgMissingFields     = "missing required fields"
	MsgInvalidAmount     = "invalid amount"
	MsgInvalidType       = "invalid type"
	MsgInvalidCategory   = "invalid category"
	MsgInvalidDesc       = "invalid description"
	MsgInvalidMonth      = "invalid month"
	MsgInvalidUserID     = "invalid user id"
)

// ValidationError reports caller input that failed a precondition.
// No store request is issued when one is returned.
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, e.Field)
}

func newValidationError(message, field string) *ValidationError {
	return &ValidationError{Message: message, Field: field}
}

// UpstreamError reports a failure of the backing store. Err is for logs only.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsUpstreamError reports whether err is or wraps an UpstreamError
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
