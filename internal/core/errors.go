package core

import (
	"errors"
	"fmt"
)

var (
	ErrComplaintNotFound = errors.New("complaint not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrForbidden         = errors.New("user does not have permission for this action")
	// ErrInvalidTransition is returned when STRICT_STATUS_WORKFLOW rejects a status change.
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrMailerDisabled    = errors.New("email sending is not configured")
)

// ValidationError names the first request field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalidField(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
