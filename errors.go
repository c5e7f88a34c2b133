package paysheet

import (
	"errors"
	"fmt"
)

// InitError represents an initialization failure
type InitError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

func (e *InitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// Is matches another *InitError by code, so the sentinels below work with errors.Is
func (e *InitError) Is(target error) bool {
	t, ok := target.(*InitError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Error codes
const (
	ErrCodeTransport                 = "transport_error"
	ErrCodeInvalidStatus             = "invalid_status"
	ErrCodeInvalidConfirmationMethod = "invalid_confirmation_method"
	ErrCodeStore                     = "store_error"
	ErrCodeInvalidClientSecret       = "invalid_client_secret"
	ErrCodeAborted                   = "aborted"
)

// Sentinels for errors.Is
var (
	ErrTransport                 = &InitError{Code: ErrCodeTransport}
	ErrInvalidStatus             = &InitError{Code: ErrCodeInvalidStatus}
	ErrInvalidConfirmationMethod = &InitError{Code: ErrCodeInvalidConfirmationMethod}
	ErrStore                     = &InitError{Code: ErrCodeStore}
	ErrInvalidClientSecret       = &InitError{Code: ErrCodeInvalidClientSecret}
	ErrAborted                   = &InitError{Code: ErrCodeAborted}
)

// NewInitError creates a new initialization error
func NewInitError(code, message string, cause error, details map[string]interface{}) *InitError {
	return &InitError{
		Code:    code,
		Message: message,
		Details: details,
		Err:     cause,
	}
}

// AsInitError returns the *InitError in err's chain, or nil
func AsInitError(err error) *InitError {
	var initErr *InitError
	if errors.As(err, &initErr) {
		return initErr
	}
	return nil
}
