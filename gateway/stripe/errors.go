package stripegateway

import (
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v74"
)

// APIError is a Stripe API error response
type APIError struct {
	StatusCode int
	Type       string
	Code       string
	Message    string
	RequestID  string
	Err        error
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("stripe error (status %d, %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("stripe error (status %d, %s): %s", e.StatusCode, e.Type, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the request may succeed if repeated
func (e *APIError) Retryable() bool {
	return e.StatusCode == 409 || e.StatusCode == 429 || e.StatusCode >= 500
}

// wrapError converts *stripe.Error into *APIError and leaves other errors unchanged
func wrapError(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return err
	}
	return &APIError{
		StatusCode: stripeErr.HTTPStatusCode,
		Type:       string(stripeErr.Type),
		Code:       string(stripeErr.Code),
		Message:    stripeErr.Msg,
		RequestID:  stripeErr.RequestID,
		Err:        err,
	}
}
