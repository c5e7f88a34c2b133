package paysheet

import (
	"fmt"
	"slices"
)

// confirmableStatuses are the statuses a client may still confirm
var confirmableStatuses = []PaymentIntentStatus{
	StatusRequiresPaymentMethod,
	StatusRequiresConfirmation,
}

// ValidatePaymentIntent checks that a PaymentIntent can be confirmed client-side.
// Status is checked before confirmation method.
func ValidatePaymentIntent(pi PaymentIntent) error {
	if !slices.Contains(confirmableStatuses, pi.Status) {
		return NewInitError(
			ErrCodeInvalidStatus,
			fmt.Sprintf("PaymentIntent %s has status %q, expected one of %v", pi.ID, pi.Status, confirmableStatuses),
			nil,
			map[string]interface{}{"paymentIntent": pi.ID, "status": string(pi.Status)},
		)
	}
	if pi.ConfirmationMethod == ConfirmationMethodManual {
		return NewInitError(
			ErrCodeInvalidConfirmationMethod,
			fmt.Sprintf("PaymentIntent %s uses manual confirmation, which requires server-side confirmation", pi.ID),
			nil,
			map[string]interface{}{"paymentIntent": pi.ID, "confirmationMethod": string(pi.ConfirmationMethod)},
		)
	}
	return nil
}

// allowedTypes filters the intent's type codes to the supported set, keeping intent order
func allowedTypes(pi PaymentIntent, supported []PaymentMethodType) []PaymentMethodType {
	result := make([]PaymentMethodType, 0, len(pi.PaymentMethodTypes))
	for _, code := range pi.PaymentMethodTypes {
		t := PaymentMethodType(code)
		if slices.Contains(supported, t) && !slices.Contains(result, t) {
			result = append(result, t)
		}
	}
	return result
}
