package paysheet

import "strings"

// SavedSelection is the persisted or inferred pre-selection of a checkout session
// Variants: SelectionNone, SelectionGooglePay, SelectionSaved
type SavedSelection interface {
	isSavedSelection()
}

// SelectionNone means nothing is pre-selected
type SelectionNone struct{}

// SelectionGooglePay pre-selects Google Pay
type SelectionGooglePay struct{}

// SelectionSaved pre-selects a stored payment method
type SelectionSaved struct {
	PaymentMethodID string
}

func (SelectionNone) isSavedSelection()      {}
func (SelectionGooglePay) isSavedSelection() {}
func (SelectionSaved) isSavedSelection()     {}

const (
	encodedGooglePay     = "google_pay"
	encodedPaymentMethod = "payment_method:"
)

// EncodeSelection returns the string form stores persist
func EncodeSelection(selection SavedSelection) string {
	switch s := selection.(type) {
	case SelectionGooglePay:
		return encodedGooglePay
	case SelectionSaved:
		return encodedPaymentMethod + s.PaymentMethodID
	default:
		return ""
	}
}

// DecodeSelection parses a persisted value. Unknown or empty values decode to SelectionNone.
func DecodeSelection(value string) SavedSelection {
	switch {
	case value == encodedGooglePay:
		return SelectionGooglePay{}
	case strings.HasPrefix(value, encodedPaymentMethod):
		id := strings.TrimPrefix(value, encodedPaymentMethod)
		if id == "" {
			return SelectionNone{}
		}
		return SelectionSaved{PaymentMethodID: id}
	default:
		return SelectionNone{}
	}
}
