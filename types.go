package paysheet

import (
	"fmt"
	"strings"
)

// ClientSecret identifies a PaymentIntent session
// Stripe secrets have the form <intent id>_secret_<token> (e.g., "pi_123_secret_abc")
type ClientSecret string

const clientSecretSeparator = "_secret_"

// PaymentIntentID returns the PaymentIntent id embedded in the secret.
// ok is false when the secret does not embed one.
func (s ClientSecret) PaymentIntentID() (id string, ok bool) {
	id, token, found := strings.Cut(string(s), clientSecretSeparator)
	if !found || token == "" || !strings.HasPrefix(id, "pi_") || len(id) == len("pi_") {
		return "", false
	}
	return id, true
}

// Validate checks that the secret is usable at all. The format is left to the Gateway.
func (s ClientSecret) Validate() error {
	if strings.TrimSpace(string(s)) == "" {
		return fmt.Errorf("client secret cannot be blank")
	}
	return nil
}

// PaymentIntentStatus is the server-side lifecycle state of a PaymentIntent
type PaymentIntentStatus string

const (
	StatusRequiresPaymentMethod PaymentIntentStatus = "requires_payment_method"
	StatusRequiresConfirmation  PaymentIntentStatus = "requires_confirmation"
	StatusRequiresAction        PaymentIntentStatus = "requires_action"
	StatusProcessing            PaymentIntentStatus = "processing"
	StatusRequiresCapture       PaymentIntentStatus = "requires_capture"
	StatusCanceled              PaymentIntentStatus = "canceled"
	StatusSucceeded             PaymentIntentStatus = "succeeded"
)

// ConfirmationMethod controls who may confirm a PaymentIntent
type ConfirmationMethod string

const (
	ConfirmationMethodAutomatic ConfirmationMethod = "automatic"
	ConfirmationMethodManual    ConfirmationMethod = "manual"
)

// PaymentMethodType is a payment method type code (e.g., "card")
type PaymentMethodType string

const (
	PaymentMethodTypeCard PaymentMethodType = "card"
)

// DefaultSupportedTypes are the payment method types the sheet can present
var DefaultSupportedTypes = []PaymentMethodType{PaymentMethodTypeCard}

// GooglePayEnvironment selects the Google Pay backend
type GooglePayEnvironment string

const (
	GooglePayEnvironmentProduction GooglePayEnvironment = "production"
	GooglePayEnvironmentTest       GooglePayEnvironment = "test"
)

// CustomerConfig identifies whose saved payment methods to list
type CustomerConfig struct {
	// ID is the customer id (e.g., "cus_123")
	ID string `json:"id"`

	// EphemeralKeySecret authorizes customer-scoped reads
	EphemeralKeySecret string `json:"ephemeralKeySecret"`
}

// GooglePayConfig enables Google Pay as an express option
type GooglePayConfig struct {
	Environment GooglePayEnvironment `json:"environment"`
	CountryCode string               `json:"countryCode,omitempty"`
}

// Configuration is the optional per-session configuration supplied by the host
type Configuration struct {
	MerchantDisplayName string           `json:"merchantDisplayName,omitempty"`
	Customer            *CustomerConfig  `json:"customer,omitempty"`
	GooglePay           *GooglePayConfig `json:"googlePay,omitempty"`
}

// CustomerID returns the configured customer id, or "" for guest sessions
func (c *Configuration) CustomerID() string {
	if c == nil || c.Customer == nil {
		return ""
	}
	return c.Customer.ID
}

// GooglePayEnvironment returns the configured Google Pay environment, or "" when disabled
func (c *Configuration) GooglePayEnvironment() GooglePayEnvironment {
	if c == nil || c.GooglePay == nil {
		return ""
	}
	return c.GooglePay.Environment
}

// RequestOptions scopes a gateway call
type RequestOptions struct {
	// APIKey is the publishable key or a customer ephemeral key
	APIKey string

	// StripeAccount is the optional connected account id
	StripeAccount string
}

// PaymentIntent is a point-in-time read of a server-side PaymentIntent
type PaymentIntent struct {
	ID                 string              `json:"id"`
	ClientSecret       ClientSecret        `json:"clientSecret"`
	Status             PaymentIntentStatus `json:"status"`
	ConfirmationMethod ConfirmationMethod  `json:"confirmationMethod"`
	PaymentMethodTypes []string            `json:"paymentMethodTypes"`
	Amount             int64               `json:"amount"`
	Currency           string              `json:"currency"`
	Livemode           bool                `json:"livemode"`
}

// CardDetails is the display metadata of a card payment method
type CardDetails struct {
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"expMonth"`
	ExpYear  int    `json:"expYear"`
}

// PaymentMethod is a customer's stored payment method
type PaymentMethod struct {
	ID      string            `json:"id"`
	Type    PaymentMethodType `json:"type"`
	Card    *CardDetails      `json:"card,omitempty"`
	Created int64             `json:"created"`
}

// InitData is the immutable outcome of a successful initialization
type InitData struct {
	Config         *Configuration
	PaymentIntent  PaymentIntent
	AllowedTypes   []PaymentMethodType
	PaymentMethods []PaymentMethod
	SavedSelection SavedSelection
}
