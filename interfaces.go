package paysheet

import "context"

// ============================================================================
// Collaborator Interfaces
// ============================================================================

// Gateway retrieves server state. Implementations own transport, decoding and retries.
type Gateway interface {
	// FetchPaymentIntent retrieves the PaymentIntent the secret belongs to
	FetchPaymentIntent(ctx context.Context, secret ClientSecret, opts RequestOptions) (PaymentIntent, error)

	// ListPaymentMethods lists a customer's payment methods of one type.
	// The server's response order must be preserved.
	ListPaymentMethods(ctx context.Context, customerID string, methodType PaymentMethodType, opts RequestOptions) ([]PaymentMethod, error)
}

// SelectionStore persists a customer's last-used selection.
// Implementations must be safe for concurrent use.
type SelectionStore interface {
	// GetSelection returns the persisted selection, or SelectionNone{} when
	// nothing was ever saved for the customer
	GetSelection(ctx context.Context, customerID string) (SavedSelection, error)

	// SaveSelection upserts the customer's selection. Must be idempotent.
	SaveSelection(ctx context.Context, customerID string, selection SavedSelection) error
}

// GooglePayRepository reports whether Google Pay can be offered
type GooglePayRepository interface {
	IsReady(ctx context.Context) (bool, error)
}

// GooglePayRepositoryFactory builds a repository for a configured environment.
// It is only called when the session configures Google Pay.
type GooglePayRepositoryFactory func(env GooglePayEnvironment) GooglePayRepository

// DisabledGooglePay is used when the session does not configure Google Pay
type DisabledGooglePay struct{}

// IsReady always reports false
func (DisabledGooglePay) IsReady(context.Context) (bool, error) {
	return false, nil
}

// StaticGooglePay reports a fixed readiness, for hosts that resolve readiness up front
type StaticGooglePay bool

// IsReady returns the fixed readiness
func (s StaticGooglePay) IsReady(context.Context) (bool, error) {
	return bool(s), nil
}

// defaultGooglePayFactory treats any configured environment as ready
func defaultGooglePayFactory(env GooglePayEnvironment) GooglePayRepository {
	return StaticGooglePay(env != "")
}

// Ensure implementations satisfy GooglePayRepository
var (
	_ GooglePayRepository = DisabledGooglePay{}
	_ GooglePayRepository = StaticGooglePay(false)
)

// Initializer is the orchestrator surface consumed by transports.
// *FlowInitializer implements it.
type Initializer interface {
	Init(ctx context.Context, secret ClientSecret, config *Configuration) (InitResult, error)
}

var _ Initializer = (*FlowInitializer)(nil)
