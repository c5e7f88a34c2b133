package stripegateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/paymentmethod"
	"go.uber.org/zap"

	paysheet "github.com/paysheet/paysheet/go"
)

// ============================================================================
// Stripe Gateway
// ============================================================================

// Gateway retrieves PaymentIntents and payment methods from the Stripe API.
// Implements paysheet.Gateway.
type Gateway struct {
	backend stripe.Backend
	logger  *zap.Logger
}

// Config configures the gateway
type Config struct {
	// URL is the API base URL (optional, defaults to stripe.APIURL)
	URL string

	// HTTPClient is the HTTP client to use (optional)
	HTTPClient *http.Client

	// Timeout for requests when HTTPClient is nil (optional, defaults to 30s)
	Timeout time.Duration

	// MaxNetworkRetries is the number of retries on retryable failures
	// (connection errors, 409, 429 and 5xx responses)
	MaxNetworkRetries int64

	// Logger receives stripe-go's request logs (optional)
	Logger *zap.Logger
}

// ErrMalformedClientSecret is returned when a client secret does not embed a PaymentIntent id
var ErrMalformedClientSecret = errors.New("client secret does not identify a PaymentIntent")

// New creates a new Stripe gateway
func New(config *Config) *Gateway {
	if config == nil {
		config = &Config{}
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	url := config.URL
	if url == "" {
		url = stripe.APIURL
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{
			Timeout: timeout,
		}
	}

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(url),
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(config.MaxNetworkRetries),
		LeveledLogger:     logger.Sugar(),
	})

	return &Gateway{
		backend: backend,
		logger:  logger,
	}
}

// ============================================================================
// paysheet.Gateway Implementation
// ============================================================================

// FetchPaymentIntent retrieves the PaymentIntent the secret belongs to.
// opts.APIKey is expected to be a publishable key.
func (g *Gateway) FetchPaymentIntent(ctx context.Context, secret paysheet.ClientSecret, opts paysheet.RequestOptions) (paysheet.PaymentIntent, error) {
	id, ok := secret.PaymentIntentID()
	if !ok {
		return paysheet.PaymentIntent{}, ErrMalformedClientSecret
	}

	params := &stripe.PaymentIntentParams{
		ClientSecret: stripe.String(string(secret)),
	}
	params.Context = ctx
	if opts.StripeAccount != "" {
		params.SetStripeAccount(opts.StripeAccount)
	}

	client := paymentintent.Client{B: g.backend, Key: opts.APIKey}
	pi, err := client.Get(id, params)
	if err != nil {
		return paysheet.PaymentIntent{}, fmt.Errorf("failed to retrieve PaymentIntent %s: %w", id, wrapError(err))
	}

	return toPaymentIntent(pi), nil
}

// ListPaymentMethods lists the customer's payment methods of one type in server order.
// opts.APIKey is expected to be the customer's ephemeral key.
func (g *Gateway) ListPaymentMethods(ctx context.Context, customerID string, methodType paysheet.PaymentMethodType, opts paysheet.RequestOptions) ([]paysheet.PaymentMethod, error) {
	params := &stripe.PaymentMethodListParams{
		Customer: stripe.String(customerID),
		Type:     stripe.String(string(methodType)),
	}
	params.Context = ctx
	if opts.StripeAccount != "" {
		params.SetStripeAccount(opts.StripeAccount)
	}

	client := paymentmethod.Client{B: g.backend, Key: opts.APIKey}
	iter := client.List(params)

	methods := []paysheet.PaymentMethod{}
	for iter.Next() {
		methods = append(methods, toPaymentMethod(iter.PaymentMethod()))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list payment methods for customer %s: %w", customerID, wrapError(err))
	}

	g.logger.Debug("listed payment methods",
		zap.String("customer", customerID),
		zap.String("type", string(methodType)),
		zap.Int("count", len(methods)),
	)

	return methods, nil
}

// ============================================================================
// Conversion
// ============================================================================

func toPaymentIntent(pi *stripe.PaymentIntent) paysheet.PaymentIntent {
	types := pi.PaymentMethodTypes
	if types == nil {
		types = []string{}
	}
	return paysheet.PaymentIntent{
		ID:                 pi.ID,
		ClientSecret:       paysheet.ClientSecret(pi.ClientSecret),
		Status:             paysheet.PaymentIntentStatus(pi.Status),
		ConfirmationMethod: paysheet.ConfirmationMethod(pi.ConfirmationMethod),
		PaymentMethodTypes: types,
		Amount:             pi.Amount,
		Currency:           string(pi.Currency),
		Livemode:           pi.Livemode,
	}
}

func toPaymentMethod(pm *stripe.PaymentMethod) paysheet.PaymentMethod {
	method := paysheet.PaymentMethod{
		ID:      pm.ID,
		Type:    paysheet.PaymentMethodType(pm.Type),
		Created: pm.Created,
	}
	if pm.Card != nil {
		method.Card = &paysheet.CardDetails{
			Brand:    string(pm.Card.Brand),
			Last4:    pm.Card.Last4,
			ExpMonth: int(pm.Card.ExpMonth),
			ExpYear:  int(pm.Card.ExpYear),
		}
	}
	return method
}
