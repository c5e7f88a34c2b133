package fake

import (
	"context"
	"errors"
	"sync"
	"time"

	paysheet "github.com/paysheet/paysheet/go"
)

// ErrNoSuchPaymentIntent is returned for secrets the gateway does not know
var ErrNoSuchPaymentIntent = errors.New("no such payment_intent")

// ============================================================================
// Fake Gateway
// ============================================================================

// Gateway is an in-memory paysheet.Gateway for examples and tests.
// Intents are keyed by client secret and payment methods by customer id.
type Gateway struct {
	mu       sync.Mutex
	intents  map[paysheet.ClientSecret]paysheet.PaymentIntent
	methods  map[string][]paysheet.PaymentMethod
	failures map[string]error
	latency  time.Duration
	requests []Request
}

// Request records one gateway call
type Request struct {
	Operation  string
	CustomerID string
	Options    paysheet.RequestOptions
}

// NewGateway creates an empty fake gateway
func NewGateway() *Gateway {
	return &Gateway{
		intents:  make(map[paysheet.ClientSecret]paysheet.PaymentIntent),
		methods:  make(map[string][]paysheet.PaymentMethod),
		failures: make(map[string]error),
	}
}

// AddPaymentIntent registers pi under its client secret
func (g *Gateway) AddPaymentIntent(pi paysheet.PaymentIntent) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents[pi.ClientSecret] = pi
	return g
}

// SetPaymentMethods replaces a customer's payment methods
func (g *Gateway) SetPaymentMethods(customerID string, methods ...paysheet.PaymentMethod) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.methods[customerID] = methods
	return g
}

// FailCustomer makes listing customerID's payment methods fail with err
func (g *Gateway) FailCustomer(customerID string, err error) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures[customerID] = err
	return g
}

// WithLatency delays every call by d, honoring cancellation
func (g *Gateway) WithLatency(d time.Duration) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.latency = d
	return g
}

// Requests returns the calls made so far
func (g *Gateway) Requests() []Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Request(nil), g.requests...)
}

func (g *Gateway) record(req Request) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	return g.latency
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FetchPaymentIntent returns the intent registered for secret
func (g *Gateway) FetchPaymentIntent(ctx context.Context, secret paysheet.ClientSecret, opts paysheet.RequestOptions) (paysheet.PaymentIntent, error) {
	if err := wait(ctx, g.record(Request{Operation: "FetchPaymentIntent", Options: opts})); err != nil {
		return paysheet.PaymentIntent{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	pi, ok := g.intents[secret]
	if !ok {
		return paysheet.PaymentIntent{}, ErrNoSuchPaymentIntent
	}
	return pi, nil
}

// ListPaymentMethods returns the customer's methods of methodType in registration order
func (g *Gateway) ListPaymentMethods(ctx context.Context, customerID string, methodType paysheet.PaymentMethodType, opts paysheet.RequestOptions) ([]paysheet.PaymentMethod, error) {
	if err := wait(ctx, g.record(Request{Operation: "ListPaymentMethods", CustomerID: customerID, Options: opts})); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err, ok := g.failures[customerID]; ok {
		return nil, err
	}

	result := []paysheet.PaymentMethod{}
	for _, m := range g.methods[customerID] {
		if m.Type == methodType {
			result = append(result, m)
		}
	}
	return result, nil
}

// Ensure Gateway implements paysheet.Gateway
var _ paysheet.Gateway = (*Gateway)(nil)

// ============================================================================
// Fixtures
// ============================================================================

// PaymentIntent returns a confirmable card PaymentIntent for secret
func PaymentIntent(id string, secret paysheet.ClientSecret) paysheet.PaymentIntent {
	return paysheet.PaymentIntent{
		ID:                 id,
		ClientSecret:       secret,
		Status:             paysheet.StatusRequiresPaymentMethod,
		ConfirmationMethod: paysheet.ConfirmationMethodAutomatic,
		PaymentMethodTypes: []string{"card"},
		Amount:             2000,
		Currency:           "usd",
	}
}

// Card returns a card payment method
func Card(id, brand, last4 string) paysheet.PaymentMethod {
	return paysheet.PaymentMethod{
		ID:   id,
		Type: paysheet.PaymentMethodTypeCard,
		Card: &paysheet.CardDetails{Brand: brand, Last4: last4, ExpMonth: 4, ExpYear: 2030},
	}
}
