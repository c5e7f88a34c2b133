package paysheet

import (
	"context"
	"sync"
	"sync/atomic"
)

// Mock gateway for testing
type mockGateway struct {
	fetchIntent  func(ctx context.Context, secret ClientSecret, opts RequestOptions) (PaymentIntent, error)
	listMethods  func(ctx context.Context, customerID string, methodType PaymentMethodType, opts RequestOptions) ([]PaymentMethod, error)
	intentCalls  atomic.Int32
	methodsCalls atomic.Int32
}

func (m *mockGateway) FetchPaymentIntent(ctx context.Context, secret ClientSecret, opts RequestOptions) (PaymentIntent, error) {
	m.intentCalls.Add(1)
	if m.fetchIntent != nil {
		return m.fetchIntent(ctx, secret, opts)
	}
	return piRequiresPaymentMethod, nil
}

func (m *mockGateway) ListPaymentMethods(ctx context.Context, customerID string, methodType PaymentMethodType, opts RequestOptions) ([]PaymentMethod, error) {
	m.methodsCalls.Add(1)
	if m.listMethods != nil {
		return m.listMethods(ctx, customerID, methodType, opts)
	}
	return testPaymentMethods, nil
}

// Mock store for testing
type mockStore struct {
	mu         sync.Mutex
	selections map[string]SavedSelection
	getErr     error
	saveErr    error
	onGet      func()
	onSave     func()
	gets       int
	saves      int
}

func newMockStore() *mockStore {
	return &mockStore{selections: make(map[string]SavedSelection)}
}

func (s *mockStore) GetSelection(ctx context.Context, customerID string) (SavedSelection, error) {
	if s.onGet != nil {
		s.onGet()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		return nil, s.getErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sel, ok := s.selections[customerID]; ok {
		return sel, nil
	}
	return SelectionNone{}, nil
}

func (s *mockStore) SaveSelection(ctx context.Context, customerID string, selection SavedSelection) error {
	if s.onSave != nil {
		s.onSave()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.selections[customerID] = selection
	return nil
}

func (s *mockStore) get(customerID string) SavedSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selections[customerID]
}

func (s *mockStore) counts() (gets, saves int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets, s.saves
}

const testClientSecret ClientSecret = "pi_1234_secret_5678"

var piRequiresPaymentMethod = PaymentIntent{
	ID:                 "pi_1234",
	ClientSecret:       testClientSecret,
	Status:             StatusRequiresPaymentMethod,
	ConfirmationMethod: ConfirmationMethodAutomatic,
	PaymentMethodTypes: []string{"card"},
	Amount:             1099,
	Currency:           "usd",
}

var testPaymentMethods = []PaymentMethod{
	card("pm_123456789", "visa", "4242"),
	card("pm_1", "mastercard", "4444"),
	card("pm_2", "amex", "0005"),
	card("pm_3", "visa", "1881"),
	card("pm_4", "discover", "1117"),
	card("pm_5", "visa", "0077"),
}

var customerConfigWithGooglePay = &Configuration{
	MerchantDisplayName: "Widget Store",
	Customer: &CustomerConfig{
		ID:                 "cus_123",
		EphemeralKeySecret: "ek_123",
	},
	GooglePay: &GooglePayConfig{
		Environment: GooglePayEnvironmentTest,
		CountryCode: "US",
	},
}

func card(id, brand, last4 string) PaymentMethod {
	return PaymentMethod{
		ID:   id,
		Type: PaymentMethodTypeCard,
		Card: &CardDetails{Brand: brand, Last4: last4, ExpMonth: 12, ExpYear: 2030},
	}
}
