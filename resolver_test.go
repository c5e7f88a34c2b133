package paysheet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubGooglePay struct {
	ready bool
	err   error
	calls int
}

func (g *stubGooglePay) IsReady(context.Context) (bool, error) {
	g.calls++
	return g.ready, g.err
}

func TestResolveGuestSkipsStore(t *testing.T) {
	store := newMockStore()
	store.selections[""] = SelectionSaved{PaymentMethodID: "pm_1"}
	resolver := NewSelectionResolver(store, nil, false)

	resolution, err := resolver.Resolve(context.Background(), "", testPaymentMethods, nil)
	assert.NoError(t, err)
	assert.Equal(t, SelectionNone{}, resolution.Selection)
	assert.Equal(t, ReasonGuest, resolution.Reason)

	gets, saves := store.counts()
	assert.Zero(t, gets)
	assert.Zero(t, saves)
}

func TestResolveWithoutStore(t *testing.T) {
	resolver := NewSelectionResolver(nil, nil, true)

	resolution, err := resolver.Resolve(context.Background(), "cus_123", testPaymentMethods, nil)
	assert.NoError(t, err)
	assert.Equal(t, SelectionNone{}, resolution.Selection)
}

func TestResolveNothingPersistedWritesFirstMethod(t *testing.T) {
	store := newMockStore()
	resolver := NewSelectionResolver(store, nil, false)

	methods := testPaymentMethods[1:]
	resolution, err := resolver.Resolve(context.Background(), "cus_123", methods, nil)
	assert.NoError(t, err)

	expected := SelectionSaved{PaymentMethodID: "pm_1"}
	assert.Equal(t, expected, resolution.Selection)
	assert.Equal(t, ReasonNothingPersisted, resolution.Reason)
	assert.True(t, resolution.WroteBack)
	assert.Equal(t, expected, store.get("cus_123"))
}

func TestResolveKeepsValidPersistedSelection(t *testing.T) {
	store := newMockStore()
	store.selections["cus_123"] = SelectionSaved{PaymentMethodID: "pm_3"}
	resolver := NewSelectionResolver(store, nil, false)

	resolution, err := resolver.Resolve(context.Background(), "cus_123", testPaymentMethods, nil)
	assert.NoError(t, err)
	assert.Equal(t, SelectionSaved{PaymentMethodID: "pm_3"}, resolution.Selection)
	assert.Equal(t, ReasonPersisted, resolution.Reason)
	assert.False(t, resolution.WroteBack)

	_, saves := store.counts()
	assert.Zero(t, saves, "a valid persisted selection must not be rewritten")
}

func TestResolveDeletedPaymentMethodFallsBack(t *testing.T) {
	store := newMockStore()
	store.selections["cus_123"] = SelectionSaved{PaymentMethodID: "pm_deleted"}
	resolver := NewSelectionResolver(store, nil, false)

	resolution, err := resolver.Resolve(context.Background(), "cus_123", testPaymentMethods, nil)
	assert.NoError(t, err)
	assert.Equal(t, SelectionSaved{PaymentMethodID: "pm_123456789"}, resolution.Selection)
	assert.Equal(t, ReasonPaymentMethodGone, resolution.Reason)
	assert.Equal(t, SelectionSaved{PaymentMethodID: "pm_123456789"}, store.get("cus_123"))
}

func TestResolveGooglePay(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		store := newMockStore()
		store.selections["cus_123"] = SelectionGooglePay{}
		googlePay := &stubGooglePay{ready: true}

		resolution, err := NewSelectionResolver(store, nil, false).
			Resolve(context.Background(), "cus_123", testPaymentMethods, googlePay)
		assert.NoError(t, err)
		assert.Equal(t, SelectionGooglePay{}, resolution.Selection)
		assert.Equal(t, 1, googlePay.calls)

		_, saves := store.counts()
		assert.Zero(t, saves)
	})

	t.Run("not ready", func(t *testing.T) {
		store := newMockStore()
		store.selections["cus_123"] = SelectionGooglePay{}

		resolution, err := NewSelectionResolver(store, nil, false).
			Resolve(context.Background(), "cus_123", testPaymentMethods, &stubGooglePay{})
		assert.NoError(t, err)
		assert.Equal(t, SelectionSaved{PaymentMethodID: "pm_123456789"}, resolution.Selection)
		assert.Equal(t, ReasonGooglePayUnavailable, resolution.Reason)
	})

	t.Run("readiness error", func(t *testing.T) {
		store := newMockStore()
		store.selections["cus_123"] = SelectionGooglePay{}

		resolution, err := NewSelectionResolver(store, nil, false).
			Resolve(context.Background(), "cus_123", testPaymentMethods, &stubGooglePay{ready: true, err: errors.New("play services missing")})
		assert.NoError(t, err)
		assert.Equal(t, SelectionGooglePay{}, resolution.Selection)
	})

	t.Run("disabled", func(t *testing.T) {
		store := newMockStore()
		store.selections["cus_123"] = SelectionGooglePay{}

		resolution, err := NewSelectionResolver(store, nil, false).
			Resolve(context.Background(), "cus_123", nil, nil)
		assert.NoError(t, err)
		assert.Equal(t, SelectionNone{}, resolution.Selection)
	})
}

func TestResolveNoMethodsNoWrite(t *testing.T) {
	store := newMockStore()
	resolver := NewSelectionResolver(store, nil, false)

	resolution, err := resolver.Resolve(context.Background(), "cus_123", []PaymentMethod{}, nil)
	assert.NoError(t, err)
	assert.Equal(t, SelectionNone{}, resolution.Selection)

	_, saves := store.counts()
	assert.Zero(t, saves)
}

func TestResolveReadErrorTreatedAsAbsent(t *testing.T) {
	store := newMockStore()
	store.getErr = errors.New("disk I/O error")
	resolver := NewSelectionResolver(store, nil, false)

	resolution, err := resolver.Resolve(context.Background(), "cus_123", testPaymentMethods, nil)
	assert.NoError(t, err)
	assert.Equal(t, SelectionSaved{PaymentMethodID: "pm_123456789"}, resolution.Selection)
	assert.Equal(t, ReasonStoreUnreadable, resolution.Reason)
	assert.True(t, resolution.WroteBack)
}

func TestResolveReturnsContextErrorWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := newMockStore()
	store.selections["cus_123"] = SelectionSaved{PaymentMethodID: "pm_3"}
	store.onGet = cancel

	resolution, err := NewSelectionResolver(store, nil, false).Resolve(ctx, "cus_123", testPaymentMethods, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Resolution{}, resolution)

	_, saves := store.counts()
	assert.Zero(t, saves)
	assert.Equal(t, SelectionSaved{PaymentMethodID: "pm_3"}, store.get("cus_123"))
}

func TestResolveWriteError(t *testing.T) {
	writeErr := errors.New("read-only file system")

	t.Run("best effort", func(t *testing.T) {
		store := newMockStore()
		store.saveErr = writeErr

		resolution, err := NewSelectionResolver(store, nil, false).
			Resolve(context.Background(), "cus_123", testPaymentMethods, nil)
		assert.NoError(t, err)
		assert.Equal(t, SelectionSaved{PaymentMethodID: "pm_123456789"}, resolution.Selection)
		assert.False(t, resolution.WroteBack)
	})

	t.Run("durable", func(t *testing.T) {
		store := newMockStore()
		store.saveErr = writeErr

		_, err := NewSelectionResolver(store, nil, true).
			Resolve(context.Background(), "cus_123", testPaymentMethods, nil)
		assert.ErrorIs(t, err, ErrStore)
		assert.ErrorIs(t, err, writeErr)
	})
}
