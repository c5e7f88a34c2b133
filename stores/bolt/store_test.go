package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paysheet "github.com/paysheet/paysheet/go"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "selections.db")
	store, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestStoreAbsentSelection(t *testing.T) {
	store, _ := newTestStore(t)

	selection, err := store.GetSelection(context.Background(), "cus_123")
	require.NoError(t, err)
	assert.Equal(t, paysheet.SelectionNone{}, selection)
}

func TestStoreSaveAndGet(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.SaveSelection(ctx, "cus_123", paysheet.SelectionSaved{PaymentMethodID: "pm_1"}))
	selection, err := store.GetSelection(ctx, "cus_123")
	require.NoError(t, err)
	assert.Equal(t, paysheet.SelectionSaved{PaymentMethodID: "pm_1"}, selection)

	require.NoError(t, store.SaveSelection(ctx, "cus_123", paysheet.SelectionGooglePay{}))
	selection, err = store.GetSelection(ctx, "cus_123")
	require.NoError(t, err)
	assert.Equal(t, paysheet.SelectionGooglePay{}, selection)
}

func TestStoreSkipsUnchangedWrite(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.SaveSelection(ctx, "cus_123", paysheet.SelectionSaved{PaymentMethodID: "pm_1"}))
	before := store.db.Stats().TxStats.Write

	require.NoError(t, store.SaveSelection(ctx, "cus_123", paysheet.SelectionSaved{PaymentMethodID: "pm_1"}))
	after := store.db.Stats().TxStats.Write

	assert.Equal(t, before, after, "an unchanged selection must not be rewritten")
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "selections.db")

	store, err := New(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveSelection(ctx, "cus_123", paysheet.SelectionSaved{PaymentMethodID: "pm_1"}))
	require.NoError(t, store.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	selection, err := reopened.GetSelection(ctx, "cus_123")
	require.NoError(t, err)
	assert.Equal(t, paysheet.SelectionSaved{PaymentMethodID: "pm_1"}, selection)
}

func TestStoreCancelledContext(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.GetSelection(ctx, "cus_123")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.SaveSelection(ctx, "cus_123", paysheet.SelectionGooglePay{}), context.Canceled)
}
