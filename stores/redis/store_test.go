package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	paysheet "github.com/paysheet/paysheet/go"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	store := New(client)
	require.NoError(t, store.Ping(ctx))

	selection, err := store.GetSelection(ctx, "cus_123")
	require.NoError(t, err)
	assert.Equal(t, paysheet.SelectionNone{}, selection)

	require.NoError(t, store.SaveSelection(ctx, "cus_123", paysheet.SelectionSaved{PaymentMethodID: "pm_1"}))
	selection, err = store.GetSelection(ctx, "cus_123")
	require.NoError(t, err)
	assert.Equal(t, paysheet.SelectionSaved{PaymentMethodID: "pm_1"}, selection)

	raw, err := client.Get(ctx, "paysheet:selection:cus_123").Result()
	require.NoError(t, err)
	assert.Equal(t, "payment_method:pm_1", raw)

	require.NoError(t, store.SaveSelection(ctx, "cus_123", paysheet.SelectionGooglePay{}))
	selection, err = store.GetSelection(ctx, "cus_123")
	require.NoError(t, err)
	assert.Equal(t, paysheet.SelectionGooglePay{}, selection)
}

func TestStoreTTLAndPrefix(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	store := New(client, WithTTL(time.Hour), WithKeyPrefix("test:"))

	require.NoError(t, store.SaveSelection(ctx, "cus_123", paysheet.SelectionGooglePay{}))

	ttl, err := client.TTL(ctx, "test:cus_123").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Hour)
}

func TestStoreUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	store := New(client)

	_, err := store.GetSelection(context.Background(), "cus_123")
	assert.Error(t, err)
	assert.Error(t, store.SaveSelection(context.Background(), "cus_123", paysheet.SelectionGooglePay{}))
}
