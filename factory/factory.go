// Package factory wires a FlowInitializer from configuration
package factory

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	paysheet "github.com/paysheet/paysheet/go"
	"github.com/paysheet/paysheet/go/config"
	stripegateway "github.com/paysheet/paysheet/go/gateway/stripe"
	boltstore "github.com/paysheet/paysheet/go/stores/bolt"
	"github.com/paysheet/paysheet/go/stores/memory"
	"github.com/paysheet/paysheet/go/stores/postgres"
	redisstore "github.com/paysheet/paysheet/go/stores/redis"
)

// Cleanup releases resources held by a built initializer
type Cleanup func()

// NewStore opens the selection store named by cfg.Store.Driver
func NewStore(ctx context.Context, cfg config.StoreConfig) (paysheet.SelectionStore, Cleanup, error) {
	switch cfg.Driver {
	case config.DriverMemory, "":
		return memory.NewStore(0), func() {}, nil

	case config.DriverBolt:
		store, err := boltstore.New(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := redisstore.New(client, redisstore.WithTTL(cfg.RedisTTL))
		if err := store.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("could not connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return store, func() { _ = client.Close() }, nil

	case config.DriverPostgres:
		store, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownStoreDriver, cfg.Driver)
	}
}

// NewGateway builds the Stripe gateway
func NewGateway(cfg *config.Config, logger *zap.Logger) *stripegateway.Gateway {
	return stripegateway.New(&stripegateway.Config{
		URL:               cfg.APIBaseURL,
		Timeout:           cfg.Timeout,
		MaxNetworkRetries: cfg.MaxNetworkRetries,
		Logger:            logger.Named("stripe"),
	})
}

// NewInitializer validates cfg and builds a ready FlowInitializer.
// The returned Cleanup must be called once the initializer is no longer used.
func NewInitializer(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...paysheet.InitializerOption) (*paysheet.FlowInitializer, Cleanup, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	store, cleanup, err := NewStore(ctx, cfg.Store)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}

	supported := make([]paysheet.PaymentMethodType, 0, len(cfg.SupportedTypes))
	for _, t := range cfg.SupportedTypes {
		supported = append(supported, paysheet.PaymentMethodType(t))
	}

	base := []paysheet.InitializerOption{
		paysheet.WithSelectionStore(store),
		paysheet.WithLogger(logger),
		paysheet.WithPublishableKey(cfg.PublishableKey),
		paysheet.WithStripeAccount(cfg.StripeAccount),
		paysheet.WithSupportedTypes(supported...),
		paysheet.WithDurableSelection(cfg.DurableSelection),
	}

	initializer := paysheet.NewFlowInitializer(NewGateway(cfg, logger), append(base, opts...)...)
	return initializer, cleanup, nil
}
