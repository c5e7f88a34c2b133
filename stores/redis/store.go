package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	paysheet "github.com/paysheet/paysheet/go"
)

// DefaultKeyPrefix namespaces selection keys
const DefaultKeyPrefix = "paysheet:selection:"

// Store keeps saved selections in Redis, one string key per customer.
// It is safe to share across processes; concurrent saves for the same
// customer resolve last-write-wins.
type Store struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// Option configures the store
type Option func(*Store)

// WithTTL expires selections that have not been saved for ttl
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithKeyPrefix overrides DefaultKeyPrefix
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		s.keyPrefix = prefix
	}
}

// New wraps an existing client. The caller owns the client's lifecycle.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client:    client,
		keyPrefix: DefaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(customerID string) string {
	return s.keyPrefix + customerID
}

// GetSelection returns the customer's selection, or SelectionNone if absent
func (s *Store) GetSelection(ctx context.Context, customerID string) (paysheet.SavedSelection, error) {
	value, err := s.client.Get(ctx, s.key(customerID)).Result()
	if errors.Is(err, redis.Nil) {
		return paysheet.SelectionNone{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read selection for %s: %w", customerID, err)
	}
	return paysheet.DecodeSelection(value), nil
}

// SaveSelection upserts the customer's selection and refreshes its TTL
func (s *Store) SaveSelection(ctx context.Context, customerID string, selection paysheet.SavedSelection) error {
	err := s.client.Set(ctx, s.key(customerID), paysheet.EncodeSelection(selection), s.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to save selection for %s: %w", customerID, err)
	}
	return nil
}

// Ping checks connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Store implements SelectionStore
var _ paysheet.SelectionStore = (*Store)(nil)
