package memory

import (
	"context"
	"sync"
	"time"

	paysheet "github.com/paysheet/paysheet/go"
)

// Store provides an in-memory implementation of paysheet.SelectionStore.
//
// This implementation is suitable for single-instance deployments and tests.
// Selections are lost on restart; use the bolt, redis or postgres stores
// when selections must survive the process.
//
// Features:
//   - Thread-safe with mutex protection
//   - Optional TTL for saved selections
//   - Lazy cleanup of expired entries
type Store struct {
	mu         sync.Mutex
	selections map[string]string
	expiry     map[string]time.Time
	ttl        time.Duration
	now        func() time.Time
}

// NewStore creates a new in-memory selection store.
// A zero ttl keeps selections until they are overwritten.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		selections: make(map[string]string),
		expiry:     make(map[string]time.Time),
		ttl:        ttl,
		now:        time.Now,
	}
}

// GetSelection returns the customer's selection, or SelectionNone if absent or expired
func (s *Store) GetSelection(_ context.Context, customerID string) (paysheet.SavedSelection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expiry, exists := s.expiry[customerID]; exists && s.now().After(expiry) {
		// Expired - clean it up
		delete(s.selections, customerID)
		delete(s.expiry, customerID)
	}

	return paysheet.DecodeSelection(s.selections[customerID]), nil
}

// SaveSelection upserts the customer's selection
func (s *Store) SaveSelection(_ context.Context, customerID string, selection paysheet.SavedSelection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.selections[customerID] = paysheet.EncodeSelection(selection)
	if s.ttl > 0 {
		s.expiry[customerID] = s.now().Add(s.ttl)
	}

	// Lazy cleanup of expired entries
	s.cleanupExpiredLocked()
	return nil
}

// Len returns the number of stored selections, expired ones included
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selections)
}

// cleanupExpiredLocked removes expired entries. Must be called with lock held.
func (s *Store) cleanupExpiredLocked() {
	now := s.now()
	for key, expiry := range s.expiry {
		if now.After(expiry) {
			delete(s.selections, key)
			delete(s.expiry, key)
		}
	}
}

// Ensure Store implements SelectionStore
var _ paysheet.SelectionStore = (*Store)(nil)
