// Package bolt persists saved selections in an embedded BoltDB file.
//
// Every customer is one key in the saved_selections bucket. The value is the
// string encoding of the selection. Saving a value equal to the stored one is
// a no-op, so repeated initializations never rewrite the file.
package bolt

import (
	"context"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"

	paysheet "github.com/paysheet/paysheet/go"
)

const bucketName = "saved_selections"

// Store wraps a BoltDB database
type Store struct {
	db *bolt.DB
}

// New opens (or creates) a BoltDB database at the given path and ensures the
// saved_selections bucket exists.
func New(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
	}

	return &Store{db: db}, nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetSelection returns the customer's selection, or SelectionNone if absent
func (s *Store) GetSelection(ctx context.Context, customerID string) (paysheet.SavedSelection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		// Bytes returned by Get are only valid for the life of the transaction
		value = string(b.Get([]byte(customerID)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read selection for %s: %w", customerID, err)
	}

	return paysheet.DecodeSelection(value), nil
}

// SaveSelection upserts the customer's selection. The write is skipped when
// the stored value is already equal.
func (s *Store) SaveSelection(ctx context.Context, customerID string, selection paysheet.SavedSelection) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encoded := paysheet.EncodeSelection(selection)

	// Read first so an unchanged selection never opens a write transaction
	var unchanged bool
	err := s.db.View(func(tx *bolt.Tx) error {
		existing := tx.Bucket([]byte(bucketName)).Get([]byte(customerID))
		unchanged = existing != nil && string(existing) == encoded
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read selection for %s: %w", customerID, err)
	}
	if unchanged {
		return nil
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(customerID), []byte(encoded))
	})
	if err != nil {
		return fmt.Errorf("failed to save selection for %s: %w", customerID, err)
	}
	return nil
}

// Ensure Store implements SelectionStore
var _ paysheet.SelectionStore = (*Store)(nil)
