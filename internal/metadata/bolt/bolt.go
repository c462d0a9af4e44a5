// Package bolt is a bbolt-backed metadata store: one bucket, JSON values,
// external id as key.
package bolt

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"ragh/internal/domain"
)

var bucketPassages = []byte("passages")

// Store persists passage metadata in a bbolt database file.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the database at path and ensures the passages
// bucket exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPassages)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Put stores meta under id, overwriting any previous record.
func (s *Store) Put(id string, meta domain.PassageMeta) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketPassages).Put([]byte(id), data)
	})
}

// Get returns the metadata for id or ErrNotFound.
func (s *Store) Get(id string) (domain.PassageMeta, error) {
	var meta domain.PassageMeta
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketPassages).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: passage %q", domain.ErrNotFound, id)
		}
		return json.Unmarshal(data, &meta)
	})
	if err != nil {
		return domain.PassageMeta{}, err
	}
	return meta, nil
}

// GetMany resolves the given ids in a single read transaction, omitting
// missing ones.
func (s *Store) GetMany(ids []string) (map[string]domain.PassageMeta, error) {
	out := make(map[string]domain.PassageMeta, len(ids))
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketPassages)
		for _, id := range ids {
			data := b.Get([]byte(id))
			if data == nil {
				continue
			}
			var meta domain.PassageMeta
			if err := json.Unmarshal(data, &meta); err != nil {
				return err
			}
			out[id] = meta
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
