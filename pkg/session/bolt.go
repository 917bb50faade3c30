package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
)

var sessionBkt = []byte("session")

// BoltStorage keeps the session keys in a bolt database. The file is
// locked while open, so a second process fails fast instead of racing.
type BoltStorage struct {
	db *bolt.DB
}

// OpenBoltStorage opens or creates the database at path.
func OpenBoltStorage(path string) (*BoltStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBkt)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create session bucket: %w", err)
	}
	return &BoltStorage{db: db}, nil
}

func (b *BoltStorage) Get(key string) (string, bool) {
	var (
		value string
		found bool
	)
	_ = b.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(sessionBkt).Get([]byte(key)); v != nil {
			value, found = string(v), true
		}
		return nil
	})
	return value, found
}

func (b *BoltStorage) Set(key, value string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBkt).Put([]byte(key), []byte(value))
	})
}

func (b *BoltStorage) Remove(key string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBkt).Delete([]byte(key))
	})
}

func (b *BoltStorage) Close() error {
	return b.db.Close()
}
