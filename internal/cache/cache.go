// Package cache is a small persistent key/value cache backed by badger.
// Values are stored as JSON.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Cache wraps a badger database.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
}

// Options configures a Cache.
type Options struct {
	// Dir is the badger directory. Ignored when InMemory is set.
	Dir string
	// InMemory keeps everything in RAM; used by tests.
	InMemory bool
	// TTL expires entries; zero keeps them forever.
	TTL time.Duration
}

// New opens (or creates) the cache.
func New(opts Options) (*Cache, error) {
	bopts := badger.DefaultOptions(opts.Dir).WithLogger(nil)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &Cache{db: db, ttl: opts.TTL}, nil
}

// Get decodes the value under key into v. It reports false when the key is
// missing or expired.
func (c *Cache) Get(key string, v any) (bool, error) {
	var found bool
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return found, nil
}

// Put stores v under key.
func (c *Cache) Put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache marshal %s: %w", key, err)
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("cache put %s: %w", key, err)
	}
	return nil
}

// Close flushes and closes the database.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close cache: %w", err)
	}
	log.Println("[Cache] Closed")
	return nil
}
