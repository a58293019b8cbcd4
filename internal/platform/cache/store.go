package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Store is the key/value backend behind Cache.
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
}

// RistrettoStore keeps entries in an in-process ristretto cache.
type RistrettoStore struct {
	cache *ristretto.Cache
}

// NewRistrettoStore builds a store holding at most maxCost entries.
func NewRistrettoStore(maxCost int64) (*RistrettoStore, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxCost * 10, // number of keys to track frequency of
		MaxCost:     maxCost,
		BufferItems: 64, // number of keys per Get buffer

		IgnoreInternalCost: true, // cost counts entries, not bytes
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	return &RistrettoStore{cache: c}, nil
}

func (s *RistrettoStore) Get(key string) (any, bool) {
	return s.cache.Get(key)
}

// Set stores value with a cost of one. Writes are buffered; Wait flushes them.
func (s *RistrettoStore) Set(key string, value any, ttl time.Duration) {
	s.cache.SetWithTTL(key, value, 1, ttl)
}

// Wait blocks until buffered writes are applied.
func (s *RistrettoStore) Wait() {
	s.cache.Wait()
}

// Close stops the cache's background goroutines.
func (s *RistrettoStore) Close() {
	s.cache.Close()
}

// Noop never stores anything, so every lookup reads through.
type Noop struct{}

// NewNoop returns a store that caches nothing.
func NewNoop() Noop { return Noop{} }

func (Noop) Get(string) (any, bool)       { return nil, false }
func (Noop) Set(string, any, time.Duration) {}
