// Package cache is the read-through cache for derived ledger reads.
//
// Entries are never invalidated one by one. Every key embeds the user's
// last-activity marker, and Mark moves the marker forward, so entries written
// before a mutation simply stop being addressed and age out of the store.
package cache

import (
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Cache derives content-hash keys and reads through a Store.
type Cache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	markers map[string]int64
}

// New returns a Cache over store whose entries live for ttl.
func New(store Store, ttl time.Duration) *Cache {
	return &Cache{
		store:   store,
		ttl:     ttl,
		now:     time.Now,
		markers: map[string]int64{},
	}
}

// Mark records activity for userID, retiring every key built before it.
func (c *Cache) Mark(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.now().UnixNano()
	if prev := c.markers[userID]; next <= prev {
		next = prev + 1
	}
	c.markers[userID] = next
}

func (c *Cache) marker(userID string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.markers[userID]
}

// Key hashes userID, the user's current marker and properties into a cache key.
func (c *Cache) Key(userID string, properties ...any) string {
	h, _ := blake2b.New256(nil) // only fails for keys longer than 64 bytes
	fmt.Fprintf(h, "%s\x00%d", userID, c.marker(userID))
	for _, p := range properties {
		fmt.Fprintf(h, "\x00%T:%v", p, p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Remember returns the cached value for key or loads, stores and returns it.
// Load errors are returned and nothing is cached.
func Remember[T any](c *Cache, key string, load func() (T, error)) (T, error) {
	if cached, ok := c.store.Get(key); ok {
		if value, ok := cached.(T); ok {
			return value, nil
		}
	}
	value, err := load()
	if err != nil {
		return value, err
	}
	c.store.Set(key, value, c.ttl)
	return value, nil
}
