// Package cache is a request-scoped query cache keyed by logical query
// identity. Mutations and change-feed events invalidate whole key
// families; over-invalidation is preferred to staleness.
package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Key constructors. A trailing "*" in an invalidation target matches
// every key with that prefix.
func KeyGigList(category, search string) string { return "gigs:" + category + ":" + search }
func KeyGigLists() string                       { return "gigs:*" }
func KeyGig(gigID string) string                { return "gig:" + gigID }
func KeyGigsByOwner(userID string) string       { return "my-gigs:" + userID }
func KeyOrdersByBuyer(userID string) string     { return "orders:buyer:" + userID }
func KeyOrdersBySeller(userID string) string    { return "orders:seller:" + userID }
func KeyRatings(gigID string) string            { return "ratings:" + gigID }

// Cache wraps a TTL store. Entries expire on their own so a missed
// invalidation is bounded staleness, not permanent drift.
type Cache struct {
	store *gocache.Cache
}

// New creates a cache whose entries live at most ttl.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Cache{store: gocache.New(ttl, 2*ttl)}
}

// Get returns the cached value for key, if present and unexpired.
func (c *Cache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

// Set stores v under key with the default TTL.
func (c *Cache) Set(key string, v any) {
	c.store.SetDefault(key, v)
}

// Invalidate drops every listed key. Targets ending in "*" drop all
// keys sharing the prefix.
func (c *Cache) Invalidate(keys ...string) {
	for _, key := range keys {
		if prefix, ok := strings.CutSuffix(key, "*"); ok {
			for stored := range c.store.Items() {
				if strings.HasPrefix(stored, prefix) {
					c.store.Delete(stored)
				}
			}
			continue
		}
		c.store.Delete(key)
	}
}
