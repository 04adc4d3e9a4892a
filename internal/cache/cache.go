package cache

import "context"

// PageCache stores fully rendered listing responses under a key with a fixed
// expiry. Entries leave the cache only through expiry or an explicit Clear;
// no write path invalidates them.
type PageCache interface {
	// Get returns the cached bytes for key and whether a fresh entry exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key. The entry's lifetime is the cache's TTL.
	Set(ctx context.Context, key string, value []byte) error
	// Clear drops every entry.
	Clear(ctx context.Context) error
}
