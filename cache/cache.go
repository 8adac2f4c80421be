// Package cache provides translation caching implementations.
//
// A session always owns an unbounded in-memory cache for its own lifetime; a
// Redis cache can additionally be shared across sessions as an accelerator
// in front of the persistent dictionary.
package cache

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	// Get retrieves a cached translation. Returns false if not found or
	// expired.
	Get(key string) (string, bool)

	// Set stores a translation in the cache.
	Set(key string, value string) error
}
