// Package cache provides an optional redis-backed cache for raw upstream
// inventory responses.
//
// Entries are keyed by endpoint, query parameters and a fingerprint of the
// caller's pass-through headers, so two callers holding different credentials
// never share a cached page. Only successful (200) responses are cached and
// every entry carries a fixed TTL; nothing is kept once the TTL elapses.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	manager := cache.NewManager(redisClient)
//
//	key := cache.CacheKey{
//		Endpoint:    "/activate-devices",
//		QueryParams: req.URL.Query(),
//		Principal:   cache.Fingerprint(headers),
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch upstream, then:
//		entry, _ = cache.ResponseToEntry(resp, 30*time.Second)
//		_ = manager.Set(ctx, key, entry)
//	}
//
// # Metrics
//
//   - glp_cache_hits_total - Cache hits
//   - glp_cache_misses_total - Cache misses
//   - glp_cache_stored_bytes_total - Bytes written to the cache
//   - glp_cache_errors_total{operation} - Cache operation errors
package cache
