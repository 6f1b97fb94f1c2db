// Package cache provides an optional Redis-backed cache for Confluence page
// responses.
//
// Only successful, decodable, non-empty response bodies are cached, keyed by
// the exact request URL and a digest of the credential. A repeated export
// within the TTL replays identical pages and only asks Confluence for the
// terminating empty page.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//
//	store := cache.NewPageStore(cache.NewManager(redisClient), 10*time.Minute, auth)
//
//	client, err := confluence.New(confluence.Config{
//		BaseURL:  baseURL,
//		SpaceKey: "DOCS",
//		Auth:     auth,
//		Cache:    store,
//	})
//
// # Metrics
//
//   - confluence_cache_hits_total - Cache hits
//   - confluence_cache_misses_total - Cache misses
//   - confluence_cache_errors_total{operation} - Cache operation errors
package cache
