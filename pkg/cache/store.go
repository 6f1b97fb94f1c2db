package cache

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// DefaultTTL is how long page bodies are kept when no TTL is configured.
const DefaultTTL = 10 * time.Minute

// PageStore adapts a Manager to the confluence.PageCache interface.
// Entries are scoped to the credential the store was created with.
type PageStore struct {
	manager *Manager
	ttl     time.Duration
	scope   string
}

// NewPageStore creates a page store that keeps entries for ttl. Bodies
// stored under one credential are never loaded under another.
func NewPageStore(manager *Manager, ttl time.Duration, credential string) *PageStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PageStore{manager: manager, ttl: ttl, scope: CredentialScope(credential)}
}

func (s *PageStore) key(rawURL string) (CacheKey, error) {
	key, err := KeyFromURL(rawURL)
	if err != nil {
		return CacheKey{}, err
	}
	key.Scope = s.scope
	return key, nil
}

// Load returns the cached body for a request URL.
func (s *PageStore) Load(ctx context.Context, rawURL string) ([]byte, bool, error) {
	key, err := s.key(rawURL)
	if err != nil {
		return nil, false, err
	}

	entry, err := s.manager.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return entry.Data, true, nil
}

// Store caches a successful response body for a request URL.
func (s *PageStore) Store(ctx context.Context, rawURL string, body []byte) error {
	key, err := s.key(rawURL)
	if err != nil {
		return err
	}

	now := time.Now()
	return s.manager.Set(ctx, key, &CacheEntry{
		Data:       body,
		StatusCode: http.StatusOK,
		Expires:    now.Add(s.ttl),
		CachedAt:   now,
	})
}
