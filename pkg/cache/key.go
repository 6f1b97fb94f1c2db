package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// CacheKey identifies a cached Confluence response.
type CacheKey struct {
	// Host is the Confluence host, including port if any
	Host string

	// Endpoint is the request path (e.g., "/wiki/rest/api/content")
	Endpoint string

	// QueryParams are the request query parameters
	QueryParams url.Values

	// Scope separates entries fetched with different credentials (see CredentialScope)
	Scope string
}

// CredentialScope derives a key scope from a credential. Only a prefix of its
// SHA-256 digest ends up in Redis.
func CredentialScope(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:8])
}

// KeyFromURL builds a cache key from a full request URL.
func KeyFromURL(rawURL string) (CacheKey, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return CacheKey{}, fmt.Errorf("parse url: %w", err)
	}

	return CacheKey{
		Host:        u.Host,
		Endpoint:    u.Path,
		QueryParams: u.Query(),
	}, nil
}

// String generates a deterministic cache key string.
// Format: confluence:host:cred=scope:endpoint:query1=val1:query2=val2
//
// Example:
//
//	confluence:wiki.example.com:cred=5d41402abc4b2a76:rest/api/content:expand=body.view:limit=25:spaceKey=DOCS:start=0
func (k CacheKey) String() string {
	parts := []string{"confluence"}

	if k.Host != "" {
		parts = append(parts, strings.ToLower(k.Host))
	}

	if k.Scope != "" {
		parts = append(parts, "cred="+k.Scope)
	}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Query params sorted for determinism
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
