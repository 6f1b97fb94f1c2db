// Package config loads exporter settings from the process environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Sternrassler/confluence-export/pkg/cache"
	"github.com/Sternrassler/confluence-export/pkg/logging"
	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvBaseURL        = "CONFLUENCE_BASE_URL"
	EnvSpaceKey       = "CONFLUENCE_SPACE_KEY"
	EnvAuth           = "CONFLUENCE_AUTH"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogPretty      = "LOG_PRETTY"
	EnvCacheRedisURL  = "CONFLUENCE_CACHE_REDIS_URL"
	EnvCacheTTL       = "CONFLUENCE_CACHE_TTL"
	EnvPushgatewayURL = "CONFLUENCE_PUSHGATEWAY_URL"
)

// Config holds everything a run needs.
type Config struct {
	// Required
	BaseURL  string
	SpaceKey string
	Auth     string

	// Logging
	LogLevel  logging.LogLevel
	LogPretty bool

	// Optional Redis page cache (empty URL disables it)
	CacheRedisURL string
	CacheTTL      time.Duration

	// Optional Prometheus Pushgateway (empty disables the push)
	PushgatewayURL string
}

// MissingError reports a required variable that is unset or empty.
type MissingError struct {
	Name string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("getting %s: environment variable not set", e.Name)
}

// InvalidError reports an optional variable that could not be parsed.
type InvalidError struct {
	Name  string
	Value string
	Err   error
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("parsing %s=%q: %v", e.Name, e.Value, e.Err)
}

func (e *InvalidError) Unwrap() error {
	return e.Err
}

// Load reads .env (if present) into the environment and then builds the config.
func Load() (Config, error) {
	// Missing .env is fine; real environment variables take precedence
	_ = godotenv.Load()

	return LoadFromEnv(os.LookupEnv)
}

// LoadFromEnv builds the config from a lookup function.
func LoadFromEnv(lookup func(string) (string, bool)) (Config, error) {
	var cfg Config

	required := []struct {
		name string
		dst  *string
	}{
		{EnvBaseURL, &cfg.BaseURL},
		{EnvSpaceKey, &cfg.SpaceKey},
		{EnvAuth, &cfg.Auth},
	}
	for _, r := range required {
		value, ok := lookup(r.name)
		if !ok || value == "" {
			return Config{}, &MissingError{Name: r.name}
		}
		*r.dst = value
	}

	level, _ := lookup(EnvLogLevel)
	parsedLevel, err := logging.ParseLevel(level)
	if err != nil {
		return Config{}, &InvalidError{Name: EnvLogLevel, Value: level, Err: err}
	}
	cfg.LogLevel = parsedLevel

	if pretty, ok := lookup(EnvLogPretty); ok && pretty != "" {
		b, err := strconv.ParseBool(pretty)
		if err != nil {
			return Config{}, &InvalidError{Name: EnvLogPretty, Value: pretty, Err: err}
		}
		cfg.LogPretty = b
	}

	cfg.CacheRedisURL, _ = lookup(EnvCacheRedisURL)

	cfg.CacheTTL = cache.DefaultTTL
	if ttl, ok := lookup(EnvCacheTTL); ok && ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return Config{}, &InvalidError{Name: EnvCacheTTL, Value: ttl, Err: err}
		}
		if d <= 0 {
			return Config{}, &InvalidError{Name: EnvCacheTTL, Value: ttl, Err: fmt.Errorf("must be positive")}
		}
		cfg.CacheTTL = d
	}

	cfg.PushgatewayURL, _ = lookup(EnvPushgatewayURL)

	return cfg, nil
}
