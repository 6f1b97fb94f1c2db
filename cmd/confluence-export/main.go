// Command confluence-export downloads every page of a Confluence space and
// prints them as a JSON array on stdout. Diagnostics are written to stderr.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Sternrassler/confluence-export/pkg/cache"
	"github.com/Sternrassler/confluence-export/pkg/config"
	"github.com/Sternrassler/confluence-export/pkg/confluence"
	"github.com/Sternrassler/confluence-export/pkg/logging"
	"github.com/Sternrassler/confluence-export/pkg/metrics"
	"github.com/Sternrassler/confluence-export/pkg/pagination"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run performs one export. Only the JSON array is written to stdout.
func run(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) error {
	logger := logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Output: stderr,
	})

	logger.Info().
		Str("space", cfg.SpaceKey).
		Str("base_url", cfg.BaseURL).
		Msg("Downloading pages from Confluence space")
	logger.Debug().Str("auth", cfg.Auth).Msg("Using credential")

	var pageCache confluence.PageCache
	if cfg.CacheRedisURL != "" {
		redisClient, err := connectRedis(ctx, cfg.CacheRedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		pageCache = cache.NewPageStore(cache.NewManager(redisClient), cfg.CacheTTL, cfg.Auth)
		logger.Info().Dur("ttl", cfg.CacheTTL).Msg("Page cache enabled")
	}

	client, err := confluence.New(confluence.Config{
		BaseURL:    cfg.BaseURL,
		SpaceKey:   cfg.SpaceKey,
		Auth:       cfg.Auth,
		HTTPClient: &http.Client{},
		Cache:      pageCache,
	})
	if err != nil {
		return fmt.Errorf("create confluence client: %w", err)
	}

	pages, err := pagination.NewDriver[confluence.Page](client, pagination.DefaultConfig()).FetchAll(ctx)
	pushMetrics(ctx, cfg, logger)
	if err != nil {
		return err
	}

	logger.Info().
		Int("count", len(pages)).
		Str("space", cfg.SpaceKey).
		Msg("Downloaded pages from Confluence space")
	for _, page := range pages {
		logger.Info().Str("id", page.ID).Str("title", page.Title).Msg("Exported page")
	}

	data, err := json.MarshalIndent(pages, "", "  ")
	if err != nil {
		return fmt.Errorf("encode pages: %w", err)
	}
	if _, err := fmt.Fprintln(stdout, string(data)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}

func connectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", config.EnvCacheRedisURL, err)
	}

	redisClient := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", opts.Addr, err)
	}

	return redisClient, nil
}

// pushMetrics is best effort; a failed push never fails the export.
func pushMetrics(ctx context.Context, cfg config.Config, logger zerolog.Logger) {
	if cfg.PushgatewayURL == "" {
		return
	}

	pushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := metrics.Push(pushCtx, cfg.PushgatewayURL, metrics.DefaultJob, cfg.SpaceKey); err != nil {
		logger.Warn().Err(err).Msg("Failed to push metrics")
		return
	}
	logger.Debug().Str("pushgateway", cfg.PushgatewayURL).Msg("Metrics pushed")
}
