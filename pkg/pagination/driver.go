package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/confluence-export/pkg/logging"
	"github.com/rs/zerolog"
)

// DefaultPageSize is the number of records requested per page.
const DefaultPageSize = 25

// Config holds driver configuration
type Config struct {
	// PageSize is the limit sent with every request and the offset stride
	PageSize int
}

// DefaultConfig returns the default driver configuration
func DefaultConfig() Config {
	return Config{
		PageSize: DefaultPageSize,
	}
}

// PageFetcher fetches one page of records starting at offset start.
// An empty page signals the end of data.
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, start, limit int) ([]T, error)
}

// Driver walks a paginated endpoint sequentially
type Driver[T any] struct {
	fetcher PageFetcher[T]
	config  Config
	logger  zerolog.Logger
}

// NewDriver creates a new pagination driver
func NewDriver[T any](fetcher PageFetcher[T], config Config) *Driver[T] {
	if config.PageSize <= 0 {
		config.PageSize = DefaultPageSize
	}

	return &Driver[T]{
		fetcher: fetcher,
		config:  config,
		logger:  logging.NewLogger("pagination"),
	}
}

// FetchAll fetches pages until one comes back empty and returns all records
// in request order. On any error it returns nil and the error.
func (d *Driver[T]) FetchAll(ctx context.Context) ([]T, error) {
	start := time.Now()
	limit := d.config.PageSize

	d.logger.Info().
		Int("page_size", limit).
		Msg("Starting sequential page fetch")

	all := make([]T, 0)
	requests := 0

	for offset := 0; ; offset += limit {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("fetch cancelled at start %d: %w", offset, err)
		}

		items, err := d.fetcher.FetchPage(ctx, offset, limit)
		requests++
		if err != nil {
			d.logger.Warn().
				Err(err).
				Int("start", offset).
				Int("discarded", len(all)).
				Msg("Page fetch failed")
			return nil, fmt.Errorf("fetch page at start %d: %w", offset, err)
		}

		if len(items) == 0 {
			break
		}

		all = append(all, items...)

		d.logger.Debug().
			Int("start", offset).
			Int("count", len(items)).
			Int("total", len(all)).
			Msg("Fetch progress")
	}

	d.logger.Info().
		Int("items", len(all)).
		Int("requests", requests).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return all, nil
}
