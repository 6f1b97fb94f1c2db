// Package confluence provides a client for the Confluence content REST API
// that downloads one page of space content at a time.
package confluence

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/confluence-export/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for Confluence API requests.
var (
	confluenceRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confluence_requests_total",
		Help: "Total Confluence content requests by status",
	}, []string{"status"})

	confluenceRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "confluence_request_duration_seconds",
		Help:    "Confluence content request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	confluenceErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "confluence_errors_total",
		Help: "Total Confluence page fetch failures by class",
	}, []string{"class"})

	confluencePagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "confluence_pages_fetched_total",
		Help: "Total content records decoded from Confluence responses",
	})
)

// ContentPath is the content endpoint relative to the base URL.
const ContentPath = "/rest/api/content"

// PageCache stores raw page response bodies keyed by request URL.
type PageCache interface {
	Load(ctx context.Context, url string) (body []byte, ok bool, err error)
	Store(ctx context.Context, url string, body []byte) error
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the Confluence instance, e.g. "https://example.atlassian.net/wiki"
	BaseURL string

	// SpaceKey selects the space whose content is listed
	SpaceKey string

	// Auth is the pre-encoded Basic credential, sent verbatim
	Auth string

	// HTTPClient is used for every request (default: a new http.Client)
	HTTPClient *http.Client

	// Cache is optional; nil disables response caching
	Cache PageCache

	// Logger for diagnostics (default: global logger with component field)
	Logger *zerolog.Logger
}

// Client downloads pages of space content from Confluence.
type Client struct {
	httpClient *http.Client
	cache      PageCache
	baseURL    string
	spaceKey   string
	auth       string
	logger     zerolog.Logger
}

// New creates a new Confluence client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if cfg.SpaceKey == "" {
		return nil, fmt.Errorf("space key is required")
	}
	if cfg.Auth == "" {
		return nil, fmt.Errorf("auth is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger := logging.NewLogger("confluence-client")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &Client{
		httpClient: httpClient,
		cache:      cfg.Cache,
		baseURL:    cfg.BaseURL,
		spaceKey:   cfg.SpaceKey,
		auth:       cfg.Auth,
		logger:     logger,
	}, nil
}

// PageURL builds the content listing URL for one page of a space.
func PageURL(baseURL, spaceKey string, start, limit int) string {
	return fmt.Sprintf("%s%s?spaceKey=%s&limit=%d&start=%d&expand=body.view",
		strings.TrimRight(baseURL, "/"), ContentPath, url.QueryEscape(spaceKey), limit, start)
}

// FetchPage downloads the content records in [start, start+limit).
// Request failures are returned as *RequestError. An empty, non-nil slice
// means the space has no content at that offset; such pages are never served
// from or written to the cache.
func (c *Client) FetchPage(ctx context.Context, start, limit int) ([]Page, error) {
	if start < 0 {
		return nil, fmt.Errorf("start must be >= 0 (got %d)", start)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0 (got %d)", limit)
	}

	pageURL := PageURL(c.baseURL, c.spaceKey, start, limit)

	c.logger.Info().
		Str("url", pageURL).
		Int("start", start).
		Int("limit", limit).
		Msg("Downloading page from Confluence")

	if body, ok := c.loadCached(ctx, pageURL); ok {
		pages, err := decodePage(body)
		switch {
		case err != nil:
			c.logger.Warn().Err(err).Str("url", pageURL).Msg("Ignoring undecodable cached page")
		case len(pages) == 0:
			// The terminating empty page always comes from the API.
			c.logger.Debug().Str("url", pageURL).Msg("Ignoring cached empty page")
		default:
			c.logger.Debug().Str("url", pageURL).Int("count", len(pages)).Msg("Using cached page")
			confluencePagesFetchedTotal.Add(float64(len(pages)))
			return pages, nil
		}
	}

	status, body, err := c.get(ctx, pageURL)
	if err != nil {
		confluenceErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		confluenceRequestsTotal.WithLabelValues("network_error").Inc()
		c.logger.Error().Err(err).Str("url", pageURL).Msg("HTTP request failed")
		return nil, NewTransportError(pageURL, err)
	}

	confluenceRequestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()

	if status < 200 || status > 299 {
		class := classifyStatus(status)
		confluenceErrorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Str("url", pageURL).
			Int("status", status).
			Str("error_class", string(class)).
			Msg("Confluence request error")
		return nil, NewStatusError(pageURL, status, body, class)
	}

	pages, err := decodePage(body)
	if err != nil {
		confluenceErrorsTotal.WithLabelValues(string(ErrorClassMalformed)).Inc()
		c.logger.Warn().
			Err(err).
			Str("url", pageURL).
			Int("status", status).
			Msg("Malformed Confluence response")
		return nil, NewStatusError(pageURL, status, body, ErrorClassMalformed)
	}

	if len(pages) > 0 {
		c.storeCached(ctx, pageURL, body)
	}
	confluencePagesFetchedTotal.Add(float64(len(pages)))

	return pages, nil
}

// get performs the request and returns status and body text.
// A body read failure yields an empty body, not an error.
func (c *Client) get(ctx context.Context, pageURL string) (int, string, error) {
	startTime := time.Now()
	defer func() {
		confluenceRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return 0, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+c.auth)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", pageURL).Msg("Failed to read response body")
		data = nil
	}

	return resp.StatusCode, string(data), nil
}

// wirePage mirrors Page with pointer fields so that absent or null members
// are rejected instead of decoding to empty strings.
type wirePage struct {
	ID    *string `json:"id"`
	Title *string `json:"title"`
	Body  *struct {
		View *struct {
			Value *string `json:"value"`
		} `json:"view"`
	} `json:"body"`
}

func (w *wirePage) page() (Page, error) {
	switch {
	case w == nil:
		return Page{}, errNullRecord
	case w.ID == nil:
		return Page{}, missingFieldError("id")
	case w.Title == nil:
		return Page{}, missingFieldError("title")
	case w.Body == nil:
		return Page{}, missingFieldError("body")
	case w.Body.View == nil:
		return Page{}, missingFieldError("body.view")
	case w.Body.View.Value == nil:
		return Page{}, missingFieldError("body.view.value")
	}

	return Page{
		ID:    *w.ID,
		Title: *w.Title,
		Body:  PageBody{View: PageBodyView{Value: *w.Body.View.Value}},
	}, nil
}

// decodePage parses a page response body. The results field and every
// field of every record are mandatory.
func decodePage(body string) ([]Page, error) {
	var resp struct {
		Results *[]*wirePage `json:"results"`
	}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return nil, err
	}
	if resp.Results == nil {
		return nil, errMissingResults
	}

	pages := make([]Page, 0, len(*resp.Results))
	for i, record := range *resp.Results {
		page, err := record.page()
		if err != nil {
			return nil, fmt.Errorf("result %d: %w", i, err)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (c *Client) loadCached(ctx context.Context, pageURL string) (string, bool) {
	if c.cache == nil {
		return "", false
	}
	body, ok, err := c.cache.Load(ctx, pageURL)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", pageURL).Msg("Cache load error")
		return "", false
	}
	return string(body), ok
}

func (c *Client) storeCached(ctx context.Context, pageURL, body string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Store(ctx, pageURL, []byte(body)); err != nil {
		c.logger.Warn().Err(err).Str("url", pageURL).Msg("Failed to cache response")
	}
}
