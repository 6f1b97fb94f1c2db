// Package testutil provides testing utilities for the Confluence exporter.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
)

// MockResponse defines a fixed response for the mock content endpoint.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// MockPage is a content record served by MockConfluence.
type MockPage struct {
	ID    string
	Title string
	HTML  string
}

// MockConfluence is a configurable mock of the Confluence content API.
// By default it serves Pages through /rest/api/content honoring start and limit.
type MockConfluence struct {
	server *httptest.Server
	mu     sync.RWMutex
	pages  []MockPage

	// responses overrides the default paging for specific start offsets
	responses map[int]MockResponse
	handler   func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	Starts            []int
	LastRequestHeader http.Header
	LastQuery         url.Values
}

// NewMockConfluence creates a mock server serving the given pages.
func NewMockConfluence(pages []MockPage) *MockConfluence {
	mock := &MockConfluence{
		pages:     pages,
		responses: make(map[int]MockResponse),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))

		mock.mu.Lock()
		mock.RequestCount++
		mock.Starts = append(mock.Starts, start)
		mock.LastRequestHeader = r.Header.Clone()
		mock.LastQuery = r.URL.Query()
		handler := mock.handler
		resp, overridden := mock.responses[start]
		mock.mu.Unlock()

		if handler != nil {
			handler(w, r)
			return
		}
		if overridden {
			writeResponse(w, resp)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server base URL.
func (m *MockConfluence) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockConfluence) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockConfluence) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.Starts = nil
	m.LastRequestHeader = nil
	m.LastQuery = nil
}

// SetHandler replaces the content endpoint handler entirely. Requests are
// still tracked.
func (m *MockConfluence) SetHandler(handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
}

// SetResponseAt configures a fixed response for requests at the given start offset.
func (m *MockConfluence) SetResponseAt(start int, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[start] = resp
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockConfluence) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetStarts returns the start offsets requested, in order.
func (m *MockConfluence) GetStarts() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.Starts...)
}

// GetLastRequestHeader returns the headers of the most recent request.
func (m *MockConfluence) GetLastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader
}

// GetLastQuery returns the query parameters of the most recent request.
func (m *MockConfluence) GetLastQuery() url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastQuery
}

// defaultHandler serves the slice of pages selected by start and limit.
func (m *MockConfluence) defaultHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/rest/api/content" {
		writeResponse(w, NewNotFoundResponse())
		return
	}

	query := r.URL.Query()
	start, err := strconv.Atoi(query.Get("start"))
	if err != nil || start < 0 {
		start = 0
	}
	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 25
	}

	m.mu.RLock()
	var window []MockPage
	if start < len(m.pages) {
		end := start + limit
		if end > len(m.pages) {
			end = len(m.pages)
		}
		window = m.pages[start:end]
	}
	m.mu.RUnlock()

	writeResponse(w, NewPagesResponse(window))
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// GeneratePages returns n pages with predictable ids, titles and bodies.
func GeneratePages(n int) []MockPage {
	pages := make([]MockPage, 0, n)
	for i := 1; i <= n; i++ {
		pages = append(pages, MockPage{
			ID:    strconv.Itoa(1000 + i),
			Title: fmt.Sprintf("Page %d", i),
			HTML:  fmt.Sprintf("<p>content %d</p>", i),
		})
	}
	return pages
}

// PagesJSON renders pages in the content API response shape.
func PagesJSON(pages []MockPage) string {
	type view struct {
		Value string `json:"value"`
	}
	type body struct {
		View view `json:"view"`
	}
	type result struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Body  body   `json:"body"`
	}

	results := make([]result, 0, len(pages))
	for _, p := range pages {
		results = append(results, result{ID: p.ID, Title: p.Title, Body: body{View: view{Value: p.HTML}}})
	}

	data, _ := json.Marshal(map[string]any{
		"results": results,
		"start":   0,
		"size":    len(results),
	})
	return string(data)
}

// NewPagesResponse creates a 200 OK response carrying the given pages.
func NewPagesResponse(pages []MockPage) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       PagesJSON(pages),
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewUnauthorizedResponse creates a 401 Unauthorized response.
func NewUnauthorizedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"message":"unauthorized"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"statusCode":404,"message":"No space with key"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"message":"Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewMalformedResponse creates a 200 OK response whose body is not JSON.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       "not json",
		Headers: map[string]string{
			"Content-Type": "text/plain",
		},
	}
}
