package confluence

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

var (
	errMissingResults = errors.New("response has no results field")
	errNullRecord     = errors.New("record is null")
)

func missingFieldError(field string) error {
	return fmt.Errorf("record has no %s field", field)
}

// ErrorClass represents a classification of page fetch failures.
type ErrorClass string

const (
	// ErrorClassNetwork represents failures before any response was received.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassClient represents 4xx responses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx and any other non-2xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassMalformed represents 2xx responses whose body is not a page response.
	ErrorClassMalformed ErrorClass = "malformed"
)

// RequestError is returned when a page could not be downloaded.
// It carries the requested URL, the HTTP status if a response was received,
// and the raw response body (or the transport error text).
type RequestError struct {
	URL   string
	Body  string
	Class ErrorClass

	status    int
	hasStatus bool
}

// NewTransportError builds a RequestError for a request that never got a response.
func NewTransportError(url string, err error) *RequestError {
	return &RequestError{
		URL:   url,
		Body:  err.Error(),
		Class: ErrorClassNetwork,
	}
}

// NewStatusError builds a RequestError for a response with the given status.
func NewStatusError(url string, status int, body string, class ErrorClass) *RequestError {
	return &RequestError{
		URL:       url,
		Body:      body,
		Class:     class,
		status:    status,
		hasStatus: true,
	}
}

// Status returns the HTTP status code and whether a response was received at all.
func (e *RequestError) Status() (int, bool) {
	return e.status, e.hasStatus
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	status := "none"
	if e.hasStatus {
		status = strconv.Itoa(e.status)
		if text := http.StatusText(e.status); text != "" {
			status += " " + text
		}
	}
	return fmt.Sprintf("error downloading page from Confluence: URL: %s, status: %s, body: %s",
		e.URL, status, e.Body)
}

// classifyStatus maps a non-2xx status to an error class.
func classifyStatus(status int) ErrorClass {
	if status >= 400 && status < 500 {
		return ErrorClassClient
	}
	return ErrorClassServer
}
