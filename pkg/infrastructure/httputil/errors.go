// Package httputil provides HTTP error handling shared by the API clients.
package httputil

import (
	"fmt"
	"io"
	"net/http"
)

// MaxErrorBodySize caps how much of an error response body ends up in error
// messages.
const MaxErrorBodySize = 500

// HTTPError is a non-2xx response with enough context to log usefully.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
	URL        string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s (status %d): %s", e.Status, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s (status %d)", e.Status, e.StatusCode)
}

// CheckResponse returns an *HTTPError for 4xx/5xx responses and nil
// otherwise. On error the body is consumed and closed.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBodySize+1))
	resp.Body.Close()

	url := ""
	if resp.Request != nil && resp.Request.URL != nil {
		url = resp.Request.URL.String()
	}

	return &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
		Body:       truncate(string(body), MaxErrorBodySize),
		URL:        url,
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
