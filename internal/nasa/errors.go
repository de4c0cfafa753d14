package nasa

import (
	"fmt"
	"net/http"
)

// TransportError reports that a request never produced an HTTP response.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError reports a non-2xx response.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Endpoint, e.StatusCode)
}

// StatusText returns the canonical reason phrase for the status code.
func (e *StatusError) StatusText() string {
	return http.StatusText(e.StatusCode)
}

// RateLimited reports whether the API rejected the request for quota reasons.
func (e *StatusError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}
