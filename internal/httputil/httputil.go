package httputil

import (
	"net/http"
	"time"
)

const (
	DefaultTimeout = 120 * time.Second
)

// DefaultClient is a shared http.Client with a reasonable timeout.
var DefaultClient = &http.Client{
	Timeout: DefaultTimeout,
}

// NewClient returns DefaultClient for non-positive timeouts, and a
// dedicated client otherwise.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 || timeout == DefaultTimeout {
		return DefaultClient
	}
	return &http.Client{Timeout: timeout}
}
