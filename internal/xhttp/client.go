package xhttp

import (
	"net/http"
	"time"
)

const DefaultClientTimeout = 10 * time.Second

type ClientOption func(*http.Client)

func WithTimeout(d time.Duration) ClientOption {
	return func(c *http.Client) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// WithBaseTransport replaces the transport wrapped by the folio user agent.
func WithBaseTransport(base http.RoundTripper) ClientOption {
	return func(c *http.Client) { c.Transport = &folioTransport{base: base} }
}

// NewHTTPClient returns a client that identifies itself as folio and does not
// follow redirects, so a webhook endpoint that redirects is reported as such.
func NewHTTPClient(opts ...ClientOption) *http.Client {
	c := &http.Client{
		Transport: NewTransport(),
		Timeout:   DefaultClientTimeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
