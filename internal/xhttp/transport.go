package xhttp

import (
	"fmt"
	"net/http"

	"github.com/garrettladley/folio/internal/version"
)

type folioTransport struct {
	base http.RoundTripper
}

var _ http.RoundTripper = (*folioTransport)(nil)

func (t *folioTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(UserAgent) == "" {
		req = req.Clone(req.Context())
		req.Header.Set(UserAgent, "folio/"+version.Get())
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform round trip: %w", err)
	}
	return resp, nil
}

// NewTransport returns an http.RoundTripper with the folio user agent.
func NewTransport() http.RoundTripper {
	return &folioTransport{base: http.DefaultTransport}
}
