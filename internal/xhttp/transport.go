package xhttp

import (
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/garrettladley/pulse/internal/version"
)

type pulseTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

var _ http.RoundTripper = (*pulseTransport)(nil)

func (t *pulseTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}
	req.Header.Set("User-Agent", version.UserAgent())
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform round trip: %w", err)
	}
	return resp, nil
}

type TransportOption func(*pulseTransport)

// WithLimiter throttles outbound requests through l.
func WithLimiter(l *rate.Limiter) TransportOption {
	return func(t *pulseTransport) { t.limiter = l }
}

func WithBase(base http.RoundTripper) TransportOption {
	return func(t *pulseTransport) { t.base = base }
}

// NewTransport returns an http.RoundTripper with standard pulse headers.
func NewTransport(opts ...TransportOption) http.RoundTripper {
	t := &pulseTransport{base: http.DefaultTransport}
	for _, opt := range opts {
		opt(t)
	}
	return t
}
