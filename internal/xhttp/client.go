package xhttp

import (
	"net/http"
	"time"
)

type ClientOption func(*http.Client)

func WithTimeout(d time.Duration) ClientOption {
	return func(c *http.Client) { c.Timeout = d }
}

func NewHTTPClient(transport http.RoundTripper, opts ...ClientOption) *http.Client {
	if transport == nil {
		transport = NewTransport()
	}
	c := &http.Client{Transport: transport}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
