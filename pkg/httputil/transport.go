package httputil

import (
	"net/http"
	"time"

	"github.com/matzehuels/archdiagram/pkg/observability"
)

// Transport is an http.RoundTripper that reports every request to
// [observability.HTTP].
type Transport struct {
	Base http.RoundTripper
}

// NewTransport wraps base, or http.DefaultTransport when base is nil.
func NewTransport(base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path

	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := t.Base.RoundTrip(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, err
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

// RetryableStatus reports whether a response status indicates a transient
// failure: 429 or any 5xx.
func RetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
