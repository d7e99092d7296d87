package http

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Transport wraps base with otelhttp client tracing. A nil base uses
// http.DefaultTransport.
func Transport(base http.RoundTripper, opts ...Option) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	return otelhttp.NewTransport(base, newConfig(opts).otelhttpOptions()...)
}

// NewClient returns an http.Client whose requests are traced and carry the
// span context and baggage of the request context. A zero timeout means no
// client timeout.
//
//	client := otelmehttp.NewClient(30 * time.Second)
//	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
//	resp, err := client.Do(req)
func NewClient(timeout time.Duration, opts ...Option) *http.Client {
	base := http.DefaultTransport
	if t, ok := base.(*http.Transport); ok {
		base = t.Clone()
	}

	return &http.Client{
		Transport: Transport(base, opts...),
		Timeout:   timeout,
	}
}
