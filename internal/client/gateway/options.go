package gateway

import (
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/tradeguard/internal/logging"
)

// Option configures a Gateway.
type Option func(*Gateway)

// WithHTTPClient sets the HTTP client used for all requests. The client is
// copied, so later WithTimeout or WithMetrics options do not modify it.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) {
		if c != nil {
			cp := *c
			g.client = &cp
		}
	}
}

// WithTimeout bounds every request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.client.Timeout = d
	}
}

func WithLogger(l logging.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(g *Gateway) {
		if ua != "" {
			g.userAgent = ua
		}
	}
}

// WithMetrics instruments outbound requests with request counters and
// latency histograms registered on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(g *Gateway) {
		g.registerer = reg
	}
}

// CallOption adjusts a single request.
type CallOption func(*callConfig)

type callConfig struct {
	header             http.Header
	query              url.Values
	signalUnauthorized bool
}

// WithHeader adds a request header. Authorization, X-Request-ID and
// User-Agent are always set by the gateway.
func WithHeader(key, value string) CallOption {
	return func(c *callConfig) {
		c.header.Add(key, value)
	}
}

// WithQuery adds query parameters to the request URL.
func WithQuery(q url.Values) CallOption {
	return func(c *callConfig) {
		for k, vs := range q {
			for _, v := range vs {
				c.query.Add(k, v)
			}
		}
	}
}

// withoutUnauthorizedSignal keeps a 401 from invoking the unauthorized
// handler. Login and register use it: there a 401 rejects the submitted
// credentials, not the current session.
func withoutUnauthorizedSignal() CallOption {
	return func(c *callConfig) {
		c.signalUnauthorized = false
	}
}

func newCallConfig(opts []CallOption) callConfig {
	cfg := callConfig{header: make(http.Header), query: make(url.Values), signalUnauthorized: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
