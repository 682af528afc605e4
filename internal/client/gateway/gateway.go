package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/tradeguard/internal/common"
	"github.com/dmitrijs2005/tradeguard/internal/logging"
)

const (
	defaultTimeout  = 30 * time.Second
	jsonContentType = "application/json"
)

// DefaultUserAgent is sent when WithUserAgent is not used.
var DefaultUserAgent = common.AppName + "-cli"

// Gateway issues requests against one backend base URL.
type Gateway struct {
	baseURL    *url.URL
	client     *http.Client
	userAgent  string
	log        logging.Logger
	registerer prometheus.Registerer

	mu             sync.RWMutex
	credential     func() string
	onUnauthorized func()
}

// New returns a Gateway for baseURL, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) (*Gateway, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q: missing host", baseURL)
	}

	g := &Gateway{
		baseURL:   u,
		client:    &http.Client{Timeout: defaultTimeout},
		userAgent: DefaultUserAgent,
		log:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.registerer != nil {
		rt, err := instrument(g.registerer, g.client.Transport)
		if err != nil {
			return nil, fmt.Errorf("register gateway metrics: %w", err)
		}
		g.client.Transport = rt
	}

	return g, nil
}

// BaseURL returns the configured base URL.
func (g *Gateway) BaseURL() string {
	return g.baseURL.String()
}

// SetCredentialSource registers the function consulted for the bearer
// credential on every request. An empty string means no credential.
func (g *Gateway) SetCredentialSource(fn func() string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.credential = fn
}

// SetUnauthorizedHandler registers the function invoked for every response
// with status 401.
func (g *Gateway) SetUnauthorizedHandler(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onUnauthorized = fn
}

func (g *Gateway) currentCredential() string {
	g.mu.RLock()
	fn := g.credential
	g.mu.RUnlock()
	if fn == nil {
		return ""
	}
	return fn()
}

func (g *Gateway) unauthorized() {
	g.mu.RLock()
	fn := g.onUnauthorized
	g.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// outbound describes one request before it is built.
type outbound struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   io.Reader

	// contentType is the default Content-Type, overridable by header.
	// forcedContentType replaces whatever the caller supplied.
	contentType       string
	forcedContentType string
}

func (g *Gateway) resolve(path string, query url.Values) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}

	// Join the escaped forms so ids escaped by callers stay one segment.
	u := *g.baseURL
	escaped := strings.TrimRight(u.EscapedPath(), "/") + "/" + strings.TrimLeft(ref.EscapedPath(), "/")
	if u.Path, err = url.PathUnescape(escaped); err != nil {
		return "", err
	}
	u.RawPath = escaped

	q := ref.Query()
	for k, vs := range query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String(), nil
}

// send builds and issues the request. The returned error is always a
// transport-level failure; HTTP status handling is left to the caller.
func (g *Gateway) send(ctx context.Context, o outbound) (*http.Response, logging.Logger, error) {
	target, err := g.resolve(o.path, o.query)
	if err != nil {
		return nil, g.log, fmt.Errorf("resolve %s: %w", o.path, err)
	}

	req, err := http.NewRequestWithContext(ctx, o.method, target, o.body)
	if err != nil {
		return nil, g.log, fmt.Errorf("build request: %w", err)
	}

	if o.contentType != "" {
		req.Header.Set("Content-Type", o.contentType)
	}
	for k, vs := range o.header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if o.forcedContentType != "" {
		req.Header.Set("Content-Type", o.forcedContentType)
	}
	if cred := g.currentCredential(); cred != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+cred)
	} else {
		req.Header.Del(common.AuthorizationHeader)
	}
	if req.Header.Get(common.RequestIDHeader) == "" {
		req.Header.Set(common.RequestIDHeader, uuid.NewString())
	}
	req.Header.Set("User-Agent", g.userAgent)

	log := g.log.With(
		"method", o.method,
		"path", req.URL.Path,
		"request_id", req.Header.Get(common.RequestIDHeader),
	)

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, log, err
	}
	log.Debug(ctx, "response received", "status", resp.StatusCode, "elapsed", time.Since(start))
	return resp, log, nil
}

// Call issues a JSON request and decodes the response into T. body is
// encoded as JSON unless it is nil.
func Call[T any](ctx context.Context, g *Gateway, method, path string, body any, opts ...CallOption) Result[T] {
	cfg := newCallConfig(opts)

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			g.log.Error(ctx, "encode request body", "path", path, "error", err)
			return failure[T](MsgRequestFailed)
		}
		reader = bytes.NewReader(b)
	}

	resp, log, err := g.send(ctx, outbound{
		method:      method,
		path:        path,
		query:       cfg.query,
		header:      cfg.header,
		body:        reader,
		contentType: jsonContentType,
	})
	if err != nil {
		log.Warn(ctx, "request failed", "error", err)
		return failure[T](MsgNetworkError)
	}
	return readResult[T](ctx, g, log, resp, cfg.signalUnauthorized)
}

// Download fetches raw bytes. It returns nil on any failure and never parses
// the body.
func (g *Gateway) Download(ctx context.Context, path string, query url.Values) []byte {
	resp, log, err := g.send(ctx, outbound{method: http.MethodGet, path: path, query: query})
	if err != nil {
		log.Warn(ctx, "download failed", "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		g.unauthorized()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Info(ctx, "download rejected", "status", resp.StatusCode)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn(ctx, "read download body", "error", err)
		return nil
	}
	return data
}

// readResult normalises resp. With signal set a 401 invokes the
// unauthorized handler before the body is read.
func readResult[T any](ctx context.Context, g *Gateway, log logging.Logger, resp *http.Response, signal bool) Result[T] {
	defer resp.Body.Close()

	if signal && resp.StatusCode == http.StatusUnauthorized {
		g.unauthorized()
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn(ctx, "read response body", "error", err)
		return failure[T](MsgNetworkError)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := errorMessage(raw)
		log.Info(ctx, "request rejected", "status", resp.StatusCode, "message", msg)
		return failure[T](msg)
	}

	if resp.StatusCode == http.StatusNoContent {
		var zero T
		return success(zero)
	}

	data, err := decodeSuccess[T](raw)
	if err != nil {
		var rej rejection
		if errors.As(err, &rej) {
			log.Info(ctx, "request rejected by envelope", "message", rej.msg)
			return failure[T](rej.msg)
		}
		log.Warn(ctx, "decode response body", "error", err)
		return failure[T](MsgNetworkError)
	}
	return success(data)
}
