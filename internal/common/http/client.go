// internal/common/http/client.go
package http

import (
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"session-provisioner/internal/common/errors"
	"session-provisioner/internal/common/metrics"

	"golang.org/x/time/rate"
)

// Options configures an outbound provider client.
type Options struct {
	Provider          errors.Provider
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	// BaseURL, when set, replaces scheme and host of every outgoing request
	// and prefixes its path. Used for proxies and test servers.
	BaseURL string
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

type Client struct {
	httpClient *http.Client
}

func NewClient(opts Options) (*Client, error) {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	t := &transport{base: base, provider: opts.Provider}

	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	if opts.BaseURL != "" {
		u, err := url.Parse(opts.BaseURL)
		if err != nil {
			return nil, err
		}
		t.rewrite = u
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: t,
		},
	}, nil
}

// HTTPClient exposes the configured client for SDKs that take one.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// transport enforces the local request budget and turns provider 429s into
// ProviderErrors before any SDK gets a chance to retry them.
type transport struct {
	base     http.RoundTripper
	limiter  *rate.Limiter
	provider errors.Provider
	rewrite  *url.URL
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil && !t.limiter.Allow() {
		metrics.ProviderCalls.WithLabelValues(string(t.provider), "budget_exhausted").Inc()
		return nil, &errors.ProviderError{
			Provider:   t.provider,
			Kind:       errors.KindRateLimited,
			Details:    "outbound request budget exhausted",
			RetryAfter: 1,
		}
	}

	if t.rewrite != nil {
		req = req.Clone(req.Context())
		req.URL.Scheme = t.rewrite.Scheme
		req.URL.Host = t.rewrite.Host
		req.URL.Path = joinPath(t.rewrite.Path, req.URL.Path)
		req.URL.RawPath = ""
		req.Host = ""
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		metrics.ProviderCalls.WithLabelValues(string(t.provider), "transport_error").Inc()
		return nil, err
	}

	metrics.ProviderCalls.WithLabelValues(string(t.provider), strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
		return nil, &errors.ProviderError{
			Provider:   t.provider,
			Kind:       errors.KindRateLimited,
			Status:     http.StatusTooManyRequests,
			Details:    "provider rate limit reached, retry after " + strconv.Itoa(retryAfter) + "s",
			RetryAfter: retryAfter,
		}
	}

	return resp, nil
}

func joinPath(prefix, path string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return prefix + path
}

// ParseRetryAfter reads a Retry-After header in seconds or HTTP-date form.
// Missing or unparseable values yield 1.
func ParseRetryAfter(value string, now time.Time) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 1
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 1 {
			return 1
		}
		return secs
	}
	if at, err := http.ParseTime(value); err == nil {
		secs := int(at.Sub(now).Seconds() + 0.999)
		if secs < 1 {
			return 1
		}
		return secs
	}
	return 1
}
