package registry

import (
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-querystring/query"

	"github.com/mcptooling/mcpreg/pkg/cache"
	"github.com/mcptooling/mcpreg/pkg/errors"
	"github.com/mcptooling/mcpreg/pkg/httputil"
)

// Option configures a Client at construction time.
type Option func(*Client) error

// WithHTTPClient replaces the underlying HTTP client, mainly so tests can
// inject httptest transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New(errors.ErrCodeInvalidInput, "http client cannot be nil")
		}
		c.http = hc
		return nil
	}
}

// WithBaseURL overrides the registry endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		if err := errors.ValidateURL(baseURL); err != nil {
			return err
		}
		c.baseURL = trimSlash(baseURL)
		return nil
	}
}

// WithCache sets the response cache backend. The default is no caching.
func WithCache(store cache.Cache, ttl time.Duration) Option {
	return func(c *Client) error {
		if store == nil {
			return errors.New(errors.ErrCodeInvalidInput, "cache cannot be nil")
		}
		c.cache = store
		c.ttl = ttl
		return nil
	}
}

// WithStrategy overrides the retry strategy.
func WithStrategy(s httputil.Strategy) Option {
	return func(c *Client) error {
		if s.MaxRetries < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "max retries cannot be negative")
		}
		c.strategy = s
		return nil
	}
}

// WithLogger sets the logger used for cache and retry diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithRefresh bypasses cache reads, forcing fresh registry calls. Results
// are still written back to the cache.
func WithRefresh(refresh bool) Option {
	return func(c *Client) error {
		c.refresh = refresh
		return nil
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.userAgent = ua
		return nil
	}
}

// searchOptions is the query surface of GET /v0/servers.
type searchOptions struct {
	Search string `url:"search,omitempty"`
	Limit  int    `url:"limit,omitempty"`
	Cursor string `url:"cursor,omitempty"`
}

// addOptions encodes opts as query parameters onto path.
func addOptions(path string, opts any) (string, error) {
	v, err := query.Values(opts)
	if err != nil {
		return path, err
	}
	u, err := url.Parse(path)
	if err != nil {
		return path, err
	}
	if q := v.Encode(); q != "" {
		u.RawQuery = q
	}
	return u.String(), nil
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
