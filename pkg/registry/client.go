// Package registry is a client for the MCP server registry REST API.
//
// The client layers a TTL response cache and retry-with-backoff around the
// registry's read endpoints. Lookups flow cache → retried HTTP call →
// schema validation → cache write-back; a failed cache write degrades to a
// fresh fetch and never fails the logical call.
package registry

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mcptooling/mcpreg/pkg/buildinfo"
	"github.com/mcptooling/mcpreg/pkg/cache"
	"github.com/mcptooling/mcpreg/pkg/config"
	"github.com/mcptooling/mcpreg/pkg/errors"
	"github.com/mcptooling/mcpreg/pkg/httputil"
)

// Client talks to the MCP registry. Construct with [New]; the zero value
// is not usable. Safe for concurrent use.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string

	cache   cache.Cache
	ttl     time.Duration
	refresh bool

	strategy httputil.Strategy
	logger   *log.Logger
}

// New creates a registry client from cfg, then applies opts in order.
// The caller owns the returned client and should Close it when done.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	if err := errors.ValidateURL(cfg.BaseURL); err != nil {
		return nil, err
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = buildinfo.UserAgent()
	}

	c := &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		baseURL:   trimSlash(cfg.BaseURL),
		userAgent: ua,
		cache:     cache.NewNullCache(),
		ttl:       cfg.CacheTTL,
		strategy: httputil.Strategy{
			MaxRetries: cfg.MaxRetries,
			BaseDelay:  cfg.RetryDelay,
			MaxDelay:   cfg.MaxRetryDelay,
		},
		logger: log.New(io.Discard),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.strategy.Logf == nil {
		c.strategy.Logf = func(format string, args ...any) {
			c.logger.Debugf(format, args...)
		}
	}
	return c, nil
}

// Close releases idle connections held by the HTTP client. The cache
// backend is owned by the caller and is not closed here.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// Search returns the active servers matching term. The term is required;
// an unfiltered listing would return the whole registry.
func (c *Client) Search(ctx context.Context, term string) (*SearchResponse, error) {
	if err := errors.ValidateSearchTerm(term); err != nil {
		return nil, err
	}
	term = strings.TrimSpace(term)

	key := cache.SearchKey(term)
	var cached SearchResponse
	if hit := c.cacheGet(ctx, key, &cached); hit {
		c.logger.Debug("cache hit", "key", key)
		return &cached, nil
	}

	path, err := addOptions("v0/servers", searchOptions{Search: term})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode search query")
	}

	var resp SearchResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}

	// Deprecated and deleted entries never surface.
	active := make([]Server, 0, len(resp.Servers))
	for _, srv := range resp.Servers {
		if srv.Active() {
			active = append(active, srv)
		}
	}
	result := &SearchResponse{Servers: active}

	c.cacheSet(ctx, key, result)
	return result, nil
}

// GetByID fetches one server by its registry-assigned ID. A server that
// exists but is not active yields (nil, nil), and that answer is cached.
// An unknown ID yields a SERVER_NOT_FOUND error.
func (c *Client) GetByID(ctx context.Context, id string) (*Server, error) {
	if err := errors.ValidateServerID(id); err != nil {
		return nil, err
	}

	key := cache.ServerKey(id)
	var cached *Server
	if hit := c.cacheGet(ctx, key, &cached); hit {
		c.logger.Debug("cache hit", "key", key)
		return cached, nil
	}

	var srv Server
	if err := c.get(ctx, "v0/servers/"+url.PathEscape(id), &srv); err != nil {
		return nil, err
	}

	var result *Server
	if srv.Active() {
		result = &srv
	} else {
		c.logger.Debug("filtering non-active server", "id", id, "status", srv.Status)
	}

	c.cacheSet(ctx, key, result)
	return result, nil
}

// GetByName resolves a server by name: search, prefer an exact name match,
// fall back to the first case-insensitive substring match, then fetch the
// full record by ID. Returns (nil, nil) when nothing matches; the negative
// answer is cached.
func (c *Client) GetByName(ctx context.Context, name string) (*Server, error) {
	if err := errors.ValidateServerName(name); err != nil {
		return nil, err
	}

	key := cache.ServerNameKey(name)
	var cached *Server
	if hit := c.cacheGet(ctx, key, &cached); hit {
		c.logger.Debug("cache hit", "key", key)
		return cached, nil
	}

	found, err := c.Search(ctx, name)
	if err != nil {
		return nil, err
	}

	// The registry publishes one entry per version, so a name can match
	// several results. Collect every entry for the matched name and let
	// LatestActive pick the version to resolve.
	matched := name
	matches := matchesByName(found.Servers, matched)
	if len(matches) == 0 {
		lower := strings.ToLower(name)
		for _, srv := range found.Servers {
			if strings.Contains(strings.ToLower(srv.Name), lower) {
				matched = srv.Name
				break
			}
		}
		matches = matchesByName(found.Servers, matched)
	}

	var result *Server
	if pick := LatestActive(matches); pick != nil {
		result, err = c.GetByID(ctx, pick.ID())
		if err != nil {
			return nil, err
		}
	}

	c.cacheSet(ctx, key, result)
	return result, nil
}

// matchesByName returns every search result carrying exactly name.
func matchesByName(servers []Server, name string) []Server {
	var matches []Server
	for _, srv := range servers {
		if srv.Name == name {
			matches = append(matches, srv)
		}
	}
	return matches
}

// get performs a retried GET against path (relative to the base URL) and
// decodes the body into v.
func (c *Client) get(ctx context.Context, path string, v any) error {
	op := "GET /" + path
	err := httputil.Retry(ctx, c.strategy, op, func() error {
		return c.doGet(ctx, path, v)
	})
	if err == nil {
		return nil
	}

	var exhausted *httputil.ExhaustedError
	if stderrors.As(err, &exhausted) {
		return errors.Wrap(errors.ErrCodeRetryExhausted, err,
			"registry unavailable after %d attempts", exhausted.Attempts)
	}
	return err
}

// doGet is one attempt: request, status classification, decode.
func (c *Client) doGet(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+path, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "request %s", path))
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeParse, err, "decode response from %s", path)
	}
	return nil
}

// checkStatus maps HTTP statuses to coded errors and tags the transient
// ones as retryable.
func (c *Client) checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeServerNotFound, "server not found")
	case code == http.StatusTooManyRequests:
		return httputil.Retryable(errors.New(errors.ErrCodeRateLimited, "registry rate limit exceeded"))
	case code >= 500:
		return httputil.Retryable(errors.New(errors.ErrCodeAPI, "registry error: %s", statusText(resp)))
	default:
		return errors.New(errors.ErrCodeAPI, "registry rejected request: %s", statusText(resp))
	}
}

// statusText extracts the registry's JSON error message when it sent one,
// falling back to the HTTP status line.
func statusText(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var ae apiError
		if json.Unmarshal(body, &ae) == nil && ae.text() != "" {
			return fmt.Sprintf("%s (HTTP %d)", ae.text(), resp.StatusCode)
		}
	}
	return resp.Status
}

// cacheGet loads a cached value into v. Backend errors are logged and
// treated as misses.
func (c *Client) cacheGet(ctx context.Context, key string, v any) bool {
	if c.refresh {
		return false
	}
	data, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Debug("cache read failed", "key", key, "err", err)
		return false
	}
	if !hit {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Debug("cache entry corrupt", "key", key, "err", err)
		_ = c.cache.Delete(ctx, key)
		return false
	}
	return true
}

// cacheSet stores v under key. Caching is an optimization, so a failed
// write is logged and otherwise ignored.
func (c *Client) cacheSet(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Debug("cache encode failed", "key", key, "err", err)
		return
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Debug("cache write failed", "key", key, "err", err)
	}
}
