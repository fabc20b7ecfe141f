// Package github fetches the public profile and recent repositories shown by
// the desktop's GitHub widgets. Responses are passed through untouched.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"portfolioos/pkg/logger"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com"
	// DefaultTimeout bounds a single upstream request.
	DefaultTimeout = 10 * time.Second
	// DefaultCacheTTL is how long a response is reused. Unauthenticated
	// clients get 60 requests per hour.
	DefaultCacheTTL = 5 * time.Minute
	// RepoLimit is the number of repositories fetched, most recently
	// updated first.
	RepoLimit = 6
)

// ErrNoUsername is returned when no GitHub username is configured.
var ErrNoUsername = errors.New("github username not configured")

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github: %s returned %d", e.URL, e.StatusCode)
}

// Config configures a Client.
type Config struct {
	BaseURL   string
	Username  string
	Token     string
	Timeout   time.Duration
	CacheTTL  time.Duration
	UserAgent string
}

type cacheEntry struct {
	body    json.RawMessage
	expires time.Time
}

// Client talks to the GitHub REST API.
type Client struct {
	collector *colly.Collector
	base      string
	log       *logger.Logger
	now       func() time.Time

	mu       sync.RWMutex
	username string
	token    string
	cacheTTL time.Duration
	cache    map[string]cacheEntry
}

// New creates a Client.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "portfolio-os"
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid github base URL %q", cfg.BaseURL)
	}

	c := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(cfg.Timeout)

	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*" + base.Hostname() + "*",
		Parallelism: 2,
	}); err != nil {
		return nil, fmt.Errorf("failed to set github rate limit: %w", err)
	}

	return &Client{
		collector: c,
		base:      base.String(),
		log:       log,
		now:       time.Now,
		username:  cfg.Username,
		token:     cfg.Token,
		cacheTTL:  cfg.CacheTTL,
		cache:     make(map[string]cacheEntry),
	}, nil
}

// Username returns the configured account.
func (c *Client) Username() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.username
}

// SetUsername changes the account and drops cached responses.
func (c *Client) SetUsername(username string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.username = username
	c.cache = make(map[string]cacheEntry)
}

// SetToken changes the API token. An empty token makes anonymous requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Profile returns the raw JSON of GET /users/{username}.
func (c *Client) Profile(ctx context.Context) (json.RawMessage, error) {
	username := c.Username()
	if username == "" {
		return nil, ErrNoUsername
	}
	return c.get(ctx, "/users/"+url.PathEscape(username))
}

// Repos returns the raw JSON of the user's most recently updated repositories.
func (c *Client) Repos(ctx context.Context) (json.RawMessage, error) {
	username := c.Username()
	if username == "" {
		return nil, ErrNoUsername
	}
	q := url.Values{}
	q.Set("sort", "updated")
	q.Set("per_page", fmt.Sprint(RepoLimit))
	return c.get(ctx, "/users/"+url.PathEscape(username)+"/repos?"+q.Encode())
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	target := c.base + path

	if body, ok := c.cached(target); ok {
		return body, nil
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()

	// Clones share the transport and limits but not callbacks, so
	// concurrent fetches do not see each other's responses.
	collector := c.collector.Clone()
	collector.Context = ctx

	var (
		body     []byte
		fetchErr error
	)
	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "application/vnd.github+json")
		if token != "" {
			r.Headers.Set("Authorization", "token "+token)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode >= http.StatusBadRequest {
			fetchErr = &StatusError{URL: target, StatusCode: r.StatusCode}
			return
		}
		fetchErr = err
	})

	if err := collector.Visit(target); err != nil && fetchErr == nil {
		fetchErr = err
	}
	if fetchErr != nil {
		c.log.Warn("GitHub request failed", "url", target, "error", fetchErr.Error())
		return nil, fetchErr
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("github: %s returned invalid JSON", target)
	}

	raw := json.RawMessage(body)
	c.store(target, raw)
	return raw, nil
}

func (c *Client) cached(key string) (json.RawMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cacheTTL < 0 {
		return nil, false
	}
	e, ok := c.cache[key]
	if !ok || c.now().After(e.expires) {
		return nil, false
	}
	return e.body, true
}

func (c *Client) store(key string, body json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cacheTTL < 0 {
		return
	}
	c.cache[key] = cacheEntry{body: body, expires: c.now().Add(c.cacheTTL)}
}

// Purge drops every cached response.
func (c *Client) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string]cacheEntry)
}
