package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

const defaultBaseURL = "https://api.themoviedb.org"
const defaultCacheTTL = 24 * time.Hour

// ErrNotFound is returned when a title doesn't exist in TMDB.
var ErrNotFound = errors.New("title not found")

// statusError is a non-2xx response. 5xx and 429 are worth retrying.
type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string { return "TMDB API error: " + e.status }

func (e *statusError) retryable() bool {
	return e.code >= 500 || e.code == http.StatusTooManyRequests
}

// Client is a TMDB API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	attempts   uint
	delay      time.Duration
	movies     *cache[*Movie]
	shows      *cache[*TVShow]
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithCacheTTL sets the cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.movies = newCache[*Movie](ttl)
		c.shows = newCache[*TVShow](ttl)
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetry sets how many attempts a request gets and the base backoff delay.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.delay = delay
	}
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		attempts: 3,
		delay:    500 * time.Millisecond,
		movies:   newCache[*Movie](defaultCacheTTL),
		shows:    newCache[*TVShow](defaultCacheTTL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetMovie fetches movie metadata by TMDB ID.
func (c *Client) GetMovie(ctx context.Context, tmdbID int64) (*Movie, error) {
	if movie, ok := c.movies.get(tmdbID); ok {
		return movie, nil
	}

	var movie Movie
	if err := c.get(ctx, fmt.Sprintf("/3/movie/%d", tmdbID), "", &movie); err != nil {
		return nil, err
	}

	c.movies.set(tmdbID, &movie)
	return &movie, nil
}

// GetTVShow fetches show metadata by TMDB ID, including external ids and keywords.
func (c *Client) GetTVShow(ctx context.Context, tmdbID int64) (*TVShow, error) {
	if show, ok := c.shows.get(tmdbID); ok {
		return show, nil
	}

	var show TVShow
	if err := c.get(ctx, fmt.Sprintf("/3/tv/%d", tmdbID), "external_ids,keywords", &show); err != nil {
		return nil, err
	}

	c.shows.set(tmdbID, &show)
	return &show, nil
}

// get fetches path into out, retrying transient failures.
func (c *Client) get(ctx context.Context, path, appendTo string, out any) error {
	url := fmt.Sprintf("%s%s?api_key=%s", c.baseURL, path, c.apiKey)
	if appendTo != "" {
		url += "&append_to_response=" + appendTo
	}

	return retry.Do(
		func() error { return c.fetch(ctx, url, out) },
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var se *statusError
			if errors.As(err, &se) {
				return se.retryable()
			}
			return !errors.Is(err, ErrNotFound) && ctx.Err() == nil
		}),
	)
}

func (c *Client) fetch(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode, status: resp.Status}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
