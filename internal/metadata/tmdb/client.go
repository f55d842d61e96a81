// Package tmdb provides a minimal client for The Movie Database API.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/reelmatch/reelmatch-server/internal/ratelimit"
)

const (
	// TMDB allows roughly 40 requests per second; stay well below it.
	defaultRPS   = 20.0
	defaultBurst = 20

	defaultTimeout = 30 * time.Second

	// Error bodies are only logged, so cap how much is read.
	maxErrorBody = 4 << 10
)

// Config configures a Client.
type Config struct {
	APIKey       string
	BaseURL      string // e.g. https://api.themoviedb.org/3
	ImageBaseURL string // e.g. https://image.tmdb.org/t/p/w500
	Timeout      time.Duration
}

// Movie is the subset of TMDB movie details the server uses.
type Movie struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	PosterPath string `json:"poster_path"`
}

// Client is a rate-limited TMDB API client.
type Client struct {
	http         *http.Client
	limiter      *ratelimit.KeyedRateLimiter
	logger       *slog.Logger
	baseURL      *url.URL
	imageBaseURL string
	apiKey       string
}

// New creates a TMDB client.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		http: &http.Client{
			Timeout: timeout,
		},
		limiter:      ratelimit.New(defaultRPS, defaultBurst),
		logger:       logger,
		baseURL:      base,
		imageBaseURL: strings.TrimRight(cfg.ImageBaseURL, "/"),
		apiKey:       cfg.APIKey,
	}, nil
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// ImageURL joins a poster path onto the configured image base.
func (c *Client) ImageURL(posterPath string) string {
	if !strings.HasPrefix(posterPath, "/") {
		posterPath = "/" + posterPath
	}
	return c.imageBaseURL + posterPath
}

// GetMovie fetches movie details by TMDB id.
func (c *Client) GetMovie(ctx context.Context, movieID int) (*Movie, error) {
	path := "/movie/" + strconv.Itoa(movieID)

	body, status, err := c.doRequest(ctx, path)
	if err != nil {
		return nil, wrapError("getMovie", movieID, status, err)
	}

	var movie Movie
	if err := json.Unmarshal(body, &movie); err != nil {
		return nil, wrapError("getMovie", movieID, status, fmt.Errorf("%w: %w", ErrDecode, err))
	}

	return &movie, nil
}

// doRequest executes a GET against the API with rate limiting. The returned
// status is 0 when no response was received.
func (c *Client) doRequest(ctx context.Context, path string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx, c.baseURL.Host); err != nil {
		return nil, 0, fmt.Errorf("rate limit wait: %w", err)
	}

	u := *c.baseURL
	u.Path += path
	query := url.Values{}
	query.Set("api_key", c.apiKey)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ReelMatch/1.0")

	c.logger.Debug("tmdb request",
		"url", redact(u),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		// url.Error embeds the full URL, key included.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = redact(u)
		}
		return nil, 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("tmdb response",
		"url", redact(u),
		"status", resp.StatusCode,
	)

	if resp.StatusCode == http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
		}
		return body, resp.StatusCode, nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	switch resp.StatusCode {
	case http.StatusNotFound:
		return nil, resp.StatusCode, ErrNotFound
	case http.StatusUnauthorized:
		return nil, resp.StatusCode, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, resp.StatusCode, ErrRateLimited
	default:
		if resp.StatusCode >= 500 {
			return nil, resp.StatusCode, ErrServer
		}
		return nil, resp.StatusCode, fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode, string(snippet))
	}
}

// redact returns u as a string with the api_key query value masked.
func redact(u url.URL) string {
	q := u.Query()
	if q.Has("api_key") {
		q.Set("api_key", "REDACTED")
	}
	u.RawQuery = q.Encode()
	return u.String()
}
