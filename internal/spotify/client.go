package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultAPIURL is the Web API base.
	DefaultAPIURL = "https://api.spotify.com/v1"

	maxLimit = 50
)

// ErrUnauthorized is returned when the API rejects the access token.
var ErrUnauthorized = errors.New("spotify: unauthorized")

// APIError is a non-2xx response other than 401.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify: HTTP %d: %s", e.Status, e.Message)
}

// TokenSource yields a bearer token for each request.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed access token.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) { return string(s), nil }

// Client is a read-only Web API client for the current user's listening data.
type Client struct {
	tokens     TokenSource
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at another API root, e.g. an httptest server.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client authenticated by tokens.
func NewClient(tokens TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		tokens: tokens,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: DefaultAPIURL,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetTopArtists returns the user's top artists for timeRange.
func (c *Client) GetTopArtists(ctx context.Context, timeRange TimeRange, limit int) ([]Artist, error) {
	q := url.Values{}
	q.Set("time_range", string(timeRange))
	q.Set("limit", strconv.Itoa(clampLimit(limit)))

	var page paging[Artist]
	if err := c.get(ctx, "/me/top/artists", q, &page); err != nil {
		return nil, fmt.Errorf("top artists: %w", err)
	}
	return page.Items, nil
}

// GetTopTracks returns the user's top tracks for timeRange.
func (c *Client) GetTopTracks(ctx context.Context, timeRange TimeRange, limit int) ([]Track, error) {
	q := url.Values{}
	q.Set("time_range", string(timeRange))
	q.Set("limit", strconv.Itoa(clampLimit(limit)))

	var page paging[Track]
	if err := c.get(ctx, "/me/top/tracks", q, &page); err != nil {
		return nil, fmt.Errorf("top tracks: %w", err)
	}
	return page.Items, nil
}

// GetRecentlyPlayedTracks returns the most recent plays, newest first.
func (c *Client) GetRecentlyPlayedTracks(ctx context.Context, limit int) ([]RecentlyPlayedTrack, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(clampLimit(limit)))

	var page paging[RecentlyPlayedTrack]
	if err := c.get(ctx, "/me/player/recently-played", q, &page); err != nil {
		return nil, fmt.Errorf("recently played: %w", err)
	}
	return page.Items, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("token: %w", err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("spotify request", "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &APIError{Status: resp.StatusCode, Message: errorMessage(body)}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// errorMessage pulls {"error":{"message":...}} out of an error body, falling
// back to the raw text.
func errorMessage(body []byte) string {
	var env struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return strings.TrimSpace(string(body))
}

func clampLimit(n int) int {
	switch {
	case n < 1:
		return 1
	case n > maxLimit:
		return maxLimit
	}
	return n
}
