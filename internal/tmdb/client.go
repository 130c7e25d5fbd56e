// Package tmdb is a small client for The Movie Database API v3.
//
// Authentication uses the v4 read access token as a Bearer header.  The key
// is passed per call because it is resolved from the credential store on
// every request.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movies/internal/metrics"
)

const (
	// DefaultBaseURL is the public TMDB API root.
	DefaultBaseURL = "https://api.themoviedb.org/3"
	// ImageBaseURL serves poster images; the size segment follows it.
	ImageBaseURL = "http://image.tmdb.org/t/p"

	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4096
)

// ErrMalformed is returned when TMDB answers 200 with a body that is not a
// usable movie.
var ErrMalformed = errors.New("unexpected response payload")

// Config configures the client.  Zero values fall back to defaults.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client calls the TMDB REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// NewClient creates a TMDB client.  m may be nil.
func NewClient(cfg Config, m *metrics.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		metrics:    m,
	}
}

// FetchByID retrieves movie details for a TMDB id.
func (c *Client) FetchByID(ctx context.Context, apiKey string, id int) (*Movie, error) {
	var m Movie
	if err := c.get(ctx, "movie", apiKey, "/movie/"+strconv.Itoa(id), nil, &m); err != nil {
		return nil, err
	}
	if m.ID == 0 || m.Genres == nil {
		return nil, fmt.Errorf("tmdb movie %d: %w", id, ErrMalformed)
	}
	return &m, nil
}

// Search runs a movie title search.  page starts at 1.
func (c *Client) Search(ctx context.Context, apiKey, query string, page int) (*SearchResponse, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))

	var res SearchResponse
	if err := c.get(ctx, "search", apiKey, "/search/movie", params, &res); err != nil {
		return nil, err
	}
	if res.Results == nil {
		res.Results = []SearchResult{}
	}
	return &res, nil
}

// get performs a GET request and decodes the JSON body into dest.
func (c *Client) get(ctx context.Context, endpoint, apiKey, path string, params url.Values, dest any) (err error) {
	started := time.Now()
	defer func() { c.metrics.ObserveProvider(endpoint, started, err) }()

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("tmdb request build: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.StatusMessage != "" {
			err = fmt.Errorf("tmdb: HTTP %d for %s: %s", resp.StatusCode, path, apiErr.StatusMessage)
		} else {
			err = fmt.Errorf("tmdb: HTTP %d for %s", resp.StatusCode, path)
		}
		log.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("tmdb request failed")
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("tmdb decode %s: %w: %v", path, ErrMalformed, err)
	}
	return nil
}
