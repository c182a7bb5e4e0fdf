// Package omdb queries the OMDb API for movie metadata. The provider is
// treated as untrusted and possibly slow: every lookup is bounded by a
// context deadline and transient failures are retried a bounded number of
// times before the lookup is reported unavailable.
package omdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"moviweb/models"
)

// Sentinel errors returned by Lookup.
var (
	// ErrNotFound means OMDb answered but had no match for the title.
	ErrNotFound = errors.New("omdb: no match")

	// ErrUnavailable means the provider could not be reached, rate limited
	// the request, timed out or is not configured. Callers are expected to
	// degrade gracefully: an unavailable provider never blocks a create.
	ErrUnavailable = errors.New("omdb: unavailable")
)

const (
	defaultBaseURL = "https://www.omdbapi.com"

	// lookupAttempts bounds the retry loop for transient failures.
	lookupAttempts = 2
	retryDelay     = 300 * time.Millisecond
)

// Client handles OMDb API lookups.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates an OMDb client. An empty baseURL falls back to the public
// endpoint; an empty apiKey leaves the client unconfigured and every lookup
// reports ErrUnavailable.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// IsConfigured reports whether the client has an API key.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// omdbResponse is the subset of the OMDb payload this service consumes.
type omdbResponse struct {
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Director string `json:"Director"`
	Poster   string `json:"Poster"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// Lookup fetches metadata for a movie title. The whole call, retries
// included, runs under a single deadline derived from ctx.
func (c *Client) Lookup(ctx context.Context, title string) (*models.MovieInfo, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("api key not set: %w", ErrUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		info     *models.MovieInfo
		notFound bool
	)
	err := retry.Do(
		func() error {
			res, err := c.fetch(ctx, title)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					// Definitive miss, pointless to retry.
					notFound = true
					return retry.Unrecoverable(err)
				}
				return err
			}
			info = res
			return nil
		},
		retry.Attempts(lookupAttempts),
		retry.Delay(retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if notFound {
			return nil, ErrNotFound
		}
		log.Printf("[omdb] lookup %q failed: %v", title, err)
		return nil, fmt.Errorf("lookup %q: %w", title, ErrUnavailable)
	}

	return info, nil
}

// fetch performs a single OMDb request.
func (c *Client) fetch(ctx context.Context, title string) (*models.MovieInfo, error) {
	params := url.Values{}
	params.Set("t", title)
	params.Set("type", "movie")
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("create request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("omdb request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("omdb status %d", resp.StatusCode)
	default:
		// 401 and friends will not get better on retry.
		return nil, retry.Unrecoverable(fmt.Errorf("omdb status %d", resp.StatusCode))
	}

	var payload omdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if !strings.EqualFold(payload.Response, "True") {
		return nil, ErrNotFound
	}

	return &models.MovieInfo{
		Title:     payload.Title,
		Director:  normalizeField(payload.Director),
		Year:      parseYear(payload.Year),
		PosterURL: normalizeField(payload.Poster),
	}, nil
}

// normalizeField maps OMDb's "N/A" placeholder to an absent value.
func normalizeField(v string) string {
	v = strings.TrimSpace(v)
	if v == "N/A" {
		return ""
	}
	return v
}

// parseYear extracts the leading release year from OMDb's Year field, which
// may be a range like "2021" or "2012–2015".
func parseYear(v string) int {
	v = strings.TrimSpace(v)
	for _, sep := range []string{"–", "-"} {
		if idx := strings.Index(v, sep); idx >= 0 {
			v = v[:idx]
			break
		}
	}
	v = strings.TrimSpace(v)
	year, err := strconv.Atoi(v)
	if err != nil || year <= 0 {
		return 0
	}
	return year
}
