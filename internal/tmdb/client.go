/*
Package tmdb implements a small client for The Movie Database (TMDb) v3 REST
API: movie details for the lookup cache, and popular/discover listings that
feed the swipe candidate pool.

Requests are authenticated with a v4 read access token sent as a bearer
credential, and paced by a token-bucket limiter.

API Reference: https://developer.themoviedb.org/reference/intro/getting-started
*/
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
	"golang.org/x/time/rate"

	"github.com/mmynk/watchtogether/internal/apperr"
	"github.com/mmynk/watchtogether/internal/metrics"
	"github.com/mmynk/watchtogether/internal/models"
)

// DefaultBaseURL is the TMDb v3 API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// Config holds client settings.
type Config struct {
	BaseURL string
	// Token is the bearer credential. An empty token fails every request
	// with an unauthorized error without touching the network.
	Token string
	// RequestsPerSecond paces outbound calls. Zero disables pacing.
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Client provides access to the TMDb REST API.
type Client struct {
	baseURL    string
	token      string
	limiter    *rate.Limiter
	httpClient *http.Client
}

// NewClient creates a new TMDb client.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = max(1, int(cfg.RequestsPerSecond))
	}

	return &Client{
		baseURL: baseURL,
		token:   cfg.Token,
		limiter: rate.NewLimiter(limit, burst),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// movieResponse is the subset of /movie/{id} the service reads.
type movieResponse struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Overview    string         `json:"overview"`
	PosterPath  *string        `json:"poster_path"`
	Genres      []models.Genre `json:"genres"`
	Runtime     *int           `json:"runtime"`
	ReleaseDate string         `json:"release_date"`
	VoteAverage float64        `json:"vote_average"`
}

// pageResponse is the envelope of list endpoints.
type pageResponse struct {
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	Results    []struct {
		ID int64 `json:"id"`
	} `json:"results"`
}

// FetchMovie retrieves the details of one movie.
//
// Errors are classified as apperr.Unauthorized (missing or rejected
// credential), apperr.NotFound (any other non-2xx status) or apperr.Network
// (transport failure). Nothing is retried.
func (c *Client) FetchMovie(ctx context.Context, id int64) (*models.Movie, error) {
	body, err := c.get(ctx, "movie", "/movie/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, err
	}

	var resp movieResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperr.Wrap(apperr.KindNetwork, err, "malformed movie response")
	}

	movie := &models.Movie{
		ID:          resp.ID,
		Title:       resp.Title,
		Overview:    resp.Overview,
		Genres:      resp.Genres,
		ReleaseDate: resp.ReleaseDate,
		VoteAverage: resp.VoteAverage,
		Raw:         body,
	}
	if resp.PosterPath != nil {
		movie.PosterPath = *resp.PosterPath
	}
	if resp.Runtime != nil {
		movie.Runtime = *resp.Runtime
	}

	return movie, nil
}

// Popular returns the ids on one page of the popular movies listing.
func (c *Client) Popular(ctx context.Context, page int) ([]int64, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(max(1, page)))
	return c.listIDs(ctx, "popular", "/movie/popular", params)
}

// Discover returns the ids on one page of movies matching any of genreIDs,
// most popular first.
func (c *Client) Discover(ctx context.Context, genreIDs []int, page int) ([]int64, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(max(1, page)))
	params.Set("sort_by", "popularity.desc")
	if len(genreIDs) > 0 {
		ids := make([]string, len(genreIDs))
		for i, g := range genreIDs {
			ids[i] = strconv.Itoa(g)
		}
		// "|" is OR in TMDb's discover filters.
		params.Set("with_genres", strings.Join(ids, "|"))
	}
	return c.listIDs(ctx, "discover", "/discover/movie", params)
}

func (c *Client) listIDs(ctx context.Context, endpoint, path string, params url.Values) ([]int64, error) {
	body, err := c.get(ctx, endpoint, path, params)
	if err != nil {
		return nil, err
	}

	var resp pageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperr.Wrap(apperr.KindNetwork, err, "malformed %s response", endpoint)
	}

	ids := make([]int64, 0, len(resp.Results))
	for _, r := range resp.Results {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// get performs an authenticated GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values) ([]byte, error) {
	if c.token == "" {
		metrics.TMDBRequests.WithLabelValues(endpoint, "unauthorized").Inc()
		return nil, apperr.New(apperr.KindUnauthorized, "movie metadata credential is not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.TMDBRequests.WithLabelValues(endpoint, "network").Inc()
		return nil, apperr.Wrap(apperr.KindNetwork, err, "movie metadata request not sent")
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.TMDBRequests.WithLabelValues(endpoint, "network").Inc()
		return nil, apperr.Wrap(apperr.KindNetwork, err, "movie metadata service unreachable")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.TMDBRequests.WithLabelValues(endpoint, "network").Inc()
		return nil, apperr.Wrap(apperr.KindNetwork, err, "failed to read movie metadata response")
	}

	slog.Debug("TMDb request",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if err := classifyStatus(resp.StatusCode, body); err != nil {
		metrics.TMDBRequests.WithLabelValues(endpoint, string(apperr.KindOf(err))).Inc()
		return nil, err
	}

	metrics.TMDBRequests.WithLabelValues(endpoint, "ok").Inc()
	return body, nil
}

// statusMessage is TMDb's error envelope.
type statusMessage struct {
	StatusMessage string `json:"status_message"`
}

func classifyStatus(code int, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}

	var msg statusMessage
	_ = json.Unmarshal(body, &msg)
	cause := errors.New(http.StatusText(code))
	if msg.StatusMessage != "" {
		cause = errors.New(msg.StatusMessage)
	}

	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperr.Wrap(apperr.KindUnauthorized, cause, "movie metadata credential rejected (status %d)", code)
	default:
		return apperr.Wrap(apperr.KindNotFound, cause, "movie metadata unavailable (status %d)", code)
	}
}
