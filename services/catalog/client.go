// Package catalog talks to the remote content catalog. The rest of the
// system only sees the Provider interface: structured payloads in, never a
// partially constructed model.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"reelkeep/models"
)

// Provider is the remote catalog seen by the library layer.
type Provider interface {
	GetMovie(ctx context.Context, id int) (*models.MoviePayload, error)
	GetSeries(ctx context.Context, id int) (*models.SeriesPayload, error)
	SeasonEpisodes(ctx context.Context, showID, seasonNumber int) ([]models.EpisodePayload, error)
	Languages(ctx context.Context) ([]models.LanguagePayload, error)
	SearchMulti(ctx context.Context, query string) ([]models.SearchResult, error)
}

// Config configures the catalog client.
type Config struct {
	BaseURL  string
	APIKey   string
	Language string // ISO 639-1 code appended to every request
	HTTPC    *http.Client
	Logger   *slog.Logger
}

// Client is the HTTP implementation of Provider. Transient failures
// (connection errors, 429, 5xx) are retried with exponential backoff;
// anything else fails fast.
type Client struct {
	baseURL  string
	apiKey   string
	language string
	httpc    *http.Client
	log      *slog.Logger
}

// NewClient builds a catalog client. The zero HTTP client gets a 15s
// per-request timeout; the caller's context bounds the whole operation.
func NewClient(cfg Config) *Client {
	httpc := cfg.HTTPC
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	lang := cfg.Language
	if lang == "" {
		lang = "en"
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		language: lang,
		httpc:    httpc,
		log:      log,
	}
}

// transientError marks a response worth retrying.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, v any) error {
	if q == nil {
		q = url.Values{}
	}
	q.Set("language", c.language)
	u := c.baseURL + path + "?" + q.Encode()

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
			req.Header.Set("Accept", "application/json")

			c.log.Debug("catalog.request", "url", u)
			resp, err := c.httpc.Do(req)
			if err != nil {
				return &transientError{err}
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
				return &transientError{fmt.Errorf("catalog get %s: %s: %s",
					path, resp.Status, strings.TrimSpace(string(body)))}
			}
			if resp.StatusCode >= 300 {
				body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
				return retry.Unrecoverable(fmt.Errorf("catalog get %s: %s: %s",
					path, resp.Status, strings.TrimSpace(string(body))))
			}
			return json.NewDecoder(resp.Body).Decode(v)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(300*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			_, ok := err.(*transientError)
			return ok
		}),
	)
}

// GetMovie fetches full movie details by catalog id.
func (c *Client) GetMovie(ctx context.Context, id int) (*models.MoviePayload, error) {
	var p models.MoviePayload
	if err := c.getJSON(ctx, fmt.Sprintf("/movie/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetSeries fetches full series details, including the season summaries, by
// catalog id. Episode lists come separately via SeasonEpisodes.
func (c *Client) GetSeries(ctx context.Context, id int) (*models.SeriesPayload, error) {
	var p models.SeriesPayload
	if err := c.getJSON(ctx, fmt.Sprintf("/tv/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SeasonEpisodes fetches the episode list of one season.
func (c *Client) SeasonEpisodes(ctx context.Context, showID, seasonNumber int) ([]models.EpisodePayload, error) {
	var body struct {
		Episodes []models.EpisodePayload `json:"episodes"`
	}
	path := fmt.Sprintf("/tv/%d/season/%d", showID, seasonNumber)
	if err := c.getJSON(ctx, path, nil, &body); err != nil {
		return nil, err
	}
	return body.Episodes, nil
}

// Languages fetches the catalog's language list, used to seed the local
// lookup table on first run.
func (c *Client) Languages(ctx context.Context) ([]models.LanguagePayload, error) {
	var out []models.LanguagePayload
	if err := c.getJSON(ctx, "/configuration/languages", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchMulti searches movies and series together.
func (c *Client) SearchMulti(ctx context.Context, query string) ([]models.SearchResult, error) {
	var body struct {
		Results []models.SearchResult `json:"results"`
	}
	q := url.Values{}
	q.Set("query", query)
	if err := c.getJSON(ctx, "/search/multi", q, &body); err != nil {
		return nil, err
	}
	return body.Results, nil
}
