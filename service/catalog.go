package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cinema-kiosk/model"
)

const (
	defaultUserAgent   = "cinema-kiosk/1.0"
	defaultMaxAttempts = 3
	defaultRetryBase   = 200 * time.Millisecond
	defaultRetryCap    = 1200 * time.Millisecond
)

var ErrEmptyCatalog = errors.New("catalog has no films")

// Client reads the film catalog from a JSON HTTP endpoint.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	maxAttempts int
	retryBase   time.Duration
	retryCap    time.Duration
}

// APIError is returned when the catalog responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Status     string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e == nil {
		return "catalog api error"
	}
	return fmt.Sprintf("catalog api error: %s: %s", e.Status, e.Body)
}

// IsNotFound reports whether the error represents a 404 from the catalog.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// NewClient creates a catalog client for baseURL. If httpClient is nil, a
// default client is used.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	return &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		userAgent:   defaultUserAgent,
		maxAttempts: defaultMaxAttempts,
		retryBase:   defaultRetryBase,
		retryCap:    defaultRetryCap,
	}
}

// NowShowing lists the films on sale. Entries without an id are dropped.
func (c *Client) NowShowing(ctx context.Context) ([]model.Film, error) {
	var films []model.Film
	if err := c.getJSON(ctx, c.baseURL+"/films", &films); err != nil {
		return nil, err
	}
	out := films[:0]
	for _, film := range films {
		if strings.TrimSpace(film.Id) != "" {
			out = append(out, film)
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptyCatalog
	}
	return out, nil
}

// Film fetches a single film by id.
func (c *Client) Film(ctx context.Context, id string) (model.Film, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Film{}, errors.New("film id is required")
	}
	var film model.Film
	if err := c.getJSON(ctx, fmt.Sprintf("%s/films/%s", c.baseURL, url.PathEscape(id)), &film); err != nil {
		return model.Film{}, err
	}
	return film, nil
}

// LoadCatalog returns the films from c, or the built-in catalog when c is
// nil or the request fails. The error is returned alongside the fallback so
// callers can log it.
func LoadCatalog(ctx context.Context, c *Client) ([]model.Film, error) {
	if c == nil || c.baseURL == "" {
		return DefaultCatalog(), nil
	}
	films, err := c.NowShowing(ctx)
	if err != nil {
		return DefaultCatalog(), err
	}
	return films, nil
}

// DefaultCatalog is the film list used when no catalog endpoint is set.
func DefaultCatalog() []model.Film {
	return []model.Film{
		{Id: "dune-part-two", Title: "Dune: Part Two", ContentRating: "12", Duration: "166 min"},
		{Id: "inside-out-2", Title: "Inside Out 2", ContentRating: "L", Duration: "96 min"},
		{Id: "the-substance", Title: "The Substance", ContentRating: "18", Duration: "141 min"},
		{Id: "flow", Title: "Flow", OriginalTitle: "Straume", ContentRating: "L", Duration: "85 min"},
		{Id: "conclave", Title: "Conclave", ContentRating: "12", Duration: "120 min"},
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	attempts := max(1, c.maxAttempts)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		retry, err := c.fetch(ctx, endpoint, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry || attempt == attempts {
			break
		}
		if waitErr := c.waitRetry(ctx, attempt); waitErr != nil {
			return waitErr
		}
	}
	return lastErr
}

// fetch performs one request and reports whether a failure is worth
// retrying.
func (c *Client) fetch(ctx context.Context, endpoint string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		retry := !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		return retry, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
		retry := res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= http.StatusInternalServerError
		return retry, &APIError{
			StatusCode: res.StatusCode,
			Status:     res.Status,
			Endpoint:   endpoint,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("decode response from %s: %w", endpoint, err)
	}
	return false, nil
}

func (c *Client) waitRetry(ctx context.Context, attempt int) error {
	timer := time.NewTimer(c.retryDelay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryDelay doubles from retryBase per attempt, capped at retryCap.
func (c *Client) retryDelay(attempt int) time.Duration {
	base, ceiling := c.retryBase, c.retryCap
	if base <= 0 {
		base = defaultRetryBase
	}
	if ceiling <= 0 {
		ceiling = defaultRetryCap
	}
	delay := base
	for i := 1; i < attempt && delay < ceiling; i++ {
		delay *= 2
	}
	return min(delay, ceiling)
}
