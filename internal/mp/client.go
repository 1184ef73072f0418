package mp

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Config holds the MoviePilot connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the MoviePilot REST API. Every call carries ?token=<api key>.
// TLS verification is disabled because MoviePilot is commonly deployed with
// self-signed certificates. Safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// ListSubscriptions returns every subscription.
func (c *Client) ListSubscriptions(ctx context.Context) ([]Subscribe, error) {
	var ret []Subscribe
	if err := c.get(ctx, "/api/v1/subscribe/list", nil, &ret); err != nil {
		return nil, err
	}
	if ret == nil {
		ret = []Subscribe{}
	}
	return ret, nil
}

// AddSubscription creates a subscription.
func (c *Client) AddSubscription(ctx context.Context, req SubscribeRequest) (*Response, error) {
	var ret Response
	if err := c.do(ctx, http.MethodPost, "/api/v1/subscribe/", nil, req, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

// DeleteSubscription removes a subscription by its MoviePilot id.
func (c *Client) DeleteSubscription(ctx context.Context, id int) (*Response, error) {
	var ret Response
	if err := c.do(ctx, http.MethodDelete, "/api/v1/subscribe/"+strconv.Itoa(id), nil, nil, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

// GetSubscriptionByMedia looks up a subscription by media id ("tmdb:12345").
// MoviePilot answers with an empty record (id 0) when nothing matches.
func (c *Client) GetSubscriptionByMedia(ctx context.Context, mediaID string, season *int) (*Subscribe, error) {
	query := url.Values{}
	if season != nil {
		query.Set("season", strconv.Itoa(*season))
	}
	var ret Subscribe
	if err := c.get(ctx, "/api/v1/subscribe/media/"+url.PathEscape(mediaID), query, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

// PopularSubscriptions returns the most subscribed media of one type.
func (c *Client) PopularSubscriptions(ctx context.Context, q PopularQuery) ([]MediaInfo, error) {
	query := url.Values{}
	query.Set("stype", q.TypeLabel)
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("count", strconv.Itoa(q.Count))
	if q.GenreID != nil {
		query.Set("genre_id", strconv.Itoa(*q.GenreID))
	}
	if q.MinRating != nil {
		query.Set("min_rating", strconv.FormatFloat(*q.MinRating, 'f', -1, 64))
	}
	return c.mediaList(ctx, "/api/v1/subscribe/popular", query)
}

// SearchMedia searches media by title.
func (c *Client) SearchMedia(ctx context.Context, title string, page, count int) ([]MediaInfo, error) {
	query := url.Values{}
	query.Set("title", title)
	query.Set("type", "media")
	query.Set("page", strconv.Itoa(page))
	query.Set("count", strconv.Itoa(count))
	return c.mediaList(ctx, "/api/v1/media/search", query)
}

// Recommend returns TMDB recommendations relayed by MoviePilot.
func (c *Client) Recommend(ctx context.Context, tmdbID int, typeLabel string) ([]MediaInfo, error) {
	return c.mediaList(ctx, fmt.Sprintf("/api/v1/tmdb/recommend/%d/%s", tmdbID, url.PathEscape(typeLabel)), nil)
}

// Similar returns similar titles relayed by MoviePilot.
func (c *Client) Similar(ctx context.Context, tmdbID int, typeLabel string) ([]MediaInfo, error) {
	return c.mediaList(ctx, fmt.Sprintf("/api/v1/tmdb/similar/%d/%s", tmdbID, url.PathEscape(typeLabel)), nil)
}

// Statistic returns library media counts.
func (c *Client) Statistic(ctx context.Context) (*Statistic, error) {
	var ret Statistic
	if err := c.get(ctx, "/api/v1/dashboard/statistic2", nil, &ret); err != nil {
		return nil, err
	}
	return &ret, nil
}

// Storage returns storage usage as reported by MoviePilot.
func (c *Client) Storage(ctx context.Context) (json.RawMessage, error) {
	return c.raw(ctx, "/api/v1/dashboard/storage2", nil)
}

// Downloader returns downloader transfer info.
func (c *Client) Downloader(ctx context.Context) (json.RawMessage, error) {
	return c.raw(ctx, "/api/v1/dashboard/downloader2", nil)
}

// DownloadHistory returns one page of the download history.
func (c *Client) DownloadHistory(ctx context.Context, page, count int) (json.RawMessage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("count", strconv.Itoa(count))
	ret, err := c.raw(ctx, "/api/v1/history/download", query)
	if err != nil {
		return nil, err
	}
	if len(ret) == 0 || string(ret) == "null" {
		return json.RawMessage("[]"), nil
	}
	return ret, nil
}

func (c *Client) mediaList(ctx context.Context, path string, query url.Values) ([]MediaInfo, error) {
	var ret []MediaInfo
	if err := c.get(ctx, path, query, &ret); err != nil {
		return nil, err
	}
	if ret == nil {
		ret = []MediaInfo{}
	}
	return ret, nil
}

func (c *Client) raw(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	var ret json.RawMessage
	if err := c.get(ctx, path, query, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("token", c.apiKey)
	endpoint := c.baseURL + path + "?" + query.Encode()

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("request timed out: %s: %w", path, err)
		}
		return fmt.Errorf("request failed: %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Path: path, Body: strings.TrimSpace(string(respBody))}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", path, err)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
