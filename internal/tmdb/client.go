package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/MimeLyc/checkmp/internal/language"
	"github.com/MimeLyc/checkmp/internal/media"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://api.themoviedb.org/3"
	DefaultImageBase = "https://image.tmdb.org/t/p/w500"
)

// ErrNoLanguage is returned when a detail payload carries no original_language.
var ErrNoLanguage = errors.New("tmdb: original_language missing")

// Config holds the TMDB connection settings.
type Config struct {
	Token     string
	BaseURL   string
	ImageBase string
	Language  string
	Timeout   time.Duration
	// RateLimit caps requests per second; zero disables limiting.
	RateLimit float64
}

// Client is a TMDB v3 client authenticated with a v4 read access token.
// Safe for concurrent use.
type Client struct {
	token      string
	baseURL    string
	imageBase  string
	language   string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ImageBase == "" {
		cfg.ImageBase = DefaultImageBase
	}
	if cfg.Language == "" {
		cfg.Language = "zh-CN"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	c := &Client{
		token:     cfg.Token,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		imageBase: strings.TrimRight(cfg.ImageBase, "/"),
		language:  cfg.Language,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	if cfg.RateLimit > 0 {
		burst := int(math.Ceil(cfg.RateLimit))
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c
}

// Discover lists titles filtered by original language, dates and rating.
func (c *Client) Discover(ctx context.Context, kind media.Kind, q DiscoverQuery) (*Page, error) {
	params := url.Values{}
	params.Set("with_original_language", q.Lang)
	params.Set("sort_by", q.SortBy)
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("vote_count.gte", strconv.Itoa(q.MinVoteCount))
	if q.MinRating != nil && *q.MinRating > 0 {
		params.Set("vote_average.gte", strconv.FormatFloat(*q.MinRating, 'f', -1, 64))
	}
	dateField := "first_air_date"
	if kind == media.KindMovie {
		dateField = "primary_release_date"
	}
	if q.DateFrom != "" {
		params.Set(dateField+".gte", q.DateFrom)
	}
	if q.DateTo != "" {
		params.Set(dateField+".lte", q.DateTo)
	}
	if q.Genres != "" {
		params.Set("with_genres", q.Genres)
	}

	var raw rawPage
	if err := c.get(ctx, "/discover/"+kind.TMDBPath(), params, &raw); err != nil {
		return nil, err
	}

	page := &Page{
		Page:         raw.Page,
		TotalPages:   raw.TotalPages,
		TotalResults: raw.TotalResults,
		Results:      make([]Item, 0, len(raw.Results)),
	}
	if page.Page == 0 {
		page.Page = 1
	}
	for _, item := range raw.Results {
		page.Results = append(page.Results, c.format(kind, item))
	}
	return page, nil
}

// Trending lists trending titles across all languages. window is "day" or "week".
func (c *Client) Trending(ctx context.Context, kind media.Kind, window string) ([]Item, error) {
	var raw rawPage
	if err := c.get(ctx, fmt.Sprintf("/trending/%s/%s", kind.TMDBPath(), url.PathEscape(window)), url.Values{}, &raw); err != nil {
		return nil, err
	}
	ret := make([]Item, 0, len(raw.Results))
	for _, item := range raw.Results {
		ret = append(ret, c.format(kind, item))
	}
	return ret, nil
}

// Detail fetches one title. Series details drop specials (season 0).
func (c *Client) Detail(ctx context.Context, kind media.Kind, id int) (*Detail, error) {
	var raw rawDetail
	if err := c.get(ctx, fmt.Sprintf("/%s/%d", kind.TMDBPath(), id), url.Values{}, &raw); err != nil {
		return nil, err
	}

	detail := &Detail{
		Item:   c.format(kind, raw.rawItem),
		Status: raw.Status,
		Genres: make([]string, 0, len(raw.Genres)),
	}
	for _, g := range raw.Genres {
		detail.Genres = append(detail.Genres, g.Name)
	}

	if kind == media.KindMovie {
		detail.Runtime = raw.Runtime
		return detail, nil
	}

	detail.NumberOfSeasons = raw.NumberOfSeasons
	detail.Seasons = make([]Season, 0, len(raw.Seasons))
	for _, s := range raw.Seasons {
		if s.SeasonNumber > 0 {
			detail.Seasons = append(detail.Seasons, s)
		}
	}
	return detail, nil
}

// OriginalLanguage fetches a title's detail and returns its base language code.
func (c *Client) OriginalLanguage(ctx context.Context, kind media.Kind, id int) (string, error) {
	var raw struct {
		OriginalLanguage string `json:"original_language"`
	}
	if err := c.get(ctx, fmt.Sprintf("/%s/%d", kind.TMDBPath(), id), url.Values{}, &raw); err != nil {
		return "", err
	}
	code := language.BaseCode(raw.OriginalLanguage)
	if code == "" {
		return "", ErrNoLanguage
	}
	return code, nil
}

// Ping checks that the token is accepted.
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "/configuration", url.Values{}, nil)
}

func (c *Client) format(kind media.Kind, item rawItem) Item {
	ret := Item{
		TMDBID:     item.ID,
		Type:       kind.Label(),
		Language:   item.OriginalLanguage,
		Rating:     round1(item.VoteAverage),
		Popularity: round1(item.Popularity),
		Overview:   item.Overview,
		Poster:     c.imageURL(item.PosterPath),
		Backdrop:   c.imageURL(item.BackdropPath),
	}
	if kind == media.KindMovie {
		ret.Title = item.Title
		ret.OriginalTitle = item.OriginalTitle
		ret.ReleaseDate = item.ReleaseDate
	} else {
		ret.Title = item.Name
		ret.OriginalTitle = item.OriginalName
		ret.FirstAirDate = item.FirstAirDate
	}
	return ret
}

func (c *Client) imageURL(path string) string {
	if path == "" {
		return ""
	}
	return c.imageBase + path
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	params.Set("language", c.language)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Path: path, Body: strings.TrimSpace(string(body))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", path, err)
	}
	return nil
}
