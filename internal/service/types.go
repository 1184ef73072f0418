package service

import (
	"context"
	"encoding/json"

	"github.com/MimeLyc/checkmp/internal/media"
	"github.com/MimeLyc/checkmp/internal/mp"
	"github.com/MimeLyc/checkmp/internal/tmdb"
)

// OversampleFactor multiplies the upstream page size when a language filter
// will discard part of the page.
const OversampleFactor = 5

const (
	DefaultPage         = 1
	DefaultHotCount     = 20
	MaxHotCount         = 50
	DefaultSearchCount  = 8
	DefaultHistorySize  = 30
	DefaultSortBy       = "popularity.desc"
	DefaultDiscoverLang = "ko"
	DefaultMinVotes     = 5
	DefaultTimeWindow   = "week"
)

// MPClient is the subset of the MoviePilot client the service uses.
type MPClient interface {
	ListSubscriptions(ctx context.Context) ([]mp.Subscribe, error)
	AddSubscription(ctx context.Context, req mp.SubscribeRequest) (*mp.Response, error)
	DeleteSubscription(ctx context.Context, id int) (*mp.Response, error)
	GetSubscriptionByMedia(ctx context.Context, mediaID string, season *int) (*mp.Subscribe, error)
	PopularSubscriptions(ctx context.Context, q mp.PopularQuery) ([]mp.MediaInfo, error)
	SearchMedia(ctx context.Context, title string, page, count int) ([]mp.MediaInfo, error)
	Recommend(ctx context.Context, tmdbID int, typeLabel string) ([]mp.MediaInfo, error)
	Similar(ctx context.Context, tmdbID int, typeLabel string) ([]mp.MediaInfo, error)
	Statistic(ctx context.Context) (*mp.Statistic, error)
	Storage(ctx context.Context) (json.RawMessage, error)
	Downloader(ctx context.Context) (json.RawMessage, error)
	DownloadHistory(ctx context.Context, page, count int) (json.RawMessage, error)
}

// TMDBClient is the subset of the TMDB client the service uses.
type TMDBClient interface {
	Discover(ctx context.Context, kind media.Kind, q tmdb.DiscoverQuery) (*tmdb.Page, error)
	Trending(ctx context.Context, kind media.Kind, window string) ([]tmdb.Item, error)
	Detail(ctx context.Context, kind media.Kind, id int) (*tmdb.Detail, error)
}

// LanguageFilter keeps candidates whose original language matches a query.
type LanguageFilter interface {
	FilterByLanguage(ctx context.Context, items []media.Candidate, query string, targetCount int) []media.Candidate
}

// HotQuery selects a page of popular media. Lang enables language filtering.
type HotQuery struct {
	Page      int
	Count     int
	MinRating *float64
	GenreID   *int
	Lang      string
}

// SubscribeRequest is an add-subscription request by TMDB id or by title.
type SubscribeRequest struct {
	TMDBID int
	Title  string
	Kind   *media.Kind
	Season *int
}

// CheckResult reports whether a title is already subscribed.
type CheckResult struct {
	Subscribed bool                `json:"subscribed"`
	Detail     *media.Subscription `json:"detail,omitempty"`
}

type MediaCounts struct {
	MovieCount   int `json:"movie_count"`
	TVCount      int `json:"tv_count"`
	EpisodeCount int `json:"episode_count"`
	UserCount    int `json:"user_count"`
}

// Stats is the dashboard summary. Storage and Downloader are null when
// MoviePilot could not provide them.
type Stats struct {
	Media      MediaCounts     `json:"media"`
	Storage    json.RawMessage `json:"storage"`
	Downloader json.RawMessage `json:"downloader"`
}
