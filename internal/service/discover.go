package service

import (
	"context"
	"strings"

	"github.com/MimeLyc/checkmp/internal/language"
	"github.com/MimeLyc/checkmp/internal/media"
	"github.com/MimeLyc/checkmp/internal/tmdb"
)

// Discover lists TMDB titles of one original language. The language may be
// given as a code or any synonym the resolver knows.
func (s *SubscribeService) Discover(ctx context.Context, kind media.Kind, q tmdb.DiscoverQuery) (*tmdb.Page, error) {
	q.Lang = strings.TrimSpace(q.Lang)
	if q.Lang == "" {
		q.Lang = DefaultDiscoverLang
	}
	q.Lang = language.Resolve(q.Lang)
	if q.SortBy == "" {
		q.SortBy = DefaultSortBy
	}
	if q.Page <= 0 {
		q.Page = DefaultPage
	}
	if q.MinVoteCount <= 0 {
		q.MinVoteCount = DefaultMinVotes
	}

	page, err := s.tmdb.Discover(ctx, kind, q)
	if err != nil {
		return nil, WrapError(err, ErrUpstream, "failed to discover media").
			WithContext("type", kind.TMDBPath()).
			WithContext("lang", q.Lang)
	}
	return page, nil
}

// Trending lists TMDB trending titles for "day" or "week".
func (s *SubscribeService) Trending(ctx context.Context, kind media.Kind, window string) ([]tmdb.Item, error) {
	switch window {
	case "":
		window = DefaultTimeWindow
	case "day", "week":
	default:
		return nil, NewError(ErrValidation, "time_window must be day or week").WithContext("time_window", window)
	}

	items, err := s.tmdb.Trending(ctx, kind, window)
	if err != nil {
		return nil, WrapError(err, ErrUpstream, "failed to fetch trending media").WithContext("type", kind.TMDBPath())
	}
	return items, nil
}

// Detail returns TMDB detail for one title.
func (s *SubscribeService) Detail(ctx context.Context, kind media.Kind, tmdbID int) (*tmdb.Detail, error) {
	if tmdbID <= 0 {
		return nil, NewError(ErrValidation, "invalid tmdb id").WithContext("tmdb_id", tmdbID)
	}
	detail, err := s.tmdb.Detail(ctx, kind, tmdbID)
	if err != nil {
		return nil, WrapError(err, ErrUpstream, "failed to fetch media detail").WithContext("tmdb_id", tmdbID)
	}
	return detail, nil
}
