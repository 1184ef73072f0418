package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/MimeLyc/checkmp/internal/media"
	"github.com/MimeLyc/checkmp/internal/mp"
	"github.com/MimeLyc/checkmp/pkg/log"
	"golang.org/x/sync/errgroup"
)

// SubscribeService combines MoviePilot and TMDB into the operations the API exposes.
type SubscribeService struct {
	mp     MPClient
	tmdb   TMDBClient
	filter LanguageFilter
}

func NewSubscribeService(mpClient MPClient, tmdbClient TMDBClient, filter LanguageFilter) *SubscribeService {
	return &SubscribeService{
		mp:     mpClient,
		tmdb:   tmdbClient,
		filter: filter,
	}
}

// HotList returns popular subscriptions of one kind. With a language set it
// over-fetches and keeps at most Count items of that language.
func (s *SubscribeService) HotList(ctx context.Context, kind media.Kind, q HotQuery) ([]media.Candidate, error) {
	if q.Page <= 0 {
		q.Page = DefaultPage
	}
	if q.Count <= 0 {
		q.Count = DefaultHotCount
	}
	if q.Count > MaxHotCount {
		q.Count = MaxHotCount
	}
	lang := strings.TrimSpace(q.Lang)

	fetch := q.Count
	if lang != "" {
		fetch = q.Count * OversampleFactor
	}

	items, err := s.mp.PopularSubscriptions(ctx, mp.PopularQuery{
		TypeLabel: kind.Label(),
		Page:      q.Page,
		Count:     fetch,
		GenreID:   q.GenreID,
		MinRating: q.MinRating,
	})
	if err != nil {
		return nil, WrapError(err, ErrUpstream, "failed to list popular media").WithContext("type", kind.Label())
	}

	candidates := formatMediaList(items, kind)
	if lang == "" {
		return candidates, nil
	}
	return s.filter.FilterByLanguage(ctx, candidates, lang, q.Count), nil
}

// Subscribe dispatches to SubscribeByTMDBID or SubscribeByTitle.
func (s *SubscribeService) Subscribe(ctx context.Context, req SubscribeRequest) (*mp.Response, error) {
	title := strings.TrimSpace(req.Title)
	switch {
	case req.TMDBID > 0:
		kind := media.KindSeries
		if req.Kind != nil {
			kind = *req.Kind
		}
		return s.SubscribeByTMDBID(ctx, req.TMDBID, kind, req.Season)
	case title != "":
		return s.SubscribeByTitle(ctx, title, req.Kind, req.Season)
	default:
		return nil, NewError(ErrValidation, "请提供 tmdb_id 或 title")
	}
}

// SubscribeByTMDBID subscribes a title by TMDB id, enriching the request with
// whatever metadata can be found. Missing metadata does not block the subscription.
func (s *SubscribeService) SubscribeByTMDBID(ctx context.Context, tmdbID int, kind media.Kind, season *int) (*mp.Response, error) {
	return s.subscribe(ctx, tmdbID, kind, season, "")
}

// SubscribeByTitle searches MoviePilot and subscribes the top result.
func (s *SubscribeService) SubscribeByTitle(ctx context.Context, title string, kind *media.Kind, season *int) (*mp.Response, error) {
	results, err := s.mp.SearchMedia(ctx, title, DefaultPage, DefaultSearchCount)
	if err != nil {
		return nil, WrapError(err, ErrUpstream, "failed to search media").WithContext("title", title)
	}
	if len(results) == 0 {
		return &mp.Response{Success: false, Message: "未找到: " + title}, nil
	}

	top := results[0]
	if top.TMDBID <= 0 {
		return &mp.Response{Success: false, Message: "无法获取 TMDB ID: " + title}, nil
	}

	target := media.KindSeries
	if kind != nil {
		target = *kind
	} else if parsed, ok := media.ParseKind(top.Type); ok {
		target = parsed
	}
	return s.subscribe(ctx, top.TMDBID, target, season, top.Title)
}

func (s *SubscribeService) subscribe(ctx context.Context, tmdbID int, kind media.Kind, season *int, name string) (*mp.Response, error) {
	found := s.lookup(ctx, tmdbID, kind, name)
	if found.source == sourceNone {
		log.Warn("no metadata for tmdb:%d, subscribing with id only", tmdbID)
	}

	req := found.request(tmdbID, kind)
	if season != nil && kind == media.KindSeries {
		req.Season = season
	}

	resp, err := s.mp.AddSubscription(ctx, req)
	if err != nil {
		return nil, WrapError(err, ErrUpstream, "failed to add subscription").WithContext("tmdb_id", tmdbID)
	}
	log.Info("subscribe tmdb:%d (%s) via %s: success=%v %s", tmdbID, kind.Label(), found.source, resp.Success, resp.Message)
	return resp, nil
}

// Unsubscribe deletes a subscription by its MoviePilot id.
func (s *SubscribeService) Unsubscribe(ctx context.Context, id int) (*mp.Response, error) {
	resp, err := s.mp.DeleteSubscription(ctx, id)
	if err != nil {
		return nil, WrapError(err, ErrUpstream, "failed to delete subscription").WithContext("id", id)
	}
	return resp, nil
}

// CheckSubscribed reports whether tmdbID (and season, if given) is subscribed.
// Upstream failures count as not subscribed.
func (s *SubscribeService) CheckSubscribed(ctx context.Context, tmdbID int, season *int) CheckResult {
	sub, err := s.mp.GetSubscriptionByMedia(ctx, fmt.Sprintf("tmdb:%d", tmdbID), season)
	if err != nil {
		log.Debug("subscription check for tmdb:%d failed: %v", tmdbID, err)
		return CheckResult{Subscribed: false}
	}
	if sub == nil || sub.ID == 0 {
		return CheckResult{Subscribed: false}
	}
	detail := formatSubscription(*sub)
	return CheckResult{Subscribed: true, Detail: &detail}
}

// ListSubscriptions returns every current subscription.
func (s *SubscribeService) ListSubscriptions(ctx context.Context) ([]media.Subscription, error) {
	subs, err := s.mp.ListSubscriptions(ctx)
	if err != nil {
		return nil, WrapError(err, ErrUpstream, "failed to list subscriptions")
	}
	ret := make([]media.Subscription, 0, len(subs))
	for _, sub := range subs {
		ret = append(ret, formatSubscription(sub))
	}
	return ret, nil
}

// Search searches MoviePilot by title.
func (s *SubscribeService) Search(ctx context.Context, title string, page, count int) ([]media.Candidate, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewError(ErrValidation, "title is required")
	}
	if page <= 0 {
		page = DefaultPage
	}
	if count <= 0 {
		count = DefaultSearchCount
	}
	items, err := s.mp.SearchMedia(ctx, title, page, count)
	if err != nil {
		return nil, WrapError(err, ErrUpstream, "failed to search media").WithContext("title", title)
	}
	return formatMediaList(items, ""), nil
}

// Stats gathers the dashboard summary. Storage and downloader are optional.
func (s *SubscribeService) Stats(ctx context.Context) (*Stats, error) {
	var ret Stats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stat, err := s.mp.Statistic(gctx)
		if err != nil {
			return WrapError(err, ErrUpstream, "failed to fetch statistic")
		}
		ret.Media = MediaCounts{
			MovieCount:   stat.MovieCount,
			TVCount:      stat.TVCount,
			EpisodeCount: stat.EpisodeCount,
			UserCount:    stat.UserCount,
		}
		return nil
	})
	g.Go(func() error {
		storage, err := s.mp.Storage(gctx)
		if err != nil {
			log.Warn("storage info unavailable: %v", err)
			return nil
		}
		ret.Storage = storage
		return nil
	})
	g.Go(func() error {
		downloader, err := s.mp.Downloader(gctx)
		if err != nil {
			log.Warn("downloader info unavailable: %v", err)
			return nil
		}
		ret.Downloader = downloader
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &ret, nil
}

// DownloadHistory relays one page of MoviePilot's download history.
func (s *SubscribeService) DownloadHistory(ctx context.Context, page, count int) (json.RawMessage, error) {
	if page <= 0 {
		page = DefaultPage
	}
	if count <= 0 {
		count = DefaultHistorySize
	}
	ret, err := s.mp.DownloadHistory(ctx, page, count)
	if err != nil {
		return nil, WrapError(err, ErrUpstream, "failed to fetch download history")
	}
	return ret, nil
}

// Recommend returns titles TMDB recommends for tmdbID, relayed by MoviePilot.
func (s *SubscribeService) Recommend(ctx context.Context, kind media.Kind, tmdbID int) ([]media.Candidate, error) {
	items, err := s.mp.Recommend(ctx, tmdbID, kind.Label())
	if err != nil {
		return nil, WrapError(err, ErrUpstream, "failed to fetch recommendations").WithContext("tmdb_id", tmdbID)
	}
	return formatMediaList(items, kind), nil
}

// Similar returns titles similar to tmdbID, relayed by MoviePilot.
func (s *SubscribeService) Similar(ctx context.Context, kind media.Kind, tmdbID int) ([]media.Candidate, error) {
	items, err := s.mp.Similar(ctx, tmdbID, kind.Label())
	if err != nil {
		return nil, WrapError(err, ErrUpstream, "failed to fetch similar titles").WithContext("tmdb_id", tmdbID)
	}
	return formatMediaList(items, kind), nil
}
