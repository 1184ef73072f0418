package service

import (
	"context"
	"strconv"

	"github.com/MimeLyc/checkmp/internal/media"
	"github.com/MimeLyc/checkmp/internal/mp"
	"github.com/MimeLyc/checkmp/pkg/log"
)

const (
	sourceNone = "none"
	sourceTMDB = "tmdb"
	sourceMP   = "moviepilot"
)

// lookupResult is the metadata found for a subscription request, and where it came from.
type lookupResult struct {
	source      string
	name        string
	year        string
	poster      string
	backdrop    string
	vote        float64
	description string
}

func (r lookupResult) request(tmdbID int, kind media.Kind) mp.SubscribeRequest {
	return mp.SubscribeRequest{
		TMDBID:      tmdbID,
		Type:        kind.Label(),
		Name:        r.name,
		Year:        r.year,
		Poster:      r.poster,
		Backdrop:    r.backdrop,
		Vote:        r.vote,
		Description: r.description,
	}
}

// lookup asks TMDB for the title first and falls back to a MoviePilot search
// by name (or by the id when no name is known). Failures of both yield an
// empty result with source "none".
func (s *SubscribeService) lookup(ctx context.Context, tmdbID int, kind media.Kind, name string) lookupResult {
	detail, err := s.tmdb.Detail(ctx, kind, tmdbID)
	if err == nil {
		date := detail.FirstAirDate
		if kind == media.KindMovie {
			date = detail.ReleaseDate
		}
		return lookupResult{
			source:      sourceTMDB,
			name:        detail.Title,
			year:        yearOf(date),
			poster:      detail.Poster,
			backdrop:    detail.Backdrop,
			vote:        detail.Rating,
			description: detail.Overview,
		}
	}
	log.Debug("tmdb detail for %s/%d failed, searching MoviePilot: %v", kind.TMDBPath(), tmdbID, err)

	query := name
	if query == "" {
		query = strconv.Itoa(tmdbID)
	}
	results, err := s.mp.SearchMedia(ctx, query, DefaultPage, DefaultSearchCount)
	if err != nil {
		log.Debug("MoviePilot search %q failed: %v", query, err)
		return lookupResult{source: sourceNone}
	}
	for _, r := range results {
		if r.TMDBID == tmdbID {
			return lookupResult{
				source:      sourceMP,
				name:        r.Title,
				year:        r.Year,
				poster:      r.PosterPath,
				backdrop:    r.BackdropPath,
				vote:        r.VoteAverage,
				description: r.Overview,
			}
		}
	}
	return lookupResult{source: sourceNone}
}
