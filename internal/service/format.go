package service

import (
	"github.com/MimeLyc/checkmp/internal/media"
	"github.com/MimeLyc/checkmp/internal/mp"
)

func formatMedia(item mp.MediaInfo, fallback media.Kind) media.Candidate {
	kind, ok := media.ParseKind(item.Type)
	if !ok {
		kind = fallback
	}
	typeLabel := item.Type
	if typeLabel == "" && kind.Valid() {
		typeLabel = kind.Label()
	}
	return media.Candidate{
		Title:    item.Title,
		Year:     item.Year,
		Type:     typeLabel,
		Kind:     kind,
		TMDBID:   item.TMDBID,
		DoubanID: item.DoubanID,
		Rating:   item.VoteAverage,
		Overview: item.Overview,
		Poster:   item.PosterPath,
		Backdrop: item.BackdropPath,
		Season:   item.Season,
	}
}

func formatMediaList(items []mp.MediaInfo, fallback media.Kind) []media.Candidate {
	ret := make([]media.Candidate, 0, len(items))
	for _, item := range items {
		ret = append(ret, formatMedia(item, fallback))
	}
	return ret
}

func formatSubscription(s mp.Subscribe) media.Subscription {
	return media.Subscription{
		ID:          s.ID,
		Name:        s.Name,
		Year:        s.Year,
		Type:        s.Type,
		TMDBID:      s.TMDBID,
		Season:      s.Season,
		Poster:      s.Poster,
		Rating:      s.Vote,
		Description: s.Description,
		State:       s.State,
	}
}

func yearOf(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}
