package mp

import (
	"encoding/json"
	"fmt"
)

// MediaInfo is the subset of MoviePilot's media schema this service reads.
type MediaInfo struct {
	TMDBID       int     `json:"tmdb_id"`
	DoubanID     string  `json:"douban_id"`
	Type         string  `json:"type"`
	Title        string  `json:"title"`
	Year         string  `json:"year"`
	VoteAverage  float64 `json:"vote_average"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	Season       *int    `json:"season"`
}

// Subscribe is a MoviePilot subscription record.
type Subscribe struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Year        string  `json:"year"`
	Type        string  `json:"type"`
	TMDBID      int     `json:"tmdbid"`
	Season      *int    `json:"season"`
	Poster      string  `json:"poster"`
	Backdrop    string  `json:"backdrop"`
	Vote        float64 `json:"vote"`
	Description string  `json:"description"`
	State       string  `json:"state"`
}

// SubscribeRequest is the body of POST /api/v1/subscribe/.
// Only tmdbid and type are always sent; unresolved fields are omitted.
type SubscribeRequest struct {
	TMDBID      int     `json:"tmdbid"`
	Type        string  `json:"type"`
	Name        string  `json:"name,omitempty"`
	Year        string  `json:"year,omitempty"`
	Poster      string  `json:"poster,omitempty"`
	Backdrop    string  `json:"backdrop,omitempty"`
	Vote        float64 `json:"vote,omitempty"`
	Description string  `json:"description,omitempty"`
	Season      *int    `json:"season,omitempty"`
}

// Response is MoviePilot's generic action envelope.
type Response struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Statistic is the payload of /api/v1/dashboard/statistic2.
type Statistic struct {
	MovieCount   int `json:"movie_count"`
	TVCount      int `json:"tv_count"`
	EpisodeCount int `json:"episode_count"`
	UserCount    int `json:"user_count"`
}

// PopularQuery selects a page of popular subscriptions.
type PopularQuery struct {
	TypeLabel string
	Page      int
	Count     int
	GenreID   *int
	MinRating *float64
}

// APIError is returned for non-2xx upstream responses.
type APIError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("MoviePilot API error (status %d) on %s: %s", e.StatusCode, e.Path, e.Body)
}
