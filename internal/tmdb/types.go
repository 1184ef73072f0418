package tmdb

import "fmt"

// Item is a discover/trending entry reshaped for callers.
type Item struct {
	TMDBID        int     `json:"tmdb_id"`
	Title         string  `json:"title"`
	OriginalTitle string  `json:"original_title"`
	Type          string  `json:"type"`
	Language      string  `json:"language"`
	FirstAirDate  string  `json:"first_air_date,omitempty"`
	ReleaseDate   string  `json:"release_date,omitempty"`
	Rating        float64 `json:"rating"`
	Popularity    float64 `json:"popularity"`
	Overview      string  `json:"overview"`
	Poster        string  `json:"poster"`
	Backdrop      string  `json:"backdrop"`
}

// Page is one page of discover results.
type Page struct {
	Page         int    `json:"page"`
	TotalPages   int    `json:"total_pages"`
	TotalResults int    `json:"total_results"`
	Results      []Item `json:"results"`
}

type Season struct {
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date"`
}

// Detail extends Item with per-kind detail fields.
// Seasons and NumberOfSeasons are series only, Runtime is movies only.
type Detail struct {
	Item
	Seasons         []Season `json:"seasons,omitempty"`
	NumberOfSeasons int      `json:"number_of_seasons,omitempty"`
	Runtime         int      `json:"runtime,omitempty"`
	Status          string   `json:"status"`
	Genres          []string `json:"genres"`
}

// DiscoverQuery filters /discover/{tv,movie}.
type DiscoverQuery struct {
	Lang         string
	SortBy       string
	Page         int
	MinVoteCount int
	MinRating    *float64
	DateFrom     string
	DateTo       string
	Genres       string
}

type rawItem struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	OriginalName     string  `json:"original_name"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	FirstAirDate     string  `json:"first_air_date"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	Popularity       float64 `json:"popularity"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
}

type rawPage struct {
	Page         int       `json:"page"`
	TotalPages   int       `json:"total_pages"`
	TotalResults int       `json:"total_results"`
	Results      []rawItem `json:"results"`
}

type rawDetail struct {
	rawItem
	Seasons         []Season `json:"seasons"`
	NumberOfSeasons int      `json:"number_of_seasons"`
	Runtime         int      `json:"runtime"`
	Status          string   `json:"status"`
	Genres          []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
}

// APIError is returned for non-2xx TMDB responses.
type APIError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("TMDB API error (status %d) on %s: %s", e.StatusCode, e.Path, e.Body)
}
