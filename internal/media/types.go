package media

import "strings"

// Kind distinguishes movies from series across both upstreams.
type Kind string

const (
	KindMovie  Kind = "movie"
	KindSeries Kind = "series"
)

// MoviePilot labels media types with Chinese names on the wire.
const (
	LabelMovie  = "电影"
	LabelSeries = "电视剧"
)

// ParseKind accepts the spellings callers and upstreams use for a media type.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies", "film", LabelMovie:
		return KindMovie, true
	case "tv", "series", "show", "teleplay", LabelSeries:
		return KindSeries, true
	default:
		return "", false
	}
}

// Label returns the MoviePilot type name.
func (k Kind) Label() string {
	if k == KindMovie {
		return LabelMovie
	}
	return LabelSeries
}

// TMDBPath returns the TMDB path segment ("movie" or "tv").
func (k Kind) TMDBPath() string {
	if k == KindMovie {
		return "movie"
	}
	return "tv"
}

func (k Kind) Valid() bool {
	return k == KindMovie || k == KindSeries
}

// Candidate is one listing entry as returned to callers.
// Language stays empty until the enrichment engine stamps it.
type Candidate struct {
	Title    string  `json:"title"`
	Year     string  `json:"year"`
	Type     string  `json:"type"`
	Kind     Kind    `json:"kind,omitempty"`
	TMDBID   int     `json:"tmdb_id"`
	DoubanID string  `json:"douban_id,omitempty"`
	Rating   float64 `json:"rating"`
	Overview string  `json:"overview"`
	Poster   string  `json:"poster"`
	Backdrop string  `json:"backdrop"`
	Season   *int    `json:"season,omitempty"`
	Language string  `json:"language,omitempty"`
}

// Subscription is a MoviePilot subscription reshaped for callers.
type Subscription struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Year        string  `json:"year"`
	Type        string  `json:"type"`
	TMDBID      int     `json:"tmdb_id"`
	Season      *int    `json:"season,omitempty"`
	Poster      string  `json:"poster"`
	Rating      float64 `json:"rating"`
	Description string  `json:"description"`
	State       string  `json:"state"`
}
