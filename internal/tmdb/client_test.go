package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MimeLyc/checkmp/internal/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		Token:     "read-token",
		BaseURL:   server.URL + "/",
		ImageBase: "https://img.test/w500",
		Timeout:   2 * time.Second,
	})
}

func TestClient_SendsBearerAndLanguage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer read-token", r.Header.Get("Authorization"))
		assert.Equal(t, "zh-CN", r.URL.Query().Get("language"))
		assert.Equal(t, "/configuration", r.URL.Path)
		_, _ = w.Write([]byte(`{"images":{}}`))
	})

	require.NoError(t, client.Ping(context.Background()))
}

func TestClient_DiscoverTV(t *testing.T) {
	rating := 7.0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/discover/tv", r.URL.Path)
		assert.Equal(t, "ko", q.Get("with_original_language"))
		assert.Equal(t, "popularity.desc", q.Get("sort_by"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "5", q.Get("vote_count.gte"))
		assert.Equal(t, "7", q.Get("vote_average.gte"))
		assert.Equal(t, "2024-01-01", q.Get("first_air_date.gte"))
		assert.Equal(t, "2024-12-31", q.Get("first_air_date.lte"))
		assert.Equal(t, "18,80", q.Get("with_genres"))
		assert.False(t, q.Has("primary_release_date.gte"))
		_, _ = w.Write([]byte(`{"page":2,"total_pages":9,"total_results":170,"results":[
			{"id":93405,"name":"鱿鱼游戏","original_name":"오징어 게임","original_language":"ko",
			 "first_air_date":"2021-09-17","vote_average":7.849,"popularity":123.456,
			 "overview":"o","poster_path":"/p.jpg","backdrop_path":""}]}`))
	})

	page, err := client.Discover(context.Background(), media.KindSeries, DiscoverQuery{
		Lang: "ko", SortBy: "popularity.desc", Page: 2, MinVoteCount: 5, MinRating: &rating,
		DateFrom: "2024-01-01", DateTo: "2024-12-31", Genres: "18,80",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 9, page.TotalPages)
	assert.Equal(t, 170, page.TotalResults)
	require.Len(t, page.Results, 1)

	item := page.Results[0]
	assert.Equal(t, 93405, item.TMDBID)
	assert.Equal(t, "鱿鱼游戏", item.Title)
	assert.Equal(t, "오징어 게임", item.OriginalTitle)
	assert.Equal(t, "电视剧", item.Type)
	assert.Equal(t, "ko", item.Language)
	assert.Equal(t, "2021-09-17", item.FirstAirDate)
	assert.Empty(t, item.ReleaseDate)
	assert.Equal(t, 7.8, item.Rating)
	assert.Equal(t, 123.5, item.Popularity)
	assert.Equal(t, "https://img.test/w500/p.jpg", item.Poster)
	assert.Empty(t, item.Backdrop)
}

func TestClient_DiscoverMovieUsesReleaseDates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/discover/movie", r.URL.Path)
		assert.Equal(t, "2023-01-01", q.Get("primary_release_date.gte"))
		assert.False(t, q.Has("vote_average.gte"))
		assert.False(t, q.Has("with_genres"))
		_, _ = w.Write([]byte(`{"results":[{"id":1,"title":"T","original_title":"OT","release_date":"2023-05-01"}]}`))
	})

	page, err := client.Discover(context.Background(), media.KindMovie, DiscoverQuery{
		Lang: "ja", SortBy: "vote_average.desc", Page: 1, DateFrom: "2023-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "T", page.Results[0].Title)
	assert.Equal(t, "电影", page.Results[0].Type)
	assert.Equal(t, "2023-05-01", page.Results[0].ReleaseDate)
}

func TestClient_Trending(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trending/tv/day", r.URL.Path)
		_, _ = w.Write([]byte(`{"results":[{"id":1,"name":"A"},{"id":2,"name":"B"}]}`))
	})

	items, err := client.Trending(context.Background(), media.KindSeries, "day")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "B", items[1].Title)
}

func TestClient_TVDetailDropsSpecials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tv/93405", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":93405,"name":"鱿鱼游戏","original_language":"ko","status":"Returning Series",
			"number_of_seasons":2,"genres":[{"id":18,"name":"剧情"}],
			"seasons":[{"season_number":0,"name":"特别篇","episode_count":3},
			           {"season_number":1,"name":"第 1 季","episode_count":9,"air_date":"2021-09-17"}]}`))
	})

	detail, err := client.Detail(context.Background(), media.KindSeries, 93405)
	require.NoError(t, err)
	assert.Equal(t, "鱿鱼游戏", detail.Title)
	assert.Equal(t, 2, detail.NumberOfSeasons)
	assert.Equal(t, "Returning Series", detail.Status)
	assert.Equal(t, []string{"剧情"}, detail.Genres)
	require.Len(t, detail.Seasons, 1)
	assert.Equal(t, Season{SeasonNumber: 1, Name: "第 1 季", EpisodeCount: 9, AirDate: "2021-09-17"}, detail.Seasons[0])
	assert.Zero(t, detail.Runtime)
}

func TestClient_MovieDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/496243", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":496243,"title":"寄生虫","runtime":133,"status":"Released","genres":[]}`))
	})

	detail, err := client.Detail(context.Background(), media.KindMovie, 496243)
	require.NoError(t, err)
	assert.Equal(t, 133, detail.Runtime)
	assert.Nil(t, detail.Seasons)
	assert.NotNil(t, detail.Genres)
}

func TestClient_OriginalLanguage(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
	}{
		{name: "plain code", body: `{"original_language":"ko"}`, want: "ko"},
		{name: "regional tag", body: `{"original_language":"ko-KR"}`, want: "ko"},
		{name: "missing field", body: `{"id":1}`, wantErr: ErrNoLanguage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			got, err := client.OriginalLanguage(context.Background(), media.KindSeries, 1)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_message":"Invalid API key"}`))
	})

	_, err := client.Detail(context.Background(), media.KindMovie, 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "Invalid API key")
}

func TestClient_MalformedJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := client.OriginalLanguage(context.Background(), media.KindMovie, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse response")
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(Config{Token: "t", BaseURL: server.URL, RateLimit: 0.5})
	require.NoError(t, client.Ping(context.Background()))

	// burst of one is spent; the next token is two seconds away
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := client.Ping(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}
