package mp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	// TLS server with a self-signed certificate, like most MoviePilot installs
	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL + "/", APIKey: "secret", Timeout: 2 * time.Second})
}

func TestClient_AttachesTokenAndSkipsTLSVerification(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/subscribe/list", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("token"))
		_, _ = w.Write([]byte(`[{"id":3,"name":"鱿鱼游戏","type":"电视剧","tmdbid":93405,"season":2,"vote":7.8,"state":"R"}]`))
	})

	subs, err := client.ListSubscriptions(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, 3, subs[0].ID)
	assert.Equal(t, 93405, subs[0].TMDBID)
	require.NotNil(t, subs[0].Season)
	assert.Equal(t, 2, *subs[0].Season)
}

func TestClient_NullListBecomesEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})

	items, err := client.SearchMedia(context.Background(), "x", 1, 8)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestClient_PopularSubscriptionsQuery(t *testing.T) {
	genre := 18
	rating := 7.5
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/v1/subscribe/popular", r.URL.Path)
		assert.Equal(t, "电视剧", q.Get("stype"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "100", q.Get("count"))
		assert.Equal(t, "18", q.Get("genre_id"))
		assert.Equal(t, "7.5", q.Get("min_rating"))
		_, _ = w.Write([]byte(`[{"tmdb_id":1,"title":"A","type":"电视剧","vote_average":8.1}]`))
	})

	items, err := client.PopularSubscriptions(context.Background(), PopularQuery{
		TypeLabel: "电视剧", Page: 2, Count: 100, GenreID: &genre, MinRating: &rating,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 8.1, items[0].VoteAverage)
}

func TestClient_AddSubscriptionOmitsUnresolvedFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/subscribe/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"tmdbid": float64(42), "type": "电影"}, body)

		_, _ = w.Write([]byte(`{"success":true,"message":"","data":{"id":9}}`))
	})

	resp, err := client.AddSubscription(context.Background(), SubscribeRequest{TMDBID: 42, Type: "电影"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.JSONEq(t, `{"id":9}`, string(resp.Data))
}

func TestClient_GetSubscriptionByMedia(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/subscribe/media/tmdb:93405", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("season"))
		_, _ = w.Write([]byte(`{"id":5,"tmdbid":93405}`))
	})

	season := 1
	sub, err := client.GetSubscriptionByMedia(context.Background(), "tmdb:93405", &season)
	require.NoError(t, err)
	assert.Equal(t, 5, sub.ID)
}

func TestClient_DeleteSubscription(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/subscribe/12", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	resp, err := client.DeleteSubscription(context.Background(), 12)
	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestClient_NonSuccessStatusReturnsAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Not Found"}`, http.StatusNotFound)
	})

	_, err := client.Statistic(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "/api/v1/dashboard/statistic2", apiErr.Path)
	assert.Contains(t, apiErr.Error(), "Not Found")
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "k", Timeout: 50 * time.Millisecond})
	_, err := client.Storage(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestClient_DownloadHistoryNullBecomesEmptyArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/history/download", r.URL.Path)
		assert.Equal(t, "30", r.URL.Query().Get("count"))
		_, _ = w.Write([]byte(`null`))
	})

	history, err := client.DownloadHistory(context.Background(), 1, 30)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(history))
}
