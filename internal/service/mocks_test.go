package service

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/MimeLyc/checkmp/internal/media"
	"github.com/MimeLyc/checkmp/internal/mp"
	"github.com/MimeLyc/checkmp/internal/tmdb"
)

type mockMP struct {
	mock.Mock
}

func (m *mockMP) ListSubscriptions(ctx context.Context) ([]mp.Subscribe, error) {
	args := m.Called(ctx)
	subs, _ := args.Get(0).([]mp.Subscribe)
	return subs, args.Error(1)
}

func (m *mockMP) AddSubscription(ctx context.Context, req mp.SubscribeRequest) (*mp.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*mp.Response)
	return resp, args.Error(1)
}

func (m *mockMP) DeleteSubscription(ctx context.Context, id int) (*mp.Response, error) {
	args := m.Called(ctx, id)
	resp, _ := args.Get(0).(*mp.Response)
	return resp, args.Error(1)
}

func (m *mockMP) GetSubscriptionByMedia(ctx context.Context, mediaID string, season *int) (*mp.Subscribe, error) {
	args := m.Called(ctx, mediaID, season)
	sub, _ := args.Get(0).(*mp.Subscribe)
	return sub, args.Error(1)
}

func (m *mockMP) PopularSubscriptions(ctx context.Context, q mp.PopularQuery) ([]mp.MediaInfo, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]mp.MediaInfo)
	return items, args.Error(1)
}

func (m *mockMP) SearchMedia(ctx context.Context, title string, page, count int) ([]mp.MediaInfo, error) {
	args := m.Called(ctx, title, page, count)
	items, _ := args.Get(0).([]mp.MediaInfo)
	return items, args.Error(1)
}

func (m *mockMP) Recommend(ctx context.Context, tmdbID int, typeLabel string) ([]mp.MediaInfo, error) {
	args := m.Called(ctx, tmdbID, typeLabel)
	items, _ := args.Get(0).([]mp.MediaInfo)
	return items, args.Error(1)
}

func (m *mockMP) Similar(ctx context.Context, tmdbID int, typeLabel string) ([]mp.MediaInfo, error) {
	args := m.Called(ctx, tmdbID, typeLabel)
	items, _ := args.Get(0).([]mp.MediaInfo)
	return items, args.Error(1)
}

func (m *mockMP) Statistic(ctx context.Context) (*mp.Statistic, error) {
	args := m.Called(ctx)
	stat, _ := args.Get(0).(*mp.Statistic)
	return stat, args.Error(1)
}

func (m *mockMP) Storage(ctx context.Context) (json.RawMessage, error) {
	args := m.Called(ctx)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *mockMP) Downloader(ctx context.Context) (json.RawMessage, error) {
	args := m.Called(ctx)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *mockMP) DownloadHistory(ctx context.Context, page, count int) (json.RawMessage, error) {
	args := m.Called(ctx, page, count)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

type mockTMDB struct {
	mock.Mock
}

func (m *mockTMDB) Discover(ctx context.Context, kind media.Kind, q tmdb.DiscoverQuery) (*tmdb.Page, error) {
	args := m.Called(ctx, kind, q)
	page, _ := args.Get(0).(*tmdb.Page)
	return page, args.Error(1)
}

func (m *mockTMDB) Trending(ctx context.Context, kind media.Kind, window string) ([]tmdb.Item, error) {
	args := m.Called(ctx, kind, window)
	items, _ := args.Get(0).([]tmdb.Item)
	return items, args.Error(1)
}

func (m *mockTMDB) Detail(ctx context.Context, kind media.Kind, id int) (*tmdb.Detail, error) {
	args := m.Called(ctx, kind, id)
	detail, _ := args.Get(0).(*tmdb.Detail)
	return detail, args.Error(1)
}

type mockFilter struct {
	mock.Mock
}

func (m *mockFilter) FilterByLanguage(ctx context.Context, items []media.Candidate, query string, targetCount int) []media.Candidate {
	args := m.Called(ctx, items, query, targetCount)
	ret, _ := args.Get(0).([]media.Candidate)
	return ret
}

func newTestService() (*SubscribeService, *mockMP, *mockTMDB, *mockFilter) {
	mpc := &mockMP{}
	tm := &mockTMDB{}
	f := &mockFilter{}
	return NewSubscribeService(mpc, tm, f), mpc, tm, f
}
