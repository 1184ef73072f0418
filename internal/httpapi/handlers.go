package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/MimeLyc/checkmp/internal/media"
	"github.com/MimeLyc/checkmp/internal/probe"
	"github.com/MimeLyc/checkmp/internal/service"
	"github.com/MimeLyc/checkmp/internal/tmdb"
	"github.com/MimeLyc/checkmp/pkg/log"
)

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := queryInt(r, "page", service.DefaultPage)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	minVotes, err := queryInt(r, "min_votes", service.DefaultMinVotes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	minRating, err := queryFloatPtr(r, "min_rating")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.svc.Discover(r.Context(), pathKind(r), tmdb.DiscoverQuery{
		Lang:         q.Get("lang"),
		SortBy:       q.Get("sort_by"),
		Page:         page,
		MinVoteCount: minVotes,
		MinRating:    minRating,
		DateFrom:     q.Get("date_from"),
		DateTo:       q.Get("date_to"),
		Genres:       q.Get("genres"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Trending(r.Context(), pathKind(r), r.URL.Query().Get("time_window"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	detail, err := s.svc.Detail(r.Context(), pathKind(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleHot(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", service.DefaultPage)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	count, err := queryInt(r, "count", service.DefaultHotCount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	minRating, err := queryFloatPtr(r, "min_rating")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	genreID, err := queryIntPtr(r, "genre_id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := s.svc.HotList(r.Context(), pathKind(r), service.HotQuery{
		Page:      page,
		Count:     count,
		MinRating: minRating,
		GenreID:   genreID,
		Lang:      r.URL.Query().Get("lang"),
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := s.svc.Recommend(r.Context(), pathKind(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := s.svc.Similar(r.Context(), pathKind(r), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.svc.ListSubscriptions(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

type subscribeBody struct {
	TMDBID int    `json:"tmdb_id"`
	Title  string `json:"title"`
	Type   string `json:"type"`
	Season *int   `json:"season"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var body subscribeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if body.TMDBID <= 0 && strings.TrimSpace(body.Title) == "" {
		writeError(w, http.StatusBadRequest, "请提供 tmdb_id 或 title")
		return
	}

	req := service.SubscribeRequest{
		TMDBID: body.TMDBID,
		Title:  body.Title,
		Season: body.Season,
	}
	if strings.TrimSpace(body.Type) != "" {
		kind, ok := media.ParseKind(body.Type)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid type: "+body.Type)
			return
		}
		req.Kind = &kind
	}

	resp, err := s.svc.Subscribe(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp, err := s.svc.Unsubscribe(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheckSubscribed(w http.ResponseWriter, r *http.Request) {
	tmdbID, err := queryInt(r, "tmdb_id", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if tmdbID <= 0 {
		writeError(w, http.StatusBadRequest, "tmdb_id is required")
		return
	}
	season, err := queryIntPtr(r, "season")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.svc.CheckSubscribed(r.Context(), tmdbID, season))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	page, err := queryInt(r, "page", service.DefaultPage)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	count, err := queryInt(r, "count", service.DefaultSearchCount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := s.svc.Search(r.Context(), title, page, count)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", service.DefaultPage)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	count, err := queryInt(r, "count", service.DefaultHistorySize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	history, err := s.svc.DownloadHistory(r.Context(), page, count)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

type healthResponse struct {
	Status    string        `json:"status"`
	Service   string        `json:"service"`
	Version   string        `json:"version"`
	Upstreams *probe.Report `json:"upstreams,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Service: ServiceName,
		Version: s.version,
	}
	if s.health != nil {
		report := s.health.Report()
		resp.Upstreams = &report
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

// writeServiceError maps a service error to its status and a readable message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := service.TypeOf(err).HTTPStatus()
	msg := err.Error()

	var gwErr *service.GatewayError
	if errors.As(err, &gwErr) {
		msg = gwErr.Message
		if gwErr.Cause != nil {
			msg += ": " + gwErr.Cause.Error()
		}
	}

	if status >= http.StatusInternalServerError {
		log.Error("%s %s failed (rid=%s): %v", r.Method, r.URL.Path, RequestID(r.Context()), err)
	}
	writeError(w, status, msg)
}
