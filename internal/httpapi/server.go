package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/MimeLyc/checkmp/internal/media"
	"github.com/MimeLyc/checkmp/internal/mp"
	"github.com/MimeLyc/checkmp/internal/probe"
	"github.com/MimeLyc/checkmp/internal/service"
	"github.com/MimeLyc/checkmp/internal/tmdb"
)

const ServiceName = "checkmp"

type subscribeService interface {
	HotList(ctx context.Context, kind media.Kind, q service.HotQuery) ([]media.Candidate, error)
	Subscribe(ctx context.Context, req service.SubscribeRequest) (*mp.Response, error)
	Unsubscribe(ctx context.Context, id int) (*mp.Response, error)
	CheckSubscribed(ctx context.Context, tmdbID int, season *int) service.CheckResult
	ListSubscriptions(ctx context.Context) ([]media.Subscription, error)
	Search(ctx context.Context, title string, page, count int) ([]media.Candidate, error)
	Stats(ctx context.Context) (*service.Stats, error)
	DownloadHistory(ctx context.Context, page, count int) (json.RawMessage, error)
	Recommend(ctx context.Context, kind media.Kind, tmdbID int) ([]media.Candidate, error)
	Similar(ctx context.Context, kind media.Kind, tmdbID int) ([]media.Candidate, error)
	Discover(ctx context.Context, kind media.Kind, q tmdb.DiscoverQuery) (*tmdb.Page, error)
	Trending(ctx context.Context, kind media.Kind, window string) ([]tmdb.Item, error)
	Detail(ctx context.Context, kind media.Kind, tmdbID int) (*tmdb.Detail, error)
}

type healthReporter interface {
	Report() probe.Report
}

type Server struct {
	svc     subscribeService
	health  healthReporter
	version string

	router  *mux.Router
	handler http.Handler
	server  *http.Server
}

type Option func(*Server)

// WithHealthReporter adds upstream probe results to /api/health.
func WithHealthReporter(h healthReporter) Option {
	return func(s *Server) {
		s.health = h
	}
}

func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

func NewServer(svc subscribeService, opts ...Option) *Server {
	s := &Server{
		svc:     svc,
		version: "dev",
		router:  mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	// Wrapped outside the router so preflight and 404 responses get them too.
	s.handler = chain(s.router, withCORS, withAccessLog, withRequestID)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/tmdb/discover/{kind:tv|movie}", s.handleDiscover).Methods(http.MethodGet)
	api.HandleFunc("/tmdb/trending/{kind:tv|movie}", s.handleTrending).Methods(http.MethodGet)
	api.HandleFunc("/tmdb/{kind:tv|movie}/{id:[0-9]+}", s.handleDetail).Methods(http.MethodGet)

	api.HandleFunc("/hot/{kind:tv|movie}", s.handleHot).Methods(http.MethodGet)
	api.HandleFunc("/recommend/{kind:tv|movie}/{id:[0-9]+}", s.handleRecommend).Methods(http.MethodGet)
	api.HandleFunc("/similar/{kind:tv|movie}/{id:[0-9]+}", s.handleSimilar).Methods(http.MethodGet)

	api.HandleFunc("/subscribe", s.handleListSubscriptions).Methods(http.MethodGet)
	api.HandleFunc("/subscribe", s.handleSubscribe).Methods(http.MethodPost)
	api.HandleFunc("/subscribe/check", s.handleCheckSubscribed).Methods(http.MethodGet)
	api.HandleFunc("/subscribe/{id:[0-9]+}", s.handleUnsubscribe).Methods(http.MethodDelete)

	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
}
