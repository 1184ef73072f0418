package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MimeLyc/checkmp/internal/config"
	"github.com/MimeLyc/checkmp/internal/enrich"
	"github.com/MimeLyc/checkmp/internal/httpapi"
	"github.com/MimeLyc/checkmp/internal/mp"
	"github.com/MimeLyc/checkmp/internal/probe"
	"github.com/MimeLyc/checkmp/internal/service"
	"github.com/MimeLyc/checkmp/internal/tmdb"
	"github.com/MimeLyc/checkmp/pkg/log"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

type scheduler interface {
	Schedule(ctx context.Context) error
}

type cronEngine interface {
	Start()
	Stop() context.Context
}

type httpServer interface {
	ListenAndServe(addr string) error
	Shutdown(ctx context.Context) error
}

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}
	setupLogger(cfg.Log)
	defer log.GetLogger().Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mpClient := mp.NewClient(mp.Config{
		BaseURL: cfg.MP.BaseURL,
		APIKey:  cfg.MP.APIKey,
		Timeout: time.Duration(cfg.MP.Timeout) * time.Second,
	})
	tmdbClient := tmdb.NewClient(tmdb.Config{
		Token:     cfg.TMDB.Token,
		BaseURL:   cfg.TMDB.BaseURL,
		ImageBase: cfg.TMDB.ImageBase,
		Language:  cfg.TMDB.Language.String(),
		Timeout:   time.Duration(cfg.TMDB.Timeout) * time.Second,
		RateLimit: cfg.TMDB.RateLimit,
	})

	engine := enrich.NewEngine(
		enrich.NewTMDBFetcher(tmdbClient, time.Duration(cfg.TMDB.Timeout)*time.Second),
		enrich.WithConcurrency(cfg.Filter.Concurrency),
	)
	svc := service.NewSubscribeService(mpClient, tmdbClient, engine)

	cronRunner := cron.New()
	opts := []httpapi.Option{httpapi.WithVersion(version)}
	var probeScheduler scheduler
	if cfg.Probe.Enabled() {
		prober := probe.New(cronRunner, cfg.Probe.CronExpr,
			probe.Check{Name: "moviepilot", Run: func(ctx context.Context) error {
				_, err := mpClient.Statistic(ctx)
				return err
			}},
			probe.Check{Name: "tmdb", Run: tmdbClient.Ping},
		)
		probeScheduler = prober
		opts = append(opts, httpapi.WithHealthReporter(prober))
	}

	httpSrv := httpapi.NewServer(svc, opts...)

	if err := runWithComponents(ctx, cfg, probeScheduler, cronRunner, httpSrv); err != nil {
		log.Fatal("Service exited: %v", err)
	}
	log.Info("Service stopped")
}

func setupLogger(cfg config.LogConfig) {
	level := log.ParseLevel(cfg.Level)
	if cfg.File == "" {
		log.InitLogger(level)
		return
	}
	logger, err := log.NewRotatingLogger(cfg.File, level, log.RotateOptions{MaxBackups: 5, MaxAgeDays: 30})
	if err != nil {
		log.InitLogger(level)
		log.Warn("Falling back to stdout logging: %v", err)
		return
	}
	log.SetLogger(logger)
}

// runWithComponents starts the scheduler (if any) and the HTTP server and blocks
// until ctx is cancelled or the server fails.
func runWithComponents(ctx context.Context, cfg *config.Config, sched scheduler, cronRunner cronEngine, httpSrv httpServer) error {
	if sched != nil {
		if err := sched.Schedule(ctx); err != nil {
			return err
		}
	}
	cronRunner.Start()
	defer func() {
		select {
		case <-cronRunner.Stop().Done():
		case <-time.After(shutdownTimeout):
			log.Warn("Timed out waiting for scheduled jobs")
		}
	}()

	addr := cfg.HTTP.Addr()
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening on %s", addr)
		if err := httpSrv.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
