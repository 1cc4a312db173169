package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bormog/ycrawler/internal/api"
	"github.com/bormog/ycrawler/internal/clock"
	"github.com/bormog/ycrawler/internal/config"
	"github.com/bormog/ycrawler/internal/crawl"
	"github.com/bormog/ycrawler/internal/fetch"
	"github.com/bormog/ycrawler/internal/id"
	"github.com/bormog/ycrawler/internal/logging"
	"github.com/bormog/ycrawler/internal/storage"
)

// newCrawlCmd creates the 'crawl' subcommand, which runs the polling
// loop until interrupted.
func newCrawlCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crawl",
		Short: "Starts the polling crawler",
		Long: `Polls the front page on a fixed interval and downloads every new
top story plus its comment-thread links into the download directory.
Runs until interrupted.`,
		RunE: runCrawlCommand,
	}
}

func runCrawlCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Failure to set up the download root is the one fatal error.
	if !cfg.Crawler.DryRun {
		if err := os.MkdirAll(cfg.Crawler.DownloadDir, 0o750); err != nil {
			return fmt.Errorf("create download dir %s: %w", cfg.Crawler.DownloadDir, err)
		}
	}

	engine, fetcher, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Port > 0 {
		startOpsServer(ctx, cfg.Server.Port, engine.State(), fetcher, logger)
	}

	logger.Info("crawler starting",
		zap.String("front_page", cfg.FrontPageURL()),
		zap.Int("story_limit", cfg.Crawler.StoryLimit),
		zap.Duration("poll_interval", cfg.PollInterval()),
		zap.String("download_dir", cfg.Crawler.DownloadDir),
		zap.Bool("dry_run", cfg.Crawler.DryRun),
	)

	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run crawler: %w", err)
	}
	logger.Info("crawler stopped")
	return nil
}

func buildEngine(cfg config.Config, logger *zap.Logger) (*crawl.Engine, *fetch.Fetcher, error) {
	fetcher, err := fetch.New(fetch.Config{
		UserAgent:       cfg.HTTP.UserAgent,
		RequestTimeout:  cfg.RequestTimeout(),
		MaxRedirects:    cfg.HTTP.MaxRedirects,
		MaxConnsPerHost: cfg.HTTP.MaxConnsPerHost,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init fetcher: %w", err)
	}

	writer := storage.NewWriter(cfg.Crawler.DryRun, logger)
	pipeline := crawl.NewPipeline(
		fetcher,
		writer,
		id.NewRandom(),
		cfg.DiscussionURL(),
		cfg.Crawler.LinkConcurrency,
		logger,
	)

	engine := crawl.NewEngine(
		crawl.Config{
			FrontPageURL: cfg.FrontPageURL(),
			StoryLimit:   cfg.Crawler.StoryLimit,
			PollInterval: cfg.PollInterval(),
			DownloadDir:  cfg.Crawler.DownloadDir,
		},
		fetcher,
		pipeline,
		crawl.NewState(),
		clock.New(),
		logger,
	)
	return engine, fetcher, nil
}

func startOpsServer(ctx context.Context, port int, state *crawl.State, fetcher *fetch.Fetcher, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           api.NewServer(state, fetcher, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("ops server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("ops server failed", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
