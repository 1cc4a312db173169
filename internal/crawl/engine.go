package crawl

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bormog/ycrawler/internal/fetch"
	"github.com/bormog/ycrawler/internal/metrics"
	"github.com/bormog/ycrawler/internal/parse"
)

// Config holds the settings for the polling loop.
type Config struct {
	FrontPageURL string
	StoryLimit   int
	PollInterval time.Duration
	DownloadDir  string
}

// Engine runs the steady-state polling loop: discover top stories,
// schedule the ones not seen before, await the batch, reconcile the
// scheduled/visited sets, idle, repeat. Cycles are strictly
// sequential: the loop blocks on the whole batch before sleeping, so
// reconciliation always completes before the next discovery.
type Engine struct {
	cfg      Config
	fetcher  *fetch.Fetcher
	pipeline *Pipeline
	state    *State
	clock    Clock
	logger   *zap.Logger

	// Snapshot of fetcher counters at the end of the previous cycle,
	// used to log per-cycle deltas. Touched only by the loop goroutine.
	lastStats fetch.Stats
}

// NewEngine constructs an Engine.
func NewEngine(
	cfg Config,
	fetcher *fetch.Fetcher,
	pipeline *Pipeline,
	state *State,
	clk Clock,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		cfg:      cfg,
		fetcher:  fetcher,
		pipeline: pipeline,
		state:    state,
		clock:    clk,
		logger:   logger,
	}
}

// State exposes the dedup sets for the ops endpoint.
func (e *Engine) State() *State {
	return e.state
}

// Run polls until the context is canceled. It has no terminal state of
// its own; in-flight fetches are abandoned on shutdown.
func (e *Engine) Run(ctx context.Context) error {
	timer := time.NewTimer(e.cfg.PollInterval)
	defer timer.Stop()

	for cycle := 0; ; cycle++ {
		e.logger.Info("cycle start", zap.Int("cycle", cycle))
		e.runCycle(ctx, cycle)

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(e.cfg.PollInterval)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// runCycle performs one discover -> schedule -> await -> reconcile
// pass. Every failure inside a cycle is absorbed; only the context can
// stop the loop.
func (e *Engine) runCycle(ctx context.Context, cycle int) {
	started := e.clock.Now()

	front := e.fetcher.Fetch(ctx, e.cfg.FrontPageURL, nil)
	if !front.HasContent() || front.Binary {
		metrics.ObserveEmptyFrontPage()
		e.logger.Error("front page yielded no content, skipping cycle",
			zap.Int("cycle", cycle),
			zap.String("kind", string(front.Failure)),
			zap.Error(front.Err),
		)
		return
	}

	stories := parse.TopStories(front.Text, e.cfg.StoryLimit)
	results := make(chan StoredArtifact, len(stories))
	g := new(errgroup.Group)
	launched := 0
	for _, story := range stories {
		if !e.state.Schedule(story.ID) {
			continue
		}
		launched++
		story := story
		saveDir := filepath.Join(e.cfg.DownloadDir, story.ID)
		g.Go(func() error {
			results <- e.pipeline.ProcessStory(ctx, story.ID, story.URL, saveDir)
			return nil
		})
	}
	e.logger.Info("scheduled new stories",
		zap.Int("cycle", cycle),
		zap.Int("candidates", len(stories)),
		zap.Int("launched", launched),
	)

	_ = g.Wait()
	close(results)
	for artifact := range results {
		e.state.MarkVisited(artifact.ID)
		metrics.ObserveStoryVisited(artifact.Succeeded)
	}

	stats := e.fetcher.Stats()
	delta := stats.Sub(e.lastStats)
	e.lastStats = stats

	scheduled, visited := e.state.Counts()
	elapsed := e.clock.Now().Sub(started)
	metrics.ObserveCycle(elapsed)
	e.logger.Info("cycle complete",
		zap.Int("cycle", cycle),
		zap.Duration("elapsed", elapsed),
		zap.Int64("fetched", delta.Attempted),
		zap.Int64("downloads", delta.Succeeded),
		zap.Int64("errors", delta.Errors),
		zap.Int("scheduled", scheduled),
		zap.Int("visited", visited),
	)
}
