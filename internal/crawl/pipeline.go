package crawl

import (
	"context"
	"net/url"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bormog/ycrawler/internal/fetch"
	"github.com/bormog/ycrawler/internal/metrics"
	"github.com/bormog/ycrawler/internal/parse"
	"github.com/bormog/ycrawler/internal/storage"
)

// Pipeline executes the per-story unit of work: fetch the story page,
// fetch the discussion thread, and download every link referenced in
// the comments. It holds no crawl state of its own.
type Pipeline struct {
	fetcher       *fetch.Fetcher
	writer        *storage.Writer
	ids           IDGenerator
	discussionURL string
	linkLimit     int
	logger        *zap.Logger
}

// NewPipeline constructs a Pipeline. linkLimit bounds how many comment
// links are downloaded concurrently per story; it is sized
// independently of the HTTP client's per-host connection cap.
func NewPipeline(
	fetcher *fetch.Fetcher,
	writer *storage.Writer,
	ids IDGenerator,
	discussionURL string,
	linkLimit int,
	logger *zap.Logger,
) *Pipeline {
	if linkLimit <= 0 {
		linkLimit = 1
	}
	return &Pipeline{
		fetcher:       fetcher,
		writer:        writer,
		ids:           ids,
		discussionURL: discussionURL,
		linkLimit:     linkLimit,
		logger:        logger,
	}
}

// FetchAndStore fetches one URL and, if content was obtained, writes
// it under dir as id plus the derived extension. Fetch and write
// failures alike are folded into Succeeded == false; this method never
// fails outward.
func (p *Pipeline) FetchAndStore(ctx context.Context, id, rawURL, dir string) StoredArtifact {
	res := p.fetcher.Fetch(ctx, rawURL, nil)
	if !res.HasContent() {
		return StoredArtifact{ID: id}
	}

	path := filepath.Join(dir, id+res.Ext)
	var err error
	if res.Binary {
		err = p.writer.WriteBytes(path, res.Body)
	} else {
		err = p.writer.WriteText(path, res.Text)
	}
	if err != nil {
		p.logger.Warn("artifact write failed",
			zap.String("id", id),
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return StoredArtifact{ID: id}
	}
	return StoredArtifact{ID: id, Path: path, Succeeded: true}
}

// ProcessStory downloads the story page into saveDir, then fetches the
// story's discussion page and downloads every comment link into
// saveDir/links. The returned artifact describes the story page only;
// comment-link downloads are best effort and their outcomes are
// reported via logs and metrics, never via the return value.
func (p *Pipeline) ProcessStory(ctx context.Context, id, storyURL, saveDir string) StoredArtifact {
	story := p.FetchAndStore(ctx, id, storyURL, saveDir)
	p.logger.Debug("story page processed",
		zap.String("id", id),
		zap.String("url", storyURL),
		zap.Bool("succeeded", story.Succeeded),
	)

	discussion := p.fetcher.Fetch(ctx, p.discussionURL, url.Values{"id": {id}})
	if !discussion.HasContent() || discussion.Binary {
		return story
	}

	links := parse.CommentLinks(discussion.Text)
	if len(links) == 0 {
		return story
	}

	linksDir := filepath.Join(saveDir, "links")
	g := new(errgroup.Group)
	g.SetLimit(p.linkLimit)
	for _, link := range links {
		link := link
		linkID := p.ids.NewID()
		g.Go(func() error {
			artifact := p.FetchAndStore(ctx, linkID, link, linksDir)
			if !artifact.Succeeded {
				metrics.ObserveCommentLinkFailure()
				p.logger.Debug("comment link failed",
					zap.String("story_id", id),
					zap.String("url", link),
				)
			}
			return nil
		})
	}
	// Individual link failures never fail the group.
	_ = g.Wait()

	p.logger.Debug("comment links processed",
		zap.String("id", id),
		zap.Int("links", len(links)),
	)
	return story
}
