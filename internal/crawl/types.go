// Package crawl implements the polling orchestrator and the per-story
// download pipeline.
package crawl

import "time"

// StoredArtifact is the result of fetching one URL and writing it to
// disk. Path is set only when Succeeded is true.
type StoredArtifact struct {
	ID        string
	Path      string
	Succeeded bool
}

// IDGenerator produces identifiers for comment-link artifacts.
type IDGenerator interface {
	NewID() string
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
