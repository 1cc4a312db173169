package crawl

import (
	"sort"
	"sync"
)

// State tracks which story ids have been scheduled and which have been
// fully processed. Ids move unseen -> scheduled -> visited and are
// never removed from visited; the two sets stay disjoint.
//
// The crawl loop runs cycles strictly sequentially, but the ops HTTP
// endpoint reads snapshots concurrently, so access is guarded.
type State struct {
	mu        sync.Mutex
	scheduled map[string]struct{}
	visited   map[string]struct{}
}

// NewState returns an empty State.
func NewState() *State {
	return &State{
		scheduled: make(map[string]struct{}),
		visited:   make(map[string]struct{}),
	}
}

// Schedule marks id as scheduled and reports whether it was new. Ids
// already scheduled or visited are refused.
func (s *State) Schedule(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.scheduled[id]; ok {
		return false
	}
	if _, ok := s.visited[id]; ok {
		return false
	}
	s.scheduled[id] = struct{}{}
	return true
}

// MarkVisited moves id from scheduled to visited. A story is visited
// once its processing finished, successfully or not; it is never
// scheduled again.
func (s *State) MarkVisited(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scheduled, id)
	s.visited[id] = struct{}{}
}

// Counts returns the sizes of the scheduled and visited sets.
func (s *State) Counts() (scheduled, visited int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.scheduled), len(s.visited)
}

// Snapshot returns sorted copies of both sets.
func (s *State) Snapshot() (scheduled, visited []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scheduled = make([]string, 0, len(s.scheduled))
	for id := range s.scheduled {
		scheduled = append(scheduled, id)
	}
	visited = make([]string, 0, len(s.visited))
	for id := range s.visited {
		visited = append(visited, id)
	}
	sort.Strings(scheduled)
	sort.Strings(visited)
	return scheduled, visited
}
