package crawl

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bormog/ycrawler/internal/fetch"
	"github.com/bormog/ycrawler/internal/storage"
)

// fakeSite is an httptest stand-in for the news site: a front page
// with two stories, a discussion thread per story, and a handful of
// comment-link targets. It records per-path hit counts.
type fakeSite struct {
	server *httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

func newFakeSite(t *testing.T) *fakeSite {
	t.Helper()

	s := &fakeSite{hits: make(map[string]int)}
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		s.serveHTML(w, fmt.Sprintf(`
<html><body><table>
<tr class="athing" id="101"><td class="title">
  <a class="storylink" href="%[1]s/story/101">Story one</a>
</td></tr>
<tr class="athing" id="102"><td class="title">
  <a class="storylink" href="%[1]s/story/102">Story two</a>
</td></tr>
</table></body></html>`, s.server.URL))
	})

	mux.HandleFunc("/story/101", func(w http.ResponseWriter, _ *http.Request) {
		s.serveHTML(w, "<html><body>story one</body></html>")
	})
	mux.HandleFunc("/story/102", func(w http.ResponseWriter, _ *http.Request) {
		s.serveHTML(w, "<html><body>story two</body></html>")
	})

	mux.HandleFunc("/item", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("id") {
		case "101":
			s.serveHTML(w, fmt.Sprintf(`
<html><body>
<span class="commtext">
  <a href="%[1]s/link/ok">good link</a>
  <a href="%[1]s/link/missing">dead link</a>
</span>
</body></html>`, s.server.URL))
		case "102":
			s.serveHTML(w, `<html><body><span class="commtext">no links here</span></body></html>`)
		default:
			http.NotFound(w, r)
		}
	})

	mux.HandleFunc("/link/ok", func(w http.ResponseWriter, _ *http.Request) {
		s.serveHTML(w, "<html><body>linked page</body></html>")
	})
	mux.HandleFunc("/link/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.record(r.URL.Path)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(s.server.Close)
	return s
}

func (s *fakeSite) serveHTML(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(body))
}

func (s *fakeSite) record(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits[path]++
}

func (s *fakeSite) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// seqIDs is a deterministic IDGenerator for tests.
type seqIDs struct {
	n atomic.Int64
}

func (g *seqIDs) NewID() string {
	return fmt.Sprintf("link-%d", g.n.Add(1))
}

func newTestFetcher(t *testing.T) *fetch.Fetcher {
	t.Helper()
	f, err := fetch.New(fetch.Config{
		UserAgent:       "ycrawler-test",
		RequestTimeout:  5 * time.Second,
		MaxRedirects:    3,
		MaxConnsPerHost: 8,
	}, zap.NewNop())
	require.NoError(t, err)
	return f
}

func newTestPipeline(t *testing.T, site *fakeSite, dryRun bool) (*Pipeline, *fetch.Fetcher) {
	t.Helper()
	fetcher := newTestFetcher(t)
	writer := storage.NewWriter(dryRun, zap.NewNop())
	pipeline := NewPipeline(fetcher, writer, &seqIDs{}, site.server.URL+"/item", 4, zap.NewNop())
	return pipeline, fetcher
}
