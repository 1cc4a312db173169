// Package fetch implements the single-shot page fetcher used by the
// crawl pipeline. It wraps a shared Colly collector so every fetch in
// the process goes through one connection-pooled HTTP client.
package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/bormog/ycrawler/internal/metrics"
)

// Content types persisted as raw bytes instead of decoded text.
var binaryContentTypes = map[string]struct{}{
	"application/pdf": {},
	"image/png":       {},
}

// Extensions for content types where mime.ExtensionsByType is either
// ambiguous (.htm vs .html) or platform dependent.
var extensionOverrides = map[string]string{
	"text/html":       ".html",
	"text/plain":      ".txt",
	"application/pdf": ".pdf",
	"image/png":       ".png",
}

var errTooManyRedirects = errors.New("too many redirects")

// Config holds the knobs for the shared HTTP client.
type Config struct {
	UserAgent       string
	RequestTimeout  time.Duration
	MaxRedirects    int
	MaxConnsPerHost int
}

// Fetcher issues single HTTP GETs and classifies the responses.
// All fetches share one collector and therefore one transport; the
// transport's per-host connection cap is the only backpressure the
// crawler applies. Safe for concurrent use.
type Fetcher struct {
	base   *colly.Collector
	logger *zap.Logger

	attempted atomic.Int64
	succeeded atomic.Int64
	errored   atomic.Int64
}

// New constructs a Fetcher backed by a configured Colly collector.
//
// TLS certificate verification is deliberately disabled: the crawl
// follows arbitrary comment links and a bad certificate chain is not a
// reason to drop an artifact. Do not reuse this client for anything
// that needs transport security.
func New(cfg Config, logger *zap.Logger) (*Fetcher, error) {
	base := colly.NewCollector(
		colly.Async(true),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	base.WithTransport(&http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        128,
		MaxIdleConnsPerHost: cfg.MaxConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		ForceAttemptHTTP2:   true,
	})
	base.SetRequestTimeout(cfg.RequestTimeout)

	maxHops := cfg.MaxRedirects
	base.SetRedirectHandler(func(_ *http.Request, via []*http.Request) error {
		if len(via) >= maxHops {
			return errTooManyRedirects
		}
		return nil
	})

	return &Fetcher{
		base:   base,
		logger: logger,
	}, nil
}

// Stats returns a snapshot of the per-instance counters.
func (f *Fetcher) Stats() Stats {
	return Stats{
		Attempted: f.attempted.Load(),
		Succeeded: f.succeeded.Load(),
		Errors:    f.errored.Load(),
	}
}

type rawResponse struct {
	status      int
	contentType string
	body        []byte
	err         error
}

// Fetch performs one GET against rawURL with optional query params and
// returns a classified Result. It never panics and never returns an
// error: every failure path is absorbed into Result.Failure.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, params url.Values) Result {
	f.attempted.Add(1)
	metrics.IncInFlight()
	defer metrics.DecInFlight()

	target, err := buildTarget(rawURL, params)
	if err != nil {
		return f.failure(rawURL, params, FailureInvalidTarget, err)
	}

	collector := f.base.Clone()
	resultCh := make(chan rawResponse, 1)
	var once sync.Once
	send := func(raw rawResponse) {
		once.Do(func() {
			resultCh <- raw
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		raw := rawResponse{
			status: r.StatusCode,
			body:   append([]byte{}, r.Body...),
		}
		if r.Headers != nil {
			raw.contentType = r.Headers.Get("Content-Type")
		}
		send(raw)
	})

	collector.OnError(func(r *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		raw := rawResponse{err: err}
		if r != nil {
			raw.status = r.StatusCode
		}
		send(raw)
	})

	if err := collector.Visit(target); err != nil {
		return f.failure(rawURL, params, FailureInvalidTarget, err)
	}
	collector.Wait()

	select {
	case raw := <-resultCh:
		if err := ctx.Err(); err != nil {
			return f.failure(rawURL, params, FailureTimeout, err)
		}
		return f.classify(rawURL, params, raw)
	default:
		return f.failure(rawURL, params, FailureTransport, errors.New("fetch produced no result"))
	}
}

// classify turns a raw HTTP exchange into a Result, decoding the body
// as text unless the declared content type is on the binary allow-list.
func (f *Fetcher) classify(rawURL string, params url.Values, raw rawResponse) Result {
	if raw.err != nil {
		return f.failure(rawURL, params, classifyError(raw.status, raw.err), raw.err)
	}
	if raw.status < 200 || raw.status > 299 {
		return f.failure(rawURL, params, FailureHTTP, fmt.Errorf("unexpected status %d", raw.status))
	}

	mediaType := rawMediaType(raw.contentType)
	res := Result{
		URL:    rawURL,
		Params: params,
		Status: raw.status,
		Ext:    extensionFor(mediaType),
	}

	if _, ok := binaryContentTypes[mediaType]; ok {
		res.Binary = true
		res.Body = raw.body
	} else {
		text, encName, err := decodeText(raw.body, raw.contentType)
		if err != nil {
			return f.failure(rawURL, params, FailureDecode, err)
		}
		res.Text = text
		res.Encoding = encName
	}

	f.succeeded.Add(1)
	metrics.ObserveFetch(string(FailureNone), len(raw.body))
	f.logger.Debug("fetched page",
		zap.String("url", rawURL),
		zap.Int("status", raw.status),
		zap.Int("bytes", len(raw.body)),
		zap.String("ext", res.Ext),
	)
	return res
}

func (f *Fetcher) failure(rawURL string, params url.Values, kind FailureKind, err error) Result {
	f.errored.Add(1)
	metrics.ObserveFetch(string(kind), 0)
	f.logger.Debug("fetch failed",
		zap.String("url", rawURL),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)
	return Result{
		URL:     rawURL,
		Params:  params,
		Failure: kind,
		Err:     err,
	}
}

// classifyError maps a transport-level error onto the failure taxonomy.
func classifyError(status int, err error) FailureKind {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return FailureTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	if errors.Is(err, errTooManyRedirects) {
		return FailureHTTP
	}
	if status > 0 {
		return FailureHTTP
	}
	return FailureTransport
}

func buildTarget(rawURL string, params url.Values) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

func rawMediaType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mediaType
}

// extensionFor maps a media type to a filename extension. Unknown
// types yield an empty extension; callers must cope.
func extensionFor(mediaType string) string {
	if mediaType == "" {
		return ""
	}
	if ext, ok := extensionOverrides[mediaType]; ok {
		return ext
	}
	exts, err := mime.ExtensionsByType(mediaType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}
