package fetch

import "net/url"

// FailureKind classifies why a fetch attempt produced no content.
type FailureKind string

// Failure kinds. Every fetch error is folded into exactly one of these;
// none of them are fatal to the process.
const (
	FailureNone          FailureKind = ""
	FailureTimeout       FailureKind = "timeout"
	FailureInvalidTarget FailureKind = "invalid_target"
	FailureHTTP          FailureKind = "http_error"
	FailureTransport     FailureKind = "transport_error"
	FailureDecode        FailureKind = "decode_error"
)

// Result is the outcome of a single fetch attempt. It is produced once
// and never retried by the Fetcher itself.
//
// A successful text response carries the decoded document in Text; a
// successful binary response (allow-listed content types) carries the
// raw bytes in Body. On failure, Failure names the kind and Err holds
// the underlying cause.
type Result struct {
	URL      string
	Params   url.Values
	Status   int
	Binary   bool
	Body     []byte
	Text     string
	Encoding string
	Ext      string
	Failure  FailureKind
	Err      error
}

// OK reports whether the attempt succeeded.
func (r Result) OK() bool {
	return r.Failure == FailureNone
}

// HasContent reports whether the attempt yielded a non-empty payload
// worth persisting.
func (r Result) HasContent() bool {
	if !r.OK() {
		return false
	}
	if r.Binary {
		return len(r.Body) > 0
	}
	return r.Text != ""
}

// Stats is a snapshot of per-Fetcher counters. Counters only grow;
// per-cycle figures are derived by subtracting snapshots.
type Stats struct {
	Attempted int64 `json:"attempted"`
	Succeeded int64 `json:"succeeded"`
	Errors    int64 `json:"errors"`
}

// Sub returns the delta between two snapshots.
func (s Stats) Sub(prev Stats) Stats {
	return Stats{
		Attempted: s.Attempted - prev.Attempted,
		Succeeded: s.Succeeded - prev.Succeeded,
		Errors:    s.Errors - prev.Errors,
	}
}
