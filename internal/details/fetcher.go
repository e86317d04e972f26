// Package details fetches single-feature attribute records with a short
// TTL cache and single-flight superseding: a new fetch aborts any fetch
// still in flight, and a superseded response is never delivered.
package details

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cascadia-hazards/landslide-viewer/internal/core/httpclient"
	"github.com/cascadia-hazards/landslide-viewer/internal/observability"
)

var (
	// ErrInvalidInput marks a lookup missing its identity.
	ErrInvalidInput = errors.New("details fetch requires source and viewer id")

	// ErrFetchFailed marks a transport or server failure.
	ErrFetchFailed = errors.New("details fetch failed")

	// ErrAborted means the fetch was superseded or cancelled; callers
	// ignore it silently rather than displaying an error.
	ErrAborted = errors.New("details fetch aborted")
)

type Query struct {
	Source      string
	ViewerID    string
	IncludeGeom bool
}

type Fetcher struct {
	hc    *http.Client
	base  string
	store Store
	log   *slog.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func NewFetcher(hc *http.Client, base string, store Store, log *slog.Logger) *Fetcher {
	if hc == nil {
		hc = httpclient.NewOutbound()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Fetcher{hc: hc, base: strings.TrimRight(base, "/"), store: store, log: log}
}

// Abort cancels any in-flight fetch.
func (f *Fetcher) Abort() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.gen++
}

// Fetch returns the feature record for q, from cache when fresh. Starting
// a fetch supersedes any previous in-flight fetch.
func (f *Fetcher) Fetch(ctx context.Context, q Query) (Record, error) {
	if q.Source == "" || q.ViewerID == "" {
		return Record{}, ErrInvalidInput
	}
	key := Key(q.Source, q.ViewerID, q.IncludeGeom)

	if rec, ok, err := f.store.Get(ctx, key); err == nil && ok {
		observability.IncDetailsCacheHit()
		return rec, nil
	} else if err != nil {
		f.log.Warn("details cache read failed", "err", err)
	}
	observability.IncDetailsCacheMiss()

	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	fctx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.gen++
	gen := f.gen
	f.mu.Unlock()

	rec, err := f.doFetch(fctx, q)

	f.mu.Lock()
	current := gen == f.gen
	if current {
		f.cancel = nil
		cancel()
	}
	f.mu.Unlock()

	if !current {
		// a newer fetch took over while this one was in flight;
		// its outcome, success or not, must never reach the caller
		return Record{}, ErrAborted
	}
	if err != nil {
		if fctx.Err() != nil {
			return Record{}, fmt.Errorf("%w: %v", ErrAborted, fctx.Err())
		}
		return Record{}, err
	}

	if serr := f.store.Set(ctx, key, rec); serr != nil {
		f.log.Warn("details cache write failed", "err", serr)
	}
	return rec, nil
}

func (f *Fetcher) doFetch(ctx context.Context, q Query) (Record, error) {
	u, err := url.Parse(f.base + "/api/landslide")
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	qp := url.Values{}
	qp.Set("source", q.Source)
	qp.Set("viewer_id", q.ViewerID)
	qp.Set("include_geom", boolParam(q.IncludeGeom))
	u.RawQuery = qp.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	start := time.Now()
	resp, err := f.hc.Do(req)
	observability.ObserveUpstreamLatency("details", time.Since(start).Seconds())
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		text := strings.TrimSpace(string(body))
		if text != "" {
			return Record{}, fmt.Errorf("%w: status %d - %s", ErrFetchFailed, resp.StatusCode, text)
		}
		return Record{}, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	var rec Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return Record{}, fmt.Errorf("%w: decode response: %v", ErrFetchFailed, err)
	}
	return rec, nil
}

func boolParam(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
