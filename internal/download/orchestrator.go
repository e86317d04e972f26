// Package download sequences the count-then-confirm-then-download flow
// over the job API and drives the confirmation view state machine.
package download

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"

	"github.com/cascadia-hazards/landslide-viewer/internal/filter"
	"github.com/cascadia-hazards/landslide-viewer/internal/jobs"
)

var ErrNotReady = errors.New("download not confirmed from ready state")

type Config struct {
	APIBaseURL           string
	CDNBaseURL           string
	CountPoll            jobs.PollOptions
	DownloadPoll         jobs.PollOptions
	LargeResultThreshold int64
}

type countRequest struct {
	Filters filter.Payload `json:"filters"`
}

type downloadRequest struct {
	Filters  filter.Payload `json:"filters"`
	Compress bool           `json:"compress"`
}

// Orchestrator runs one count→confirm→download invocation at a time.
// Begin snapshots the filter state once; Confirm reuses that snapshot so
// the count and the download always operate on identical filters.
type Orchestrator struct {
	cfg       Config
	jobs      *jobs.Client
	state     *filter.State
	presenter Presenter
	saver     Saver
	log       *slog.Logger

	mu      sync.Mutex
	view    View
	payload *filter.Payload
}

func NewOrchestrator(cfg Config, jc *jobs.Client, st *filter.State, p Presenter, s Saver, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{cfg: cfg, jobs: jc, state: st, presenter: p, saver: s, log: log}
}

// CurrentView returns the last presented view.
func (o *Orchestrator) CurrentView() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view
}

func (o *Orchestrator) countURL() string    { return o.cfg.APIBaseURL + "/count" }
func (o *Orchestrator) downloadURL() string { return o.cfg.APIBaseURL + "/download" }

func (o *Orchestrator) apiHost() string {
	if u, err := url.Parse(o.cfg.APIBaseURL); err == nil {
		return u.Host
	}
	return ""
}

// Begin starts a fresh invocation: snapshot the filters, present the
// counting state and run the count job. Without a presenter there is no
// confirmation surface, so it degrades to a direct download.
func (o *Orchestrator) Begin(ctx context.Context) error {
	if o.presenter == nil {
		o.log.Warn("no presenter available, falling back to direct download")
		_, err := o.Direct(ctx, false)
		return err
	}

	payload, lines, err := o.snapshotPayload()
	if err != nil {
		o.enterError(err.Error())
		return err
	}
	o.enterCounting(lines)

	jobID, err := o.jobs.Submit(ctx, o.countURL(), countRequest{Filters: *payload})
	if err != nil {
		return o.fail(err)
	}
	job, err := o.jobs.Poll(ctx, o.countURL(), jobID, o.cfg.CountPoll)
	if err != nil {
		return o.fail(err)
	}
	res, err := job.CountResult()
	if err != nil {
		o.enterError(err.Error())
		return err
	}

	o.enterReady(res.Count)
	return nil
}

// Confirm runs the download job with the snapshot taken at Begin. Only
// valid from the ready state.
func (o *Orchestrator) Confirm(ctx context.Context, compress bool) error {
	o.mu.Lock()
	if o.view.State != StateReady || o.payload == nil {
		o.mu.Unlock()
		return ErrNotReady
	}
	payload := *o.payload
	o.mu.Unlock()

	o.enterDownloading()

	saved, filename, err := o.runDownload(ctx, payload, compress)
	if err != nil {
		return o.fail(err)
	}
	o.enterDone(filename, saved)
	return nil
}

// Direct is the degraded-environment fallback: no confirmation, no count
// job, still one download job through the normal submit/poll path.
func (o *Orchestrator) Direct(ctx context.Context, compress bool) (string, error) {
	payload, _, err := o.snapshotPayload()
	if err != nil {
		return "", err
	}
	saved, _, err := o.runDownload(ctx, *payload, compress)
	return saved, err
}

func (o *Orchestrator) runDownload(ctx context.Context, payload filter.Payload, compress bool) (saved, filename string, err error) {
	jobID, err := o.jobs.Submit(ctx, o.downloadURL(), downloadRequest{Filters: payload, Compress: compress})
	if err != nil {
		return "", "", err
	}
	job, err := o.jobs.Poll(ctx, o.downloadURL(), jobID, o.cfg.DownloadPoll)
	if err != nil {
		return "", "", err
	}
	res, err := job.DownloadResult()
	if err != nil {
		return "", "", err
	}

	rawURL, filename, err := ResolveResult(o.apiHost(), o.cfg.CDNBaseURL, res, compress)
	if err != nil {
		return "", "", err
	}

	o.log.Info("download job resolved", "job_id", jobID, "url", rawURL, "filename", filename)
	saved, err = o.saver.Save(ctx, rawURL, filename)
	if err != nil {
		return "", "", err
	}
	return saved, filename, nil
}

// snapshotPayload reads the filter state exactly once per invocation.
func (o *Orchestrator) snapshotPayload() (*filter.Payload, []string, error) {
	snap := o.state.Snapshot()
	cat := o.state.Catalog()

	payload, err := filter.JobPayload(cat, &snap)
	if err != nil {
		return nil, nil, err
	}
	lines := filter.Describe(cat, &snap)

	o.mu.Lock()
	o.payload = &payload
	o.mu.Unlock()
	return &payload, lines, nil
}

// fail maps a job error to the view: cancellation is a deliberate user
// dismissal and aborts silently, everything else surfaces verbatim.
func (o *Orchestrator) fail(err error) error {
	if errors.Is(err, jobs.ErrCancelled) {
		o.log.Debug("flow cancelled", "err", err)
		return err
	}
	o.enterError(err.Error())
	return err
}

func (o *Orchestrator) present() {
	if o.presenter != nil {
		o.presenter.Present(o.view)
	}
}

func (o *Orchestrator) enterCounting(lines []string) {
	o.mu.Lock()
	o.view = View{State: StateCounting, Message: msgCounting, FilterLines: lines}
	o.mu.Unlock()
	o.present()
}

func (o *Orchestrator) enterReady(count int64) {
	o.mu.Lock()
	o.view.State = StateReady
	o.view.Count = count
	o.view.HasCount = true
	o.view.Severe = count > o.cfg.LargeResultThreshold
	if o.view.Severe {
		o.view.Message = advisoryStrong
	} else {
		o.view.Message = advisoryMild
	}
	o.mu.Unlock()
	o.present()
}

func (o *Orchestrator) enterDownloading() {
	o.mu.Lock()
	o.view.State = StateDownloading
	o.view.Severe = false
	o.view.Message = msgDownloading
	o.mu.Unlock()
	o.present()
}

func (o *Orchestrator) enterDone(filename, saved string) {
	o.mu.Lock()
	o.view.State = StateDone
	o.view.Severe = false
	o.view.Message = msgDone
	o.view.Filename = filename
	o.view.SavedPath = saved
	o.payload = nil
	o.mu.Unlock()
	o.present()
}

// enterError keeps any previously displayed count.
func (o *Orchestrator) enterError(msg string) {
	o.mu.Lock()
	o.view.State = StateError
	o.view.Severe = true
	o.view.Message = msg
	o.mu.Unlock()
	o.present()
}
