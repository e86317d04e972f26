package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cascadia-hazards/landslide-viewer/internal/core/httpclient"
	"github.com/cascadia-hazards/landslide-viewer/internal/observability"
)

type Client struct {
	hc  *http.Client
	log *slog.Logger
}

func NewClient(hc *http.Client, log *slog.Logger) *Client {
	if hc == nil {
		hc = httpclient.NewOutbound()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{hc: hc, log: log}
}

// PollOptions control one poll operation. Both knobs must be supplied by
// the caller; defaults live in config, not here.
type PollOptions struct {
	Interval    time.Duration
	MaxDuration time.Duration
}

// Submit issues the job-creation POST to endpointBase (e.g. {api}/count)
// and returns the assigned job identifier.
func (c *Client) Submit(ctx context.Context, endpointBase string, body any) (jobID string, err error) {
	kind := jobKind(endpointBase)
	defer func() { observability.ObserveJobSubmission(kind, err) }()

	if endpointBase == "" || body == nil {
		return "", fmt.Errorf("%w: endpoint and body are required", ErrInvalidInput)
	}

	buf, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("%w: encode payload: %v", ErrInvalidInput, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointBase, bytes.NewReader(buf))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	observability.ObserveUpstreamLatency("job_submit", time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}
		return "", fmt.Errorf("%w: %v", ErrSubmissionFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s", ErrSubmissionFailed, errorDetail(resp))
	}

	var created struct {
		JobID  string `json:"jobId"`
		Status Status `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrSubmissionFailed, err)
	}
	if created.JobID == "" {
		return "", fmt.Errorf(`%w: response missing "jobId"`, ErrSubmissionFailed)
	}

	c.log.Debug("job submitted", "kind", kind, "job_id", created.JobID, "status", string(created.Status))
	return created.JobID, nil
}

// Poll fetches {endpointBase}/{jobID} at the configured cadence until the
// job is terminal, the context is cancelled, or MaxDuration elapses.
// Cancellation is observed at the top of every iteration and interrupts
// the inter-poll delay.
func (c *Client) Poll(ctx context.Context, endpointBase, jobID string, opts PollOptions) (Job, error) {
	if endpointBase == "" || jobID == "" {
		return Job{}, fmt.Errorf("%w: endpoint and job id are required", ErrInvalidInput)
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}

	kind := jobKind(endpointBase)
	statusURL := strings.TrimRight(endpointBase, "/") + "/" + url.PathEscape(jobID)
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			observability.IncPollOutcome(kind, "cancelled")
			return Job{}, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		default:
		}

		job, err := c.fetchStatus(ctx, kind, statusURL)
		if err != nil {
			if ctx.Err() != nil {
				observability.IncPollOutcome(kind, "cancelled")
				return Job{}, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
			}
			observability.IncPollOutcome(kind, "poll_failed")
			return Job{}, err
		}

		switch job.Status {
		case StatusDone:
			observability.IncPollOutcome(kind, "done")
			return job, nil
		case StatusError:
			observability.IncPollOutcome(kind, "job_failed")
			msg := job.Error
			if msg == "" {
				msg = "job failed with status ERROR"
			}
			return Job{}, fmt.Errorf("%w: %s", ErrJobFailed, msg)
		}

		// still QUEUED or RUNNING
		if time.Since(start) > opts.MaxDuration {
			observability.IncPollOutcome(kind, "timeout")
			return Job{}, fmt.Errorf("%w after %s", ErrTimeout, opts.MaxDuration)
		}

		timer := time.NewTimer(opts.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			observability.IncPollOutcome(kind, "cancelled")
			return Job{}, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		case <-timer.C:
		}
	}
}

func (c *Client) fetchStatus(ctx context.Context, kind, statusURL string) (Job, error) {
	observability.IncPollAttempt(kind)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return Job{}, fmt.Errorf("%w: %v", ErrPollFailed, err)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	observability.ObserveUpstreamLatency("job_status", time.Since(start).Seconds())
	if err != nil {
		return Job{}, fmt.Errorf("%w: %v", ErrPollFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Job{}, fmt.Errorf("%w: %s", ErrPollFailed, errorDetail(resp))
	}

	var job Job
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return Job{}, fmt.Errorf("%w: decode response: %v", ErrPollFailed, err)
	}
	return job, nil
}

// errorDetail extracts a readable message from a failed response: a
// structured detail/error field if the body is JSON, the raw body text
// otherwise, just the status code if the body is empty or unreadable.
func errorDetail(resp *http.Response) string {
	msg := fmt.Sprintf("status %d", resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return msg
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return msg
	}

	var structured struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &structured); err == nil {
		switch {
		case structured.Detail != "":
			return msg + " - " + structured.Detail
		case structured.Error != "":
			return msg + " - " + structured.Error
		}
	}
	return msg + " - " + text
}

func jobKind(endpointBase string) string {
	if u, err := url.Parse(endpointBase); err == nil && u.Path != "" {
		return path.Base(strings.TrimRight(u.Path, "/"))
	}
	return path.Base(strings.TrimRight(endpointBase, "/"))
}
