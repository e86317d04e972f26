package jobs

import "errors"

// Failure taxonomy for job operations. All client errors wrap exactly one
// of these sentinels so callers can match with errors.Is.
var (
	// ErrInvalidInput marks bad caller arguments; never retried.
	ErrInvalidInput = errors.New("invalid job request")

	// ErrSubmissionFailed marks a failed job-creation request.
	ErrSubmissionFailed = errors.New("job submission failed")

	// ErrPollFailed marks a failed status fetch. A single failed poll
	// attempt aborts the whole operation; status endpoints are expected
	// to be reliable once a job exists.
	ErrPollFailed = errors.New("job status fetch failed")

	// ErrJobFailed means the server reported the job itself as ERROR.
	ErrJobFailed = errors.New("job failed")

	// ErrTimeout means the client-side poll deadline elapsed while the
	// job was still QUEUED or RUNNING.
	ErrTimeout = errors.New("timed out waiting for job to complete")

	// ErrCancelled means the caller's context was cancelled before the
	// job reached a terminal state. Surfaced silently, never as an error
	// message.
	ErrCancelled = errors.New("job polling cancelled")
)
