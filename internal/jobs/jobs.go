// Package jobs implements the client side of the asynchronous count/download
// job API: submit a job, then poll it to a terminal state.
package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
)

type Status string

const (
	StatusQueued  Status = "QUEUED"
	StatusRunning Status = "RUNNING"
	StatusDone    Status = "DONE"
	StatusError   Status = "ERROR"
)

// Terminal reports whether no further status transition can occur.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusError
}

// Job is the client-visible projection of a server-side job: the most
// recent poll response, never mutated locally.
type Job struct {
	JobID  string          `json:"jobId"`
	Status Status          `json:"status"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

type CountResult struct {
	Count int64 `json:"count"`
}

// DownloadResult carries at least one of CFPath/URL on success.
type DownloadResult struct {
	CFPath   string `json:"cf_path"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

func (j Job) CountResult() (CountResult, error) {
	if len(j.Result) == 0 {
		return CountResult{}, errors.New("count job completed but no result was returned")
	}
	var out struct {
		Count *int64 `json:"count"`
	}
	if err := json.Unmarshal(j.Result, &out); err != nil {
		return CountResult{}, fmt.Errorf("decode count result: %w", err)
	}
	if out.Count == nil {
		return CountResult{}, errors.New(`count job completed but no numeric "count" was returned`)
	}
	return CountResult{Count: *out.Count}, nil
}

func (j Job) DownloadResult() (DownloadResult, error) {
	if len(j.Result) == 0 {
		return DownloadResult{}, errors.New("download job completed but no result was returned")
	}
	var out DownloadResult
	if err := json.Unmarshal(j.Result, &out); err != nil {
		return DownloadResult{}, fmt.Errorf("decode download result: %w", err)
	}
	if out.CFPath == "" && out.URL == "" {
		return DownloadResult{}, errors.New("download job completed but no URL was returned")
	}
	return out, nil
}
