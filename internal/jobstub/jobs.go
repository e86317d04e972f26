package jobstub

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cascadia-hazards/landslide-viewer/internal/jobs"
)

type Kind string

const (
	KindCount    Kind = "count"
	KindDownload Kind = "download"
)

type record struct {
	id      string
	kind    Kind
	created time.Time
	result  json.RawMessage
}

// Jobs is the in-memory job table. Status is derived from elapsed time
// since creation, so progression needs no background goroutine:
// QUEUED until the queue latency passes, RUNNING until the run latency
// passes, DONE after that.
type Jobs struct {
	mu       sync.RWMutex
	m        map[string]*record
	queueLat time.Duration
	runLat   time.Duration
	now      func() time.Time
}

func NewJobs(queueLat, runLat time.Duration) *Jobs {
	return &Jobs{
		m:        make(map[string]*record),
		queueLat: queueLat,
		runLat:   runLat,
		now:      time.Now,
	}
}

func (j *Jobs) Create(kind Kind, result json.RawMessage) string {
	id := uuid.NewString()
	j.mu.Lock()
	j.m[id] = &record{id: id, kind: kind, created: j.now(), result: result}
	j.mu.Unlock()
	return id
}

// SetResult fills in the terminal result after creation, for results
// that embed the assigned job id.
func (j *Jobs) SetResult(id string, result json.RawMessage) {
	j.mu.Lock()
	if rec, ok := j.m[id]; ok {
		rec.result = result
	}
	j.mu.Unlock()
}

// View projects a job the way the status endpoint reports it.
func (j *Jobs) View(id string) (jobs.Job, bool) {
	j.mu.RLock()
	rec, ok := j.m[id]
	now := j.now()
	j.mu.RUnlock()
	if !ok {
		return jobs.Job{}, false
	}

	out := jobs.Job{JobID: rec.id, Status: jobs.StatusQueued}
	elapsed := now.Sub(rec.created)
	switch {
	case elapsed < j.queueLat:
	case elapsed < j.queueLat+j.runLat:
		out.Status = jobs.StatusRunning
	default:
		out.Status = jobs.StatusDone
		out.Result = rec.result
	}
	return out, true
}

func (j *Jobs) Kind(id string) (Kind, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	rec, ok := j.m[id]
	if !ok {
		return "", false
	}
	return rec.kind, true
}
