package jobstub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cascadia-hazards/landslide-viewer/internal/details"
	"github.com/cascadia-hazards/landslide-viewer/internal/filter"
	"github.com/cascadia-hazards/landslide-viewer/internal/jobs"
)

func emptyPayload() filter.Payload {
	return filter.Payload{
		Materials:   []string{},
		Movements:   []string{},
		Confidences: []string{},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	// zero latencies: jobs are DONE on the first status fetch
	srv := httptest.NewServer(New(Config{}, nil).Router())
	t.Cleanup(srv.Close)
	return srv
}

func TestCountJobContract(t *testing.T) {
	srv := newTestServer(t)
	c := jobs.NewClient(srv.Client(), nil)
	ctx := context.Background()

	body := map[string]any{"filters": map[string]any{
		"materials": []string{"Rock"},
	}}
	jobID, err := c.Submit(ctx, srv.URL+"/api/count", body)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	job, err := c.Poll(ctx, srv.URL+"/api/count", jobID, jobs.PollOptions{Interval: time.Millisecond, MaxDuration: time.Second})
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	res, err := job.CountResult()
	if err != nil {
		t.Fatalf("CountResult: %v", err)
	}
	// one of six materials selected
	if want := int64(8035); res.Count != want {
		t.Errorf("count = %d, want %d", res.Count, want)
	}
}

func TestDownloadJobContract(t *testing.T) {
	srv := newTestServer(t)
	c := jobs.NewClient(srv.Client(), nil)
	ctx := context.Background()

	body := map[string]any{"filters": map[string]any{}, "compress": true}
	jobID, err := c.Submit(ctx, srv.URL+"/api/download", body)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	job, err := c.Poll(ctx, srv.URL+"/api/download", jobID, jobs.PollOptions{Interval: time.Millisecond, MaxDuration: time.Second})
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	res, err := job.DownloadResult()
	if err != nil {
		t.Fatalf("DownloadResult: %v", err)
	}

	if res.Filename != "landslides.geojson.zip" {
		t.Errorf("filename = %q", res.Filename)
	}
	if !strings.HasPrefix(res.CFPath, "/exports/"+jobID+"/") {
		t.Errorf("cf_path = %q", res.CFPath)
	}

	// the presigned URL must serve the export body
	resp, err := srv.Client().Get(res.URL)
	if err != nil {
		t.Fatalf("fetch export: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
}

func TestJobProgression(t *testing.T) {
	j := NewJobs(50*time.Millisecond, 100*time.Millisecond)
	base := time.Now()
	j.now = func() time.Time { return base }

	id := j.Create(KindCount, []byte(`{"count":1}`))

	view := func(at time.Duration) jobs.Status {
		j.now = func() time.Time { return base.Add(at) }
		v, ok := j.View(id)
		if !ok {
			t.Fatalf("job %s vanished", id)
		}
		return v.Status
	}

	if s := view(10 * time.Millisecond); s != jobs.StatusQueued {
		t.Errorf("status at 10ms = %s, want QUEUED", s)
	}
	if s := view(80 * time.Millisecond); s != jobs.StatusRunning {
		t.Errorf("status at 80ms = %s, want RUNNING", s)
	}
	if s := view(200 * time.Millisecond); s != jobs.StatusDone {
		t.Errorf("status at 200ms = %s, want DONE", s)
	}

	j.now = func() time.Time { return base.Add(200 * time.Millisecond) }
	v, _ := j.View(id)
	if v.Result == nil {
		t.Error("DONE view must carry the result")
	}
}

func TestStatusUnknownJob(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/api/count/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	var body map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body["detail"] != "job not found" {
		t.Errorf("detail = %q", body["detail"])
	}
}

func TestSubmitRejectsMalformedBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Post(srv.URL+"/api/count", "application/json", strings.NewReader(`{"nope":true}`))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDetailsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	t.Run("known feature", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/api/landslide?source=wa_dnr&viewer_id=12843")
		if err != nil {
			t.Fatal(err)
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		var rec details.Record
		if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
			t.Fatal(err)
		}
		if !rec.Found || rec.Properties["material"] != "Debris" {
			t.Errorf("record = %+v", rec)
		}
	})

	t.Run("unknown feature", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/api/landslide?source=nope&viewer_id=1")
		if err != nil {
			t.Fatal(err)
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", resp.StatusCode)
		}
	})

	t.Run("missing identity", func(t *testing.T) {
		resp, err := srv.Client().Get(srv.URL + "/api/landslide?source=wa_dnr")
		if err != nil {
			t.Fatal(err)
		}
		defer func() { _ = resp.Body.Close() }()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestSimulateCount(t *testing.T) {
	base := simulateCount(emptyPayload())
	if base != datasetSize {
		t.Errorf("unfiltered count = %d, want %d", base, datasetSize)
	}

	p := emptyPayload()
	p.Confidences = []string{"High"}
	if got := simulateCount(p); got >= base {
		t.Errorf("restricted count %d must shrink below %d", got, base)
	}

	minV := 10.0
	p2 := emptyPayload()
	p2.PGAMin = &minV
	if got, want := simulateCount(p2), int64(28927); got != want {
		t.Errorf("pga-restricted count = %d, want %d", got, want)
	}
}
