// Package jobstub is the local dev backend: it implements the
// client-observable count/download job contract and the details endpoint
// with simulated data, so the viewer core can run without the real worker.
package jobstub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cascadia-hazards/landslide-viewer/internal/core/health"
	"github.com/cascadia-hazards/landslide-viewer/internal/core/middleware"
	"github.com/cascadia-hazards/landslide-viewer/internal/filter"
	"github.com/cascadia-hazards/landslide-viewer/internal/jobs"
	"github.com/cascadia-hazards/landslide-viewer/internal/observability"
)

type Config struct {
	Addr         string
	QueueLatency time.Duration
	RunLatency   time.Duration
}

type Server struct {
	log  *slog.Logger
	jobs *Jobs
}

func New(cfg Config, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{log: log, jobs: NewJobs(cfg.QueueLatency, cfg.RunLatency)}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover())
	r.Use(middleware.Logging(s.log))
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Post("/count", s.observe("/api/count", s.handleSubmitCount))
		r.Post("/download", s.observe("/api/download", s.handleSubmitDownload))
		r.Get("/count/{jobID}", s.observe("/api/count/{jobID}", s.handleStatus))
		r.Get("/download/{jobID}", s.observe("/api/download/{jobID}", s.handleStatus))
		r.Get("/landslide", s.observe("/api/landslide", s.handleDetails))
	})

	r.Get("/exports/{jobID}/{name}", s.handleExport)
	return r
}

// Run starts the stub and serves until ctx is cancelled.
func Run(ctx context.Context, cfg Config, log *slog.Logger) error {
	s := New(cfg, log)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) observe(route string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		h(sw, r)
		observability.ObserveHTTP(r.Method, route, sw.code, time.Since(start).Seconds())
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetailError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"detail": msg})
}

func (s *Server) handleSubmitCount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filters *filter.Payload `json:"filters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Filters == nil {
		writeDetailError(w, http.StatusBadRequest, `body must be {"filters": {...}}`)
		return
	}

	result, _ := json.Marshal(jobs.CountResult{Count: simulateCount(*req.Filters)})
	id := s.jobs.Create(KindCount, result)
	writeJSON(w, http.StatusCreated, jobs.Job{JobID: id, Status: jobs.StatusQueued})
}

func (s *Server) handleSubmitDownload(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filters  *filter.Payload `json:"filters"`
		Compress bool            `json:"compress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Filters == nil {
		writeDetailError(w, http.StatusBadRequest, `body must be {"filters": {...}, "compress": bool}`)
		return
	}

	filename := "landslides.geojson"
	if req.Compress {
		filename = "landslides.geojson.zip"
	}

	// the export path embeds the job id, so the result is attached
	// after creation
	id := s.jobs.Create(KindDownload, nil)
	path := fmt.Sprintf("/exports/%s/%s", id, filename)
	result, _ := json.Marshal(jobs.DownloadResult{
		CFPath:   path,
		URL:      "http://" + r.Host + path,
		Filename: filename,
	})
	s.jobs.SetResult(id, result)

	writeJSON(w, http.StatusCreated, jobs.Job{JobID: id, Status: jobs.StatusQueued})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")
	job, ok := s.jobs.View(id)
	if !ok {
		writeDetailError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	source := q.Get("source")
	viewerID := q.Get("viewer_id")
	if source == "" || viewerID == "" {
		writeDetailError(w, http.StatusBadRequest, "source and viewer_id are required")
		return
	}

	rec, ok := sampleDetails[source+"|"+viewerID]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"found":     false,
			"source":    source,
			"viewer_id": viewerID,
		})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "jobID")
	if kind, ok := s.jobs.Kind(id); !ok || kind != KindDownload {
		writeDetailError(w, http.StatusNotFound, "export not found")
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write([]byte(exportBody))
}
