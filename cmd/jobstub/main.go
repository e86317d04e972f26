// jobstub runs the local development backend: count/download job
// endpoints, feature details and export delivery with simulated data.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cascadia-hazards/landslide-viewer/internal/core/config"
	"github.com/cascadia-hazards/landslide-viewer/internal/jobstub"
	"github.com/cascadia-hazards/landslide-viewer/internal/logger"
	"github.com/cascadia-hazards/landslide-viewer/internal/observability"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		Component: "jobstub",
	}, os.Stderr)
	log := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc := jobstub.Config{
		Addr:         envOr("JOBSTUB_ADDR", ":8085"),
		QueueLatency: envDur("JOB_QUEUE_LATENCY", 500*time.Millisecond),
		RunLatency:   envDur("JOB_RUN_LATENCY", 2*time.Second),
	}

	if err := jobstub.Run(ctx, sc, log); err != nil {
		log.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envDur(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
