// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type PollCfg struct {
	Interval    time.Duration
	MaxDuration time.Duration
}

type InvalidationCfg struct {
	Enabled       bool
	Brokers       string
	Topic         string
	GroupID       string
	InitialOldest bool
}

type Config struct {
	APIBaseURL      string
	DetailsBaseURL  string
	TileBaseURL     string
	CDNBaseURL      string
	TileSourcePolys string
	TileSourcePts   string

	LogLevel   string
	LogConsole bool

	CountPoll            PollCfg
	DownloadPoll         PollCfg
	LargeResultThreshold int

	DetailsCacheTTL  time.Duration
	DetailsCacheSize int
	RedisAddr        string

	DownloadDir string

	Invalidation InvalidationCfg
}

func FromEnv() Config {
	return Config{
		APIBaseURL:      getenv("API_BASE_URL", "http://localhost:8085/api"),
		DetailsBaseURL:  getenv("DETAILS_BASE_URL", "http://localhost:8085"),
		TileBaseURL:     getenv("TILE_BASE_URL", "http://localhost:3000"),
		CDNBaseURL:      getenv("CDN_BASE_URL", ""),
		TileSourcePolys: getenv("TILE_SOURCE_POLYS", "landslide_v2.ls_polygons_q"),
		TileSourcePts:   getenv("TILE_SOURCE_POINTS", "landslide_v2.ls_points_q"),

		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogConsole: getbool("LOG_CONSOLE", false),

		CountPoll: PollCfg{
			Interval:    getduration("COUNT_POLL_INTERVAL", time.Second),
			MaxDuration: getduration("COUNT_POLL_MAX", 2*time.Minute),
		},
		DownloadPoll: PollCfg{
			Interval:    getduration("DOWNLOAD_POLL_INTERVAL", 5*time.Second),
			MaxDuration: getduration("DOWNLOAD_POLL_MAX", 12*time.Minute),
		},
		LargeResultThreshold: getint("LARGE_RESULT_THRESHOLD", 100_000),

		DetailsCacheTTL:  getduration("DETAILS_CACHE_TTL", 60*time.Second),
		DetailsCacheSize: getint("DETAILS_CACHE_SIZE", 512),
		RedisAddr:        getenv("REDIS_ADDR", ""),

		DownloadDir: getenv("DOWNLOAD_DIR", "."),

		Invalidation: InvalidationCfg{
			Enabled:       getbool("INVALIDATION_ENABLED", false),
			Brokers:       getenv("KAFKA_BROKERS", "localhost:9092"),
			Topic:         getenv("KAFKA_TOPIC", "landslide-dataset-events"),
			GroupID:       getenv("KAFKA_GROUP_ID", "details-cache-invalidator"),
			InitialOldest: getbool("KAFKA_INITIAL_OLDEST", false),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
