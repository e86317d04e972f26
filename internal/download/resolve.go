package download

import (
	"errors"
	"net"
	"strings"

	"github.com/cascadia-hazards/landslide-viewer/internal/jobs"
)

// IsLocalHost reports whether the viewer is talking to a local backend,
// in which case the presigned URL is used instead of the CDN path.
func IsLocalHost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	switch host {
	case "localhost", "127.0.0.1", "0.0.0.0":
		return true
	}
	return false
}

// ResolveResult picks the retrieval URL and filename from a completed
// download job. Production-like hosts prefer the CDN path when present;
// local hosts always take the presigned URL.
func ResolveResult(apiHost, cdnBase string, res jobs.DownloadResult, compress bool) (rawURL, filename string, err error) {
	filename = res.Filename
	if filename == "" {
		if compress {
			filename = "landslides.geojson.zip"
		} else {
			filename = "landslides.geojson"
		}
	}

	if !IsLocalHost(apiHost) && res.CFPath != "" {
		rawURL = joinCDN(cdnBase, res.CFPath)
	} else {
		rawURL = res.URL
	}
	if rawURL == "" {
		return "", "", errors.New("no usable download URL from completed download job")
	}
	return rawURL, filename, nil
}

func joinCDN(cdnBase, cfPath string) string {
	if cdnBase == "" {
		return cfPath
	}
	if !strings.HasPrefix(cfPath, "/") {
		cfPath = "/" + cfPath
	}
	return strings.TrimRight(cdnBase, "/") + cfPath
}
