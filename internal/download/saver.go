package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cascadia-hazards/landslide-viewer/internal/core/httpclient"
)

// Saver retrieves a resolved export URL. The browser build hands the URL
// to the native download trigger; headless builds write to disk.
type Saver interface {
	Save(ctx context.Context, rawURL, filename string) (string, error)
}

// FileSaver fetches the export and writes it under Dir.
type FileSaver struct {
	hc  *http.Client
	dir string
}

func NewFileSaver(hc *http.Client, dir string) *FileSaver {
	if hc == nil {
		hc = httpclient.NewTransfer()
	}
	if dir == "" {
		dir = "."
	}
	return &FileSaver{hc: hc, dir: dir}
}

func (s *FileSaver) Save(ctx context.Context, rawURL, filename string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("download request: %w", err)
	}

	resp, err := s.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("download fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("download fetch: status %d", resp.StatusCode)
	}

	// keep only the base name so a server-supplied filename cannot
	// escape the download directory
	dest := filepath.Join(s.dir, filepath.Base(filename))
	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dest, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	return dest, nil
}
