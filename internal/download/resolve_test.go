package download

import (
	"testing"

	"github.com/cascadia-hazards/landslide-viewer/internal/jobs"
)

func TestIsLocalHost(t *testing.T) {
	cases := []struct {
		host string
		want bool
	}{
		{"localhost", true},
		{"localhost:8085", true},
		{"127.0.0.1", true},
		{"127.0.0.1:8085", true},
		{"0.0.0.0:80", true},
		{"viewer.example.org", false},
		{"viewer.example.org:443", false},
		{"10.0.0.5:8085", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsLocalHost(tc.host); got != tc.want {
			t.Errorf("IsLocalHost(%q) = %v, want %v", tc.host, got, tc.want)
		}
	}
}

func TestResolveResult(t *testing.T) {
	res := jobs.DownloadResult{
		CFPath:   "/exports/j1/landslides.geojson.zip",
		URL:      "http://localhost:9000/presigned/landslides.geojson.zip",
		Filename: "landslides.geojson.zip",
	}

	t.Run("production host prefers CDN path", func(t *testing.T) {
		u, name, err := ResolveResult("viewer.example.org", "https://cdn.example.org", res, true)
		if err != nil {
			t.Fatalf("ResolveResult: %v", err)
		}
		if u != "https://cdn.example.org/exports/j1/landslides.geojson.zip" {
			t.Errorf("url = %q", u)
		}
		if name != "landslides.geojson.zip" {
			t.Errorf("filename = %q", name)
		}
	})

	t.Run("local host takes presigned URL", func(t *testing.T) {
		u, _, err := ResolveResult("localhost:8085", "https://cdn.example.org", res, true)
		if err != nil {
			t.Fatalf("ResolveResult: %v", err)
		}
		if u != res.URL {
			t.Errorf("url = %q, want the presigned URL", u)
		}
	})

	t.Run("missing CDN path falls back to URL", func(t *testing.T) {
		r := res
		r.CFPath = ""
		u, _, err := ResolveResult("viewer.example.org", "https://cdn.example.org", r, true)
		if err != nil {
			t.Fatalf("ResolveResult: %v", err)
		}
		if u != res.URL {
			t.Errorf("url = %q, want the presigned URL", u)
		}
	})

	t.Run("no location at all", func(t *testing.T) {
		_, _, err := ResolveResult("localhost", "", jobs.DownloadResult{Filename: "x"}, false)
		if err == nil {
			t.Fatal("expected an error when neither location is present")
		}
	})

	t.Run("filename fallback", func(t *testing.T) {
		r := jobs.DownloadResult{URL: "http://localhost/x"}
		_, name, _ := ResolveResult("localhost", "", r, false)
		if name != "landslides.geojson" {
			t.Errorf("filename = %q, want landslides.geojson", name)
		}
		_, name, _ = ResolveResult("localhost", "", r, true)
		if name != "landslides.geojson.zip" {
			t.Errorf("filename = %q, want landslides.geojson.zip", name)
		}
	})

	t.Run("empty CDN base keeps the raw path", func(t *testing.T) {
		u, _, err := ResolveResult("viewer.example.org", "", res, true)
		if err != nil {
			t.Fatalf("ResolveResult: %v", err)
		}
		if u != res.CFPath {
			t.Errorf("url = %q, want the raw cf_path", u)
		}
	})
}
