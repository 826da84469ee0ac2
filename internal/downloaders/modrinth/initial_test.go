package modrinth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tanq16/forgemods/internal/utils"
)

type fakeModrinth struct {
	hits     []searchHit
	versions []projectVersion
	status   int
}

func (f *fakeModrinth) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if f.status != 0 {
			w.WriteHeader(f.status)
			return
		}
		q := r.URL.Query()
		if q.Get("query") != "JEI" {
			t.Errorf("unexpected query %q", q.Get("query"))
		}
		if q.Get("facets") != `[["categories:forge"],["versions:1.20.1"]]` {
			t.Errorf("unexpected facets %q", q.Get("facets"))
		}
		json.NewEncoder(w).Encode(searchResponse{Hits: f.hits})
	})
	mux.HandleFunc("/project/abc123/version", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("loaders") != `["forge"]` || q.Get("game_versions") != `["1.20.1"]` {
			t.Errorf("unexpected version filters %q", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(f.versions)
	})
	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jar:" + filepath.Base(r.URL.Path)))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestDownloader(base string) *Downloader {
	return New(Config{BaseURL: base + "/"}, utils.NewModHTTPClient(utils.HTTPClientConfig{}))
}

var jei = utils.ModDescriptor{Name: "JEI", Filename: "jei-1.20.1.jar", Version: "10.2.1"}

func TestResolvePrefersPrimaryFile(t *testing.T) {
	f := &fakeModrinth{hits: []searchHit{{ProjectID: "abc123", Slug: "jei"}}}
	srv := f.server(t)
	f.versions = []projectVersion{
		{ID: "v1", Files: []versionFile{{URL: srv.URL + "/files/extra.jar", Filename: "extra.jar"}}},
		{ID: "v2", Files: []versionFile{
			{URL: srv.URL + "/files/sources.jar", Filename: "sources.jar"},
			{URL: srv.URL + "/files/jei.jar", Filename: "jei.jar", Primary: true, Size: 1024},
		}},
	}

	ref, err := newTestDownloader(srv.URL).Resolve(context.Background(), jei, "1.20.1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if ref.FileName != "jei.jar" || ref.Provider != Name || ref.Size != 1024 {
		t.Fatalf("unexpected ref %+v", ref)
	}
}

func TestResolveFallsBackToFirstFile(t *testing.T) {
	f := &fakeModrinth{hits: []searchHit{{ProjectID: "abc123"}}}
	srv := f.server(t)
	f.versions = []projectVersion{
		{ID: "v1", Files: []versionFile{{URL: srv.URL + "/files/first.jar", Filename: "first.jar"}}},
		{ID: "v2", Files: []versionFile{{URL: srv.URL + "/files/second.jar", Filename: "second.jar"}}},
	}
	ref, err := newTestDownloader(srv.URL).Resolve(context.Background(), jei, "1.20.1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if ref.FileName != "first.jar" {
		t.Fatalf("expected first file, got %+v", ref)
	}
}

func TestResolveNotFound(t *testing.T) {
	cases := map[string]*fakeModrinth{
		"no hits":     {},
		"no versions": {hits: []searchHit{{ProjectID: "abc123"}}},
		"no files":    {hits: []searchHit{{ProjectID: "abc123"}}, versions: []projectVersion{{ID: "v1"}}},
	}
	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			srv := f.server(t)
			_, err := newTestDownloader(srv.URL).Resolve(context.Background(), jei, "1.20.1")
			if !errors.Is(err, utils.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestResolveTransportError(t *testing.T) {
	f := &fakeModrinth{status: http.StatusServiceUnavailable}
	srv := f.server(t)
	_, err := newTestDownloader(srv.URL).Resolve(context.Background(), jei, "1.20.1")
	var transportErr *utils.TransportError
	if !errors.As(err, &transportErr) || transportErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 transport error, got %v", err)
	}
}

func TestFetchDownloadsResolvedFile(t *testing.T) {
	f := &fakeModrinth{hits: []searchHit{{ProjectID: "abc123"}}}
	srv := f.server(t)
	f.versions = []projectVersion{{Files: []versionFile{{URL: srv.URL + "/files/jei.jar", Filename: "jei.jar", Primary: true}}}}

	d := newTestDownloader(srv.URL)
	ref, err := d.Resolve(context.Background(), jei, "1.20.1")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	target := filepath.Join(t.TempDir(), jei.Filename)
	if err := d.Fetch(context.Background(), ref, target); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	got, _ := os.ReadFile(target)
	if string(got) != "jar:jei.jar" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestSelectFile(t *testing.T) {
	if _, ok := selectFile(nil); ok {
		t.Fatal("expected no file from empty versions")
	}
	if _, ok := selectFile([]projectVersion{{}, {Files: []versionFile{{Filename: "later.jar"}}}}); ok {
		t.Fatal("first version without files and no primary should not resolve")
	}
}
