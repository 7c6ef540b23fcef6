package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-connector-builder/pkg/manifest"
)

const sampleManifest = `{"version":"0.1.0","type":"DeclarativeSource","check":{"type":"CheckStream","stream_names":[]},"streams":[]}`

func TestLoader_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	if err := os.WriteFile(path, []byte(sampleManifest), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	doc, err := New(manifest.NewLoaderOptions()).Load(context.Background(), manifest.SourceFromFile(path))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != sampleManifest {
		t.Fatalf("unexpected payload: %s", doc.Raw())
	}
	if doc.Location() != path {
		t.Fatalf("unexpected location %q", doc.Location())
	}
}

func TestLoader_FS(t *testing.T) {
	files := fstest.MapFS{
		"connectors/source.yaml": &fstest.MapFile{Data: []byte("version: 0.1.0\n")},
	}
	l := New(manifest.NewLoaderOptions(manifest.WithFileSystem(files)))

	doc, err := l.Load(context.Background(), manifest.SourceFromFS("connectors/source.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !strings.Contains(string(doc.Raw()), "0.1.0") {
		t.Fatalf("unexpected payload: %s", doc.Raw())
	}
}

func TestLoader_FSNotConfigured(t *testing.T) {
	_, err := New(manifest.NewLoaderOptions()).Load(context.Background(), manifest.SourceFromFS("x.json"))
	if err == nil {
		t.Fatalf("expected error when filesystem is missing")
	}
}

func TestLoader_HTTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/manifest.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sampleManifest))
	}))
	defer server.Close()

	src, err := manifest.SourceFromURL(server.URL + "/manifest.json")
	if err != nil {
		t.Fatalf("source: %v", err)
	}

	if _, err := New(manifest.NewLoaderOptions()).Load(context.Background(), src); err == nil {
		t.Fatalf("expected http to be disabled by default")
	}

	l := New(manifest.NewLoaderOptions(manifest.WithHTTPClient(server.Client())))
	doc, err := l.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != sampleManifest {
		t.Fatalf("unexpected payload: %s", doc.Raw())
	}

	missing, _ := manifest.SourceFromURL(server.URL + "/missing.json")
	if _, err := l.Load(context.Background(), missing); err == nil {
		t.Fatalf("expected error for non-2xx status")
	}
}

func TestLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(manifest.NewLoaderOptions()).Load(ctx, manifest.SourceFromFile("manifest.json"))
	if err == nil {
		t.Fatalf("expected context error")
	}
}

func TestLoader_FormatFromExtension(t *testing.T) {
	// A YAML flow mapping starts with '{' like JSON does.
	flow := []byte(`{version: 0.1.0, type: DeclarativeSource, check: {type: CheckStream, stream_names: []}, streams: []}`)
	files := fstest.MapFS{
		"flow.yaml":     &fstest.MapFile{Data: flow},
		"flow.unknown":  &fstest.MapFile{Data: flow},
		"manifest.json": &fstest.MapFile{Data: []byte(sampleManifest)},
	}
	l := New(manifest.NewLoaderOptions(manifest.WithFileSystem(files)))

	doc, err := l.Load(context.Background(), manifest.SourceFromFS("flow.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Format() != manifest.FormatYAML {
		t.Fatalf("expected yaml format, got %q", doc.Format())
	}
	m, err := manifest.DecodeDocument(doc)
	if err != nil {
		t.Fatalf("decode flow yaml: %v", err)
	}
	if m.Version != "0.1.0" {
		t.Fatalf("unexpected version %q", m.Version)
	}

	doc, err = l.Load(context.Background(), manifest.SourceFromFS("flow.unknown"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Format() != manifest.FormatJSON {
		t.Fatalf("expected payload detection to report json, got %q", doc.Format())
	}
	if _, err := manifest.DecodeDocument(doc); err == nil {
		t.Fatalf("expected flow yaml without a yaml extension to fail as json")
	}

	doc, err = l.Load(context.Background(), manifest.SourceFromFS("manifest.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Format() != manifest.FormatJSON {
		t.Fatalf("expected json format, got %q", doc.Format())
	}
}

func TestLoader_HTTPNegotiatesFormat(t *testing.T) {
	accepts := make(chan string, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accepts <- r.Header.Get("Accept")
		switch r.URL.Path {
		case "/connector.yaml":
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte("version: 0.1.0\n"))
		case "/manifest":
			w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
			_, _ = w.Write([]byte("version: 0.1.0\n"))
		case "/login":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	l := New(manifest.NewLoaderOptions(manifest.WithHTTPClient(server.Client())))
	load := func(path string) (manifest.Document, error) {
		t.Helper()
		src, err := manifest.SourceFromURL(server.URL + path)
		if err != nil {
			t.Fatalf("source: %v", err)
		}
		return l.Load(context.Background(), src)
	}

	doc, err := load("/connector.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if accept := <-accepts; !strings.HasPrefix(accept, "application/yaml") {
		t.Fatalf("expected yaml to be preferred for a .yaml url, got %q", accept)
	}
	if doc.Format() != manifest.FormatYAML {
		t.Fatalf("expected yaml from the url extension, got %q", doc.Format())
	}

	doc, err = load("/manifest")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if accept := <-accepts; !strings.HasPrefix(accept, "application/json") {
		t.Fatalf("expected json to be preferred by default, got %q", accept)
	}
	if doc.Format() != manifest.FormatYAML {
		t.Fatalf("expected yaml from the content type, got %q", doc.Format())
	}

	if _, err := load("/login"); err == nil || !strings.Contains(err.Error(), "HTML") {
		t.Fatalf("expected html page to be rejected, got %v", err)
	}
}
