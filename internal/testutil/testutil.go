package testutil

import (
	"archive/zip"
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
)

// ZipBytes builds an in-memory zip archive from path -> content. Paths ending
// in "/" become directory entries.
// t is the active test; files maps slash-separated entry names to contents.
func ZipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for _, name := range names {
		entry, err := writer.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if strings.HasSuffix(name, "/") {
			continue
		}
		if _, err := entry.Write([]byte(files[name])); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// WriteZip writes a zip archive built by ZipBytes to path.
// t is the active test; path is the archive destination.
func WriteZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, ZipBytes(t, files), 0o644); err != nil {
		t.Fatalf("write zip: %v", err)
	}
}

// NodeArchive returns the files of a minimal release archive with the
// conventional node-<version>-<platform>/ top-level directory.
func NodeArchive(version string, platform string) map[string]string {
	top := "node-" + version + "-" + platform + "/"
	return map[string]string{
		top:              "",
		top + "node.exe": "node " + version,
		top + "npm.cmd":  "npm",
	}
}

// ReleaseServer is a fake release host serving index.json and zip artifacts.
type ReleaseServer struct {
	*httptest.Server

	mu        sync.Mutex
	catalog   string
	artifacts map[string][]byte
	requests  []string
}

// NewReleaseServer starts a release host with the given catalog document.
// t is the active test; the server is closed on cleanup.
func NewReleaseServer(t *testing.T, catalog string) *ReleaseServer {
	t.Helper()
	rs := &ReleaseServer{catalog: catalog, artifacts: map[string][]byte{}}
	rs.Server = httptest.NewServer(http.HandlerFunc(rs.serve))
	t.Cleanup(rs.Server.Close)
	return rs
}

// AddArtifact publishes an archive for version and platform.
func (rs *ReleaseServer) AddArtifact(version string, platform string, data []byte) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.artifacts["/download/release/"+version+"/node-"+version+"-"+platform+".zip"] = data
}

// SetCatalog replaces the served catalog document.
func (rs *ReleaseServer) SetCatalog(catalog string) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.catalog = catalog
}

// Requests returns "METHOD path" for every request served so far.
func (rs *ReleaseServer) Requests() []string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]string(nil), rs.requests...)
}

func (rs *ReleaseServer) serve(w http.ResponseWriter, r *http.Request) {
	rs.mu.Lock()
	rs.requests = append(rs.requests, r.Method+" "+r.URL.Path)
	catalog := rs.catalog
	data, ok := rs.artifacts[r.URL.Path]
	rs.mu.Unlock()

	if r.URL.Path == "/download/release/index.json" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(catalog))
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	_, _ = w.Write(data)
}
