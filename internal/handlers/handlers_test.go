package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"reodash/internal/hls"
	"reodash/internal/probe"
	"reodash/internal/startup"
)

// newTestHandlers wires a Handlers around temp directories and a manager
// whose encoder and prober do not exist, so nothing real is executed.
func newTestHandlers(t *testing.T, maxConcurrent int) (*Handlers, string, string) {
	t.Helper()
	recordingsDir := t.TempDir()
	hlsDir := t.TempDir()

	cfg := hls.Config{
		Root:             hlsDir,
		MaxConcurrent:    maxConcurrent,
		FFmpegPath:       filepath.Join(t.TempDir(), "no-such-encoder"),
		FirstSegmentWait: 20 * time.Millisecond,
		PollInterval:     5 * time.Millisecond,
		ReapTimeout:      time.Second,
		KillGrace:        50 * time.Millisecond,
	}
	prober := &probe.Prober{Path: "ffprobe-not-on-path", Timeout: time.Second}
	manager := hls.NewManager(cfg, prober)

	h := New(nil, nil, manager, nil, recordingsDir, hlsDir, startup.GetBuildInfo())
	return h, recordingsDir, hlsDir
}

func requestWithPath(method, target, pathVar string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return mux.SetURLVars(req, map[string]string{"path": pathVar})
}

func TestTranscodeStatus(t *testing.T) {
	h, _, _ := newTestHandlers(t, 3)

	rec := httptest.NewRecorder()
	h.TranscodeStatus(rec, httptest.NewRequest(http.MethodGet, "/transcode-status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var snap map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatal(err)
	}
	if snap["active_transcodes"] != 0 || snap["max_concurrent"] != 3 || snap["available_slots"] != 3 {
		t.Errorf("snapshot = %v", snap)
	}
}

func TestStartStreamQueueFull(t *testing.T) {
	h, recordingsDir, _ := newTestHandlers(t, 0)
	if err := os.WriteFile(filepath.Join(recordingsDir, "video.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	h.StartStream(rec, requestWithPath(http.MethodGet, "/api/hls/video.mp4", "video.mp4"))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "HLS queue full" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestStartStreamPathErrors(t *testing.T) {
	h, _, _ := newTestHandlers(t, 1)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"missing file", "cam/missing.mp4", http.StatusNotFound},
		{"escaping path", "../secret.mp4", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.StartStream(rec, requestWithPath(http.MethodGet, "/api/hls/"+tt.path, tt.path))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

// Stopping a job that does not exist is not an error.
func TestStopStreamIdempotent(t *testing.T) {
	h, _, _ := newTestHandlers(t, 1)

	req := httptest.NewRequest(http.MethodDelete, "/api/hls/deadbeef", nil)
	req = mux.SetURLVars(req, map[string]string{"job": "deadbeefdeadbeefdeadbeefdeadbeef"})
	rec := httptest.NewRecorder()
	h.StopStream(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestServeFileOrigin(t *testing.T) {
	h, recordingsDir, _ := newTestHandlers(t, 1)
	if err := os.MkdirAll(filepath.Join(recordingsDir, "cam"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(recordingsDir, "cam", "video.mp4"), []byte("abcdefghij"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	h.ServeFile(rec, requestWithPath(http.MethodGet, "/api/files/cam/video.mp4", "cam/video.mp4"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "video/mp4" {
		t.Errorf("Content-Type = %q", got)
	}
	if rec.Body.String() != "abcdefghij" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestServeFileOriginRange(t *testing.T) {
	h, recordingsDir, _ := newTestHandlers(t, 1)
	if err := os.WriteFile(filepath.Join(recordingsDir, "video.mp4"), []byte("abcdefghij"), 0o644); err != nil {
		t.Fatal(err)
	}

	req := requestWithPath(http.MethodGet, "/api/files/video.mp4", "video.mp4")
	req.Header.Set("Range", "bytes=2-4")
	rec := httptest.NewRecorder()
	h.ServeFile(rec, req)

	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206", rec.Code)
	}
	if got := rec.Header().Get("Content-Range"); got != "bytes 2-4/10" {
		t.Errorf("Content-Range = %q", got)
	}
	if rec.Body.String() != "cde" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

// Escapes must be distinguishable from missing files.
func TestServeFileForbiddenVsNotFound(t *testing.T) {
	h, _, _ := newTestHandlers(t, 1)

	rec := httptest.NewRecorder()
	h.ServeFile(rec, requestWithPath(http.MethodGet, "/api/files/../secret", "../secret"))
	if rec.Code != http.StatusForbidden {
		t.Errorf("escape status = %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeFile(rec, requestWithPath(http.MethodGet, "/api/files/missing.mp4", "missing.mp4"))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing file status = %d, want 404", rec.Code)
	}
}

const testJobID = "0123456789abcdef0123456789abcdef"

func TestServeFileHLSPlaylist(t *testing.T) {
	h, _, hlsDir := newTestHandlers(t, 1)
	jobDir := filepath.Join(hlsDir, testJobID)
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		t.Fatal(err)
	}
	playlistText := "#EXTM3U\n#EXT-X-ENDLIST\n"
	if err := os.WriteFile(filepath.Join(jobDir, "index.m3u8"), []byte(playlistText), 0o644); err != nil {
		t.Fatal(err)
	}

	logical := testJobID + "/index.m3u8"
	rec := httptest.NewRecorder()
	h.ServeFile(rec, requestWithPath(http.MethodGet, "/api/files/"+logical, logical))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/vnd.apple.mpegurl" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); !strings.Contains(got, "no-store") {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
	if rec.Body.String() != playlistText {
		t.Errorf("body = %q", rec.Body.String())
	}
}

// A playlist is published before the job returns, so a missing playlist
// means a dead job: no waiting.
func TestServeFileHLSPlaylistMissing(t *testing.T) {
	h, _, _ := newTestHandlers(t, 1)

	logical := testJobID + "/index.m3u8"
	start := time.Now()
	rec := httptest.NewRecorder()
	h.ServeFile(rec, requestWithPath(http.MethodGet, "/api/files/"+logical, logical))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("missing playlist blocked for %v", elapsed)
	}
}

// Segment requests block until the encoder flushes the file.
func TestServeFileHLSSegmentWaits(t *testing.T) {
	h, _, hlsDir := newTestHandlers(t, 1)
	jobDir := filepath.Join(hlsDir, testJobID)
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		t.Fatal(err)
	}
	segPath := filepath.Join(jobDir, "seg_00000.m4s")

	go func() {
		time.Sleep(30 * time.Millisecond)
		os.WriteFile(segPath, []byte("segment-bytes"), 0o644)
	}()

	logical := testJobID + "/seg_00000.m4s"
	rec := httptest.NewRecorder()
	h.ServeFile(rec, requestWithPath(http.MethodGet, "/api/files/"+logical, logical))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "video/iso.segment" {
		t.Errorf("Content-Type = %q", got)
	}
	if rec.Body.String() != "segment-bytes" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestServeFileHLSEscape(t *testing.T) {
	h, _, _ := newTestHandlers(t, 1)

	logical := testJobID + "/../../etc/passwd.m3u8"
	rec := httptest.NewRecorder()
	h.ServeFile(rec, requestWithPath(http.MethodGet, "/api/files/"+logical, logical))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestGetVersion(t *testing.T) {
	h, _, _ := newTestHandlers(t, 1)

	rec := httptest.NewRecorder()
	h.GetVersion(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var info startup.BuildInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	if info.GoVersion == "" {
		t.Error("GoVersion missing from version response")
	}
}
