package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reodash/internal/database"
)

func newTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("database.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func writeRecording(t *testing.T, root, camera, year, month, day, name, content string) {
	t.Helper()
	dir := filepath.Join(root, camera, year, month, day)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunOnceIndexesRecordings(t *testing.T) {
	root := t.TempDir()
	writeRecording(t, root, "FrontDoor", "2025", "08", "12", "FrontDoor_01_20250812153000.mp4", "video-bytes")
	writeRecording(t, root, "FrontDoor", "2025", "08", "12", "FrontDoor_01_20250812153000.jpg", "jpeg-bytes")
	// A snapshot without its video must not become an entry.
	writeRecording(t, root, "FrontDoor", "2025", "08", "12", "FrontDoor_02_20250812160000.jpg", "jpeg-bytes")
	// Empty files are in-flight camera writes and are skipped.
	writeRecording(t, root, "Driveway", "2025", "08", "12", "Driveway_00_20250812170000.mp4", "")
	// Files that do not match the camera naming scheme are ignored.
	writeRecording(t, root, "FrontDoor", "2025", "08", "12", "notes.txt", "hello")

	db := newTestDB(t)
	idx := New(db, root, time.Hour)

	if err := idx.runOnce(); err != nil {
		t.Fatalf("runOnce: %v", err)
	}

	entries, err := db.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("indexed %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Camera != "FrontDoor" || e.Video != "FrontDoor_01_20250812153000.mp4" {
		t.Errorf("entry = %+v", e)
	}
	if e.Thumbnail != "FrontDoor_01_20250812153000.jpg" {
		t.Errorf("thumbnail = %q", e.Thumbnail)
	}
	if e.RelPath != "FrontDoor/2025/08/12" {
		t.Errorf("rel path = %q", e.RelPath)
	}
	if e.Size != int64(len("video-bytes")) {
		t.Errorf("size = %d", e.Size)
	}

	status := idx.GetHealthStatus()
	if status.Indexing {
		t.Error("indexing flag still set after run")
	}
	if status.Recordings != 1 {
		t.Errorf("health Recordings = %d, want 1", status.Recordings)
	}
	if status.LastError != "" {
		t.Errorf("health LastError = %q", status.LastError)
	}
}

func TestRunOnceMissingRoot(t *testing.T) {
	db := newTestDB(t)
	idx := New(db, filepath.Join(t.TempDir(), "does-not-exist"), time.Hour)

	if err := idx.runOnce(); err != nil {
		t.Fatalf("runOnce on missing root: %v", err)
	}

	entries, err := db.All(context.Background())
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("indexed %d entries from a missing root", len(entries))
	}
}
