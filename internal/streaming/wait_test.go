package streaming

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWaitForFileAlreadyPresent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seg_00000.m4s")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !WaitForFile(context.Background(), path, 100*time.Millisecond, time.Millisecond) {
		t.Error("existing file reported absent")
	}
}

func TestWaitForFileAppears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seg_00001.m4s")

	go func() {
		time.Sleep(30 * time.Millisecond)
		os.WriteFile(path, []byte("x"), 0o644)
	}()

	if !WaitForFile(context.Background(), path, 2*time.Second, time.Millisecond) {
		t.Error("file appearing during the wait was not noticed")
	}
}

func TestWaitForFileTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never.m4s")

	start := time.Now()
	if WaitForFile(context.Background(), path, 50*time.Millisecond, 5*time.Millisecond) {
		t.Error("absent file reported present")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("wait overshot its bound: %v", elapsed)
	}
}

func TestWaitForFileContextCanceled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "never.m4s")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if WaitForFile(ctx, path, 10*time.Second, time.Millisecond) {
		t.Error("canceled context still reported the file present")
	}
}
