package streaming

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCopyUntilEOF(t *testing.T) {
	rec := httptest.NewRecorder()
	cfg := WriterConfig{WriteTimeout: time.Second, ChunkSize: 4}

	n, err := Copy(context.Background(), rec, strings.NewReader("abcdefghij"), -1, cfg)
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if n != 10 {
		t.Errorf("copied %d bytes, want 10", n)
	}
	if rec.Body.String() != "abcdefghij" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestCopyBounded(t *testing.T) {
	rec := httptest.NewRecorder()
	cfg := WriterConfig{WriteTimeout: time.Second, ChunkSize: 3}

	n, err := Copy(context.Background(), rec, strings.NewReader("abcdefghij"), 7, cfg)
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if n != 7 {
		t.Errorf("copied %d bytes, want 7", n)
	}
	if rec.Body.String() != "abcdefg" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestCopyClientGone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := httptest.NewRecorder()
	_, err := Copy(ctx, rec, strings.NewReader("abcdefghij"), -1, DefaultWriterConfig())
	if !errors.Is(err, ErrClientGone) {
		t.Errorf("err = %v, want ErrClientGone", err)
	}
}

func TestCopyZeroChunkSizeDefaults(t *testing.T) {
	rec := httptest.NewRecorder()

	n, err := Copy(context.Background(), rec, strings.NewReader("xyz"), -1, WriterConfig{})
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if n != 3 || rec.Body.String() != "xyz" {
		t.Errorf("copied %d bytes, body %q", n, rec.Body.String())
	}
}
