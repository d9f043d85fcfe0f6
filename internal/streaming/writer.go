package streaming

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"
)

// Sentinel errors for streaming operations.
var (
	// ErrWriteTimeout indicates that a single write exceeded the configured
	// timeout, typically a client draining data too slowly.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone indicates the client disconnected before the stream
	// completed, detected via the request context.
	ErrClientGone = errors.New("client disconnected")
)

// WriterConfig controls chunked response writing.
type WriterConfig struct {
	// WriteTimeout is the maximum time for a single chunk write.
	WriteTimeout time.Duration
	// ChunkSize is the fixed buffer size used when copying; the whole file
	// is never held in memory.
	ChunkSize int
}

// DefaultWriterConfig returns the settings used for media responses.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		WriteTimeout: 30 * time.Second,
		ChunkSize:    256 * 1024,
	}
}

// Copy streams up to n bytes from r to w in fixed-size chunks, flushing
// after each chunk and aborting on client disconnect or a stalled write.
// A negative n copies until EOF.
func Copy(ctx context.Context, w http.ResponseWriter, r io.Reader, n int64, cfg WriterConfig) (int64, error) {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultWriterConfig().ChunkSize
	}

	flusher, _ := w.(http.Flusher)
	buf := make([]byte, cfg.ChunkSize)

	var written int64
	for n < 0 || written < n {
		select {
		case <-ctx.Done():
			return written, ErrClientGone
		default:
		}

		limit := int64(len(buf))
		if n >= 0 && n-written < limit {
			limit = n - written
		}

		read, readErr := r.Read(buf[:limit])
		if read > 0 {
			wrote, writeErr := writeWithTimeout(w, buf[:read], cfg.WriteTimeout)
			written += int64(wrote)
			if writeErr != nil {
				return written, writeErr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
	return written, nil
}

// writeWithTimeout performs one write, bounding how long a stalled client
// can hold the handler goroutine.
func writeWithTimeout(w io.Writer, p []byte, timeout time.Duration) (int, error) {
	if timeout <= 0 {
		return w.Write(p)
	}

	type result struct {
		n   int
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		n, err := w.Write(p)
		resultCh <- result{n, err}
	}()

	select {
	case res := <-resultCh:
		return res.n, res.err
	case <-time.After(timeout):
		return 0, ErrWriteTimeout
	}
}
