package streaming

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"

	"reodash/internal/logging"
)

var rangePattern = regexp.MustCompile(`bytes=(\d+)-(\d*)`)

// ParseRange extracts the byte span from a Range header value against a file
// of the given size. A missing end defaults to the end of the file; an end
// past the file is clamped to size-1. Returns ok=false for an absent or
// malformed header, or a start at or beyond the end of the file.
func ParseRange(header string, size int64) (start, end int64, ok bool) {
	if header == "" || size <= 0 {
		return 0, 0, false
	}

	match := rangePattern.FindStringSubmatch(header)
	if match == nil {
		return 0, 0, false
	}

	start, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil || start >= size {
		return 0, 0, false
	}

	end = size - 1
	if match[2] != "" {
		end, err = strconv.ParseInt(match[2], 10, 64)
		if err != nil {
			return 0, 0, false
		}
		if end > size-1 {
			end = size - 1
		}
	}
	if end < start {
		return 0, 0, false
	}
	return start, end, true
}

// ServeFileRange serves path with Range support: a 206 partial response for
// a valid Range header, a full 200 response otherwise. The body is streamed
// in fixed-size chunks.
func ServeFileRange(w http.ResponseWriter, r *http.Request, path, contentType string, cfg WriterConfig) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "File not found", http.StatusNotFound)
		} else {
			http.Error(w, "Failed to open file", http.StatusInternalServerError)
		}
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("failed to close %s: %v", path, err)
		}
	}()

	fi, err := f.Stat()
	if err != nil {
		http.Error(w, "Failed to stat file", http.StatusInternalServerError)
		return
	}
	size := fi.Size()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Accept-Ranges", "bytes")

	start, end, ok := ParseRange(r.Header.Get("Range"), size)
	if !ok {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		if _, err := Copy(r.Context(), w, f, -1, cfg); err != nil {
			logStreamEnd(path, err)
		}
		return
	}

	length := end - start + 1
	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(http.StatusPartialContent)
	if r.Method == http.MethodHead {
		return
	}

	if _, err := f.Seek(start, io.SeekStart); err != nil {
		logging.Error("failed to seek %s to %d: %v", path, start, err)
		return
	}
	if _, err := Copy(r.Context(), w, f, length, cfg); err != nil {
		logStreamEnd(path, err)
	}
}

// logStreamEnd demotes client-side disconnects to debug; they are routine
// when a player seeks or a tab closes mid-download.
func logStreamEnd(path string, err error) {
	if errors.Is(err, ErrClientGone) || errors.Is(err, ErrWriteTimeout) {
		logging.Debug("stream ended early for %s: %v", path, err)
		return
	}
	logging.Error("streaming error for %s: %v", path, err)
}
