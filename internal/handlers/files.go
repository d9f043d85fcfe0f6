package handlers

import (
	"errors"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"reodash/internal/mediatypes"
	"reodash/internal/metrics"
	"reodash/internal/recordings"
	"reodash/internal/streaming"
)

// jobDirPattern matches the hex job id that prefixes every path under the
// HLS root. Anything else is treated as an origin recording path.
var jobDirPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

// ServeFile handles GET /api/files/{path}. Paths whose first component is a
// transcode job id are served from the HLS working directory; everything
// else streams the origin recording with Range support.
func (h *Handlers) ServeFile(w http.ResponseWriter, r *http.Request) {
	logical := mux.Vars(r)["path"]

	first := logical
	if idx := strings.IndexByte(logical, '/'); idx != -1 {
		first = logical[:idx]
	}
	if jobDirPattern.MatchString(first) && mediatypes.IsHLSArtifact(logical) {
		h.serveHLSArtifact(w, r, logical)
		return
	}

	h.serveOriginFile(w, r, logical)
}

// serveHLSArtifact serves playlists and segments from a job working
// directory. Playlists must already exist: the manager publishes the VOD
// playlist before returning, so a missing playlist means a dead job.
// Segments may still be in flight, so their requests block for a bounded
// time waiting for the encoder to produce them.
func (h *Handlers) serveHLSArtifact(w http.ResponseWriter, r *http.Request, logical string) {
	path, err := recordings.Sandbox(h.hlsDir, logical)
	if err != nil {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	switch mediatypes.KindOf(logical) {
	case mediatypes.KindPlaylist:
		if !fileExists(path) {
			http.NotFound(w, r)
			return
		}
		// Playlists must never be cached: a replay of a stale playlist
		// would point the player at a deleted job directory.
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
	default:
		start := time.Now()
		ok := streaming.WaitForFile(r.Context(), path, streaming.DefaultSegmentWait, streaming.DefaultPollInterval)
		metrics.SegmentWaitDuration.Observe(time.Since(start).Seconds())
		if !ok {
			metrics.SegmentWaitTimeouts.Inc()
			http.NotFound(w, r)
			return
		}
	}

	streaming.ServeFileRange(w, r, path, mediatypes.MimeType(logical), h.writerCfg)
}

func (h *Handlers) serveOriginFile(w http.ResponseWriter, r *http.Request, logical string) {
	path, err := recordings.Resolve(h.recordingsDir, logical)
	if err != nil {
		switch {
		case errors.Is(err, recordings.ErrForbidden):
			http.Error(w, "Forbidden", http.StatusForbidden)
		case errors.Is(err, recordings.ErrNotFound):
			http.NotFound(w, r)
		default:
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		}
		return
	}

	streaming.ServeFileRange(w, r, path, mediatypes.MimeType(logical), h.writerCfg)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
