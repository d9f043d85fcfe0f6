package handlers

import (
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"reodash/internal/indexer"
	"reodash/internal/logging"
	"reodash/internal/recordings"
)

// GetTree handles GET /api/tree. The tree is built from the index database,
// never from a live filesystem walk.
func (h *Handlers) GetTree(w http.ResponseWriter, r *http.Request) {
	entries, err := h.db.All(r.Context())
	if err != nil {
		logging.Error("Failed to load recordings index: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to load recordings index")
		return
	}
	writeJSON(w, http.StatusOK, indexer.BuildTree(entries, time.Now()))
}

// GetStats handles GET /api/stats
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.Stats(r.Context())
	if err != nil {
		logging.Error("Failed to compute index stats: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to compute index stats")
		return
	}
	lastIndexed, lastDuration := h.idx.LastRun()
	stats.LastIndexed = lastIndexed
	if lastDuration > 0 {
		stats.IndexDuration = lastDuration.String()
	}
	writeJSON(w, http.StatusOK, stats)
}

// TriggerReindex handles POST /api/reindex
func (h *Handlers) TriggerReindex(w http.ResponseWriter, r *http.Request) {
	if h.idx.IsIndexing() {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "indexing already in progress"})
		return
	}
	h.idx.TriggerIndex()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "reindex triggered"})
}

// GetThumbnail handles GET /api/thumbnail/{path}
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	if h.thumbs == nil || !h.thumbs.IsEnabled() {
		http.NotFound(w, r)
		return
	}

	logical := mux.Vars(r)["path"]
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

	data, err := h.thumbs.GetThumbnail(r.Context(), path)
	if err != nil {
		logging.Debug("Thumbnail generation failed for %s: %v", logical, err)
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write thumbnail response: %v", err)
	}
}

// videoInfoResponse reports the container sanity of an origin recording.
type videoInfoResponse struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	ValidMP4 bool   `json:"valid_mp4"`
	Brand    string `json:"brand,omitempty"`
}

// VideoInfo handles GET /video-info/{path}. It checks the ftyp box at the
// head of the file, which is enough to distinguish a real MP4 from a
// truncated or partially written recording.
func (h *Handlers) VideoInfo(w http.ResponseWriter, r *http.Request) {
	logical := mux.Vars(r)["path"]
	path, err := recordings.Resolve(h.recordingsDir, logical)
	if err != nil {
		switch {
		case errors.Is(err, recordings.ErrForbidden):
			writeJSONError(w, http.StatusForbidden, "Forbidden")
		case errors.Is(err, recordings.ErrNotFound):
			writeJSONError(w, http.StatusNotFound, "File not found")
		default:
			writeJSONError(w, http.StatusInternalServerError, "Failed to resolve path")
		}
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "File not found")
		return
	}

	resp := videoInfoResponse{Path: logical, Size: info.Size()}

	f, err := os.Open(path)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "Failed to open file")
		return
	}
	defer f.Close()

	// The ftyp box sits at bytes 4..8 with the major brand right after.
	header := make([]byte, 12)
	if _, err := io.ReadFull(f, header); err == nil && string(header[4:8]) == "ftyp" {
		resp.ValidMP4 = true
		resp.Brand = string(header[8:12])
	}

	writeJSON(w, http.StatusOK, resp)
}
