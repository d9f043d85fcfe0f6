package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"reodash/internal/hls"
	"reodash/internal/logging"
	"reodash/internal/recordings"
)

// startStreamResponse is the body returned when a transcode job starts.
// Duration is null when the source could not be probed.
type startStreamResponse struct {
	Playlist string   `json:"playlist"`
	Duration *float64 `json:"duration"`
	Job      string   `json:"job"`
}

// StartStream handles GET /api/hls/{path}. It starts an HLS transcode job
// for the recording and returns the playlist location. The playlist URL is
// valid immediately: segment requests block until the encoder produces them.
func (h *Handlers) StartStream(w http.ResponseWriter, r *http.Request) {
	logical := mux.Vars(r)["path"]

	source, err := recordings.Resolve(h.recordingsDir, logical)
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

	fastMode := r.URL.Query().Get("quality") != "accurate"

	result, err := h.manager.Start(r.Context(), source, fastMode)
	if err != nil {
		if errors.Is(err, hls.ErrQueueFull) {
			writeJSONError(w, http.StatusServiceUnavailable, "HLS queue full")
			return
		}
		logging.Error("Failed to start transcode for %s: %v", logical, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to start transcode")
		return
	}

	writeJSON(w, http.StatusOK, startStreamResponse{
		Playlist: "/api/files/" + result.PlaylistPath,
		Duration: result.Duration,
		Job:      result.JobID,
	})
}

// StopStream handles DELETE /api/hls/{job}. Cancellation is idempotent;
// an unknown or already-finished job id is not an error.
func (h *Handlers) StopStream(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["job"]
	if h.manager.Cancel(jobID) {
		logging.Debug("Cancelled transcode job %s", jobID)
	}
	w.WriteHeader(http.StatusNoContent)
}

// TranscodeStatus handles GET /transcode-status
func (h *Handlers) TranscodeStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.GateSnapshot())
}
