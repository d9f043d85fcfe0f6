package handlers

import (
	"encoding/json"
	"net/http"

	"reodash/internal/database"
	"reodash/internal/hls"
	"reodash/internal/indexer"
	"reodash/internal/logging"
	"reodash/internal/media"
	"reodash/internal/startup"
	"reodash/internal/streaming"
)

// Handlers holds dependencies for HTTP handlers
type Handlers struct {
	db            *database.Database
	idx           *indexer.Indexer
	manager       *hls.Manager
	thumbs        *media.ThumbnailGenerator
	recordingsDir string
	hlsDir        string
	buildInfo     startup.BuildInfo
	writerCfg     streaming.WriterConfig
}

// New creates a new Handlers instance
func New(
	db *database.Database,
	idx *indexer.Indexer,
	manager *hls.Manager,
	thumbs *media.ThumbnailGenerator,
	recordingsDir string,
	hlsDir string,
	buildInfo startup.BuildInfo,
) *Handlers {
	return &Handlers{
		db:            db,
		idx:           idx,
		manager:       manager,
		thumbs:        thumbs,
		recordingsDir: recordingsDir,
		hlsDir:        hlsDir,
		buildInfo:     buildInfo,
		writerCfg:     streaming.DefaultWriterConfig(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("Failed to encode JSON response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
