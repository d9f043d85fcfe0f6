package handlers

import (
	"net/http"

	"reodash/internal/hls"
	"reodash/internal/indexer"
)

type healthResponse struct {
	Status     string               `json:"status"`
	Version    string               `json:"version"`
	Indexer    indexer.HealthStatus `json:"indexer"`
	Transcoder hls.GateSnapshot     `json:"transcoder"`
}

// HealthCheck handles GET /health and /healthz
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	idxStatus := h.idx.GetHealthStatus()

	status := "ok"
	httpStatus := http.StatusOK
	if !idxStatus.Ready {
		status = "starting"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:     status,
		Version:    h.buildInfo.Version,
		Indexer:    idxStatus,
		Transcoder: h.manager.GateSnapshot(),
	})
}

// LivenessCheck handles GET /livez. Liveness only proves the process is
// serving; readiness is the gate for traffic.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// ReadinessCheck handles GET /readyz
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if !h.idx.IsReady() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// GetVersion handles GET /version
func (h *Handlers) GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.buildInfo)
}
