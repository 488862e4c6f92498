package handlers

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"
)

// Build-time variables (injected via -ldflags)
var (
	Version = "dev"
	Commit  = "unknown"
)

// HealthResponse is the /healthz payload.
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Commit       string `json:"commit"`
	Uptime       string `json:"uptime"`
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck serves /healthz.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status:       "healthy",
		Version:      Version,
		Commit:       Commit,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// LivenessCheck serves /livez: the process is up.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// ReadinessCheck serves /readyz. The extractor is constructed before the
// server starts listening, so readiness and liveness coincide here.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
