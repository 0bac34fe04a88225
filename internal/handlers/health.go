package handlers

import "net/http"

// HealthHandler answers liveness probes.
type HealthHandler struct{}

// NewHealthHandler constructs the health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Check reports the service as reachable.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respondData(r.Context(), w, http.StatusOK, "OK", "Health check passed")
}
