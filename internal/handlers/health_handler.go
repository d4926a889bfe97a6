package handlers

import (
	"net/http"

	"lab-backend/internal/health"
	"lab-backend/pkg/httpjson"
)

type HealthHandler struct {
	checker *health.HealthChecker
}

func NewHealthHandler(checker *health.HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// BasicHealth - liveness probe, never touches dependencies
func (h *HealthHandler) BasicHealth(w http.ResponseWriter, r *http.Request) {
	httpjson.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadinessHealth - database plus every configured optional dependency
func (h *HealthHandler) ReadinessHealth(w http.ResponseWriter, r *http.Request) {
	status := h.checker.CheckReady(r.Context())
	code := http.StatusOK
	if status.Status != health.StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	httpjson.WriteJSON(w, code, status)
}

// DetailedHealth - for the monitoring dashboard; always 200
func (h *HealthHandler) DetailedHealth(w http.ResponseWriter, r *http.Request) {
	httpjson.WriteJSON(w, http.StatusOK, h.checker.CheckDetailed(r.Context()))
}
