package handlers

import (
	"net/http"

	"lab-backend/internal/logger"
	"lab-backend/internal/models"
	"lab-backend/internal/monitoring"
	"lab-backend/internal/services"
	"lab-backend/pkg/httpjson"
)

type AlertHandler struct {
	Materials *services.MaterialService
	Monitor   *monitoring.StockMonitor
	Hub       *monitoring.Hub
	Log       *logger.Logger
}

func NewAlertHandler(materials *services.MaterialService, monitor *monitoring.StockMonitor, hub *monitoring.Hub, log *logger.Logger) *AlertHandler {
	return &AlertHandler{Materials: materials, Monitor: monitor, Hub: hub, Log: log}
}

// List handles GET /alertas, computed fresh rather than from the last scan
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.Materials.Alerts(r.Context())
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, alerts)
}

// Stream handles GET /ws/alertas. New clients get the monitor's current
// alert set first, then only the new ones.
func (h *AlertHandler) Stream(w http.ResponseWriter, r *http.Request) {
	current := h.Monitor.Current()
	if current == nil {
		current = []models.StockAlert{}
	}
	snapshot := monitoring.Event{Type: monitoring.EventSnapshot, Alerts: current}
	h.Hub.Serve(w, r, &snapshot)
}
