package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"lab-backend/internal/catalog"
	"lab-backend/internal/logger"
	"lab-backend/internal/models"
	"lab-backend/internal/services"
	"lab-backend/pkg/httpjson"
)

type MaintenanceHandler struct {
	Service *services.MaintenanceService
	Log     *logger.Logger
}

func NewMaintenanceHandler(s *services.MaintenanceService, log *logger.Logger) *MaintenanceHandler {
	return &MaintenanceHandler{Service: s, Log: log}
}

// List handles GET /manutencoes, ordered by scheduled date
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	equipmentID, err := httpjson.QueryInt(r, "equipamento_id", 0)
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	v := r.URL.Query()
	items, err := h.Service.List(r.Context(), catalog.MaintenanceQuery{
		Search:      v.Get("busca"),
		Status:      strings.TrimSpace(v.Get("status")),
		Type:        strings.TrimSpace(v.Get("tipo")),
		EquipmentID: equipmentID,
	})
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, items)
}

// Summary handles GET /manutencoes/resumo
func (h *MaintenanceHandler) Summary(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Service.Summary(r.Context())
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, counts)
}

// Get handles GET /manutencoes/{id}
func (h *MaintenanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.PathInt(mux.Vars(r), "id")
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	m, err := h.Service.Get(r.Context(), id)
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, m)
}

// Create handles POST /manutencoes
func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.MaintenanceRequest
	if err := httpjson.DecodeJSON(r, &req); err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	id, err := h.Service.Create(r.Context(), req)
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteMessage(w, http.StatusCreated, services.MsgMaintenanceCreated, id)
}

// Update handles PUT /manutencoes/{id}
func (h *MaintenanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.PathInt(mux.Vars(r), "id")
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	var req models.MaintenanceRequest
	if err := httpjson.DecodeJSON(r, &req); err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	if err := h.Service.Update(r.Context(), id, req); err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteMessage(w, http.StatusOK, services.MsgMaintenanceUpdated, 0)
}

// Complete handles PATCH /manutencoes/{id}/concluir
func (h *MaintenanceHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.PathInt(mux.Vars(r), "id")
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	var req models.CompleteMaintenanceRequest
	// the body is optional
	if r.ContentLength != 0 {
		if err := httpjson.DecodeJSON(r, &req); err != nil {
			httpjson.WriteError(r.Context(), h.Log, w, err)
			return
		}
	}
	m, err := h.Service.Complete(r.Context(), id, req)
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, m)
}

// Delete handles DELETE /manutencoes/{id}
func (h *MaintenanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.PathInt(mux.Vars(r), "id")
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteMessage(w, http.StatusOK, services.MsgMaintenanceDeleted, 0)
}
