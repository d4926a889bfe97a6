package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"lab-backend/internal/apperr"
	"lab-backend/internal/catalog"
	"lab-backend/internal/logger"
	"lab-backend/internal/models"
	"lab-backend/internal/services"
	"lab-backend/pkg/httpjson"
)

type EquipmentHandler struct {
	Service *services.EquipmentService
	Log     *logger.Logger
}

func NewEquipmentHandler(s *services.EquipmentService, log *logger.Logger) *EquipmentHandler {
	return &EquipmentHandler{Service: s, Log: log}
}

// List handles GET /equipamentos
func (h *EquipmentHandler) List(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	sortKey, err := catalog.ParseEquipmentSortKey(v.Get("ordenar"))
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, apperr.Wrap(apperr.CodeValidation, err, "Ordenação inválida").
			WithDetails(map[string]any{"ordenar": "deve ser um de: nome, codigo, aquisicao"}))
		return
	}
	items, err := h.Service.List(r.Context(), catalog.EquipmentQuery{
		Search:   v.Get("busca"),
		Status:   strings.TrimSpace(v.Get("status")),
		Category: strings.TrimSpace(v.Get("categoria")),
		Sort:     sortKey,
	})
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, items)
}

// Summary handles GET /equipamentos/resumo
func (h *EquipmentHandler) Summary(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Service.Summary(r.Context())
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, counts)
}

// Get handles GET /equipamentos/{id}
func (h *EquipmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.PathInt(mux.Vars(r), "id")
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	e, err := h.Service.Get(r.Context(), id)
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, e)
}

// Create handles POST /equipamentos
func (h *EquipmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.EquipmentRequest
	if err := httpjson.DecodeJSON(r, &req); err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	id, err := h.Service.Create(r.Context(), req)
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteMessage(w, http.StatusCreated, services.MsgEquipmentCreated, id)
}

// Update handles PUT /equipamentos/{id}
func (h *EquipmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.PathInt(mux.Vars(r), "id")
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	var req models.EquipmentRequest
	if err := httpjson.DecodeJSON(r, &req); err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	if err := h.Service.Update(r.Context(), id, req); err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteMessage(w, http.StatusOK, services.MsgEquipmentUpdated, 0)
}

// Delete handles DELETE /equipamentos/{id}; its maintenance records go with it
func (h *EquipmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpjson.PathInt(mux.Vars(r), "id")
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteMessage(w, http.StatusOK, services.MsgEquipmentDeleted, 0)
}
