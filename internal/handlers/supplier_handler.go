package handlers

import (
	"net/http"

	"lab-backend/internal/logger"
	"lab-backend/internal/models"
	"lab-backend/internal/services"
	"lab-backend/pkg/httpjson"
)

type SupplierHandler struct {
	Service *services.SupplierService
	Log     *logger.Logger
}

func NewSupplierHandler(s *services.SupplierService, log *logger.Logger) *SupplierHandler {
	return &SupplierHandler{Service: s, Log: log}
}

// Request handles POST /solicitacoes. A failed delivery is still 201; the
// entry carries status "falhou".
func (h *SupplierHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req models.SupplierRequest
	if err := httpjson.DecodeJSON(r, &req); err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	entry, err := h.Service.Request(r.Context(), req)
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusCreated, entry)
}

// History handles GET /emails/historico
func (h *SupplierHandler) History(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.History(r.Context())
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, items)
}

// ClearHistory handles DELETE /emails/historico
func (h *SupplierHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.ClearHistory(r.Context()); err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteMessage(w, http.StatusOK, "Histórico apagado", 0)
}
