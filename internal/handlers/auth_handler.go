package handlers

import (
	"net/http"

	"lab-backend/internal/apperr"
	"lab-backend/internal/logger"
	"lab-backend/internal/middleware"
	"lab-backend/internal/models"
	"lab-backend/internal/services"
	"lab-backend/pkg/httpjson"
)

type AuthHandler struct {
	Service *services.AuthService
	Log     *logger.Logger
}

func NewAuthHandler(s *services.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{Service: s, Log: log}
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httpjson.DecodeJSON(r, &req); err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}

	resp, err := h.Service.Login(r.Context(), req)
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, resp)
}

// Me handles GET /usuarios/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	user, err := h.Service.Me(r.Context(), userID)
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, user)
}

// SetupTOTP handles POST /usuarios/me/2fa
func (h *AuthHandler) SetupTOTP(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	resp, err := h.Service.SetupTOTP(r.Context(), userID)
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, resp)
}

// ConfirmTOTP handles POST /usuarios/me/2fa/confirmar
func (h *AuthHandler) ConfirmTOTP(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(r)
	if err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	var req models.TOTPConfirmRequest
	if err := httpjson.DecodeJSON(r, &req); err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	if err := h.Service.ConfirmTOTP(r.Context(), userID, req.Code); err != nil {
		httpjson.WriteError(r.Context(), h.Log, w, err)
		return
	}
	httpjson.WriteMessage(w, http.StatusOK, "Autenticação em dois fatores ativada", 0)
}

// currentUser is for routes that only make sense for a logged-in user, even
// when authentication is optional elsewhere.
func currentUser(r *http.Request) (int, error) {
	id, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		return 0, apperr.New(apperr.CodeUnauthorized, "Token de acesso obrigatório")
	}
	return id, nil
}
