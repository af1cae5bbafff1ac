package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/austech/sigo-api/internal/domain"
	"github.com/austech/sigo-api/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Datos de entrada inválidos")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "Credenciales inválidas")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		return
	}

	respondData(w, http.StatusOK, result)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Datos de entrada inválidos")
		return
	}
	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			respondError(w, http.StatusBadRequest, "El email ya está registrado")
		case errors.Is(err, service.ErrRolNotFound):
			respondError(w, http.StatusBadRequest, "Rol no válido")
		default:
			h.logger.Error("register failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}

	respondData(w, http.StatusCreated, result)
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	result, err := h.authService.Profile(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			respondError(w, http.StatusUnauthorized, "Usuario no autenticado")
		case errors.Is(err, service.ErrNotFound):
			respondError(w, http.StatusNotFound, "Usuario no encontrado")
		default:
			h.logger.Error("profile lookup failed", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "Error interno del servidor")
		}
		return
	}

	respondData(w, http.StatusOK, result)
}
